package domain

import "time"

// UserStatus represents the registration lifecycle of an account.
type UserStatus string

const (
	UserStatusPending  UserStatus = "pending"
	UserStatusActive   UserStatus = "active"
	UserStatusRejected UserStatus = "rejected"
)

// User is an account of the ticket system.
type User struct {
	ID            string
	Email         string
	Name          string
	PasswordHash  string
	Role          Role
	Status        UserStatus
	Experience    int
	Level         int
	TicketsSolved int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EngineerExperience is the stored experience snapshot of an engineer.
type EngineerExperience struct {
	Email         string
	Experience    int
	Level         int
	TicketsSolved int
}

// ExperienceSnapshot returns the stored experience fields of the user.
func (u *User) ExperienceSnapshot() EngineerExperience {
	return EngineerExperience{
		Email:         u.Email,
		Experience:    u.Experience,
		Level:         u.Level,
		TicketsSolved: u.TicketsSolved,
	}
}
