// Package memory holds in-process implementations of the repository
// interfaces. They follow the ordering, paging, search and conditional-update
// rules of the Postgres queries and back the service when no database is
// configured.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sfqs/ticket-system/internal/domain"
	"github.com/sfqs/ticket-system/internal/repository"
)

// ErrDuplicateEmail mirrors the unique constraint on users.email.
var ErrDuplicateEmail = errors.New("duplicate email")

// Store keeps every collection behind one lock.
type Store struct {
	mu         sync.RWMutex
	users      map[string]domain.User
	tickets    map[string]domain.Ticket
	changelog  map[string]domain.ChangelogEntry
	extraTime  map[string]domain.ExtraTimeRequest
	revocation map[string]time.Time
	now        func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:      map[string]domain.User{},
		tickets:    map[string]domain.Ticket{},
		changelog:  map[string]domain.ChangelogEntry{},
		extraTime:  map[string]domain.ExtraTimeRequest{},
		revocation: map[string]time.Time{},
		now:        time.Now,
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Tickets returns the ticket repository view of the store.
func (s *Store) Tickets() repository.TicketRepository { return ticketRepo{s} }

// Changelog returns the changelog repository view of the store.
func (s *Store) Changelog() repository.ChangelogRepository { return changelogRepo{s} }

// ExtraTime returns the extra-time repository view of the store.
func (s *Store) ExtraTime() repository.ExtraTimeRepository { return extraTimeRepo{s} }

// Sessions returns the session revocation view of the store.
func (s *Store) Sessions() repository.SessionStore { return sessionStore{s} }

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	now := r.s.now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Name = user.Name
	stored.PasswordHash = user.PasswordHash
	stored.Role = user.Role
	stored.Status = user.Status
	stored.UpdatedAt = r.s.now()
	r.s.users[user.ID] = stored
	user.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, user := range r.s.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r userRepo) ListByStatus(_ context.Context, status domain.UserStatus, limit, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 50
	}
	r.s.mu.RLock()
	out := make([]domain.User, 0)
	for _, user := range r.s.users {
		if user.Status == status {
			out = append(out, user)
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

func (r userRepo) ListEngineersByExperience(_ context.Context, limit int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 10
	}
	r.s.mu.RLock()
	out := make([]domain.User, 0)
	for _, user := range r.s.users {
		if user.Role == domain.RoleEngineer && user.Status == domain.UserStatusActive {
			out = append(out, user)
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Experience != out[j].Experience {
			return out[i].Experience > out[j].Experience
		}
		if out[i].TicketsSolved != out[j].TicketsSolved {
			return out[i].TicketsSolved > out[j].TicketsSolved
		}
		return out[i].Name < out[j].Name
	})
	return page(out, limit, 0), nil
}

func (r userRepo) ListEngineersAfter(_ context.Context, afterID string, limit int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 100
	}
	r.s.mu.RLock()
	out := make([]domain.User, 0)
	for _, user := range r.s.users {
		if user.Role == domain.RoleEngineer && user.Status == domain.UserStatusActive && user.ID > afterID {
			out = append(out, user)
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, limit, 0), nil
}

func (r userRepo) UpdateExperience(_ context.Context, exp domain.EngineerExperience) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, user := range r.s.users {
		if user.Email == exp.Email {
			user.Experience = exp.Experience
			user.Level = exp.Level
			user.TicketsSolved = exp.TicketsSolved
			user.UpdatedAt = r.s.now()
			r.s.users[id] = user
			return nil
		}
	}
	return pgx.ErrNoRows
}

type ticketRepo struct{ s *Store }

func (r ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.s.tickets[ticket.ID] = *ticket
	return nil
}

func (r ticketRepo) Update(_ context.Context, ticket *domain.Ticket, guard repository.TicketGuard) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if !guard.Holds(stored) {
		return repository.ErrStaleWrite
	}
	stored.Priority = ticket.Priority
	stored.Status = ticket.Status
	stored.EngineerEmail = ticket.EngineerEmail
	stored.Resolution = ticket.Resolution
	stored.ClaimedAt = ticket.ClaimedAt
	stored.ResolvedAt = ticket.ResolvedAt
	stored.UpdatedAt = r.s.now()
	r.s.tickets[ticket.ID] = stored
	ticket.ExtraMinutes = stored.ExtraMinutes
	ticket.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r ticketRepo) AddExtraMinutes(_ context.Context, id string, minutes int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.ExtraMinutes += minutes
	stored.UpdatedAt = r.s.now()
	r.s.tickets[id] = stored
	return nil
}

func (r ticketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ticket, ok := r.s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r ticketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	r.s.mu.RLock()
	out := make([]domain.Ticket, 0)
	for _, ticket := range r.s.tickets {
		if matchesTicket(ticket, filter) {
			out = append(out, ticket)
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, filter.Offset), nil
}

func (r ticketRepo) ListResolvedByEngineer(_ context.Context, engineerEmail string) ([]domain.Ticket, error) {
	r.s.mu.RLock()
	out := make([]domain.Ticket, 0)
	for _, ticket := range r.s.tickets {
		if ticket.Status == domain.TicketStatusResolved && ticket.EngineerEmail != nil && *ticket.EngineerEmail == engineerEmail {
			out = append(out, ticket)
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return resolvedAt(out[i]).Before(resolvedAt(out[j]))
	})
	return out, nil
}

func resolvedAt(ticket domain.Ticket) time.Time {
	if ticket.ResolvedAt == nil {
		return time.Time{}
	}
	return *ticket.ResolvedAt
}

func matchesTicket(ticket domain.Ticket, filter repository.TicketFilter) bool {
	if filter.RequesterEmail != nil && ticket.RequesterEmail != *filter.RequesterEmail {
		return false
	}
	if filter.EngineerEmail != nil && (ticket.EngineerEmail == nil || *ticket.EngineerEmail != *filter.EngineerEmail) {
		return false
	}
	if len(filter.Statuses) > 0 && !contains(filter.Statuses, ticket.Status) {
		return false
	}
	if len(filter.Priorities) > 0 && !contains(filter.Priorities, ticket.Priority) {
		return false
	}
	if filter.Fixture != nil && ticket.Fixture != *filter.Fixture {
		return false
	}
	if filter.SearchTerm != nil {
		if term := strings.ToLower(strings.TrimSpace(*filter.SearchTerm)); term != "" {
			if !containsFold(term, ticket.Fixture, ticket.Description, ticket.ExternalKey) {
				return false
			}
		}
	}
	if filter.CreatedFrom != nil && ticket.CreatedAt.Before(*filter.CreatedFrom) {
		return false
	}
	if filter.CreatedTo != nil && ticket.CreatedAt.After(*filter.CreatedTo) {
		return false
	}
	return true
}

// containsFold matches term against each field separately, like the SQL OR.
func containsFold(term string, fields ...string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func contains[T comparable](items []T, item T) bool {
	for _, candidate := range items {
		if candidate == item {
			return true
		}
	}
	return false
}

type changelogRepo struct{ s *Store }

func (r changelogRepo) Create(_ context.Context, entry *domain.ChangelogEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry.ID = uuid.NewString()
	entry.CreatedAt = r.s.now()
	r.s.changelog[entry.ID] = *entry
	return nil
}

func (r changelogRepo) List(_ context.Context, kind *domain.ChangelogKind, limit, offset int) ([]domain.ChangelogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	r.s.mu.RLock()
	out := make([]domain.ChangelogEntry, 0)
	for _, entry := range r.s.changelog {
		if kind == nil || entry.Kind == *kind {
			out = append(out, entry)
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

func (r changelogRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.changelog[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.changelog, id)
	return nil
}

type extraTimeRepo struct{ s *Store }

func (r extraTimeRepo) Create(_ context.Context, request *domain.ExtraTimeRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	request.ID = uuid.NewString()
	request.CreatedAt = r.s.now()
	r.s.extraTime[request.ID] = *request
	return nil
}

func (r extraTimeRepo) Update(_ context.Context, request *domain.ExtraTimeRequest, from domain.ExtraTimeStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.extraTime[request.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Status != from {
		return repository.ErrStaleWrite
	}
	r.s.extraTime[request.ID] = *request
	return nil
}

func (r extraTimeRepo) GetByID(_ context.Context, id string) (*domain.ExtraTimeRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	request, ok := r.s.extraTime[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &request, nil
}

func (r extraTimeRepo) List(_ context.Context, filter repository.ExtraTimeFilter) ([]domain.ExtraTimeRequest, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	r.s.mu.RLock()
	out := make([]domain.ExtraTimeRequest, 0)
	for _, request := range r.s.extraTime {
		if filter.Status != nil && request.Status != *filter.Status {
			continue
		}
		if filter.EngineerEmail != nil && request.EngineerEmail != *filter.EngineerEmail {
			continue
		}
		if filter.TicketID != nil && request.TicketID != *filter.TicketID {
			continue
		}
		out = append(out, request)
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return page(out, limit, filter.Offset), nil
}

type sessionStore struct{ s *Store }

func (r sessionStore) Revoke(_ context.Context, sessionID string, ttl time.Duration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.revocation[sessionID] = r.s.now().Add(ttl)
	return nil
}

func (r sessionStore) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	until, ok := r.s.revocation[sessionID]
	return ok && r.s.now().Before(until), nil
}
