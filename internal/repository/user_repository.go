package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sfqs/ticket-system/internal/domain"
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListByStatus(ctx context.Context, status domain.UserStatus, limit, offset int) ([]domain.User, error)
	ListEngineersByExperience(ctx context.Context, limit int) ([]domain.User, error)
	// ListEngineersAfter pages active engineers in id order, starting after
	// afterID; an empty afterID starts from the beginning.
	ListEngineersAfter(ctx context.Context, afterID string, limit int) ([]domain.User, error)
	UpdateExperience(ctx context.Context, experience domain.EngineerExperience) error
}

const userColumns = `id, email, name, password_hash, role, status, experience, level, tickets_solved, created_at, updated_at`

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (email, name, password_hash, role, status, experience, level, tickets_solved)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Role,
		user.Status,
		user.Experience,
		user.Level,
		user.TicketsSolved,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

// Update writes profile fields. Experience columns are owned by UpdateExperience.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, password_hash=$2, role=$3, status=$4, updated_at=NOW()
        WHERE id=$5`

	cmd, err := r.pool.Exec(ctx, query,
		user.Name,
		user.PasswordHash,
		user.Role,
		user.Status,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email))
}

func (r *userRepository) ListByStatus(ctx context.Context, status domain.UserStatus, limit, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `SELECT ` + userColumns + ` FROM users WHERE status=$1 ORDER BY created_at ASC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *userRepository) ListEngineersByExperience(ctx context.Context, limit int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
        SELECT ` + userColumns + ` FROM users
        WHERE role=$1 AND status=$2
        ORDER BY experience DESC, tickets_solved DESC, name ASC
        LIMIT $3`
	rows, err := r.pool.Query(ctx, query, domain.RoleEngineer, domain.UserStatusActive, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *userRepository) ListEngineersAfter(ctx context.Context, afterID string, limit int) ([]domain.User, error) {
	var w where
	w.add("role = %s", domain.RoleEngineer)
	w.add("status = %s", domain.UserStatusActive)
	if afterID != "" {
		w.add("id > %s", afterID)
	}
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY id ASC %s`,
		userColumns, w.String(), page(limit, 0, 100))
	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *userRepository) UpdateExperience(ctx context.Context, experience domain.EngineerExperience) error {
	const query = `
        UPDATE users SET experience=$1, level=$2, tickets_solved=$3, updated_at=NOW()
        WHERE email=$4`
	cmd, err := r.pool.Exec(ctx, query,
		experience.Experience,
		experience.Level,
		experience.TicketsSolved,
		experience.Email,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.Role,
		&user.Status,
		&user.Experience,
		&user.Level,
		&user.TicketsSolved,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func scanUsers(rows pgx.Rows) ([]domain.User, error) {
	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}
