package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sfqs/ticket-system/internal/domain"
)

// ExtraTimeFilter narrows extra-time request listings.
type ExtraTimeFilter struct {
	Status        *domain.ExtraTimeStatus
	EngineerEmail *string
	TicketID      *string
	Limit         int
	Offset        int
}

// ExtraTimeRepository persists extra-time requests.
type ExtraTimeRepository interface {
	Create(ctx context.Context, request *domain.ExtraTimeRequest) error
	// Update applies only while the stored request is still in status from,
	// returning ErrStaleWrite otherwise.
	Update(ctx context.Context, request *domain.ExtraTimeRequest, from domain.ExtraTimeStatus) error
	GetByID(ctx context.Context, id string) (*domain.ExtraTimeRequest, error)
	List(ctx context.Context, filter ExtraTimeFilter) ([]domain.ExtraTimeRequest, error)
}

const extraTimeColumns = `id, ticket_id, engineer_email, minutes, reason, status, reviewer_email, created_at, reviewed_at`

type extraTimeRepository struct {
	pool *pgxpool.Pool
}

// NewExtraTimeRepository builds repository.
func NewExtraTimeRepository(pool *pgxpool.Pool) ExtraTimeRepository {
	return &extraTimeRepository{pool: pool}
}

func (r *extraTimeRepository) Create(ctx context.Context, request *domain.ExtraTimeRequest) error {
	const query = `
        INSERT INTO extra_time_requests (ticket_id, engineer_email, minutes, reason, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		request.TicketID,
		request.EngineerEmail,
		request.Minutes,
		request.Reason,
		request.Status,
	).Scan(&request.ID, &request.CreatedAt)
}

func (r *extraTimeRepository) Update(ctx context.Context, request *domain.ExtraTimeRequest, from domain.ExtraTimeStatus) error {
	const query = `
        UPDATE extra_time_requests SET status=$1, reviewer_email=$2, reviewed_at=$3
        WHERE id=$4 AND status=$5`
	cmd, err := r.pool.Exec(ctx, query,
		request.Status,
		request.ReviewerEmail,
		request.ReviewedAt,
		request.ID,
		from,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM extra_time_requests WHERE id=$1)`, request.ID).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrStaleWrite
	}
	return pgx.ErrNoRows
}

func (r *extraTimeRepository) GetByID(ctx context.Context, id string) (*domain.ExtraTimeRequest, error) {
	return scanExtraTime(r.pool.QueryRow(ctx, `SELECT `+extraTimeColumns+` FROM extra_time_requests WHERE id=$1`, id))
}

func (r *extraTimeRepository) List(ctx context.Context, filter ExtraTimeFilter) ([]domain.ExtraTimeRequest, error) {
	var w where
	eqIfSet(&w, "status", filter.Status)
	eqIfSet(&w, "engineer_email", filter.EngineerEmail)
	eqIfSet(&w, "ticket_id", filter.TicketID)
	query := fmt.Sprintf(`SELECT %s FROM extra_time_requests WHERE %s ORDER BY created_at ASC %s`,
		extraTimeColumns, w.String(), page(filter.Limit, filter.Offset, 50))

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ExtraTimeRequest
	for rows.Next() {
		request, err := scanExtraTime(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *request)
	}
	return result, rows.Err()
}

func scanExtraTime(row pgx.Row) (*domain.ExtraTimeRequest, error) {
	var request domain.ExtraTimeRequest
	if err := row.Scan(
		&request.ID,
		&request.TicketID,
		&request.EngineerEmail,
		&request.Minutes,
		&request.Reason,
		&request.Status,
		&request.ReviewerEmail,
		&request.CreatedAt,
		&request.ReviewedAt,
	); err != nil {
		return nil, err
	}
	return &request, nil
}
