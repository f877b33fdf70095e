package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sfqs/ticket-system/internal/domain"
)

// TicketFilter captures ticket search parameters.
type TicketFilter struct {
	RequesterEmail *string
	EngineerEmail  *string
	Statuses       []domain.TicketStatus
	Priorities     []domain.TicketPriority
	Fixture        *string
	SearchTerm     *string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
	Limit          int
	Offset         int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	// Update writes the lifecycle fields of ticket only if the stored row still
	// matches guard, returning ErrStaleWrite otherwise.
	Update(ctx context.Context, ticket *domain.Ticket, guard TicketGuard) error
	AddExtraMinutes(ctx context.Context, id string, minutes int) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	ListResolvedByEngineer(ctx context.Context, engineerEmail string) ([]domain.Ticket, error)
}

const ticketColumns = `id, external_key, fixture, production_line, description, priority, status,
        requester_email, requester_name, engineer_email, resolution, extra_minutes,
        created_at, updated_at, claimed_at, resolved_at`

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (external_key, fixture, production_line, description, priority, status,
            requester_email, requester_name)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ExternalKey,
		ticket.Fixture,
		ticket.ProductionLine,
		ticket.Description,
		ticket.Priority,
		ticket.Status,
		ticket.RequesterEmail,
		ticket.RequesterName,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket, guard TicketGuard) error {
	const query = `
        UPDATE tickets SET priority=$1, status=$2, engineer_email=$3, resolution=$4,
            claimed_at=$5, resolved_at=$6, updated_at=NOW()
        WHERE id=$7 AND status=$8 AND engineer_email IS NOT DISTINCT FROM $9
        RETURNING extra_minutes, updated_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.Priority,
		ticket.Status,
		ticket.EngineerEmail,
		ticket.Resolution,
		ticket.ClaimedAt,
		ticket.ResolvedAt,
		ticket.ID,
		guard.Status,
		guard.EngineerEmail,
	).Scan(&ticket.ExtraMinutes, &ticket.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.missingOrStale(ctx, ticket.ID)
	}
	return err
}

func (r *ticketRepository) AddExtraMinutes(ctx context.Context, id string, minutes int) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE tickets SET extra_minutes = extra_minutes + $1, updated_at=NOW() WHERE id=$2`,
		minutes, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// missingOrStale tells a deleted row apart from one whose guard failed.
func (r *ticketRepository) missingOrStale(ctx context.Context, id string) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tickets WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrStaleWrite
	}
	return pgx.ErrNoRows
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return scanTicket(r.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id))
}

func (r *ticketRepository) ListResolvedByEngineer(ctx context.Context, engineerEmail string) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets
        WHERE engineer_email=$1 AND status=$2 ORDER BY resolved_at ASC`
	rows, err := r.pool.Query(ctx, query, engineerEmail, domain.TicketStatusResolved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	var w where
	eqIfSet(&w, "requester_email", filter.RequesterEmail)
	eqIfSet(&w, "engineer_email", filter.EngineerEmail)
	eqIfSet(&w, "fixture", filter.Fixture)
	inIfAny(&w, "status", filter.Statuses)
	inIfAny(&w, "priority", filter.Priorities)
	if filter.CreatedFrom != nil {
		w.add("created_at >= %s", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		w.add("created_at <= %s", *filter.CreatedTo)
	}
	if filter.SearchTerm != nil {
		if term := strings.ToLower(strings.TrimSpace(*filter.SearchTerm)); term != "" {
			p := w.arg(containsPattern(term))
			w.clauses = append(w.clauses, fmt.Sprintf(
				`(LOWER(fixture) LIKE %[1]s ESCAPE '\' OR LOWER(description) LIKE %[1]s ESCAPE '\' OR LOWER(external_key) LIKE %[1]s ESCAPE '\')`, p))
		}
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC %s`,
		ticketColumns, w.String(), page(filter.Limit, filter.Offset, 20))

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.ExternalKey,
		&ticket.Fixture,
		&ticket.ProductionLine,
		&ticket.Description,
		&ticket.Priority,
		&ticket.Status,
		&ticket.RequesterEmail,
		&ticket.RequesterName,
		&ticket.EngineerEmail,
		&ticket.Resolution,
		&ticket.ExtraMinutes,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ClaimedAt,
		&ticket.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
