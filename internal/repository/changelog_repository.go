package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sfqs/ticket-system/internal/domain"
)

// ChangelogRepository stores inventory and firmware changelog entries.
type ChangelogRepository interface {
	Create(ctx context.Context, entry *domain.ChangelogEntry) error
	List(ctx context.Context, kind *domain.ChangelogKind, limit, offset int) ([]domain.ChangelogEntry, error)
	Delete(ctx context.Context, id string) error
}

type changelogRepository struct {
	pool *pgxpool.Pool
}

// NewChangelogRepository builds repository.
func NewChangelogRepository(pool *pgxpool.Pool) ChangelogRepository {
	return &changelogRepository{pool: pool}
}

func (r *changelogRepository) Create(ctx context.Context, entry *domain.ChangelogEntry) error {
	const query = `
        INSERT INTO changelog_entries (kind, title, version, description, author_email)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.Kind,
		entry.Title,
		entry.Version,
		entry.Description,
		entry.AuthorEmail,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *changelogRepository) List(ctx context.Context, kind *domain.ChangelogKind, limit, offset int) ([]domain.ChangelogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, kind, title, version, description, author_email, created_at
        FROM changelog_entries
        WHERE ($1::text IS NULL OR kind = $1)
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	var kindArg *string
	if kind != nil {
		k := string(*kind)
		kindArg = &k
	}
	rows, err := r.pool.Query(ctx, query, kindArg, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ChangelogEntry
	for rows.Next() {
		var entry domain.ChangelogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.Kind,
			&entry.Title,
			&entry.Version,
			&entry.Description,
			&entry.AuthorEmail,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *changelogRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM changelog_entries WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
