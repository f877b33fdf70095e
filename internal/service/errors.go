package service

import (
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/sfqs/ticket-system/internal/repository"
	apperrors "github.com/sfqs/ticket-system/pkg/util/errorutil"
)

// mapWriteError turns a failed conditional update into a domain error.
func mapWriteError(err error, resource, id string) error {
	switch {
	case errors.Is(err, repository.ErrStaleWrite):
		return apperrors.NewConflict(resource+" was changed by another request", map[string]any{"id": id})
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return apperrors.MapError(err)
}
