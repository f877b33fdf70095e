package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/sfqs/ticket-system/internal/domain"
	"github.com/sfqs/ticket-system/internal/leveling"
	"github.com/sfqs/ticket-system/internal/repository"
	apperrors "github.com/sfqs/ticket-system/pkg/util/errorutil"
)

// ExperienceService serves and refreshes engineer experience.
type ExperienceService struct {
	users   repository.UserRepository
	tickets repository.TicketRepository
	table   *leveling.Table
	logger  *zap.Logger
}

// ExperienceView is the experience of one engineer as shown to clients.
type ExperienceView struct {
	Email         string
	Name          string
	Experience    int
	Level         int
	TicketsSolved int
	NextLevelAt   *int
	// Written is true when a refresh changed the stored values.
	Written bool
}

// NewExperienceService constructs the service. A nil table uses leveling.DefaultTable.
func NewExperienceService(users repository.UserRepository, tickets repository.TicketRepository, table *leveling.Table, logger *zap.Logger) *ExperienceService {
	if table == nil {
		table = leveling.DefaultTable()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExperienceService{users: users, tickets: tickets, table: table, logger: logger}
}

// Get returns the experience of the engineer. With refresh the value is rebuilt
// from resolved tickets and stored when it differs from the stored snapshot.
func (s *ExperienceService) Get(ctx context.Context, email string, refresh bool) (*ExperienceView, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("engineer", map[string]any{"email": email})
		}
		if refresh {
			return nil, apperrors.NewRecomputeFailed(email, err)
		}
		return nil, apperrors.MapError(err)
	}
	if user.Role != domain.RoleEngineer {
		return nil, apperrors.NewValidationError("experience is tracked for engineers only", map[string]any{"email": email})
	}
	if !refresh {
		return s.view(user.Name, user.ExperienceSnapshot(), false), nil
	}
	return s.recompute(ctx, user)
}

// Refresh rebuilds the experience of the engineer from resolved tickets.
func (s *ExperienceService) Refresh(ctx context.Context, email string) (*ExperienceView, error) {
	return s.Get(ctx, email, true)
}

// Leaderboard lists active engineers by stored experience.
func (s *ExperienceService) Leaderboard(ctx context.Context, limit int) ([]ExperienceView, error) {
	users, err := s.users.ListEngineersByExperience(ctx, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	views := make([]ExperienceView, 0, len(users))
	for i := range users {
		views = append(views, *s.view(users[i].Name, users[i].ExperienceSnapshot(), false))
	}
	return views, nil
}

// ReconcileAll recomputes every active engineer, reading batch accounts at a
// time in id order. Failures are logged and skipped; the number of rewritten
// snapshots is returned.
func (s *ExperienceService) ReconcileAll(ctx context.Context, batch int) (int, error) {
	if batch <= 0 {
		batch = 100
	}
	updated := 0
	after := ""
	for {
		users, err := s.users.ListEngineersAfter(ctx, after, batch)
		if err != nil {
			return updated, apperrors.MapError(err)
		}
		for i := range users {
			if err := ctx.Err(); err != nil {
				return updated, err
			}
			view, err := s.recompute(ctx, &users[i])
			if err != nil {
				s.logger.Warn("experience reconcile skipped engineer", zap.String("email", users[i].Email), zap.Error(err))
				continue
			}
			if view.Written {
				updated++
			}
		}
		if len(users) < batch {
			return updated, nil
		}
		after = users[len(users)-1].ID
	}
}

// PointsFor exposes the per-ticket award for a priority.
func (s *ExperienceService) PointsFor(priority domain.TicketPriority) int {
	return leveling.PointsForPriority(priority)
}

func (s *ExperienceService) recompute(ctx context.Context, user *domain.User) (*ExperienceView, error) {
	tickets, err := s.tickets.ListResolvedByEngineer(ctx, user.Email)
	if err != nil {
		return nil, apperrors.NewRecomputeFailed(user.Email, err)
	}
	priorities := make([]domain.TicketPriority, 0, len(tickets))
	for i := range tickets {
		if !tickets[i].Priority.Known() {
			s.logger.Warn("resolved ticket with unknown priority scored as Baja",
				zap.String("ticket_id", tickets[i].ID),
				zap.String("priority", string(tickets[i].Priority)))
		}
		priorities = append(priorities, tickets[i].Priority)
	}

	result := s.table.Recompute(priorities)
	snapshot := result.Snapshot(user.Email)
	written := false
	if result.Differs(user.ExperienceSnapshot()) {
		if err := s.users.UpdateExperience(ctx, snapshot); err != nil {
			return nil, apperrors.NewRecomputeFailed(user.Email, err)
		}
		written = true
		s.logger.Info("engineer experience updated",
			zap.String("email", user.Email),
			zap.Int("experience", result.TotalExperience),
			zap.Int("level", result.Level),
			zap.Int("tickets_solved", result.TicketsSolved))
	}
	return s.view(user.Name, snapshot, written), nil
}

func (s *ExperienceService) view(name string, exp domain.EngineerExperience, written bool) *ExperienceView {
	view := &ExperienceView{
		Email:         exp.Email,
		Name:          name,
		Experience:    exp.Experience,
		Level:         exp.Level,
		TicketsSolved: exp.TicketsSolved,
		Written:       written,
	}
	if next, ok := s.table.NextLevelAt(exp.Experience); ok {
		view.NextLevelAt = &next
	}
	return view
}
