package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/sfqs/ticket-system/internal/auth"
	"github.com/sfqs/ticket-system/internal/config"
	"github.com/sfqs/ticket-system/internal/domain"
	"github.com/sfqs/ticket-system/internal/events"
	"github.com/sfqs/ticket-system/internal/repository"
	apperrors "github.com/sfqs/ticket-system/pkg/util/errorutil"
)

// AuthService coordinates registration, review and login flows.
type AuthService struct {
	publisher
	users      repository.UserRepository
	sessions   repository.SessionStore
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	SessionStore repository.SessionStore
	Tokens       *auth.TokenManager
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// RegisterInput describes a registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// ReviewInput describes an approval decision on a pending account.
type ReviewInput struct {
	Approve bool
	// Role optionally overrides the requested role on approval.
	Role *domain.Role
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tokens := deps.Tokens
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.SessionSecret, cfg.SessionTTL())
	}
	return &AuthService{
		publisher:  publisher{dispatcher: deps.Dispatcher},
		users:      deps.UserRepo,
		sessions:   deps.SessionStore,
		tokenMgr:   tokens,
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
	}
}

// Register creates a pending account awaiting review.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := normalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)
	details := map[string]any{}
	if email == "" || !strings.Contains(email, "@") {
		details["email"] = "invalid"
	}
	if name == "" {
		details["name"] = "required"
	}
	if !input.Role.Assignable() || input.Role == domain.RoleAdmin {
		details["role"] = "must be one of gerente, supervisor, ingeniero"
	}
	if err := auth.ValidatePassword(input.Password); err != nil {
		details["password"] = err.Error()
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid registration", details)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
		Status:       domain.UserStatusPending,
		Level:        1,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.EventUserRegistered, user.ID, events.Actor{Email: user.Email, Role: user.Role}, nil)
	return user, nil
}

// Login verifies credentials of an active account and issues the cookie pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, auth.CookiePair, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.CookiePair{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, auth.CookiePair{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, auth.CookiePair{}, apperrors.NewUnauthorized("invalid credentials")
	}
	switch user.Status {
	case domain.UserStatusActive:
	case domain.UserStatusPending:
		return nil, auth.CookiePair{}, apperrors.NewForbidden("registration pending approval")
	default:
		return nil, auth.CookiePair{}, apperrors.NewForbidden("registration rejected")
	}
	pair, err := s.tokenMgr.Issue(user)
	if err != nil {
		return nil, auth.CookiePair{}, apperrors.NewInternalError(err)
	}
	return user, pair, nil
}

// Logout revokes the session until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, session domain.Session) error {
	if !session.Authenticated || session.ID == "" || s.sessions == nil {
		return nil
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.sessions.Revoke(ctx, session.ID, ttl); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// ListPending returns accounts awaiting review.
func (s *AuthService) ListPending(ctx context.Context, limit, offset int) ([]domain.User, error) {
	users, err := s.users.ListByStatus(ctx, domain.UserStatusPending, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// ApproveUser activates a pending account.
func (s *AuthService) ApproveUser(ctx context.Context, reviewer domain.Session, userID string, role *domain.Role) (*domain.User, error) {
	return s.review(ctx, reviewer, userID, ReviewInput{Approve: true, Role: role})
}

// RejectUser rejects a pending account.
func (s *AuthService) RejectUser(ctx context.Context, reviewer domain.Session, userID string) (*domain.User, error) {
	return s.review(ctx, reviewer, userID, ReviewInput{Approve: false})
}

func (s *AuthService) review(ctx context.Context, reviewer domain.Session, userID string, input ReviewInput) (*domain.User, error) {
	if !reviewer.EffectiveRole().Reviewer() {
		return nil, apperrors.NewForbidden("only admins and managers review registrations")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	if user.Status != domain.UserStatusPending {
		return nil, apperrors.NewConflict("user already reviewed", map[string]any{"status": user.Status})
	}

	if input.Approve {
		if input.Role != nil {
			if !input.Role.Assignable() {
				return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": *input.Role})
			}
			user.Role = *input.Role
		}
		if user.Role == domain.RoleAdmin && reviewer.EffectiveRole() != domain.RoleAdmin {
			return nil, apperrors.NewForbidden("only admins grant the admin role")
		}
		user.Status = domain.UserStatusActive
	} else {
		user.Status = domain.UserStatusRejected
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.EventUserReviewed, user.ID, events.ActorFromSession(reviewer), events.UserReviewedPayload{
		Email:    user.Email,
		Role:     user.Role,
		Status:   user.Status,
		Reviewer: reviewer.Email,
	})
	return user, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, session domain.Session, currentPassword, newPassword string) error {
	if !session.Authenticated {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := auth.ValidatePassword(newPassword); err != nil {
		return apperrors.NewValidationError("invalid password", map[string]any{"new_password": err.Error()})
	}
	user, err := s.users.GetByEmail(ctx, session.Email)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// EnsureAdmin creates the bootstrap admin when configured and missing.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, name string) error {
	email = normalizeEmail(email)
	if email == "" {
		return nil
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if err := auth.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	admin := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Status:       domain.UserStatusActive,
		Level:        1,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return err
	}
	s.logger.Info("bootstrap admin created", zap.String("email", email))
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
