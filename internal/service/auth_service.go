package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/parking-pilot/internal/auth"
	"github.com/spec-kit/parking-pilot/internal/config"
	"github.com/spec-kit/parking-pilot/internal/domain"
	"github.com/spec-kit/parking-pilot/internal/events"
	"github.com/spec-kit/parking-pilot/internal/notification"
	"github.com/spec-kit/parking-pilot/internal/repository"
	apperrors "github.com/spec-kit/parking-pilot/pkg/util"
)

// AuthService coordinates registration, login and the password reset
// lifecycle.
type AuthService struct {
	accounts   repository.AccountRepository
	tokenMgr   *auth.TokenManager
	sender     notification.Sender
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
	sessionTTL time.Duration
	rememberTTL time.Duration
	resetTTL   time.Duration
	now        func() time.Time
}

// AuthDependencies encapsulates collaborator requirements for the service.
type AuthDependencies struct {
	AccountRepo repository.AccountRepository
	Sender      notification.Sender
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		accounts:    deps.AccountRepo,
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret),
		sender:      deps.Sender,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		bcryptCost:  cfg.Auth.BcryptCost,
		sessionTTL:  cfg.Auth.SessionTokenTTL(),
		rememberTTL: cfg.Auth.RememberTokenTTL(),
		resetTTL:    cfg.Auth.ResetTokenTTL(),
		now:         time.Now,
	}
}

// RegisterInput carries the registration payload.
type RegisterInput struct {
	Username          string
	Email             string
	Password          string
	PhoneNumber       *string
	EmployeeStudentID *string
}

// Register creates a new account and issues a session token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.Account, string, time.Time, error) {
	if _, err := s.accounts.GetByEmailOrUsername(ctx, in.Email, in.Username); err == nil {
		return nil, "", time.Time{}, apperrors.NewDuplicateAccount()
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	account := &domain.Account{
		Username:          in.Username,
		Email:             in.Email,
		PasswordHash:      hash,
		Role:              domain.RoleUser,
		PhoneNumber:       in.PhoneNumber,
		EmployeeStudentID: in.EmployeeStudentID,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.Generate(account, s.sessionTTL)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	s.publish(ctx, events.EventAccountRegistered, account.ID, events.AccountRegisteredPayload{
		Username: account.Username,
		Email:    account.Email,
	})
	return account, token, exp, nil
}

// Login authenticates by email and password. An unknown account and a wrong
// password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string, rememberMe bool) (*domain.Account, string, time.Time, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
		}
		return nil, "", time.Time{}, err
	}
	if !auth.VerifyPassword(account.PasswordHash, password) {
		return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
	}

	ttl := s.sessionTTL
	if rememberMe {
		ttl = s.rememberTTL
	}
	token, exp, err := s.tokenMgr.Generate(account, ttl)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return account, token, exp, nil
}

// Profile loads the account behind a set of verified claims.
func (s *AuthService) Profile(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("account", nil)
		}
		return nil, err
	}
	return account, nil
}

// ForgotPassword stores a reset token and emails a reset link. It returns
// nil whether or not the email belongs to an account, so the caller's
// response cannot reveal account existence. Delivery trouble is logged, not
// surfaced, for the same reason.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	token := uuid.NewString()
	expiry := s.now().Add(s.resetTTL)
	if err := s.accounts.SetResetToken(ctx, account.ID, token, expiry); err != nil {
		return err
	}

	body := fmt.Sprintf("Use this token to reset your parking pilot password: %s\nIt expires in %d minutes.",
		token, int(s.resetTTL.Minutes()))
	if err := s.sender.SendEmail(ctx, account.Email, "Parking Pilot - Password Reset", body); err != nil {
		s.logger.Warn("password reset email delivery failed", zap.Error(err))
	}

	s.publish(ctx, events.EventPasswordResetRequested, account.ID, events.PasswordResetRequestedPayload{Email: account.Email})
	return nil
}

// ResetPassword consumes a reset token and installs the new password hash.
// The token fields are cleared in the same statement as the hash update.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	account, err := s.accounts.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewForbidden("invalid or expired reset token")
		}
		return err
	}
	if account.ResetTokenExpiry == nil || s.now().After(*account.ResetTokenExpiry) {
		return apperrors.NewForbidden("invalid or expired reset token")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.accounts.ClearResetToken(ctx, account.ID, hash); err != nil {
		return err
	}

	s.publish(ctx, events.EventPasswordResetCompleted, account.ID, nil)
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, accountID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		AccountID: accountID,
		Timestamp: s.now(),
		Payload:   payload,
	})
}
