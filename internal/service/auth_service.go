package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"kidsvids/internal/models"
	"kidsvids/internal/repository"
	"kidsvids/internal/security"
	"kidsvids/internal/session"
	"kidsvids/internal/validation"
)

// SignupInput is the parent registration form
type SignupInput struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	PIN      string `json:"pin"`
}

// AuthService handles parent registration and sign in
type AuthService struct {
	parents *repository.ParentRepository
	mailer  Mailer
	log     *zap.Logger
	now     func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(parents *repository.ParentRepository, mailer Mailer, log *zap.Logger) *AuthService {
	return &AuthService{
		parents: parents,
		mailer:  mailer,
		log:     log.With(zap.String("component", "auth")),
		now:     time.Now,
	}
}

// Signup creates a parent account. A failed welcome email does not fail signup.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.Parent, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	errs := validation.Errors{}
	errs.Field("full_name", validation.ValidateName(in.FullName))
	errs.Field("email", validation.ValidateEmail(in.Email))
	errs.Field("password", validation.ValidatePassword(in.Password))
	errs.Field("pin", validation.ValidatePIN(in.PIN))
	if err := errs.Err(); err != nil {
		return nil, err
	}

	exists, err := s.parents.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing parent: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	parent, err := s.parents.CreateParent(ctx, in.FullName, in.Email, passwordHash, in.PIN)
	if err != nil {
		return nil, fmt.Errorf("failed to create parent: %w", err)
	}

	if err := s.mailer.SendWelcomeEmail(ctx, parent.Email, parent.FullName); err != nil {
		s.log.Warn("failed to send welcome email", zap.Int64("parent_id", parent.ID), zap.Error(err))
	}

	s.log.Info("parent registered", zap.Int64("parent_id", parent.ID))
	return parent, nil
}

// Login checks the credentials and logs the parent into sess
func (s *AuthService) Login(ctx context.Context, sess *session.Session, email, password string) (*models.Parent, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	errs := validation.Errors{}
	errs.Check(strings.Contains(email, "@"), "email", "Enter a valid email address.")
	errs.Check(len(password) >= 6, "password", "Password must be at least 6 characters.")
	if err := errs.Err(); err != nil {
		return nil, err
	}

	parent, err := s.parents.GetParentByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get parent: %w", err)
	}
	if parent == nil || !security.CheckPassword(parent.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !parent.IsActive {
		return nil, ErrInactiveParent
	}

	if err := s.parents.UpdateLastLogin(ctx, parent.ID, s.now().UTC()); err != nil {
		return nil, err
	}
	if err := sess.LoginParent(ctx, parent.ID); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	s.log.Info("parent logged in", zap.Int64("parent_id", parent.ID))
	return parent, nil
}

// Logout clears the session in memory and in durable storage
func (s *AuthService) Logout(ctx context.Context, sess *session.Session) error {
	if err := sess.Logout(ctx); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// ResetPIN stores a new random PIN for the parent with email and mails it.
// Unknown addresses succeed silently so the endpoint does not reveal accounts.
// Without email delivery the reset is refused, and a failed send restores
// the previous PIN.
func (s *AuthService) ResetPIN(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if msg := validation.ValidateEmail(email); msg != "" {
		return validation.Errors{"email": msg}
	}
	if !s.mailer.IsEnabled() {
		return ErrEmailDisabled
	}

	parent, err := s.parents.GetParentByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to get parent: %w", err)
	}
	if parent == nil {
		s.log.Debug("PIN reset requested for unknown email")
		return nil
	}

	pin, err := security.GeneratePIN()
	if err != nil {
		return fmt.Errorf("failed to generate PIN: %w", err)
	}
	if err := s.parents.UpdatePIN(ctx, parent.ID, pin); err != nil {
		return err
	}
	if err := s.mailer.SendPINResetEmail(ctx, parent.Email, parent.FullName, pin); err != nil {
		if restoreErr := s.parents.UpdatePIN(ctx, parent.ID, parent.PIN); restoreErr != nil {
			s.log.Error("failed to restore PIN after email failure",
				zap.Int64("parent_id", parent.ID), zap.Error(restoreErr))
		}
		return fmt.Errorf("failed to send PIN reset email: %w", err)
	}

	s.log.Info("parent PIN reset", zap.Int64("parent_id", parent.ID))
	return nil
}
