package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/validation"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// AccountService provisions users and issues bearer tokens for them.
type AccountService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	validator  *validation.Validator
	bcryptCost int
}

// RegisterInput describes a new account.
type RegisterInput struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Role      string `json:"role" validate:"required,user_role"`
}

// NewAccountService builds the service.
func NewAccountService(cfg config.AuthConfig, users repository.UserRepository, v *validation.Validator) *AccountService {
	if v == nil {
		v = validation.New()
	}
	return &AccountService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		validator:  v,
		bcryptCost: cfg.BcryptCost,
	}
}

// RegisterUser creates an account with a bcrypt password hash.
func (s *AccountService) RegisterUser(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Role = strings.TrimSpace(input.Role)
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewValidationError("validation failed", map[string]any{
			"email": "email already registered",
		})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		Role:         domain.Role(input.Role),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// IssueToken authenticates email/password and returns a signed token.
func (s *AccountService) IssueToken(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// SeededAccount is an account ensured by Seed with a token signed for it.
type SeededAccount struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Seed makes sure the configured admin and student accounts exist and signs
// a token for each. Accounts whose email is already registered are reused
// unchanged. It is meant for the in-memory store, which starts empty.
func (s *AccountService) Seed(ctx context.Context, cfg config.SeedConfig) ([]SeededAccount, error) {
	seeds := []RegisterInput{
		{FirstName: "Desk", LastName: "Admin", Email: cfg.AdminEmail, Password: cfg.AdminPassword, Role: string(domain.RoleAdmin)},
		{FirstName: "Sample", LastName: "Student", Email: cfg.StudentEmail, Password: cfg.StudentPassword, Role: string(domain.RoleStudent)},
	}

	var seeded []SeededAccount
	for _, input := range seeds {
		if strings.TrimSpace(input.Email) == "" {
			continue
		}
		user, err := s.ensureUser(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("seed %s %s: %w", input.Role, input.Email, err)
		}
		token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
		if err != nil {
			return nil, fmt.Errorf("sign token for %s: %w", user.Email, err)
		}
		seeded = append(seeded, SeededAccount{User: user, Token: token, ExpiresAt: exp})
	}
	return seeded, nil
}

func (s *AccountService) ensureUser(ctx context.Context, input RegisterInput) (*domain.User, error) {
	existing, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if input.Password == "" {
		input.Password = uuid.NewString()
	}
	return s.RegisterUser(ctx, input)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AccountService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
