package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wadjakorntonsri/birthday-admin/pkg/core/domain"
	"github.com/wadjakorntonsri/birthday-admin/pkg/ports"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for stored password hashes.
const BcryptCost = 12

type AuthService struct {
	users  ports.UserRepository
	logger *zap.Logger
	cost   int
}

func NewAuthService(users ports.UserRepository, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:  users,
		logger: logger.With(zap.String("component", "auth_service")),
		cost:   BcryptCost,
	}
}

// Authenticate checks a username and password. Unknown users and wrong
// passwords both yield domain.ErrUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.users.GetUser(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		s.logger.Error("failed to load user", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

// SetPassword creates the user or replaces its password hash.
func (s *AuthService) SetPassword(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username is required")
	}
	if password == "" {
		return errors.New("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.SaveUser(ctx, &domain.User{Username: username, PasswordHash: string(hash)})
}

// Ensure interface compliance
var _ ports.AuthService = (*AuthService)(nil)
