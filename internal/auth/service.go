package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/redmonkez12/users-api/internal/logging"
	"github.com/redmonkez12/users-api/internal/user"
)

const DefaultTokenDuration = time.Hour

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrIncorrectPassword = errors.New("incorrect password")
)

var tracer = otel.Tracer("github.com/redmonkez12/users-api/internal/auth")

// UserFinder looks users up and checks their passwords.
// *user.Service satisfies it.
type UserFinder interface {
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	VerifyPassword(u *user.User, password string) bool
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// Service handles authentication business logic
type Service struct {
	users         UserFinder
	tokenService  TokenService
	logger        *logging.Logger
	tokenDuration time.Duration
}

func NewService(users UserFinder, tokenService TokenService, logger *logging.Logger, tokenDuration time.Duration) *Service {
	if tokenDuration <= 0 {
		tokenDuration = DefaultTokenDuration
	}
	return &Service{
		users:         users,
		tokenService:  tokenService,
		logger:        logger,
		tokenDuration: tokenDuration,
	}
}

// Login authenticates a user and returns a signed access token
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	ctx, span := tracer.Start(ctx, "auth.Login")
	defer span.End()

	existingUser, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.users.VerifyPassword(existingUser, password) {
		return nil, ErrIncorrectPassword
	}

	token, err := s.tokenService.CreateToken(existingUser.ID, existingUser.Email, s.tokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	span.SetAttributes(attribute.Int64("user.id", existingUser.ID))

	return &LoginResult{
		Token: token,
		User:  existingUser,
	}, nil
}
