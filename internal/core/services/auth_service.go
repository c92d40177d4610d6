package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/dairybooks/dairy_books_app/internal/apperrors"
	portsrepo "github.com/dairybooks/dairy_books_app/internal/core/ports/repositories"
	portssvc "github.com/dairybooks/dairy_books_app/internal/core/ports/services"
	"github.com/dairybooks/dairy_books_app/internal/dto"
	"github.com/dairybooks/dairy_books_app/internal/middleware"
)

// ErrInvalidCredentials is returned when the username or password is wrong.
// It deliberately does not distinguish the two cases.
var ErrInvalidCredentials = errors.New("invalid username or password")

// authService verifies credentials and issues JWTs.
type authService struct {
	userRepo  portsrepo.UserRepositoryFacade
	jwtSecret string
	jwtExpiry time.Duration
	jwtIssuer string
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo portsrepo.UserRepositoryFacade, jwtSecret string, jwtExpiry time.Duration, jwtIssuer string) portssvc.AuthSvcFacade {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
		jwtIssuer: jwtIssuer,
	}
}

var _ portssvc.AuthSvcFacade = (*authService)(nil)

// Login verifies the credentials and returns a signed JWT for the user.
// Implements portssvc.AuthSvcFacade
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Login attempt for unknown username", slog.String("username", req.Username))
			return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, apperrors.ErrUnauthorized)
		}
		logger.Error("Failed to look up user for login", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logger.Warn("Login attempt with wrong password", slog.String("user_id", user.UserID))
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, apperrors.ErrUnauthorized)
	}

	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   user.UserID,
		Issuer:    s.jwtIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiry)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		logger.Error("Failed to sign JWT", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to sign token: %w", apperrors.ErrInternal)
	}

	logger.Info("User logged in", slog.String("user_id", user.UserID))
	return &dto.LoginResponse{
		Token: signed,
		User:  dto.ToUserResponse(user),
	}, nil
}
