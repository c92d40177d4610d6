package services

import (
	"context"

	"github.com/dairybooks/dairy_books_app/internal/dto"
)

// AuthSvcFacade defines authentication operations.
type AuthSvcFacade interface {
	// Login verifies the credentials and returns a signed JWT for the user.
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
}
