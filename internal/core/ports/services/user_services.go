package services

import (
	"context"

	"github.com/dairybooks/dairy_books_app/internal/core/domain"
	"github.com/dairybooks/dairy_books_app/internal/dto"
)

// UserSvcFacade defines the service operations on users.
type UserSvcFacade interface {
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error)
}
