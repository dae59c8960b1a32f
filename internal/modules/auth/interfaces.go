package auth

import (
	"context"

	"mentorhub/internal/domain"
)

// UserRepository defines the storage operations the auth service needs.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ListMentors(ctx context.Context, maxHourlyRate int64) ([]domain.User, error)
}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	GenerateToken(userID int64, role string) (string, error)
}
