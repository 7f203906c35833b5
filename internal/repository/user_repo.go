// internal/repository/user_repo.go
package repository

import (
	"context"

	"astrochat/internal/domain"

	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// GetUserByID retrieves a user by their ID using the provided DBExecutor.
	GetUserByID(ctx context.Context, q DBExecutor, id int64) (*domain.User, error)
	// GetAstrologerRate retrieves an astrologer's current per-minute
	// consultation fee. Used once at consultation creation to snapshot the rate.
	GetAstrologerRate(ctx context.Context, q DBExecutor, userID int64) (decimal.Decimal, error)
}
