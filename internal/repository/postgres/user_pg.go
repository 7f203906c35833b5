// internal/repository/postgres/user_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"astrochat/internal/domain"
	"astrochat/internal/repository"
	"astrochat/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// UserRepository implements repository.UserRepository for PostgreSQL.
type UserRepository struct {
	// Stateless; methods receive a DBExecutor directly
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &UserRepository{}
}

// GetUserByID retrieves a user by their ID using the provided DBExecutor.
func (r *UserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.User, error) {
	var user domain.User
	query := `SELECT id, phone_number, role, device_token, is_active, created_at, updated_at
              FROM users WHERE id = $1`
	err := q.GetContext(ctx, &user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}
	return &user, nil
}

// GetAstrologerRate retrieves an astrologer's current per-minute fee.
func (r *UserRepository) GetAstrologerRate(ctx context.Context, q repository.DBExecutor, userID int64) (decimal.Decimal, error) {
	var rate decimal.Decimal
	query := `SELECT consultation_fee_per_min FROM astrologer_profiles WHERE user_id = $1`
	err := q.GetContext(ctx, &rate, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return decimal.Zero, util.ErrNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to get astrologer rate for user %d: %w", userID, err)
	}
	return rate, nil
}
