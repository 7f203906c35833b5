// internal/domain/wallet.go
package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// Wallet holds a user's prepaid balance. There is exactly one wallet per
// user and the balance never goes negative: debits are rejected up front.
type Wallet struct {
	UserID    int64           `db:"user_id" json:"user_id"` // Primary key, one wallet per user
	Balance   decimal.Decimal `db:"balance" json:"balance"` // NUMERIC(10, 2) in DB
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// NewWallet creates a new Wallet with a zero balance.
func NewWallet(userID int64) *Wallet {
	return &Wallet{
		UserID:    userID,
		Balance:   decimal.Zero,
		UpdatedAt: time.Now().UTC(),
	}
}
