// internal/repository/wallet_repo.go
package repository

import (
	"context"

	"astrochat/internal/domain"

	"github.com/shopspring/decimal"
)

// WalletRepository defines the interface for wallet data operations.
type WalletRepository interface {
	// CreateWallet adds a new wallet using the provided DBExecutor.
	CreateWallet(ctx context.Context, q DBExecutor, wallet *domain.Wallet) error
	// GetWalletByUserID retrieves a user's wallet using the provided DBExecutor.
	GetWalletByUserID(ctx context.Context, q DBExecutor, userID int64) (*domain.Wallet, error)
	// UpdateWalletBalance applies a signed delta to the wallet balance.
	UpdateWalletBalance(ctx context.Context, q DBExecutor, userID int64, amount decimal.Decimal) error
}
