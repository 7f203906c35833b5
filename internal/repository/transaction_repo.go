// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"astrochat/internal/domain"
)

// TransactionRepository defines the interface for wallet ledger operations.
// Ledger entries are append-only; there is no update or delete.
type TransactionRepository interface {
	// CreateTransaction appends a new ledger entry using the provided DBExecutor.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.WalletTransaction) error
	// GetTransactionsByUserID retrieves ledger history for a user, newest first,
	// along with the total entry count for pagination.
	GetTransactionsByUserID(ctx context.Context, q DBExecutor, userID int64, limit, offset int) ([]domain.WalletTransaction, int64, error)
}
