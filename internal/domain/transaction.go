// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// TransactionType defines the type of a wallet ledger entry.
type TransactionType string

const (
	TransactionTypeDeposit       TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal    TransactionType = "WITHDRAWAL"
	TransactionTypeChatDeduction TransactionType = "CHAT_DEDUCTION"
	TransactionTypeChatRefund    TransactionType = "CHAT_REFUND"
)

// WalletTransaction is an immutable ledger entry recording one balance
// mutation. The ledger is append-only and is the system of record for
// balance reconciliation.
type WalletTransaction struct {
	ID          int64           `db:"id" json:"id"`
	UserID      int64           `db:"user_id" json:"user_id"`
	Amount      decimal.Decimal `db:"amount" json:"amount"` // Signed: positive for credit, negative for debit
	Type        TransactionType `db:"transaction_type" json:"transaction_type"`
	ReferenceID *string         `db:"reference_id" json:"reference_id"` // Consultation ID or payment gateway order ID
	Description *string         `db:"description" json:"description"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// NewWalletTransaction creates a new ledger entry.
func NewWalletTransaction(userID int64, amount decimal.Decimal, txType TransactionType, referenceID, description *string) *WalletTransaction {
	return &WalletTransaction{
		UserID:      userID,
		Amount:      amount,
		Type:        txType,
		ReferenceID: referenceID,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
}
