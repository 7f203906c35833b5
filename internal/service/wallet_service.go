// internal/service/wallet_service.go
package service

import (
	"context"
	"fmt"

	"astrochat/internal/domain"
	"astrochat/internal/repository"
	"astrochat/internal/util"
	"astrochat/pkg/db"

	"github.com/shopspring/decimal"
)

// WalletService defines the interface for wallet-related business logic.
type WalletService interface {
	// Deposit credits a user's wallet and appends the matching ledger entry.
	Deposit(ctx context.Context, userID int64, amount decimal.Decimal, referenceID *string) (*domain.Wallet, *domain.WalletTransaction, error)
	GetBalance(ctx context.Context, userID int64) (*domain.Wallet, error)
	GetTransactionHistory(ctx context.Context, userID int64, limit, offset int) ([]domain.WalletTransaction, int64, error)
}

// walletService implements the WalletService interface.
type walletService struct {
	dbBeginner      db.DBTxBeginner
	dbExecutor      repository.DBExecutor
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc
}

// NewWalletService creates a new instance of WalletService.
func NewWalletService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) WalletService {
	return &walletService{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
	}
}

// Deposit adds money to a user's wallet. The ledger entry and the balance
// credit commit together.
func (s *walletService) Deposit(ctx context.Context, userID int64, amount decimal.Decimal, referenceID *string) (*domain.Wallet, *domain.WalletTransaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, util.ErrInvalidInput
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, nil, fmt.Errorf("deposit: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, nil, fmt.Errorf("deposit: transaction controller does not implement DBExecutor")
	}

	if _, err := s.walletRepo.GetWalletByUserID(ctx, txExecutor, userID); err != nil {
		if !util.IsError(err, util.ErrNotFound) {
			return nil, nil, fmt.Errorf("deposit: failed to get wallet for user %d: %w", userID, err)
		}
		// First deposit: the wallet is created lazily.
		if err := s.walletRepo.CreateWallet(ctx, txExecutor, domain.NewWallet(userID)); err != nil {
			return nil, nil, fmt.Errorf("deposit: failed to create wallet for user %d: %w", userID, err)
		}
	}

	entry := domain.NewWalletTransaction(userID, amount, domain.TransactionTypeDeposit, referenceID, nil)
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, entry); err != nil {
		return nil, nil, fmt.Errorf("deposit: failed to append ledger entry: %w", err)
	}

	if err := s.walletRepo.UpdateWalletBalance(ctx, txExecutor, userID, amount); err != nil {
		return nil, nil, fmt.Errorf("deposit: failed to update wallet balance: %w", err)
	}

	updatedWallet, err := s.walletRepo.GetWalletByUserID(ctx, txExecutor, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("deposit: failed to re-fetch updated wallet for user %d: %w", userID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, nil, fmt.Errorf("deposit: failed to commit transaction: %w", err)
	}

	return updatedWallet, entry, nil
}

func (s *walletService) GetBalance(ctx context.Context, userID int64) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetWalletByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrWalletNotFound
		}
		return nil, fmt.Errorf("get balance: failed to get wallet for user %d: %w", userID, err)
	}
	return wallet, nil
}

// GetTransactionHistory retrieves a paginated ledger history for a user.
func (s *walletService) GetTransactionHistory(ctx context.Context, userID int64, limit, offset int) ([]domain.WalletTransaction, int64, error) {
	transactions, totalCount, err := s.transactionRepo.GetTransactionsByUserID(ctx, s.dbExecutor, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve transaction history: %w", err)
	}
	return transactions, totalCount, nil
}
