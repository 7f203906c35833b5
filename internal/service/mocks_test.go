// internal/service/mocks_test.go
package service

import (
	"context"
	"database/sql"
	"time"

	"astrochat/internal/domain"
	"astrochat/internal/repository"
	"astrochat/pkg/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockDBExecutor is a mock implementation of repository.DBExecutor.
type MockDBExecutor struct {
	mock.Mock
}

func (m *MockDBExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	argsCalled := m.Called(ctx, query, args)
	return argsCalled.Get(0).(sql.Result), argsCalled.Error(1)
}

func (m *MockDBExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	m.Called(ctx, query, args)
	return &sql.Row{}
}

// MockConsultationRepository is a mock implementation of repository.ConsultationRepository.
type MockConsultationRepository struct {
	mock.Mock
}

func (m *MockConsultationRepository) CreateConsultation(ctx context.Context, q repository.DBExecutor, consultation *domain.Consultation) error {
	args := m.Called(ctx, q, consultation)
	return args.Error(0)
}

func (m *MockConsultationRepository) GetConsultationByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Consultation, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Consultation), args.Error(1)
}

func (m *MockConsultationRepository) ListConsultationsByParticipant(ctx context.Context, q repository.DBExecutor, userID int64, role domain.UserRole) ([]domain.Consultation, error) {
	args := m.Called(ctx, q, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Consultation), args.Error(1)
}

func (m *MockConsultationRepository) UpdateStatusIf(ctx context.Context, q repository.DBExecutor, id int64, from, to domain.ConsultationStatus, startTime, endTime *time.Time) (bool, error) {
	args := m.Called(ctx, q, id, from, to, startTime, endTime)
	return args.Bool(0), args.Error(1)
}

func (m *MockConsultationRepository) AddBilledMinute(ctx context.Context, q repository.DBExecutor, id int64, seconds int64, cost decimal.Decimal) error {
	args := m.Called(ctx, q, id, seconds, cost)
	return args.Error(0)
}

// MockWalletRepository is a mock implementation of repository.WalletRepository.
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	args := m.Called(ctx, q, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) GetWalletByUserID(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Wallet, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) UpdateWalletBalance(ctx context.Context, q repository.DBExecutor, userID int64, amount decimal.Decimal) error {
	args := m.Called(ctx, q, userID, amount)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of repository.TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.WalletTransaction) error {
	args := m.Called(ctx, q, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetTransactionsByUserID(ctx context.Context, q repository.DBExecutor, userID int64, limit, offset int) ([]domain.WalletTransaction, int64, error) {
	args := m.Called(ctx, q, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.WalletTransaction), args.Get(1).(int64), args.Error(2)
}

// MockMessageRepository is a mock implementation of repository.MessageRepository.
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) CreateMessage(ctx context.Context, q repository.DBExecutor, message *domain.ChatMessage) error {
	args := m.Called(ctx, q, message)
	return args.Error(0)
}

func (m *MockMessageRepository) GetMessagesByConsultationID(ctx context.Context, q repository.DBExecutor, consultationID int64) ([]domain.ChatMessage, error) {
	args := m.Called(ctx, q, consultationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChatMessage), args.Error(1)
}

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.User, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetAstrologerRate(ctx context.Context, q repository.DBExecutor, userID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, q, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockTxController is a mock transaction controller that also satisfies
// repository.DBExecutor through the embedded MockDBExecutor, mirroring how
// *sqlx.Tx plays both roles.
type MockTxController struct {
	mock.Mock
	MockDBExecutor
}

func (m *MockTxController) Commit() error {
	args := m.Mock.Called()
	return args.Error(0)
}

func (m *MockTxController) Rollback() error {
	args := m.Mock.Called()
	return args.Error(0)
}

// newTxFuncs builds injectable transaction control functions that hand out
// the given controller, or fail to begin with beginErr.
func newTxFuncs(controller *MockTxController, beginErr error) (db.BeginTxFunc, db.CommitTxFunc, db.RollbackTxFunc) {
	begin := func(ctx context.Context, dbConn db.DBTxBeginner) (db.TxController, error) {
		if beginErr != nil {
			return nil, beginErr
		}
		return controller, nil
	}
	commit := func(tx db.TxController) error {
		return tx.Commit()
	}
	rollback := func(tx db.TxController) {
		_ = tx.Rollback()
	}
	return begin, commit, rollback
}
