// internal/service/session_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"astrochat/internal/domain"
	"astrochat/internal/util"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func activeConsultation(id int64, rate, totalCost int64, durationSeconds int64) *domain.Consultation {
	return &domain.Consultation{
		ID:              id,
		SeekerID:        1,
		AstrologerID:    2,
		Type:            domain.ConsultationTypeChat,
		Status:          domain.ConsultationStatusActive,
		DurationSeconds: durationSeconds,
		RatePerMin:      decimal.NewFromInt(rate),
		TotalCost:       decimal.NewFromInt(totalCost),
	}
}

func newSessionServiceForTest(
	consultationRepo *MockConsultationRepository,
	walletRepo *MockWalletRepository,
	transactionRepo *MockTransactionRepository,
	messageRepo *MockMessageRepository,
	userRepo *MockUserRepository,
	controller *MockTxController,
	beginErr error,
) SessionService {
	beginTx, commitTx, rollbackTx := newTxFuncs(controller, beginErr)
	return NewSessionService(
		nil, // dbBeginner is unused with injected tx funcs
		new(MockDBExecutor),
		consultationRepo,
		walletRepo,
		transactionRepo,
		messageRepo,
		userRepo,
		beginTx,
		commitTx,
		rollbackTx,
	)
}

func TestChargeMinuteApplied(t *testing.T) {
	consultationRepo := new(MockConsultationRepository)
	walletRepo := new(MockWalletRepository)
	transactionRepo := new(MockTransactionRepository)
	controller := new(MockTxController)

	consultation := activeConsultation(7, 10, 10, 60)
	wallet := &domain.Wallet{UserID: 1, Balance: decimal.NewFromInt(15)}

	consultationRepo.On("GetConsultationByID", mock.Anything, controller, int64(7)).Return(consultation, nil)
	walletRepo.On("GetWalletByUserID", mock.Anything, controller, int64(1)).Return(wallet, nil)
	transactionRepo.On("CreateTransaction", mock.Anything, controller, mock.MatchedBy(func(entry *domain.WalletTransaction) bool {
		return entry.UserID == 1 &&
			entry.Amount.Equal(decimal.NewFromInt(-10)) &&
			entry.Type == domain.TransactionTypeChatDeduction &&
			entry.ReferenceID != nil && *entry.ReferenceID == "7"
	})).Return(nil)
	walletRepo.On("UpdateWalletBalance", mock.Anything, controller, int64(1), decimal.NewFromInt(-10)).Return(nil)
	consultationRepo.On("AddBilledMinute", mock.Anything, controller, int64(7), int64(60), decimal.NewFromInt(10)).Return(nil)
	controller.On("Commit").Return(nil)
	controller.On("Rollback").Return(nil)

	svc := newSessionServiceForTest(consultationRepo, walletRepo, transactionRepo, new(MockMessageRepository), new(MockUserRepository), controller, nil)

	result, err := svc.ChargeMinute(context.Background(), 7)

	assert.NoError(t, err)
	assert.Equal(t, ChargeApplied, result.Outcome)
	assert.True(t, result.Balance.Equal(decimal.NewFromInt(5)), "balance should drop by one minute's rate")
	assert.True(t, result.Spent.Equal(decimal.NewFromInt(20)), "spent should grow by one minute's rate")
	consultationRepo.AssertExpectations(t)
	walletRepo.AssertExpectations(t)
	transactionRepo.AssertExpectations(t)
	controller.AssertExpectations(t)
}

func TestChargeMinuteInsufficientBalance(t *testing.T) {
	consultationRepo := new(MockConsultationRepository)
	walletRepo := new(MockWalletRepository)
	transactionRepo := new(MockTransactionRepository)
	controller := new(MockTxController)

	consultation := activeConsultation(7, 10, 20, 120)
	wallet := &domain.Wallet{UserID: 1, Balance: decimal.NewFromInt(5)}

	consultationRepo.On("GetConsultationByID", mock.Anything, controller, int64(7)).Return(consultation, nil)
	walletRepo.On("GetWalletByUserID", mock.Anything, controller, int64(1)).Return(wallet, nil)
	consultationRepo.On("UpdateStatusIf", mock.Anything, controller, int64(7),
		domain.ConsultationStatusActive, domain.ConsultationStatusAutoEnded, (*time.Time)(nil), mock.AnythingOfType("*time.Time")).Return(true, nil)
	controller.On("Commit").Return(nil)
	controller.On("Rollback").Return(nil)

	svc := newSessionServiceForTest(consultationRepo, walletRepo, transactionRepo, new(MockMessageRepository), new(MockUserRepository), controller, nil)

	result, err := svc.ChargeMinute(context.Background(), 7)

	assert.NoError(t, err)
	assert.Equal(t, ChargeEnded, result.Outcome)
	assert.True(t, result.Balance.Equal(decimal.NewFromInt(5)))
	transactionRepo.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
	walletRepo.AssertNotCalled(t, "UpdateWalletBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	consultationRepo.AssertExpectations(t)
}

func TestChargeMinuteStopsWhenNotActive(t *testing.T) {
	consultationRepo := new(MockConsultationRepository)
	walletRepo := new(MockWalletRepository)
	controller := new(MockTxController)

	consultation := activeConsultation(7, 10, 20, 120)
	consultation.Status = domain.ConsultationStatusPaused

	consultationRepo.On("GetConsultationByID", mock.Anything, controller, int64(7)).Return(consultation, nil)
	controller.On("Rollback").Return(nil)

	svc := newSessionServiceForTest(consultationRepo, walletRepo, new(MockTransactionRepository), new(MockMessageRepository), new(MockUserRepository), controller, nil)

	result, err := svc.ChargeMinute(context.Background(), 7)

	assert.NoError(t, err)
	assert.Equal(t, ChargeStopped, result.Outcome)
	walletRepo.AssertNotCalled(t, "GetWalletByUserID", mock.Anything, mock.Anything, mock.Anything)
}

func TestChargeMinuteStoreUnavailable(t *testing.T) {
	svc := newSessionServiceForTest(new(MockConsultationRepository), new(MockWalletRepository),
		new(MockTransactionRepository), new(MockMessageRepository), new(MockUserRepository),
		nil, assert.AnError)

	_, err := svc.ChargeMinute(context.Background(), 7)

	assert.Error(t, err)
	assert.True(t, util.IsError(err, util.ErrStoreUnavailable), "begin failure must be marked fatal for the billing process")
}

// TestChargeMinuteDrainSequence walks a wallet from 25 down to auto-end at a
// rate of 10 per minute: 25 -> 15 -> 5, then the third cycle ends the
// consultation without a further debit.
func TestChargeMinuteDrainSequence(t *testing.T) {
	consultationRepo := new(MockConsultationRepository)
	walletRepo := new(MockWalletRepository)
	transactionRepo := new(MockTransactionRepository)
	controller := new(MockTxController)

	balances := []int64{25, 15, 5}
	for i, balance := range balances {
		consultationRepo.On("GetConsultationByID", mock.Anything, controller, int64(7)).
			Return(activeConsultation(7, 10, int64(i)*10, int64(i)*60), nil).Once()
		walletRepo.On("GetWalletByUserID", mock.Anything, controller, int64(1)).
			Return(&domain.Wallet{UserID: 1, Balance: decimal.NewFromInt(balance)}, nil).Once()
	}
	transactionRepo.On("CreateTransaction", mock.Anything, controller, mock.Anything).Return(nil).Twice()
	walletRepo.On("UpdateWalletBalance", mock.Anything, controller, int64(1), decimal.NewFromInt(-10)).Return(nil).Twice()
	consultationRepo.On("AddBilledMinute", mock.Anything, controller, int64(7), int64(60), decimal.NewFromInt(10)).Return(nil).Twice()
	consultationRepo.On("UpdateStatusIf", mock.Anything, controller, int64(7),
		domain.ConsultationStatusActive, domain.ConsultationStatusAutoEnded, (*time.Time)(nil), mock.AnythingOfType("*time.Time")).Return(true, nil).Once()
	controller.On("Commit").Return(nil)
	controller.On("Rollback").Return(nil)

	svc := newSessionServiceForTest(consultationRepo, walletRepo, transactionRepo, new(MockMessageRepository), new(MockUserRepository), controller, nil)

	first, err := svc.ChargeMinute(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, ChargeApplied, first.Outcome)
	assert.True(t, first.Balance.Equal(decimal.NewFromInt(15)))
	assert.True(t, first.Spent.Equal(decimal.NewFromInt(10)))

	second, err := svc.ChargeMinute(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, ChargeApplied, second.Outcome)
	assert.True(t, second.Balance.Equal(decimal.NewFromInt(5)))
	assert.True(t, second.Spent.Equal(decimal.NewFromInt(20)))

	third, err := svc.ChargeMinute(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, ChargeEnded, third.Outcome)

	consultationRepo.AssertExpectations(t)
	walletRepo.AssertExpectations(t)
	transactionRepo.AssertExpectations(t)
}

// TestStatusWrappersFollowTransitionTable pins every status wrapper to its
// edge: each one must reach the repository compare-and-set with exactly the
// from/to pair the transition table allows for it.
func TestStatusWrappersFollowTransitionTable(t *testing.T) {
	consultationRepo := new(MockConsultationRepository)

	consultationRepo.On("UpdateStatusIf", mock.Anything, mock.Anything, int64(7),
		domain.ConsultationStatusRequested, domain.ConsultationStatusAccepted,
		(*time.Time)(nil), (*time.Time)(nil)).Return(true, nil).Once()
	consultationRepo.On("UpdateStatusIf", mock.Anything, mock.Anything, int64(7),
		domain.ConsultationStatusAccepted, domain.ConsultationStatusActive,
		mock.AnythingOfType("*time.Time"), (*time.Time)(nil)).Return(true, nil).Once()
	consultationRepo.On("UpdateStatusIf", mock.Anything, mock.Anything, int64(7),
		domain.ConsultationStatusActive, domain.ConsultationStatusPaused,
		(*time.Time)(nil), (*time.Time)(nil)).Return(true, nil).Once()
	consultationRepo.On("UpdateStatusIf", mock.Anything, mock.Anything, int64(7),
		domain.ConsultationStatusActive, domain.ConsultationStatusCompleted,
		(*time.Time)(nil), mock.AnythingOfType("*time.Time")).Return(true, nil).Once()

	svc := newSessionServiceForTest(consultationRepo, new(MockWalletRepository),
		new(MockTransactionRepository), new(MockMessageRepository), new(MockUserRepository),
		new(MockTxController), nil)

	ctx := context.Background()
	for name, apply := range map[string]func() (bool, error){
		"accept":   func() (bool, error) { return svc.AcceptIfRequested(ctx, 7) },
		"activate": func() (bool, error) { return svc.ActivateIfAccepted(ctx, 7) },
		"pause":    func() (bool, error) { return svc.PauseIfActive(ctx, 7) },
		"complete": func() (bool, error) { return svc.CompleteIfActive(ctx, 7) },
	} {
		applied, err := apply()
		assert.NoError(t, err, name)
		assert.True(t, applied, name)
	}

	consultationRepo.AssertExpectations(t)
}

func TestSaveMessagePersistsBeforeReturning(t *testing.T) {
	messageRepo := new(MockMessageRepository)
	messageRepo.On("CreateMessage", mock.Anything, mock.Anything, mock.MatchedBy(func(message *domain.ChatMessage) bool {
		return message.ConsultationID == 7 && message.SenderID == 2 && message.Content == "hello"
	})).Return(nil)

	svc := newSessionServiceForTest(new(MockConsultationRepository), new(MockWalletRepository),
		new(MockTransactionRepository), messageRepo, new(MockUserRepository), new(MockTxController), nil)

	message, err := svc.SaveMessage(context.Background(), 7, 2, "hello")

	assert.NoError(t, err)
	assert.Equal(t, "hello", message.Content)
	messageRepo.AssertExpectations(t)
}
