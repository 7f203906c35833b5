// internal/service/session_service.go
package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"astrochat/internal/domain"
	"astrochat/internal/repository"
	"astrochat/internal/util"
	"astrochat/pkg/db"

	"github.com/shopspring/decimal"
)

// ChargeOutcome classifies the result of one billing cycle.
type ChargeOutcome int

const (
	// ChargeApplied means one minute was debited and committed.
	ChargeApplied ChargeOutcome = iota
	// ChargeEnded means the balance could not cover the next minute and the
	// consultation was moved to AUTO_ENDED.
	ChargeEnded
	// ChargeStopped means the consultation is no longer ACTIVE (or its wallet
	// is gone) and the billing process should exit without debiting.
	ChargeStopped
)

// ChargeResult carries the outcome of a billing cycle plus the wallet
// balance and accumulated cost as of the commit.
type ChargeResult struct {
	Outcome ChargeOutcome
	Balance decimal.Decimal
	Spent   decimal.Decimal
}

// SessionService exposes the store operations the session gateway and the
// billing process need. All status changes go through compare-and-set
// updates so duplicate events are idempotent.
type SessionService interface {
	GetConsultation(ctx context.Context, id int64) (*domain.Consultation, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetWallet(ctx context.Context, userID int64) (*domain.Wallet, error)
	// AcceptIfRequested applies REQUESTED -> ACCEPTED. False when the
	// consultation was not in REQUESTED.
	AcceptIfRequested(ctx context.Context, id int64) (bool, error)
	// ActivateIfAccepted applies ACCEPTED -> ACTIVE and stamps the start time.
	ActivateIfAccepted(ctx context.Context, id int64) (bool, error)
	// PauseIfActive applies ACTIVE -> PAUSED.
	PauseIfActive(ctx context.Context, id int64) (bool, error)
	// CompleteIfActive applies ACTIVE -> COMPLETED and stamps the end time.
	CompleteIfActive(ctx context.Context, id int64) (bool, error)
	// SaveMessage persists a chat message. Persistence happens before any
	// broadcast, so history reads after a relay always include the message.
	SaveMessage(ctx context.Context, consultationID, senderID int64, content string) (*domain.ChatMessage, error)
	// ChargeMinute runs one billing cycle against the seeker's wallet as a
	// single atomic store transaction.
	ChargeMinute(ctx context.Context, consultationID int64) (ChargeResult, error)
}

// sessionService implements the SessionService interface.
type sessionService struct {
	dbBeginner       db.DBTxBeginner
	dbExecutor       repository.DBExecutor
	consultationRepo repository.ConsultationRepository
	walletRepo       repository.WalletRepository
	transactionRepo  repository.TransactionRepository
	messageRepo      repository.MessageRepository
	userRepo         repository.UserRepository
	beginTx          db.BeginTxFunc
	commitTx         db.CommitTxFunc
	rollbackTx       db.RollbackTxFunc
}

// NewSessionService creates a new instance of SessionService.
func NewSessionService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	consultationRepo repository.ConsultationRepository,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) SessionService {
	return &sessionService{
		dbBeginner:       dbBeginner,
		dbExecutor:       dbExecutor,
		consultationRepo: consultationRepo,
		walletRepo:       walletRepo,
		transactionRepo:  transactionRepo,
		messageRepo:      messageRepo,
		userRepo:         userRepo,
		beginTx:          beginTx,
		commitTx:         commitTx,
		rollbackTx:       rollbackTx,
	}
}

func (s *sessionService) GetConsultation(ctx context.Context, id int64) (*domain.Consultation, error) {
	consultation, err := s.consultationRepo.GetConsultationByID(ctx, s.dbExecutor, id)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrConsultationNotFound
		}
		return nil, fmt.Errorf("get consultation %d: %w", id, err)
	}
	return consultation, nil
}

func (s *sessionService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, id)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}

func (s *sessionService) GetWallet(ctx context.Context, userID int64) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetWalletByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrWalletNotFound
		}
		return nil, fmt.Errorf("get wallet for user %d: %w", userID, err)
	}
	return wallet, nil
}

// applyTransition applies one edge of the consultation state machine. The
// edge is checked against the domain transition table first; the repository
// compare-and-set then serializes concurrent callers of a legal edge.
func (s *sessionService) applyTransition(ctx context.Context, q repository.DBExecutor, id int64, from, to domain.ConsultationStatus, startTime, endTime *time.Time) (bool, error) {
	if !from.CanTransition(to) {
		return false, nil
	}
	return s.consultationRepo.UpdateStatusIf(ctx, q, id, from, to, startTime, endTime)
}

func (s *sessionService) AcceptIfRequested(ctx context.Context, id int64) (bool, error) {
	return s.applyTransition(ctx, s.dbExecutor, id,
		domain.ConsultationStatusRequested, domain.ConsultationStatusAccepted, nil, nil)
}

func (s *sessionService) ActivateIfAccepted(ctx context.Context, id int64) (bool, error) {
	now := time.Now().UTC()
	return s.applyTransition(ctx, s.dbExecutor, id,
		domain.ConsultationStatusAccepted, domain.ConsultationStatusActive, &now, nil)
}

func (s *sessionService) PauseIfActive(ctx context.Context, id int64) (bool, error) {
	return s.applyTransition(ctx, s.dbExecutor, id,
		domain.ConsultationStatusActive, domain.ConsultationStatusPaused, nil, nil)
}

func (s *sessionService) CompleteIfActive(ctx context.Context, id int64) (bool, error) {
	now := time.Now().UTC()
	return s.applyTransition(ctx, s.dbExecutor, id,
		domain.ConsultationStatusActive, domain.ConsultationStatusCompleted, nil, &now)
}

func (s *sessionService) SaveMessage(ctx context.Context, consultationID, senderID int64, content string) (*domain.ChatMessage, error) {
	message := domain.NewChatMessage(consultationID, senderID, content)
	if err := s.messageRepo.CreateMessage(ctx, s.dbExecutor, message); err != nil {
		return nil, fmt.Errorf("save message for consultation %d: %w", consultationID, err)
	}
	return message, nil
}

// ChargeMinute deducts one minute's cost from the seeker's wallet. The
// ledger append, the balance debit and the consultation totals all commit as
// one transaction; the ledger write is issued before the balance mutation it
// reports.
func (s *sessionService) ChargeMinute(ctx context.Context, consultationID int64) (ChargeResult, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return ChargeResult{}, fmt.Errorf("charge minute: failed to begin transaction: %w: %w", util.ErrStoreUnavailable, err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return ChargeResult{}, fmt.Errorf("charge minute: transaction controller does not implement DBExecutor")
	}

	consultation, err := s.consultationRepo.GetConsultationByID(ctx, txExecutor, consultationID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return ChargeResult{Outcome: ChargeStopped}, nil
		}
		return ChargeResult{}, fmt.Errorf("charge minute: failed to get consultation %d: %w", consultationID, err)
	}
	if consultation.Status != domain.ConsultationStatusActive {
		return ChargeResult{Outcome: ChargeStopped}, nil
	}

	wallet, err := s.walletRepo.GetWalletByUserID(ctx, txExecutor, consultation.SeekerID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return ChargeResult{Outcome: ChargeStopped}, nil
		}
		return ChargeResult{}, fmt.Errorf("charge minute: failed to get wallet for seeker %d: %w", consultation.SeekerID, err)
	}

	if wallet.Balance.LessThan(consultation.RatePerMin) {
		now := time.Now().UTC()
		ended, err := s.applyTransition(ctx, txExecutor, consultationID,
			domain.ConsultationStatusActive, domain.ConsultationStatusAutoEnded, nil, &now)
		if err != nil {
			return ChargeResult{}, fmt.Errorf("charge minute: failed to auto-end consultation %d: %w", consultationID, err)
		}
		if err := s.commitTx(txController); err != nil {
			return ChargeResult{}, fmt.Errorf("charge minute: failed to commit auto-end: %w", err)
		}
		if !ended {
			return ChargeResult{Outcome: ChargeStopped}, nil
		}
		return ChargeResult{Outcome: ChargeEnded, Balance: wallet.Balance, Spent: consultation.TotalCost}, nil
	}

	referenceID := strconv.FormatInt(consultationID, 10)
	minute := consultation.DurationSeconds/60 + 1
	description := fmt.Sprintf("Chat deduction for minute %d", minute)
	entry := domain.NewWalletTransaction(consultation.SeekerID, consultation.RatePerMin.Neg(),
		domain.TransactionTypeChatDeduction, &referenceID, &description)
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, entry); err != nil {
		return ChargeResult{}, fmt.Errorf("charge minute: failed to append ledger entry: %w", err)
	}

	if err := s.walletRepo.UpdateWalletBalance(ctx, txExecutor, consultation.SeekerID, consultation.RatePerMin.Neg()); err != nil {
		return ChargeResult{}, fmt.Errorf("charge minute: failed to debit wallet: %w", err)
	}

	if err := s.consultationRepo.AddBilledMinute(ctx, txExecutor, consultationID, 60, consultation.RatePerMin); err != nil {
		return ChargeResult{}, fmt.Errorf("charge minute: failed to update consultation totals: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return ChargeResult{}, fmt.Errorf("charge minute: failed to commit transaction: %w", err)
	}

	return ChargeResult{
		Outcome: ChargeApplied,
		Balance: wallet.Balance.Sub(consultation.RatePerMin),
		Spent:   consultation.TotalCost.Add(consultation.RatePerMin),
	}, nil
}
