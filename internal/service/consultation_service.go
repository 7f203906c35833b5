// internal/service/consultation_service.go
package service

import (
	"context"
	"fmt"

	"astrochat/internal/domain"
	"astrochat/internal/repository"
	"astrochat/internal/util"
	"astrochat/pkg/db"
)

// ConsultationService defines the request/response surface around
// consultations: creation and participant-scoped reads. The live session
// flow itself goes through SessionService.
type ConsultationService interface {
	// RequestConsultation creates a new consultation in REQUESTED state with
	// the rate snapshotted from the astrologer's current per-minute fee.
	RequestConsultation(ctx context.Context, seekerID, astrologerID int64, consultationType domain.ConsultationType) (*domain.Consultation, error)
	// History lists the caller's consultations, newest first.
	History(ctx context.Context, userID int64, role domain.UserRole) ([]domain.Consultation, error)
	// GetConsultation fetches one consultation; only participants may read it.
	GetConsultation(ctx context.Context, userID, id int64) (*domain.Consultation, error)
	// Messages returns the ordered chat history of a consultation; only
	// participants may read it.
	Messages(ctx context.Context, userID, consultationID int64) ([]domain.ChatMessage, error)
}

// consultationService implements the ConsultationService interface.
type consultationService struct {
	dbBeginner       db.DBTxBeginner
	dbExecutor       repository.DBExecutor
	consultationRepo repository.ConsultationRepository
	messageRepo      repository.MessageRepository
	userRepo         repository.UserRepository
	beginTx          db.BeginTxFunc
	commitTx         db.CommitTxFunc
	rollbackTx       db.RollbackTxFunc
}

// NewConsultationService creates a new instance of ConsultationService.
func NewConsultationService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	consultationRepo repository.ConsultationRepository,
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) ConsultationService {
	return &consultationService{
		dbBeginner:       dbBeginner,
		dbExecutor:       dbExecutor,
		consultationRepo: consultationRepo,
		messageRepo:      messageRepo,
		userRepo:         userRepo,
		beginTx:          beginTx,
		commitTx:         commitTx,
		rollbackTx:       rollbackTx,
	}
}

// RequestConsultation snapshots the astrologer's fee and creates the
// consultation inside one transaction, so the stored rate is exactly the fee
// read.
func (s *consultationService) RequestConsultation(ctx context.Context, seekerID, astrologerID int64, consultationType domain.ConsultationType) (*domain.Consultation, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("request consultation: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("request consultation: transaction controller does not implement DBExecutor")
	}

	rate, err := s.userRepo.GetAstrologerRate(ctx, txExecutor, astrologerID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, fmt.Errorf("request consultation: astrologer %d: %w", astrologerID, util.ErrUserNotFound)
		}
		return nil, fmt.Errorf("request consultation: failed to get astrologer rate: %w", err)
	}

	consultation := domain.NewConsultation(seekerID, astrologerID, consultationType, rate)
	if err := s.consultationRepo.CreateConsultation(ctx, txExecutor, consultation); err != nil {
		return nil, fmt.Errorf("request consultation: failed to create consultation: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("request consultation: failed to commit transaction: %w", err)
	}

	return consultation, nil
}

func (s *consultationService) History(ctx context.Context, userID int64, role domain.UserRole) ([]domain.Consultation, error) {
	consultations, err := s.consultationRepo.ListConsultationsByParticipant(ctx, s.dbExecutor, userID, role)
	if err != nil {
		return nil, fmt.Errorf("consultation history: %w", err)
	}
	return consultations, nil
}

func (s *consultationService) GetConsultation(ctx context.Context, userID, id int64) (*domain.Consultation, error) {
	consultation, err := s.consultationRepo.GetConsultationByID(ctx, s.dbExecutor, id)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrConsultationNotFound
		}
		return nil, fmt.Errorf("get consultation %d: %w", id, err)
	}
	if !consultation.IsParticipant(userID) {
		return nil, util.ErrForbidden
	}
	return consultation, nil
}

func (s *consultationService) Messages(ctx context.Context, userID, consultationID int64) ([]domain.ChatMessage, error) {
	if _, err := s.GetConsultation(ctx, userID, consultationID); err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.GetMessagesByConsultationID(ctx, s.dbExecutor, consultationID)
	if err != nil {
		return nil, fmt.Errorf("consultation messages: %w", err)
	}
	return messages, nil
}
