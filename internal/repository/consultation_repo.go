// internal/repository/consultation_repo.go
package repository

import (
	"context"
	"time"

	"astrochat/internal/domain"

	"github.com/shopspring/decimal"
)

// ConsultationRepository defines the interface for consultation data operations.
type ConsultationRepository interface {
	// CreateConsultation adds a new consultation record using the provided DBExecutor.
	CreateConsultation(ctx context.Context, q DBExecutor, consultation *domain.Consultation) error
	// GetConsultationByID retrieves a consultation by its ID using the provided DBExecutor.
	GetConsultationByID(ctx context.Context, q DBExecutor, id int64) (*domain.Consultation, error)
	// ListConsultationsByParticipant retrieves consultations for one side of the
	// engagement, most recent first.
	ListConsultationsByParticipant(ctx context.Context, q DBExecutor, userID int64, role domain.UserRole) ([]domain.Consultation, error)
	// UpdateStatusIf atomically moves a consultation from one status to another.
	// It returns false when the row was not in the expected status, which makes
	// duplicate transition events no-ops. startTime/endTime are stamped when
	// non-nil.
	UpdateStatusIf(ctx context.Context, q DBExecutor, id int64, from, to domain.ConsultationStatus, startTime, endTime *time.Time) (bool, error)
	// AddBilledMinute increments the accumulated duration and cost after a
	// successful wallet debit.
	AddBilledMinute(ctx context.Context, q DBExecutor, id int64, seconds int64, cost decimal.Decimal) error
}
