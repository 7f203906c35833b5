// internal/repository/postgres/consultation_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"astrochat/internal/domain"
	"astrochat/internal/repository"
	"astrochat/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// ConsultationRepository implements repository.ConsultationRepository for PostgreSQL.
type ConsultationRepository struct {
	// Stateless; methods receive a DBExecutor directly
}

// NewConsultationRepository creates a new ConsultationRepository.
func NewConsultationRepository(db *sqlx.DB) repository.ConsultationRepository {
	return &ConsultationRepository{}
}

// CreateConsultation inserts a new consultation using the provided DBExecutor.
func (r *ConsultationRepository) CreateConsultation(ctx context.Context, q repository.DBExecutor, consultation *domain.Consultation) error {
	query := `INSERT INTO consultations (seeker_id, astrologer_id, consultation_type, status, duration_seconds, rate_per_min, total_cost, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		consultation.SeekerID,
		consultation.AstrologerID,
		consultation.Type,
		consultation.Status,
		consultation.DurationSeconds,
		consultation.RatePerMin,
		consultation.TotalCost,
		consultation.CreatedAt,
	).Scan(&consultation.ID)
	if err != nil {
		return fmt.Errorf("failed to create consultation: %w", err)
	}
	return nil
}

// GetConsultationByID retrieves a consultation by its ID using the provided DBExecutor.
func (r *ConsultationRepository) GetConsultationByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Consultation, error) {
	var consultation domain.Consultation
	query := `SELECT id, seeker_id, astrologer_id, consultation_type, status, start_time, end_time,
                     duration_seconds, rate_per_min, total_cost, disconnection_snapshot, created_at
              FROM consultations WHERE id = $1`
	err := q.GetContext(ctx, &consultation, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get consultation by ID %d: %w", id, err)
	}
	return &consultation, nil
}

// ListConsultationsByParticipant retrieves consultations for one participant side.
func (r *ConsultationRepository) ListConsultationsByParticipant(ctx context.Context, q repository.DBExecutor, userID int64, role domain.UserRole) ([]domain.Consultation, error) {
	consultations := []domain.Consultation{}
	column := "seeker_id"
	if role == domain.UserRoleAstrologer {
		column = "astrologer_id"
	}
	query := fmt.Sprintf(`SELECT id, seeker_id, astrologer_id, consultation_type, status, start_time, end_time,
                                 duration_seconds, rate_per_min, total_cost, disconnection_snapshot, created_at
                          FROM consultations WHERE %s = $1 ORDER BY created_at DESC`, column)
	if err := q.SelectContext(ctx, &consultations, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list consultations for user %d: %w", userID, err)
	}
	return consultations, nil
}

// UpdateStatusIf moves a consultation between statuses with compare-and-set
// semantics. The WHERE clause on the current status is what serializes
// concurrent duplicate events: only one caller observes rows affected = 1.
func (r *ConsultationRepository) UpdateStatusIf(ctx context.Context, q repository.DBExecutor, id int64, from, to domain.ConsultationStatus, startTime, endTime *time.Time) (bool, error) {
	query := `UPDATE consultations
              SET status = $1,
                  start_time = COALESCE($2, start_time),
                  end_time = COALESCE($3, end_time)
              WHERE id = $4 AND status = $5`
	result, err := q.ExecContext(ctx, query, to, startTime, endTime, id, from)
	if err != nil {
		return false, fmt.Errorf("failed to update status of consultation %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected for consultation %d: %w", id, err)
	}
	return rowsAffected == 1, nil
}

// AddBilledMinute increments the accumulated duration and cost of a consultation.
func (r *ConsultationRepository) AddBilledMinute(ctx context.Context, q repository.DBExecutor, id int64, seconds int64, cost decimal.Decimal) error {
	query := `UPDATE consultations
              SET duration_seconds = duration_seconds + $1,
                  total_cost = total_cost + $2
              WHERE id = $3`
	result, err := q.ExecContext(ctx, query, seconds, cost, id)
	if err != nil {
		return fmt.Errorf("failed to add billed minute to consultation %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for consultation %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no rows affected when billing consultation %d, consultation might not exist", id)
	}
	return nil
}
