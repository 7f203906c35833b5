// internal/repository/postgres/message_pg.go
package postgres

import (
	"context"
	"fmt"

	"astrochat/internal/domain"
	"astrochat/internal/repository"

	"github.com/jmoiron/sqlx"
)

// MessageRepository implements repository.MessageRepository for PostgreSQL.
type MessageRepository struct {
	// Stateless; methods receive a DBExecutor directly
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(db *sqlx.DB) repository.MessageRepository {
	return &MessageRepository{}
}

// CreateMessage appends a new chat message using the provided DBExecutor.
func (r *MessageRepository) CreateMessage(ctx context.Context, q repository.DBExecutor, message *domain.ChatMessage) error {
	query := `INSERT INTO chat_messages (consultation_id, sender_id, message, timestamp)
              VALUES ($1, $2, $3, $4) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		message.ConsultationID,
		message.SenderID,
		message.Content,
		message.Timestamp,
	).Scan(&message.ID)
	if err != nil {
		return fmt.Errorf("failed to create chat message: %w", err)
	}
	return nil
}

// GetMessagesByConsultationID retrieves the message history of a consultation,
// ordered by arrival.
func (r *MessageRepository) GetMessagesByConsultationID(ctx context.Context, q repository.DBExecutor, consultationID int64) ([]domain.ChatMessage, error) {
	messages := []domain.ChatMessage{}
	query := `SELECT id, consultation_id, sender_id, message, timestamp
              FROM chat_messages
              WHERE consultation_id = $1
              ORDER BY timestamp ASC, id ASC`
	if err := q.SelectContext(ctx, &messages, query, consultationID); err != nil {
		return nil, fmt.Errorf("failed to fetch messages for consultation %d: %w", consultationID, err)
	}
	return messages, nil
}
