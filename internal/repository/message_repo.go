// internal/repository/message_repo.go
package repository

import (
	"context"

	"astrochat/internal/domain"
)

// MessageRepository defines the interface for chat message operations.
type MessageRepository interface {
	// CreateMessage appends a new chat message using the provided DBExecutor.
	CreateMessage(ctx context.Context, q DBExecutor, message *domain.ChatMessage) error
	// GetMessagesByConsultationID retrieves the full message history of a
	// consultation, ordered by arrival.
	GetMessagesByConsultationID(ctx context.Context, q DBExecutor, consultationID int64) ([]domain.ChatMessage, error)
}
