// internal/domain/message.go
package domain

import "time"

// ChatMessage is one immutable message within a consultation, ordered by
// arrival time. Messages are persisted before they are relayed.
type ChatMessage struct {
	ID             int64     `db:"id" json:"id"`
	ConsultationID int64     `db:"consultation_id" json:"consultation_id"`
	SenderID       int64     `db:"sender_id" json:"sender_id"`
	Content        string    `db:"message" json:"content"`
	Timestamp      time.Time `db:"timestamp" json:"timestamp"`
}

// NewChatMessage creates a new ChatMessage stamped with the current time.
func NewChatMessage(consultationID, senderID int64, content string) *ChatMessage {
	return &ChatMessage{
		ConsultationID: consultationID,
		SenderID:       senderID,
		Content:        content,
		Timestamp:      time.Now().UTC(),
	}
}
