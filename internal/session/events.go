// internal/session/events.go
package session

import (
	"astrochat/internal/domain"

	"github.com/shopspring/decimal"
)

// EventType tags the wire events exchanged over a session connection.
type EventType string

// Client -> server events.
const (
	EventMessage EventType = "MESSAGE"
	EventEndChat EventType = "END_CHAT"
)

// Server -> client events.
const (
	EventStateSync          EventType = "STATE_SYNC"
	EventNewMessage         EventType = "NEW_MESSAGE"
	EventTimerStarted       EventType = "TIMER_STARTED"
	EventBalanceUpdate      EventType = "BALANCE_UPDATE"
	EventChatEnded          EventType = "CHAT_ENDED"
	EventConsultationPaused EventType = "CONSULTATION_PAUSED"
)

// Reason codes carried on terminal and pause events.
const (
	ReasonUserEnded              = "user_ended"
	ReasonInsufficientBalance    = "insufficient_balance"
	ReasonAstrologerDisconnected = "astrologer_disconnected"
)

// Close codes for rejected or failed connections.
const (
	CloseUnauthorized = 4003 // authentication or authorization failure
	CloseNotFound     = 4004 // consultation does not exist
	CloseInternal     = 4000 // defensive close on unexpected error
)

// ClientEvent is an inbound event from a participant.
type ClientEvent struct {
	Type    EventType `json:"type"`
	Content string    `json:"content,omitempty"`
}

// ServerEvent is an outbound event to a participant. Fields are populated
// per event type; pointers keep zero money values distinguishable from
// absent ones on the wire.
type ServerEvent struct {
	Type        EventType                 `json:"type"`
	Status      domain.ConsultationStatus `json:"status,omitempty"`
	TimerActive *bool                     `json:"timer_active,omitempty"`
	Balance     *decimal.Decimal          `json:"balance,omitempty"`
	Spent       *decimal.Decimal          `json:"spent,omitempty"`
	MessageID   int64                     `json:"id,omitempty"`
	SenderID    int64                     `json:"sender_id,omitempty"`
	Content     string                    `json:"content,omitempty"`
	Timestamp   string                    `json:"timestamp,omitempty"`
	Reason      string                    `json:"reason,omitempty"`
}

// StateSyncEvent builds the initial snapshot sent to a connecting party.
func StateSyncEvent(status domain.ConsultationStatus, timerActive bool, balance, spent decimal.Decimal) ServerEvent {
	return ServerEvent{
		Type:        EventStateSync,
		Status:      status,
		TimerActive: &timerActive,
		Balance:     &balance,
		Spent:       &spent,
	}
}

// NewMessageEvent builds the relay event for a persisted chat message.
func NewMessageEvent(message *domain.ChatMessage) ServerEvent {
	return ServerEvent{
		Type:      EventNewMessage,
		MessageID: message.ID,
		SenderID:  message.SenderID,
		Content:   message.Content,
		Timestamp: message.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

// TimerStartedEvent signals that metering has begun.
func TimerStartedEvent() ServerEvent {
	return ServerEvent{Type: EventTimerStarted}
}

// BalanceUpdateEvent reports the wallet balance and accumulated cost after a
// billing cycle.
func BalanceUpdateEvent(balance, spent decimal.Decimal) ServerEvent {
	return ServerEvent{Type: EventBalanceUpdate, Balance: &balance, Spent: &spent}
}

// ChatEndedEvent signals a terminal transition with a reason code.
func ChatEndedEvent(reason string) ServerEvent {
	return ServerEvent{Type: EventChatEnded, Reason: reason}
}

// ConsultationPausedEvent signals that the astrologer dropped while active.
func ConsultationPausedEvent(reason string) ServerEvent {
	return ServerEvent{Type: EventConsultationPaused, Reason: reason}
}
