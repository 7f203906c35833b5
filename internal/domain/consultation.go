// internal/domain/consultation.go
package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// ConsultationType defines the modality of a consultation.
type ConsultationType string

const (
	ConsultationTypeChat  ConsultationType = "CHAT"
	ConsultationTypeVoice ConsultationType = "VOICE"
	ConsultationTypeVideo ConsultationType = "VIDEO"
)

// ConsultationStatus defines the lifecycle state of a consultation.
type ConsultationStatus string

const (
	ConsultationStatusRequested ConsultationStatus = "REQUESTED"
	ConsultationStatusAccepted  ConsultationStatus = "ACCEPTED"
	ConsultationStatusActive    ConsultationStatus = "ACTIVE"
	ConsultationStatusPaused    ConsultationStatus = "PAUSED"
	ConsultationStatusCompleted ConsultationStatus = "COMPLETED"
	ConsultationStatusAutoEnded ConsultationStatus = "AUTO_ENDED"
	ConsultationStatusCancelled ConsultationStatus = "CANCELLED"
	ConsultationStatusRejected  ConsultationStatus = "REJECTED"
	ConsultationStatusMissed    ConsultationStatus = "MISSED"
)

// IsTerminal reports whether no further transition can leave this status.
func (s ConsultationStatus) IsTerminal() bool {
	switch s {
	case ConsultationStatusCompleted, ConsultationStatusAutoEnded,
		ConsultationStatusCancelled, ConsultationStatusRejected, ConsultationStatusMissed:
		return true
	}
	return false
}

// transitions lists the edges recognized by the session engine. Anything
// outside this table is treated as a no-op, not an error, so duplicate
// events are harmless.
var transitions = map[ConsultationStatus][]ConsultationStatus{
	ConsultationStatusRequested: {ConsultationStatusAccepted},
	ConsultationStatusAccepted:  {ConsultationStatusActive},
	ConsultationStatusActive:    {ConsultationStatusPaused, ConsultationStatusCompleted, ConsultationStatusAutoEnded},
}

// CanTransition reports whether moving from s to next follows a recognized edge.
func (s ConsultationStatus) CanTransition(next ConsultationStatus) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Consultation represents one metered engagement between a seeker and an
// astrologer. The per-minute rate is snapshotted from the astrologer's fee
// at creation and never changes afterwards.
type Consultation struct {
	ID                    int64              `db:"id" json:"id"`
	SeekerID              int64              `db:"seeker_id" json:"seeker_id"`
	AstrologerID          int64              `db:"astrologer_id" json:"astrologer_id"`
	Type                  ConsultationType   `db:"consultation_type" json:"consultation_type"`
	Status                ConsultationStatus `db:"status" json:"status"`
	StartTime             *time.Time         `db:"start_time" json:"start_time"`
	EndTime               *time.Time         `db:"end_time" json:"end_time"`
	DurationSeconds       int64              `db:"duration_seconds" json:"duration_seconds"` // Billed time, whole minutes only
	RatePerMin            decimal.Decimal    `db:"rate_per_min" json:"rate_per_min"`
	TotalCost             decimal.Decimal    `db:"total_cost" json:"total_cost"`
	DisconnectionSnapshot *string            `db:"disconnection_snapshot" json:"disconnection_snapshot"` // Opaque JSON, reserved for resume support
	CreatedAt             time.Time          `db:"created_at" json:"created_at"`
}

// NewConsultation creates a new Consultation in the REQUESTED state.
func NewConsultation(seekerID, astrologerID int64, consultationType ConsultationType, ratePerMin decimal.Decimal) *Consultation {
	return &Consultation{
		SeekerID:     seekerID,
		AstrologerID: astrologerID,
		Type:         consultationType,
		Status:       ConsultationStatusRequested,
		RatePerMin:   ratePerMin,
		TotalCost:    decimal.Zero,
		CreatedAt:    time.Now().UTC(),
	}
}

// IsParticipant reports whether the given user is the seeker or the
// astrologer of this consultation.
func (c *Consultation) IsParticipant(userID int64) bool {
	return userID == c.SeekerID || userID == c.AstrologerID
}

// OtherParticipant returns the user ID of the counterpart of the given
// participant.
func (c *Consultation) OtherParticipant(userID int64) int64 {
	if userID == c.SeekerID {
		return c.AstrologerID
	}
	return c.SeekerID
}
