// internal/domain/consultation_test.go
package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestConsultationStatusTransitions(t *testing.T) {
	testCases := []struct {
		name    string
		from    ConsultationStatus
		to      ConsultationStatus
		allowed bool
	}{
		{"requested to accepted", ConsultationStatusRequested, ConsultationStatusAccepted, true},
		{"accepted to active", ConsultationStatusAccepted, ConsultationStatusActive, true},
		{"active to paused", ConsultationStatusActive, ConsultationStatusPaused, true},
		{"active to completed", ConsultationStatusActive, ConsultationStatusCompleted, true},
		{"active to auto-ended", ConsultationStatusActive, ConsultationStatusAutoEnded, true},
		{"requested to active skips accept", ConsultationStatusRequested, ConsultationStatusActive, false},
		{"accepted to completed skips active", ConsultationStatusAccepted, ConsultationStatusCompleted, false},
		{"completed is final", ConsultationStatusCompleted, ConsultationStatusActive, false},
		{"auto-ended is final", ConsultationStatusAutoEnded, ConsultationStatusActive, false},
		{"paused cannot resume yet", ConsultationStatusPaused, ConsultationStatusActive, false},
		{"no self transition", ConsultationStatusActive, ConsultationStatusActive, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransition(tc.to))
		})
	}
}

func TestConsultationStatusIsTerminal(t *testing.T) {
	terminal := []ConsultationStatus{
		ConsultationStatusCompleted, ConsultationStatusAutoEnded,
		ConsultationStatusCancelled, ConsultationStatusRejected, ConsultationStatusMissed,
	}
	for _, status := range terminal {
		assert.True(t, status.IsTerminal(), "%s should be terminal", status)
	}

	live := []ConsultationStatus{
		ConsultationStatusRequested, ConsultationStatusAccepted,
		ConsultationStatusActive, ConsultationStatusPaused,
	}
	for _, status := range live {
		assert.False(t, status.IsTerminal(), "%s should not be terminal", status)
	}
}

func TestNewConsultationStartsRequested(t *testing.T) {
	consultation := NewConsultation(1, 2, ConsultationTypeChat, decimal.NewFromInt(10))

	assert.Equal(t, ConsultationStatusRequested, consultation.Status)
	assert.True(t, consultation.TotalCost.IsZero())
	assert.Nil(t, consultation.StartTime)
	assert.Nil(t, consultation.EndTime)
}

func TestConsultationParticipants(t *testing.T) {
	consultation := &Consultation{SeekerID: 1, AstrologerID: 2}

	assert.True(t, consultation.IsParticipant(1))
	assert.True(t, consultation.IsParticipant(2))
	assert.False(t, consultation.IsParticipant(3))

	assert.Equal(t, int64(2), consultation.OtherParticipant(1))
	assert.Equal(t, int64(1), consultation.OtherParticipant(2))
}
