// internal/api/handler/consultation.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"astrochat/internal/domain"
	"astrochat/internal/service"
	"astrochat/internal/util"
)

// DefaultTimeout bounds request handling time at the router level.
const DefaultTimeout = 30 * time.Second

// ConsultationHandler handles HTTP requests around consultations.
type ConsultationHandler struct {
	service service.ConsultationService
	logger  *slog.Logger
}

// NewConsultationHandler creates a new ConsultationHandler.
func NewConsultationHandler(svc service.ConsultationService, logger *slog.Logger) *ConsultationHandler {
	return &ConsultationHandler{
		service: svc,
		logger:  logger,
	}
}

// respondWithJSON sends a JSON response.
func respondWithJSON(w http.ResponseWriter, logger *slog.Logger, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithError maps service errors to HTTP status codes.
func respondWithError(w http.ResponseWriter, logger *slog.Logger, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrNotFound),
		util.IsError(err, util.ErrConsultationNotFound),
		util.IsError(err, util.ErrWalletNotFound),
		util.IsError(err, util.ErrUserNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	case util.IsError(err, util.ErrForbidden):
		statusCode = http.StatusForbidden
		message = "Not a participant of this consultation"
	case util.IsError(err, util.ErrInsufficientFunds):
		statusCode = http.StatusPaymentRequired
		message = "Insufficient funds"
	default:
		logger.Error("Unhandled service error", "error", err)
	}

	respondWithJSON(w, logger, statusCode, map[string]string{"error": message})
}

// RequestConsultationRequest represents the request body for creating a consultation.
type RequestConsultationRequest struct {
	AstrologerID     int64                   `json:"astrologer_id"`
	ConsultationType domain.ConsultationType `json:"consultation_type"`
}

// Request handles consultation creation.
// POST /consultations
func (h *ConsultationHandler) Request(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		respondWithJSON(w, h.logger, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}
	if identity.Role != domain.UserRoleSeeker {
		respondWithJSON(w, h.logger, http.StatusBadRequest, map[string]string{"error": "only seekers can request consultations"})
		return
	}

	var req RequestConsultationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	if req.AstrologerID <= 0 {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	if req.ConsultationType == "" {
		req.ConsultationType = domain.ConsultationTypeChat
	}

	consultation, err := h.service.RequestConsultation(r.Context(), identity.UserID, req.AstrologerID, req.ConsultationType)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusCreated, consultation)
}

// History handles the role-scoped consultation listing.
// GET /consultations/history
func (h *ConsultationHandler) History(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		respondWithJSON(w, h.logger, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	consultations, err := h.service.History(r.Context(), identity.UserID, identity.Role)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, consultations)
}

// Get handles fetching one consultation.
// GET /consultations/{consultationID}
func (h *ConsultationHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		respondWithJSON(w, h.logger, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	consultationID, err := strconv.ParseInt(chi.URLParam(r, "consultationID"), 10, 64)
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	consultation, err := h.service.GetConsultation(r.Context(), identity.UserID, consultationID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, consultation)
}

// Messages handles fetching the chat history of a consultation.
// GET /consultations/{consultationID}/messages
func (h *ConsultationHandler) Messages(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		respondWithJSON(w, h.logger, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	consultationID, err := strconv.ParseInt(chi.URLParam(r, "consultationID"), 10, 64)
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	messages, err := h.service.Messages(r.Context(), identity.UserID, consultationID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, messages)
}
