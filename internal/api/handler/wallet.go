// internal/api/handler/wallet.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"astrochat/internal/api/types"
	"astrochat/internal/domain"
	"astrochat/internal/service"
	"astrochat/internal/util"
)

// WalletHandler handles HTTP requests related to wallet operations.
type WalletHandler struct {
	service service.WalletService
	logger  *slog.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(svc service.WalletService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{
		service: svc,
		logger:  logger,
	}
}

// DepositRequest represents the request body for a wallet deposit.
type DepositRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	ReferenceID *string         `json:"reference_id"`
}

// Deposit handles crediting the caller's wallet.
// POST /wallet/deposit
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		respondWithJSON(w, h.logger, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	var req DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	if req.Amount.IsNegative() || req.Amount.IsZero() {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	wallet, transaction, err := h.service.Deposit(r.Context(), identity.UserID, req.Amount, req.ReferenceID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"message":        "Deposit successful",
		"new_balance":    wallet.Balance,
		"transaction_id": transaction.ID,
	})
}

// GetBalance handles fetching the caller's wallet.
// GET /wallet
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		respondWithJSON(w, h.logger, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	wallet, err := h.service.GetBalance(r.Context(), identity.UserID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, wallet)
}

// GetTransactionHistory handles fetching the caller's paginated ledger.
// GET /wallet/transactions?limit=&offset=
func (h *WalletHandler) GetTransactionHistory(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		respondWithJSON(w, h.logger, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 || parsed > 100 {
			respondWithError(w, h.logger, util.ErrInvalidInput)
			return
		}
		limit = parsed
	}
	offset := 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		parsed, err := strconv.Atoi(offsetStr)
		if err != nil || parsed < 0 {
			respondWithError(w, h.logger, util.ErrInvalidInput)
			return
		}
		offset = parsed
	}

	transactions, totalCount, err := h.service.GetTransactionHistory(r.Context(), identity.UserID, limit, offset)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, types.PaginatedResponse[domain.WalletTransaction]{
		Data:       transactions,
		Limit:      limit,
		Offset:     offset,
		TotalCount: totalCount,
	})
}
