// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"astrochat/internal/api/handler"
	"astrochat/internal/auth"
	"astrochat/internal/session"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(
	consultationHandler *handler.ConsultationHandler,
	walletHandler *handler.WalletHandler,
	gateway *session.Gateway,
	resolver auth.Resolver,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID) // Add a request ID to the context
	r.Use(middleware.RealIP)    // Use the real IP address
	r.Use(middleware.Logger)    // Log HTTP requests
	r.Use(middleware.Recoverer) // Recover from panics and return 500

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Session connections authenticate themselves via the token query
	// parameter; the request timeout middleware must not apply to them.
	r.Get("/chat/ws/{consultationID}", gateway.ServeWS)

	// REST surface, bearer-token authenticated
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(handler.DefaultTimeout))
		r.Use(handler.Authenticator(resolver))

		r.Route("/consultations", func(r chi.Router) {
			r.Post("/", consultationHandler.Request)
			r.Get("/history", consultationHandler.History)
			r.Get("/{consultationID}", consultationHandler.Get)
			r.Get("/{consultationID}/messages", consultationHandler.Messages)
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", walletHandler.GetBalance)
			r.Post("/deposit", walletHandler.Deposit)
			r.Get("/transactions", walletHandler.GetTransactionHistory)
		})
	})

	return r
}
