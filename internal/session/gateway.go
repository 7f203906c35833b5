// internal/session/gateway.go
package session

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"astrochat/internal/auth"
	"astrochat/internal/domain"
	"astrochat/internal/notify"
	"astrochat/internal/service"
	"astrochat/internal/util"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// messagePreviewLimit caps the push notification preview length in runes.
const messagePreviewLimit = 80

// Gateway is the authenticated entry point for session connections. It owns
// the event loop of each connection and coordinates the registry, the state
// machine and the billing supervisor. An error inside one connection's loop
// never reaches another connection.
type Gateway struct {
	sessions   service.SessionService
	registry   *Registry
	supervisor *Supervisor
	resolver   auth.Resolver
	notifier   notify.Notifier
	logger     *slog.Logger
	upgrader   websocket.Upgrader
}

// NewGateway creates a new Gateway.
func NewGateway(
	sessions service.SessionService,
	registry *Registry,
	supervisor *Supervisor,
	resolver auth.Resolver,
	notifier notify.Notifier,
	logger *slog.Logger,
) *Gateway {
	return &Gateway{
		sessions:   sessions,
		registry:   registry,
		supervisor: supervisor,
		resolver:   resolver,
		notifier:   notifier,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Clients are mobile apps; origin checks do not apply.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// wsConn wraps a websocket connection as a registry Conn. The write mutex
// serializes frames from the event loop, broadcasts and billing updates.
type wsConn struct {
	sock   *websocket.Conn
	mu     sync.Mutex
	userID int64
	role   domain.UserRole
}

func (c *wsConn) Send(event ServerEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sock.WriteJSON(event)
}

func (c *wsConn) UserID() int64         { return c.userID }
func (c *wsConn) Role() domain.UserRole { return c.role }

// closeWith sends a close frame with the given code, then drops the socket.
func (c *wsConn) closeWith(code int, reason string) {
	c.mu.Lock()
	_ = c.sock.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
	c.mu.Unlock()
	_ = c.sock.Close()
}

// ServeWS handles GET /chat/ws/{consultationID}?token=...
// It authenticates, authorizes, registers the connection and runs the event
// loop until disconnect or a terminal event.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	consultationID, err := strconv.ParseInt(chi.URLParam(r, "consultationID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid consultation id", http.StatusBadRequest)
		return
	}

	sock, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Error("Websocket upgrade failed", "consultation_id", consultationID, "error", err)
		return
	}

	ctx := r.Context()
	conn := &wsConn{sock: sock}

	identity, err := g.resolver.Resolve(ctx, r.URL.Query().Get("token"))
	if err != nil {
		conn.closeWith(CloseUnauthorized, "authentication failed")
		return
	}
	conn.userID = identity.UserID
	conn.role = identity.Role

	consultation, err := g.sessions.GetConsultation(ctx, consultationID)
	if err != nil {
		if util.IsError(err, util.ErrConsultationNotFound) {
			conn.closeWith(CloseNotFound, "consultation not found")
		} else {
			g.logger.Error("Failed to load consultation", "consultation_id", consultationID, "error", err)
			conn.closeWith(CloseInternal, "internal error")
		}
		return
	}
	if !consultation.IsParticipant(identity.UserID) {
		conn.closeWith(CloseUnauthorized, "not a participant")
		return
	}

	g.registry.Register(consultationID, conn)
	g.logger.Info("Session connection established",
		"consultation_id", consultationID, "user_id", identity.UserID, "role", identity.Role)

	defer func() {
		g.registry.Unregister(consultationID, conn)
		_ = sock.Close()
		g.pauseOnAstrologerDrop(ctx, consultation, identity.UserID)
		g.logger.Info("Session connection closed",
			"consultation_id", consultationID, "user_id", identity.UserID)
	}()

	// An astrologer joining a requested consultation accepts it.
	if identity.UserID == consultation.AstrologerID && consultation.Status == domain.ConsultationStatusRequested {
		accepted, err := g.sessions.AcceptIfRequested(ctx, consultationID)
		if err != nil {
			g.logger.Error("Failed to accept consultation", "consultation_id", consultationID, "error", err)
		} else if accepted {
			consultation.Status = domain.ConsultationStatusAccepted
		} else if refreshed, err := g.sessions.GetConsultation(ctx, consultationID); err == nil {
			// Someone else moved the status first; pick up where it landed.
			consultation = refreshed
		}
	}

	g.sendStateSync(ctx, conn, consultation)

	for {
		var event ClientEvent
		if err := sock.ReadJSON(&event); err != nil {
			// Abrupt transport closure or malformed frame: leave via the
			// disconnect path in the deferred cleanup.
			return
		}

		switch event.Type {
		case EventMessage:
			if consultation.Status.IsTerminal() {
				g.logger.Warn("Ignoring message on ended consultation",
					"consultation_id", consultationID, "status", consultation.Status)
				continue
			}
			if err := g.handleMessage(ctx, conn, consultation, event.Content); err != nil {
				g.logger.Error("Failed to handle message",
					"consultation_id", consultationID, "user_id", identity.UserID, "error", err)
				conn.closeWith(CloseInternal, "internal error")
				return
			}
		case EventEndChat:
			completed, err := g.sessions.CompleteIfActive(ctx, consultationID)
			if err != nil {
				g.logger.Error("Failed to end consultation",
					"consultation_id", consultationID, "error", err)
				conn.closeWith(CloseInternal, "internal error")
				return
			}
			if completed {
				consultation.Status = domain.ConsultationStatusCompleted
				g.registry.Broadcast(consultationID, ChatEndedEvent(ReasonUserEnded))
			}
			return
		default:
			g.logger.Warn("Ignoring unknown client event",
				"consultation_id", consultationID, "event_type", event.Type)
		}
	}
}

// handleMessage persists one chat message, drives the ACCEPTED -> ACTIVE
// transition on the astrologer's first message, relays the message, and
// notifies an offline recipient.
func (g *Gateway) handleMessage(ctx context.Context, conn *wsConn, consultation *domain.Consultation, content string) error {
	message, err := g.sessions.SaveMessage(ctx, consultation.ID, conn.UserID(), content)
	if err != nil {
		return err
	}

	if conn.UserID() == consultation.AstrologerID {
		activated, err := g.sessions.ActivateIfAccepted(ctx, consultation.ID)
		if err != nil {
			g.logger.Error("Failed to activate consultation", "consultation_id", consultation.ID, "error", err)
		} else if activated {
			consultation.Status = domain.ConsultationStatusActive
			g.registry.Broadcast(consultation.ID, TimerStartedEvent())
			// The compare-and-set above fires at most once per consultation
			// lifetime; the supervisor additionally guards against a second
			// process-local spawn.
			g.supervisor.Start(consultation.ID)
		}
	}

	g.registry.Broadcast(consultation.ID, NewMessageEvent(message))

	recipientID := consultation.OtherParticipant(conn.UserID())
	if !g.registry.IsOnline(consultation.ID, recipientID) {
		g.notifyOffline(ctx, recipientID, message)
	}
	return nil
}

// notifyOffline dispatches a push notification with a truncated preview.
// Fire-and-forget: lookup failures are logged and swallowed.
func (g *Gateway) notifyOffline(ctx context.Context, recipientID int64, message *domain.ChatMessage) {
	user, err := g.sessions.GetUser(ctx, recipientID)
	if err != nil {
		g.logger.Warn("Failed to load push recipient", "user_id", recipientID, "error", err)
		return
	}
	if user.DeviceToken == nil {
		return
	}

	preview := message.Content
	if runes := []rune(preview); len(runes) > messagePreviewLimit {
		preview = string(runes[:messagePreviewLimit]) + "..."
	}
	g.notifier.Notify(ctx, *user.DeviceToken, "New message", preview, map[string]string{
		"consultation_id": strconv.FormatInt(message.ConsultationID, 10),
	})
}

// sendStateSync sends the connecting party a snapshot of the current status,
// timer state, seeker balance and accumulated cost.
func (g *Gateway) sendStateSync(ctx context.Context, conn *wsConn, consultation *domain.Consultation) {
	balance := decimal.Zero
	if wallet, err := g.sessions.GetWallet(ctx, consultation.SeekerID); err == nil {
		balance = wallet.Balance
	}
	timerActive := consultation.Status == domain.ConsultationStatusActive
	if err := conn.Send(StateSyncEvent(consultation.Status, timerActive, balance, consultation.TotalCost)); err != nil {
		g.logger.Error("Failed to send state sync", "consultation_id", consultation.ID, "error", err)
	}
}

// pauseOnAstrologerDrop applies the pause semantics of an abrupt astrologer
// disconnect. The billing process discovers PAUSED on its next status check
// and exits on its own.
func (g *Gateway) pauseOnAstrologerDrop(ctx context.Context, consultation *domain.Consultation, userID int64) {
	if userID != consultation.AstrologerID {
		return
	}
	paused, err := g.sessions.PauseIfActive(ctx, consultation.ID)
	if err != nil {
		g.logger.Error("Failed to pause consultation", "consultation_id", consultation.ID, "error", err)
		return
	}
	if paused {
		g.registry.Broadcast(consultation.ID, ConsultationPausedEvent(ReasonAstrologerDisconnected))
	}
}
