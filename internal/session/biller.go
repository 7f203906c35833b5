// internal/session/biller.go
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"astrochat/internal/lock"
	"astrochat/internal/service"
	"astrochat/internal/util"
)

// Biller runs the per-minute metering loop for active consultations. One
// goroutine per consultation wakes every interval, claims the distributed
// minute lock, and charges the seeker's wallet through the session service.
// There is no explicit stop signal: the loop re-reads the consultation every
// cycle and exits once it is no longer ACTIVE, which also covers processes
// recovered after a restart.
type Biller struct {
	sessions service.SessionService
	lock     lock.MinuteLock
	registry *Registry
	logger   *slog.Logger
	interval time.Duration
	lockTTL  time.Duration
}

// NewBiller creates a new Biller. interval is one metering cycle (60s in
// production); lockTTL must exceed interval so a holder that dies mid-cycle
// self-heals before the next minute.
func NewBiller(sessions service.SessionService, minuteLock lock.MinuteLock, registry *Registry, logger *slog.Logger, interval, lockTTL time.Duration) *Biller {
	return &Biller{
		sessions: sessions,
		lock:     minuteLock,
		registry: registry,
		logger:   logger,
		interval: interval,
		lockTTL:  lockTTL,
	}
}

// Run loops until the consultation leaves ACTIVE or ctx is cancelled.
func (b *Biller) Run(ctx context.Context, consultationID int64) {
	b.logger.Info("Billing process started", "consultation_id", consultationID)
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Billing process cancelled", "consultation_id", consultationID)
			return
		case <-ticker.C:
		}
		if !b.cycle(ctx, consultationID) {
			b.logger.Info("Billing process ended", "consultation_id", consultationID)
			return
		}
	}
}

// cycle runs one metering interval and reports whether the loop should
// continue.
func (b *Biller) cycle(ctx context.Context, consultationID int64) bool {
	key := lock.MinuteKey(consultationID, time.Now(), b.interval)
	acquired, err := b.lock.Acquire(ctx, key, b.lockTTL)
	if err != nil {
		// Transient lock backend failure: skip this minute, try the next.
		b.logger.Error("Minute lock acquisition failed", "consultation_id", consultationID, "key", key, "error", err)
		return true
	}
	if !acquired {
		// Another process already billed this minute. Expected contention.
		return true
	}

	result, err := b.sessions.ChargeMinute(ctx, consultationID)
	if err != nil {
		if util.IsError(err, util.ErrStoreUnavailable) {
			// Billing cannot proceed reliably without a store connection.
			b.logger.Error("Billing process exiting, store unavailable", "consultation_id", consultationID, "error", err)
			return false
		}
		b.logger.Error("Billing cycle failed", "consultation_id", consultationID, "error", err)
		return true
	}

	switch result.Outcome {
	case service.ChargeEnded:
		b.registry.Broadcast(consultationID, ChatEndedEvent(ReasonInsufficientBalance))
		return false
	case service.ChargeStopped:
		return false
	default:
		b.registry.Broadcast(consultationID, BalanceUpdateEvent(result.Balance, result.Spent))
		return true
	}
}

// Supervisor guards billing process spawns so at most one runs per
// consultation in this process, regardless of how many times the activation
// event fires.
type Supervisor struct {
	biller  *Biller
	baseCtx context.Context

	mu      sync.Mutex
	running map[int64]struct{}
}

// NewSupervisor creates a new Supervisor. baseCtx bounds the lifetime of all
// spawned billing processes; it should outlive individual connections.
func NewSupervisor(baseCtx context.Context, biller *Biller) *Supervisor {
	return &Supervisor{
		biller:  biller,
		baseCtx: baseCtx,
		running: make(map[int64]struct{}),
	}
}

// Start spawns a billing process for the consultation unless one is already
// running. It returns whether a new process was spawned.
func (s *Supervisor) Start(consultationID int64) bool {
	s.mu.Lock()
	if _, exists := s.running[consultationID]; exists {
		s.mu.Unlock()
		return false
	}
	s.running[consultationID] = struct{}{}
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.running, consultationID)
			s.mu.Unlock()
		}()
		s.biller.Run(s.baseCtx, consultationID)
	}()
	return true
}

// IsRunning reports whether a billing process is live for the consultation.
func (s *Supervisor) IsRunning(consultationID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.running[consultationID]
	return exists
}
