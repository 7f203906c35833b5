// internal/session/registry.go
package session

import (
	"log/slog"
	"sync"

	"astrochat/internal/domain"
)

// Conn is one live session connection. Implementations must make Send safe
// for concurrent use; the registry calls it from multiple goroutines.
type Conn interface {
	Send(event ServerEvent) error
	UserID() int64
	Role() domain.UserRole
}

const registryShards = 32

// Registry tracks the live connections of each consultation within this
// process. State here is ephemeral: it is rebuilt from reconnects after a
// restart, the store stays authoritative. The map is sharded by consultation
// ID so unrelated consultations never contend on one lock.
type Registry struct {
	shards [registryShards]registryShard
	logger *slog.Logger
}

type registryShard struct {
	mu    sync.Mutex
	conns map[int64][]Conn
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	r := &Registry{logger: logger}
	for i := range r.shards {
		r.shards[i].conns = make(map[int64][]Conn)
	}
	return r
}

func (r *Registry) shard(consultationID int64) *registryShard {
	return &r.shards[uint64(consultationID)%registryShards]
}

// Register adds a connection to a consultation's set. Duplicate connections
// for the same user are tolerated; each is removed independently.
func (r *Registry) Register(consultationID int64, conn Conn) {
	s := r.shard(consultationID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[consultationID] = append(s.conns[consultationID], conn)
}

// Unregister removes a connection. The consultation's entry is discarded
// entirely once its last connection is gone.
func (r *Registry) Unregister(consultationID int64, conn Conn) {
	s := r.shard(consultationID)
	s.mu.Lock()
	defer s.mu.Unlock()
	conns := s.conns[consultationID]
	for i, c := range conns {
		if c == conn {
			conns = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(conns) == 0 {
		delete(s.conns, consultationID)
		return
	}
	s.conns[consultationID] = conns
}

// Broadcast delivers an event to every live connection of a consultation.
// Delivery is best-effort: a failure on one connection is logged and does
// not abort delivery to the others.
func (r *Registry) Broadcast(consultationID int64, event ServerEvent) {
	s := r.shard(consultationID)
	s.mu.Lock()
	conns := make([]Conn, len(s.conns[consultationID]))
	copy(conns, s.conns[consultationID])
	s.mu.Unlock()

	for _, conn := range conns {
		if err := conn.Send(event); err != nil {
			r.logger.Error("Failed to deliver event to connection",
				"consultation_id", consultationID,
				"user_id", conn.UserID(),
				"event_type", event.Type,
				"error", err,
			)
		}
	}
}

// IsOnline reports whether the given user has a live connection for the
// consultation.
func (r *Registry) IsOnline(consultationID, userID int64) bool {
	s := r.shard(consultationID)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.conns[consultationID] {
		if conn.UserID() == userID {
			return true
		}
	}
	return false
}
