// internal/session/mocks_test.go
package session

import (
	"context"
	"sync"
	"time"

	"astrochat/internal/auth"
	"astrochat/internal/domain"
	"astrochat/internal/service"
	"astrochat/internal/util"

	"github.com/stretchr/testify/mock"
)

// MockSessionService is a mock implementation of service.SessionService.
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) GetConsultation(ctx context.Context, id int64) (*domain.Consultation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Consultation), args.Error(1)
}

func (m *MockSessionService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockSessionService) GetWallet(ctx context.Context, userID int64) (*domain.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockSessionService) AcceptIfRequested(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionService) ActivateIfAccepted(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionService) PauseIfActive(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionService) CompleteIfActive(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionService) SaveMessage(ctx context.Context, consultationID, senderID int64, content string) (*domain.ChatMessage, error) {
	args := m.Called(ctx, consultationID, senderID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatMessage), args.Error(1)
}

func (m *MockSessionService) ChargeMinute(ctx context.Context, consultationID int64) (service.ChargeResult, error) {
	args := m.Called(ctx, consultationID)
	return args.Get(0).(service.ChargeResult), args.Error(1)
}

// fakeConn is an in-memory Conn that records delivered events.
type fakeConn struct {
	userID  int64
	role    domain.UserRole
	sendErr error

	mu     sync.Mutex
	events []ServerEvent
}

func (c *fakeConn) Send(event ServerEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.events = append(c.events, event)
	return nil
}

func (c *fakeConn) UserID() int64         { return c.userID }
func (c *fakeConn) Role() domain.UserRole { return c.role }

func (c *fakeConn) received() []ServerEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ServerEvent, len(c.events))
	copy(out, c.events)
	return out
}

// fakeLock is an in-memory MinuteLock with a fixed Acquire answer.
type fakeLock struct {
	acquire bool
	err     error

	mu   sync.Mutex
	keys []string
}

func (l *fakeLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
	return l.acquire, l.err
}

// stubResolver resolves fixed credentials to fixed identities.
type stubResolver struct {
	identities map[string]auth.Identity
}

func (r *stubResolver) Resolve(ctx context.Context, credential string) (auth.Identity, error) {
	identity, ok := r.identities[credential]
	if !ok {
		return auth.Identity{}, util.ErrUnauthorized
	}
	return identity, nil
}

// recordingNotifier captures push notification dispatches.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []notification
}

type notification struct {
	deviceToken string
	title       string
	body        string
	data        map[string]string
}

func (n *recordingNotifier) Notify(ctx context.Context, deviceToken, title, body string, data map[string]string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notification{deviceToken: deviceToken, title: title, body: body, data: data})
}

func (n *recordingNotifier) sent() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notification, len(n.calls))
	copy(out, n.calls)
	return out
}
