package service

import (
	"context"
	"sort"
	"sync"

	"github.com/claimdesk/claimdesk/internal/application/port"
	"github.com/claimdesk/claimdesk/internal/domain/entity"
)

// In-memory claim repository backing service tests
type memClaimRepo struct {
	mu     sync.Mutex
	claims map[string]*entity.Claim

	createFunc func(ctx context.Context, claim *entity.Claim) error
	updateFunc func(ctx context.Context, claim *entity.Claim) error
}

func newMemClaimRepo() *memClaimRepo {
	return &memClaimRepo{claims: make(map[string]*entity.Claim)}
}

func (m *memClaimRepo) Create(ctx context.Context, claim *entity.Claim) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, claim)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *claim
	m.claims[claim.ID] = &c
	return nil
}

func (m *memClaimRepo) GetByID(ctx context.Context, id string) (*entity.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	claim, ok := m.claims[id]
	if !ok {
		return nil, port.ErrClaimNotFound
	}
	c := *claim
	return &c, nil
}

func (m *memClaimRepo) Update(ctx context.Context, claim *entity.Claim) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, claim)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.claims[claim.ID]; !ok {
		return port.ErrClaimNotFound
	}
	c := *claim
	m.claims[claim.ID] = &c
	return nil
}

func (m *memClaimRepo) ListForUser(ctx context.Context, userID string) ([]*entity.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Claim
	for _, claim := range m.claims {
		if claim.SubmittedBy.ID == userID || claim.ApproverByID(userID) != nil {
			c := *claim
			out = append(out, &c)
		}
	}
	return out, nil
}

// In-memory notification repository backing service tests
type memNotificationRepo struct {
	mu            sync.Mutex
	notifications []*entity.Notification
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{}
}

func (m *memNotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *n
	m.notifications = append(m.notifications, &c)
	return nil
}

func (m *memNotificationRepo) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.ID == id {
			c := *n
			return &c, nil
		}
	}
	return nil, port.ErrNotificationNotFound
}

func (m *memNotificationRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			c := *n
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (m *memNotificationRepo) MarkRead(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.ID == id {
			n.IsRead = true
			return nil
		}
	}
	return port.ErrNotificationNotFound
}

func (m *memNotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (m *memNotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockExtractor struct {
	extractFunc func(ctx context.Context, content []byte, mimeType string) (*entity.ReceiptData, error)
}

func (m *mockExtractor) Extract(ctx context.Context, content []byte, mimeType string) (*entity.ReceiptData, error) {
	return m.extractFunc(ctx, content, mimeType)
}
