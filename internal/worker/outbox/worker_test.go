package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/corray333/backend-labs/pos/internal/service/models/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockOutbox struct {
	mock.Mock
}

func (m *mockOutbox) Insert(ctx context.Context, msg outbox.OutboxMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockOutbox) GetPendingMessages(ctx context.Context, limit int) ([]outbox.OutboxMessage, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]outbox.OutboxMessage), args.Error(1)
}

func (m *mockOutbox) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockOutbox) UpdateRetry(ctx context.Context, id int64, retryCount int, lastError string, nextRetryAt time.Time) error {
	return m.Called(ctx, id, retryCount, lastError, nextRetryAt).Error(0)
}

type stubPublisher struct {
	failKeys map[string]bool
	sent     []string
}

func (s *stubPublisher) Publish(_, routingKey, _ string, _ []byte) error {
	if s.failKeys[routingKey] {
		return errors.New("broker unavailable")
	}
	s.sent = append(s.sent, routingKey)
	return nil
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 30*time.Second, backoff(0))
	assert.Equal(t, 60*time.Second, backoff(1))
	assert.Equal(t, 120*time.Second, backoff(2))
	assert.Equal(t, 240*time.Second, backoff(3))
}

func TestProcessMessages(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	repo := &mockOutbox{}
	pub := &stubPublisher{failKeys: map[string]bool{"1.order:updated": true}}

	w := NewWorker(repo, pub)
	w.now = func() time.Time { return now }

	repo.On("GetPendingMessages", ctx, w.batchSize).Return([]outbox.OutboxMessage{
		{ID: 1, ExchangeName: "pos.events", RoutingKey: "1.order:created", RetryCount: 0},
		{ID: 2, ExchangeName: "pos.events", RoutingKey: "1.order:updated", RetryCount: 1},
	}, nil).Once()
	repo.On("Delete", ctx, int64(1)).Return(nil).Once()
	repo.On("UpdateRetry", ctx, int64(2), 2, "broker unavailable", now.Add(120*time.Second)).Return(nil).Once()

	w.processMessages(ctx)

	assert.Equal(t, []string{"1.order:created"}, pub.sent)
	repo.AssertExpectations(t)
}

func TestProcessMessages_RepoError(t *testing.T) {
	ctx := context.Background()
	repo := &mockOutbox{}
	pub := &stubPublisher{}

	w := NewWorker(repo, pub)
	repo.On("GetPendingMessages", ctx, w.batchSize).Return([]outbox.OutboxMessage(nil), errors.New("db down")).Once()

	w.processMessages(ctx)

	assert.Empty(t, pub.sent)
	repo.AssertExpectations(t)
}

func TestOutboxMessage_Exhausted(t *testing.T) {
	assert.False(t, outbox.OutboxMessage{RetryCount: 4, MaxRetries: 5}.Exhausted())
	assert.True(t, outbox.OutboxMessage{RetryCount: 5, MaxRetries: 5}.Exhausted())
}
