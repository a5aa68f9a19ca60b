package fanout

import (
	"context"
	"errors"
	"testing"

	"github.com/corray333/backend-labs/pos/internal/service/models/event"
	"github.com/corray333/backend-labs/pos/internal/service/models/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockLocal struct{ mock.Mock }

func (m *mockLocal) Broadcast(ctx context.Context, clientID int64, evt event.Event) {
	m.Called(ctx, clientID, evt)
}

type mockRemote struct{ mock.Mock }

func (m *mockRemote) Broadcast(ctx context.Context, clientID int64, evt event.Event) error {
	return m.Called(ctx, clientID, evt).Error(0)
}

func TestBroadcast_ReachesBothSinks(t *testing.T) {
	local := &mockLocal{}
	remote := &mockRemote{}
	evt := event.NewOrderUpdated(1, order.StatusReady)

	local.On("Broadcast", mock.Anything, int64(4), evt).Once()
	remote.On("Broadcast", mock.Anything, int64(4), evt).Return(errors.New("broker down")).Once()

	NewBroadcaster(local, remote).Broadcast(context.Background(), 4, evt)

	local.AssertExpectations(t)
	remote.AssertExpectations(t)
}

func TestBroadcast_WithoutRemote(t *testing.T) {
	local := &mockLocal{}
	evt := event.NewKitchenReady(1, 5)
	local.On("Broadcast", mock.Anything, int64(4), evt).Once()

	assert.NotPanics(t, func() {
		NewBroadcaster(local, nil).Broadcast(context.Background(), 4, evt)
	})
	local.AssertExpectations(t)
}
