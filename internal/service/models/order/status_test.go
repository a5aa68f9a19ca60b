package order

import (
	"testing"

	"github.com/corray333/backend-labs/pos/internal/service/models/poserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("ready")
	require.NoError(t, err)
	assert.Equal(t, StatusReady, s)

	_, err = ParseStatus("Ready")
	assert.ErrorIs(t, err, poserr.ErrInvalidStatus)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusPreparing, true},
		{StatusPreparing, StatusReady, true},
		{StatusReady, StatusServed, true},
		{StatusPending, StatusCancelled, true},
		{StatusReady, StatusCancelled, true},
		{StatusReady, StatusReady, true},
		{StatusServed, StatusServed, true},
		{StatusPending, StatusReady, false},
		{StatusReady, StatusPending, false},
		{StatusServed, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestActiveStatuses(t *testing.T) {
	for _, s := range ActiveStatuses() {
		assert.True(t, s.IsActive(), s)
	}
	assert.False(t, StatusServed.IsActive())
	assert.False(t, StatusCancelled.IsActive())
}
