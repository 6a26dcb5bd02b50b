package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/booking-platform/internal/model"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{model.StatusPending, model.StatusConfirmed, true},
		{model.StatusPending, model.StatusCancelled, true},
		{model.StatusPending, model.StatusCompleted, false},
		{model.StatusConfirmed, model.StatusCompleted, true},
		{model.StatusConfirmed, model.StatusCancelled, true},
		{model.StatusConfirmed, model.StatusPending, false},
		{model.StatusCancelled, model.StatusPending, false},
		{model.StatusCancelled, model.StatusConfirmed, false},
		{model.StatusCompleted, model.StatusCancelled, false},
		{model.StatusCompleted, model.StatusConfirmed, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestCanTransitionSameStateNoOp(t *testing.T) {
	for _, s := range []string{
		model.StatusPending, model.StatusConfirmed, model.StatusCancelled, model.StatusCompleted,
	} {
		assert.True(t, CanTransition(s, s), "same-state %s", s)
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{
		model.StatusPending, model.StatusConfirmed, model.StatusCancelled, model.StatusCompleted,
	} {
		assert.True(t, ValidStatus(s), s)
	}
	assert.False(t, ValidStatus("pending"), "statuses are case sensitive")
	assert.False(t, ValidStatus("ARCHIVED"))
	assert.False(t, ValidStatus(""))
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(model.StatusPending))
	assert.False(t, IsTerminal(model.StatusConfirmed))
	assert.True(t, IsTerminal(model.StatusCancelled))
	assert.True(t, IsTerminal(model.StatusCompleted))
}

func TestBlocks(t *testing.T) {
	assert.True(t, Blocks(model.StatusPending))
	assert.True(t, Blocks(model.StatusConfirmed))
	assert.False(t, Blocks(model.StatusCancelled))
	assert.False(t, Blocks(model.StatusCompleted))
}
