package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunState_CanTransition(t *testing.T) {
	tests := []struct {
		from, to RunState
		want     bool
	}{
		{StateIdle, StateValidating, true},
		{StateIdle, StateFailed, true},
		{StateValidating, StateRunning, true},
		{StateValidating, StateFailed, true},
		{StateRunning, StateReporting, true},
		{StateReporting, StateIdle, true},
		{StateFailed, StateValidating, true},
		{StateFailed, StateFailed, true},
		{StateIdle, StateRunning, false},
		{StateRunning, StateFailed, false},
		{StateReporting, StateRunning, false},
		{StateFailed, StateIdle, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestRunState_Transition(t *testing.T) {
	next, err := StateIdle.Transition(StateValidating)
	assert.NoError(t, err)
	assert.Equal(t, StateValidating, next)

	same, err := StateIdle.Transition(StateReporting)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, StateIdle, same)
}

func TestRunState_Busy(t *testing.T) {
	assert.False(t, StateIdle.Busy())
	assert.False(t, StateFailed.Busy())
	assert.True(t, StateValidating.Busy())
	assert.True(t, StateRunning.Busy())
	assert.True(t, StateReporting.Busy())
}
