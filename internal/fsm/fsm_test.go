package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitionPushToTalkCycle(t *testing.T) {
	next, err := Transition(StateIdle, EventArm)
	require.NoError(t, err)
	require.Equal(t, StateArmed, next)

	next, err = Transition(next, EventRelease)
	require.NoError(t, err)
	require.Equal(t, StateDraining, next)

	next, err = Transition(next, EventDrained)
	require.NoError(t, err)
	require.Equal(t, StateIdle, next)
}

func TestTransitionToggleCycle(t *testing.T) {
	next, err := Transition(StateIdle, EventActivate)
	require.NoError(t, err)
	require.Equal(t, StateRecording, next)

	next, err = Transition(next, EventDeactivate)
	require.NoError(t, err)
	require.Equal(t, StateDraining, next)

	next, err = Transition(next, EventDrained)
	require.NoError(t, err)
	require.Equal(t, StateIdle, next)
}

func TestTransitionMatrixInvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		state State
		event Event
	}{
		{name: "idle release invalid", state: StateIdle, event: EventRelease},
		{name: "idle drained invalid", state: StateIdle, event: EventDrained},
		{name: "armed arm invalid", state: StateArmed, event: EventArm},
		{name: "armed activate invalid", state: StateArmed, event: EventActivate},
		{name: "armed deactivate invalid", state: StateArmed, event: EventDeactivate},
		{name: "recording activate invalid", state: StateRecording, event: EventActivate},
		{name: "recording release invalid", state: StateRecording, event: EventRelease},
		{name: "draining arm invalid", state: StateDraining, event: EventArm},
		{name: "draining release invalid", state: StateDraining, event: EventRelease},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Transition(tc.state, tc.event)
			require.Error(t, err)
			require.Contains(t, err.Error(), "invalid transition")
			require.Equal(t, tc.state, next)
		})
	}
}

func TestActive(t *testing.T) {
	require.False(t, Active(StateIdle))
	require.True(t, Active(StateArmed))
	require.True(t, Active(StateRecording))
	require.False(t, Active(StateDraining))
}

func TestTransitionUnknownState(t *testing.T) {
	next, err := Transition(State("mystery"), EventArm)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown state")
	require.Equal(t, State("mystery"), next)
}
