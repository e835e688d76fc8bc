// Package fsm defines the recording lifecycle state machine.
package fsm

import "fmt"

type State string

type Event string

const (
	// StateIdle means no key is held and no capture buffer exists.
	StateIdle State = "idle"
	// StateArmed means push-to-talk capture is active while the key is held.
	StateArmed State = "armed"
	// StateRecording means toggle-activated capture is active.
	StateRecording State = "recording"
	// StateDraining means stop was requested and the buffer is being finalized.
	StateDraining State = "draining"
)

const (
	EventArm        Event = "arm"
	EventActivate   Event = "activate"
	EventRelease    Event = "release"
	EventDeactivate Event = "deactivate"
	EventDrained    Event = "drained"
)

// Active reports whether capture is running in the given state. Armed and
// recording differ only in how the capture was started.
func Active(s State) bool {
	return s == StateArmed || s == StateRecording
}

func Transition(current State, event Event) (State, error) {
	switch current {
	case StateIdle:
		switch event {
		case EventArm:
			return StateArmed, nil
		case EventActivate:
			return StateRecording, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateArmed:
		switch event {
		case EventRelease:
			return StateDraining, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateRecording:
		switch event {
		case EventDeactivate:
			return StateDraining, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateDraining:
		switch event {
		case EventDrained:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
