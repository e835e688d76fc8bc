// Package hotkey turns raw key edge events into start/stop capture intents.
//
// Edges arrive from compositor keybindings via the control socket, so the
// daemon sees every repeat the compositor emits while a key is held. The
// listener tracks held keys and suppresses repeats before deciding anything.
package hotkey

import (
	"fmt"
	"sync"
)

type Mode string

const (
	// ModePushToTalk captures while the key is held.
	ModePushToTalk Mode = "push_to_talk"
	// ModeToggle starts capture on one press and stops on the next.
	ModeToggle Mode = "toggle"
)

// ParseMode validates a configured activation mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModePushToTalk, ModeToggle:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown activation mode %q", s)
	}
}

type Edge int

const (
	EdgeDown Edge = iota
	EdgeUp
)

// Event is one key transition reported by the compositor.
type Event struct {
	Key  string
	Edge Edge
}

// Listener maps debounced key edges to capture start/stop callbacks.
// Callbacks run while the internal lock is held, so they must not call back
// into the listener.
type Listener struct {
	mode    Mode
	onStart func()
	onStop  func()

	mu      sync.Mutex
	pressed map[string]bool
	active  bool
}

func NewListener(mode Mode, onStart, onStop func()) *Listener {
	return &Listener{
		mode:    mode,
		onStart: onStart,
		onStop:  onStop,
		pressed: make(map[string]bool),
	}
}

func (l *Listener) Mode() Mode {
	return l.mode
}

// Active reports whether the listener currently considers capture on.
func (l *Listener) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Handle processes one key edge. Repeated down edges for a key that was
// never released are dropped.
func (l *Listener) Handle(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch ev.Edge {
	case EdgeDown:
		if l.pressed[ev.Key] {
			return
		}
		l.pressed[ev.Key] = true
		l.handleDown()
	case EdgeUp:
		if !l.pressed[ev.Key] {
			return
		}
		delete(l.pressed, ev.Key)
		l.handleUp()
	}
}

// Toggle flips capture on or off regardless of key state. Used by the
// explicit toggle command and by one-shot invocations.
func (l *Listener) Toggle() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active {
		l.stop()
	} else {
		l.start()
	}
}

// Reset clears held-key tracking and forces capture off without firing
// callbacks. Used when the session shuts down mid-capture.
func (l *Listener) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pressed = make(map[string]bool)
	l.active = false
}

func (l *Listener) handleDown() {
	switch l.mode {
	case ModePushToTalk:
		if !l.active {
			l.start()
		}
	case ModeToggle:
		if l.active {
			l.stop()
		} else {
			l.start()
		}
	}
}

func (l *Listener) handleUp() {
	if l.mode == ModePushToTalk && l.active {
		l.stop()
	}
}

func (l *Listener) start() {
	l.active = true
	if l.onStart != nil {
		l.onStart()
	}
}

func (l *Listener) stop() {
	l.active = false
	if l.onStop != nil {
		l.onStop()
	}
}
