// Package playback tracks the client-reported audio playback state for a
// session. The server does not play audio; it mirrors what the client says
// so session snapshots can include playback position in the lifecycle.
package playback

import (
	"fmt"
	"sync"
)

type State string

const (
	StateIdle    State = "idle"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
	StateEnded   State = "ended"
	StateError   State = "error"
)

type Event string

const (
	EventPlay  Event = "play"
	EventPause Event = "pause"
	EventEnded Event = "ended"
	EventError Event = "error"
	EventReset Event = "reset"
)

// transitions maps each state to the events it accepts. Reset is always
// accepted and handled separately.
var transitions = map[State]map[Event]State{
	StateIdle: {
		EventPlay:  StatePlaying,
		EventError: StateError,
	},
	StatePlaying: {
		EventPause: StatePaused,
		EventEnded: StateEnded,
		EventError: StateError,
	},
	StatePaused: {
		EventPlay:  StatePlaying,
		EventEnded: StateEnded,
		EventError: StateError,
	},
	StateEnded: {
		EventPlay:  StatePlaying,
		EventError: StateError,
	},
	StateError: {
		EventPlay: StatePlaying,
	},
}

// Machine is a concurrency-safe playback state machine.
type Machine struct {
	mu          sync.Mutex
	state       State
	subscribers map[int]func(State)
	nextSubID   int
}

func NewMachine() *Machine {
	return &Machine{
		state:       StateIdle,
		subscribers: make(map[int]func(State)),
	}
}

// Subscribe registers fn to run on every state change and returns a release
// function. Callers must release when the audio artifact they are watching
// is replaced or torn down.
func (m *Machine) Subscribe(fn func(State)) func() {
	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

// State returns the current playback state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Handle applies an event and returns the resulting state. Events that are
// not valid in the current state leave it unchanged and return an error.
// Subscribers are notified after the transition, outside the lock.
func (m *Machine) Handle(event Event) (State, error) {
	m.mu.Lock()

	var next State
	if event == EventReset {
		next = StateIdle
	} else {
		var ok bool
		next, ok = transitions[m.state][event]
		if !ok {
			state := m.state
			m.mu.Unlock()
			return state, fmt.Errorf("event %q not valid in state %q", event, state)
		}
	}

	m.state = next
	subs := make([]func(State), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return next, nil
}
