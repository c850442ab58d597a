package identity

import (
	"github.com/pkg/errors"
)

// State is the resolution state of the current visitor's identity.
type State int

const (
	Unknown State = iota
	Checking
	Authenticated
	Unauthenticated
)

var stateNames = [...]string{"unknown", "checking", "authenticated", "unauthenticated"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "invalid"
	}
	return stateNames[s]
}

// Event drives the identity state machine.
type Event int

const (
	TokenFound Event = iota
	NoToken
	FetchSucceeded
	FetchFailed
	SignedOut
)

var eventNames = [...]string{"token found", "no token", "fetch succeeded", "fetch failed", "signed out"}

func (e Event) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return "invalid"
	}
	return eventNames[e]
}

var ErrIllegalTransition = errors.New("illegal identity transition")

var transitions = map[State]map[Event]State{
	Unknown: {
		TokenFound: Checking,
		NoToken:    Unauthenticated,
	},
	Checking: {
		FetchSucceeded: Authenticated,
		FetchFailed:    Unauthenticated,
	},
	Authenticated: {
		SignedOut:   Unauthenticated,
		FetchFailed: Unauthenticated,
		TokenFound:  Checking,
		NoToken:     Unauthenticated,
	},
	Unauthenticated: {
		TokenFound: Checking,
		NoToken:    Unauthenticated,
	},
}

// Transition returns the state reached from s on e. There is no terminal state.
func Transition(s State, e Event) (State, error) {
	if next, ok := transitions[s][e]; ok {
		return next, nil
	}
	return s, errors.Wrapf(ErrIllegalTransition, "%s on %s", s, e)
}
