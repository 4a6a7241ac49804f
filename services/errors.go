// services/errors.go - Error kinds surfaced by the game services
package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for the game session lifecycle. Handlers map each of
// these to a single HTTP status and message; none are retried here.
var (
	// ErrSessionNotFound is returned for operations on an unknown game id or code.
	ErrSessionNotFound = errors.New("game not found")

	// ErrSessionAlreadyStarted is returned when a join arrives after the game left waiting.
	ErrSessionAlreadyStarted = errors.New("game has already started")

	// ErrInvalidDisplayName is returned for an empty or over-length display name.
	ErrInvalidDisplayName = errors.New("invalid display name")

	// ErrNotHost is returned when a mutating call comes from anyone but the host.
	ErrNotHost = errors.New("only the host can do that")

	// ErrInvalidTransition is returned for a call that violates the status machine.
	ErrInvalidTransition = errors.New("invalid game state for this action")

	// ErrInvalidMode is returned when team assignment runs in single mode.
	ErrInvalidMode = errors.New("game is not in teams mode")

	// ErrEmptyRoster is returned when the host starts with zero participants.
	ErrEmptyRoster = errors.New("need at least one participant to start")

	// ErrEmptyDeck is returned when a game is created over a set with no cards.
	ErrEmptyDeck = errors.New("flashcard set has no cards")
)

// persistenceError wraps a failed store call. The original error stays
// reachable through errors.Unwrap for logging; callers only need to know
// the operation did not commit.
type persistenceError struct {
	op  string
	err error
}

func (e *persistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.op, e.err)
}

func (e *persistenceError) Unwrap() error { return e.err }

// wrapPersistence tags a store error unless it is one of our own kinds.
func wrapPersistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &persistenceError{op: op, err: err}
}

// IsPersistenceFailure reports whether err came from the external store
// rather than from a rule of the state machine.
func IsPersistenceFailure(err error) bool {
	var pe *persistenceError
	return errors.As(err, &pe)
}
