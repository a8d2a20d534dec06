package cooldown

import (
	"context"
	"errors"
)

var (
	// ErrInvalidConfig is returned for configuration the tracker cannot run with.
	ErrInvalidConfig = errors.New("cooldown: invalid configuration")
	// ErrLoad is returned when the store cannot be read at construction.
	ErrLoad = errors.New("cooldown: failed to load store")
	// ErrMalformedStore marks store content that exists but cannot be parsed.
	// It is always wrapped together with ErrLoad.
	ErrMalformedStore = errors.New("cooldown: malformed store content")
	// ErrWrite is returned when the state could not be persisted. The in-memory
	// state keeps the mutation; the next successful write will carry it.
	ErrWrite = errors.New("cooldown: failed to persist state")
)

// Store defines the durable mirror of a tracker's state.
type Store interface {
	// Load returns the full persisted state. A store that does not exist yet
	// is bootstrapped empty and yields an empty, non-nil State.
	// Unparseable content must fail with ErrMalformedStore.
	Load(ctx context.Context) (State, error)
	// Save replaces the persisted state with state in full.
	Save(ctx context.Context, state State) error
}
