// Package cooldown tracks, per group, whether a rate-limited action is allowed
// or cooling down, and mirrors that state into a durable store on every change.
//
// A group may trigger freely for ExecutionPeriod seconds after its cycle
// starts; afterwards it cools down for CooldownDuration seconds, and the first
// call after that starts a fresh cycle.
package cooldown

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Tracker holds the cooldown state of every known group and its backing store.
type Tracker struct {
	mu    sync.Mutex
	state State
	store Store
	now   func() time.Time

	executionPeriod  int64
	cooldownDuration int64
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces the time source. Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// New creates a Tracker over store and loads its state.
// executionPeriod and cooldownDuration are in seconds and must not be negative.
// A store whose content cannot be parsed fails with ErrMalformedStore.
func New(ctx context.Context, store Store, executionPeriod, cooldownDuration int64, opts ...Option) (*Tracker, error) {
	if err := validateDurations(executionPeriod, cooldownDuration); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("%w: store is nil", ErrInvalidConfig)
	}

	t := &Tracker{
		store:            store,
		now:              time.Now,
		executionPeriod:  executionPeriod,
		cooldownDuration: cooldownDuration,
	}
	for _, opt := range opts {
		opt(t)
	}

	state, err := store.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrLoad) {
			err = fmt.Errorf("%w: %w", ErrLoad, err)
		}
		return nil, err
	}
	if state == nil {
		state = make(State)
	}
	t.state = state

	log.Debug().Int("groups", len(state)).Int64("execution_period", executionPeriod).Int64("cooldown_duration", cooldownDuration).Msg("cooldown tracker created")
	return t, nil
}

// Open creates a Tracker backed by the JSON file at path, creating the file if needed.
func Open(ctx context.Context, path string, executionPeriod, cooldownDuration int64, opts ...Option) (*Tracker, error) {
	return New(ctx, NewFileStore(path), executionPeriod, cooldownDuration, opts...)
}

// NewFromConfig validates cfg and creates a Tracker over the store it selects.
// client may be nil unless cfg.StorageType is "redis".
func NewFromConfig(ctx context.Context, cfg *Config, client redis.Cmdable, opts ...Option) (*Tracker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := cfg.ValidateAndPrepare(); err != nil {
		return nil, err
	}
	store, err := NewStore(cfg, client)
	if err != nil {
		return nil, err
	}
	return New(ctx, store, cfg.ExecutionPeriod, cfg.CooldownDuration, opts...)
}

type evalOptions struct {
	responseTimeout    int64
	hasResponseTimeout bool
}

// EvalOption configures a single Evaluate call.
type EvalOption func(*evalOptions)

// WithResponseTimeout restarts the cycle when the previous trigger is older than
// seconds and the group has not reached its cooldown yet.
func WithResponseTimeout(seconds int64) EvalOption {
	return func(o *evalOptions) {
		o.responseTimeout = seconds
		o.hasResponseTimeout = true
	}
}

// Evaluate records a trigger for groupID and reports whether the group is
// cooling down, with the remaining cooldown in seconds.
//
// The updated state is written to the store before returning. If that write
// fails the decision is still returned together with an ErrWrite error; the
// in-memory state keeps the mutation.
func (t *Tracker) Evaluate(ctx context.Context, groupID string, opts ...EvalOption) (bool, int64, error) {
	var o evalOptions
	for _, opt := range opts {
		opt(&o)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now().Unix()
	logCtx := log.With().Str("group_id", groupID).Int64("now", now).Logger()

	rec, exists := t.state[groupID]
	if !exists {
		t.startCycle(groupID, now)
		logCtx.Debug().Msg("first trigger for group")
		return false, 0, t.persist(ctx, groupID)
	}

	prevTrigger := rec.LastTrigger
	rec.LastTrigger = now
	t.state[groupID] = rec

	inCooldown, remaining := false, int64(0)
	phase := rec.Phase(now)
	logCtx = logCtx.With().Str("phase", phase.String()).Logger()
	switch {
	case o.hasResponseTimeout && now-prevTrigger > o.responseTimeout && phase == PhaseArmed:
		logCtx.Debug().Int64("previous_trigger", prevTrigger).Int64("response_timeout", o.responseTimeout).Msg("previous trigger timed out, restarting cycle")
		t.startCycle(groupID, now)
	case phase == PhaseArmed:
		logCtx.Debug().Int64("cooldown_start", rec.CooldownStart).Msg("within execution period")
	case phase == PhaseCooling:
		inCooldown, remaining = true, rec.CooldownEnd-now
		logCtx.Warn().Int64("remaining", remaining).Msg("group is cooling down")
	default:
		logCtx.Debug().Int64("cooldown_end", rec.CooldownEnd).Msg("cooldown expired, restarting cycle")
		t.startCycle(groupID, now)
	}

	return inCooldown, remaining, t.persist(ctx, groupID)
}

// startCycle begins a new cooldown cycle for groupID at now.
// Requires t.mu to be held.
func (t *Tracker) startCycle(groupID string, now int64) {
	start := now + t.executionPeriod
	t.state[groupID] = Record{
		LastTrigger:   now,
		CooldownStart: start,
		CooldownEnd:   start + t.cooldownDuration,
	}
	log.Info().Str("group_id", groupID).Int64("cooldown_start", start).Int64("cooldown_end", start+t.cooldownDuration).Msg("cooldown cycle started")
}

// persist writes the full state to the store. Requires t.mu to be held.
func (t *Tracker) persist(ctx context.Context, groupID string) error {
	if err := t.store.Save(ctx, t.state); err != nil {
		log.Error().Err(err).Str("group_id", groupID).Msg("cooldown state not persisted")
		if !errors.Is(err, ErrWrite) {
			err = fmt.Errorf("%w: %w", ErrWrite, err)
		}
		return err
	}
	return nil
}

// Record returns the current record of groupID without recording a trigger.
func (t *Tracker) Record(groupID string) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.state[groupID]
	return rec, ok
}

// Snapshot returns a copy of the state of all groups.
func (t *Tracker) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.state.Clone()
}
