package cooldown

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Phase is the position of a group within its cooldown cycle.
// It is always derived from a Record's timestamps and never stored.
type Phase int

const (
	PhaseArmed   Phase = iota // before cooldown_start, triggers allowed
	PhaseCooling              // inside [cooldown_start, cooldown_end)
	PhaseExpired              // at or after cooldown_end
)

func (p Phase) String() string {
	switch p {
	case PhaseArmed:
		return "armed"
	case PhaseCooling:
		return "cooling"
	case PhaseExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Record holds the cooldown timestamps of one group, in unix seconds.
type Record struct {
	LastTrigger   int64 `json:"command_trigger"`
	CooldownStart int64 `json:"cooldown_start"`
	CooldownEnd   int64 `json:"cooldown_end"`
}

// UnmarshalJSON decodes a stored record, rejecting records with missing
// timestamps or a cooldown that ends before it starts.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		LastTrigger   *int64 `json:"command_trigger"`
		CooldownStart *int64 `json:"cooldown_start"`
		CooldownEnd   *int64 `json:"cooldown_end"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.LastTrigger == nil:
		return errors.New("record is missing command_trigger")
	case raw.CooldownStart == nil:
		return errors.New("record is missing cooldown_start")
	case raw.CooldownEnd == nil:
		return errors.New("record is missing cooldown_end")
	case *raw.CooldownStart > *raw.CooldownEnd:
		return fmt.Errorf("record cooldown_start %d is after cooldown_end %d", *raw.CooldownStart, *raw.CooldownEnd)
	}

	*r = Record{
		LastTrigger:   *raw.LastTrigger,
		CooldownStart: *raw.CooldownStart,
		CooldownEnd:   *raw.CooldownEnd,
	}
	return nil
}

// Phase reports which phase the record is in at now (unix seconds).
func (r Record) Phase(now int64) Phase {
	switch {
	case now < r.CooldownStart:
		return PhaseArmed
	case now < r.CooldownEnd:
		return PhaseCooling
	default:
		return PhaseExpired
	}
}

// State maps group identifiers to their records.
type State map[string]Record

// Clone returns a copy of s that shares nothing with it.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
