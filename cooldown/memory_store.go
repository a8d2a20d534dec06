package cooldown

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// memoryStore implements the Store interface using an in-memory map.
// State does not survive the process; useful for tests and ephemeral setups.
type memoryStore struct {
	mu    sync.Mutex
	state State
}

// NewMemoryStore creates a new in-memory cooldown store.
func NewMemoryStore() Store {
	return &memoryStore{
		state: make(State),
	}
}

// Load implements the Store interface for memory storage.
func (s *memoryStore) Load(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.Debug().Int("groups", len(s.state)).Msg("memory store loaded")
	return s.state.Clone(), nil
}

// Save implements the Store interface for memory storage.
func (s *memoryStore) Save(ctx context.Context, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// copy so later mutations by the caller are not visible until the next save
	s.state = state.Clone()
	return nil
}
