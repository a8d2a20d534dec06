package cooldown

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// fileStore implements the Store interface on a single JSON document.
type fileStore struct {
	path string
}

// NewFileStore creates a store backed by the JSON file at path.
// The file is created on the first Load if it does not exist.
func NewFileStore(path string) Store {
	return &fileStore{path: path}
}

// Load implements the Store interface for file storage.
func (s *fileStore) Load(ctx context.Context) (State, error) {
	logCtx := log.With().Str("path", s.path).Logger()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logCtx.Error().Err(err).Msg("failed to read cooldown store")
			return nil, fmt.Errorf("%w: %w", ErrLoad, err)
		}
		// absent store: bootstrap an empty document
		state := make(State)
		if err := s.Save(ctx, state); err != nil {
			return nil, fmt.Errorf("%w: bootstrap %s: %w", ErrLoad, s.path, err)
		}
		logCtx.Info().Msg("cooldown store not found, created empty store")
		return state, nil
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		logCtx.Debug().Msg("cooldown store is empty")
		return make(State), nil
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		logCtx.Error().Err(err).Msg("cooldown store content is malformed")
		return nil, fmt.Errorf("%w: %w: %s: %w", ErrLoad, ErrMalformedStore, s.path, err)
	}
	if state == nil {
		// a literal null document
		state = make(State)
	}

	logCtx.Debug().Int("groups", len(state)).Msg("cooldown store loaded")
	return state, nil
}

// Save implements the Store interface for file storage.
// The document is written to a temp file next to the real target, synced and
// renamed over it so a crash never leaves a half-written store behind.
// A symlinked store path stays a symlink and the target keeps its mode.
func (s *fileStore) Save(ctx context.Context, state State) error {
	if state == nil {
		state = make(State)
	}
	data, err := json.MarshalIndent(state, "", fileIndent)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrWrite, err)
	}

	target, mode, err := s.resolveTarget()
	if err != nil {
		log.Error().Err(err).Str("path", s.path).Msg("failed to resolve cooldown store path")
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	tmpPath := filepath.Join(filepath.Dir(target), "."+filepath.Base(target)+".tmp-"+uuid.NewString())
	if err := writeSynced(tmpPath, data, mode); err != nil {
		_ = os.Remove(tmpPath)
		log.Error().Err(err).Str("path", s.path).Msg("failed to write cooldown store")
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		log.Error().Err(err).Str("path", s.path).Msg("failed to replace cooldown store")
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	log.Trace().Str("path", s.path).Int("groups", len(state)).Msg("cooldown store saved")
	return nil
}

// resolveTarget returns the file a save must replace and the mode to give it.
// Symlinks are followed. A zero mode means the store does not exist yet.
func (s *fileStore) resolveTarget() (string, fs.FileMode, error) {
	target, err := filepath.EvalSymlinks(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s.path, 0, nil
		}
		return "", 0, err
	}
	info, err := os.Stat(target)
	if err != nil {
		return "", 0, err
	}
	return target, info.Mode().Perm(), nil
}

func writeSynced(path string, data []byte, mode fs.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	// keep the mode of the file being replaced, OpenFile is subject to the umask
	if mode != 0 {
		if err := f.Chmod(mode); err != nil {
			f.Close()
			return err
		}
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
