package cursor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"reelforge/internal/logging"
)

// State is the durable pointer into the product list.
type State struct {
	CurrentRow int        `json:"current_row"`
	LastRun    *time.Time `json:"last_run"`
}

// Default returns the state used when nothing has been persisted yet.
func Default() State {
	return State{CurrentRow: 0, LastRun: nil}
}

// Store persists cursor state as a JSON file at a well-known path. A
// sibling lock file guards read-modify-write sequences against concurrent
// job submissions in the same deployment.
type Store struct {
	path   string
	lock   *flock.Flock
	logger *slog.Logger
}

// NewStore creates a store for the given state file path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logging.WithComponent(logger, "cursor"),
	}
}

// Path returns the state file location.
func (s *Store) Path() string { return s.path }

// Load reads the persisted state. A missing or corrupt file yields the
// default state; corruption is logged and never fatal.
func (s *Store) Load() State {
	if err := s.lock.Lock(); err != nil {
		s.logger.Warn("cursor lock unavailable, reading without it", logging.Error(err))
	} else {
		defer s.lock.Unlock() //nolint:errcheck
	}
	return s.loadLocked()
}

func (s *Store) loadLocked() State {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("cursor state unreadable, starting from default", logging.Error(err))
		}
		return Default()
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn("cursor state corrupt, starting from default",
			logging.Error(err),
			logging.String(logging.FieldEventType, "state_corruption"),
			logging.String(logging.FieldErrorHint, "delete "+s.path+" to silence this warning"),
		)
		return Default()
	}
	if state.CurrentRow < 0 {
		state.CurrentRow = 0
	}
	return state
}

// Save overwrites the persisted state atomically (temp file + rename).
func (s *Store) Save(state State) error {
	if err := s.lock.Lock(); err != nil {
		s.logger.Warn("cursor lock unavailable, writing without it", logging.Error(err))
	} else {
		defer s.lock.Unlock() //nolint:errcheck
	}
	return s.saveLocked(state)
}

func (s *Store) saveLocked(state State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cursor state: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure state directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write cursor state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace cursor state: %w", err)
	}
	return nil
}

// Advance persists the next row together with a last-run timestamp.
// Persistence is best-effort: a write failure is logged at error level but
// does not abort the in-memory run.
func (s *Store) Advance(nextRow int) State {
	if nextRow < 0 {
		nextRow = 0
	}
	now := time.Now().UTC()
	state := State{CurrentRow: nextRow, LastRun: &now}
	if err := s.Save(state); err != nil {
		s.logger.Error("failed to persist cursor state",
			logging.Error(err),
			logging.Int(logging.FieldRow, nextRow),
			logging.String(logging.FieldErrorHint, "check permissions on "+s.path),
		)
	}
	return state
}

// Reset rewinds the cursor to the first row and persists.
func (s *Store) Reset() error {
	if err := s.lock.Lock(); err != nil {
		s.logger.Warn("cursor lock unavailable, resetting without it", logging.Error(err))
	} else {
		defer s.lock.Unlock() //nolint:errcheck
	}
	state := s.loadLocked()
	state.CurrentRow = 0
	return s.saveLocked(state)
}
