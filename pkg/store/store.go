package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"cardwatch/pkg/models"
	"cardwatch/pkg/reconcile"
)

// Store holds the current account state and owns its persistence. All
// mutation goes through Ingest, which runs the read-merge-write cycle inside
// a single critical section so concurrent ingestions can never merge against
// a stale base. Readers only ever see a committed snapshot.
type Store struct {
	path    string
	persist bool
	logger  *log.Logger

	mu    sync.Mutex
	state models.State
}

func New(path string, persist bool, logger *log.Logger) *Store {
	return &Store{
		path:    path,
		persist: persist,
		logger:  logger,
		state:   models.NewState(),
	}
}

// Load reads the persisted snapshot, if any. A missing, unreadable or
// corrupt file leaves the store empty; startup must not fail because a
// previous run wrote garbage.
func (s *Store) Load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read state file, starting empty", "path", s.path, "err", err)
		}
		return
	}

	var state models.State
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn("failed to decode state file, starting empty", "path", s.path, "err", err)
		return
	}
	if state.Accounts == nil {
		state.Accounts = []models.Account{}
	}

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.logger.Info("loaded state", "path", s.path, "accounts", len(state.Accounts))
}

// Ingest merges parsed accounts into the stored state, stamps the ingestion
// and persists the result. Persistence is best effort: a failed write is
// logged and the in-memory state stays authoritative.
func (s *Store) Ingest(accounts []models.Account, source string) (models.State, *reconcile.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged, report := reconcile.Merge(s.state.Accounts, accounts)
	now := time.Now().UTC()
	s.state = models.State{
		Accounts:       merged,
		LastIngestedAt: &now,
		Source:         source,
	}

	if err := s.save(s.state); err != nil {
		s.logger.Error("failed to persist state", "path", s.path, "err", err)
	}
	return s.state.Clone(), report
}

// Snapshot returns a copy of the last committed state.
func (s *Store) Snapshot() models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// save writes the snapshot atomically: encode to a temp file, then rename
// over the real one, so a crash mid-write never leaves a corrupt file.
func (s *Store) save(state models.State) error {
	if !s.persist {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp state file: %w", err)
	}
	return os.Rename(tmp, s.path)
}
