package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/marinavibecoder/telegram-notification-bot/internal/domain"
)

// fileState is the on-disk layout. A slice (not a map) keeps insertion
// order, which /list and /all output depends on.
type fileState struct {
	Schedules []domain.Schedule `json:"schedules"`
}

// FileStore persists all schedules in a single human-inspectable JSON file.
// Every mutation saves before returning, so the file never lags the
// in-memory state by more than the in-flight call.
type FileStore struct {
	mu        sync.Mutex
	path      string
	schedules []domain.Schedule
}

// Open loads the store at path. A missing file is not an error: the store
// starts empty and the file is created immediately. Present-but-unparsable
// content is ErrStorageCorrupt and the file is left untouched.
func Open(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	s := &FileStore{path: path}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := s.save(); err != nil {
			return nil, fmt.Errorf("init state file: %w", err)
		}
		return s, nil
	case err != nil:
		return nil, err
	}

	var st fileState
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrStorageCorrupt, path, err)
	}
	for i := range st.Schedules {
		if err := st.Schedules[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrStorageCorrupt, path, err)
		}
	}
	s.schedules = st.Schedules
	return s, nil
}

// Get returns a copy of the named schedule.
func (s *FileStore) Get(name string) (domain.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(name); i >= 0 {
		return s.schedules[i], nil
	}
	return domain.Schedule{}, fmt.Errorf("%w: %q", domain.ErrNotFound, name)
}

// Put inserts or replaces a schedule and persists the full state.
// New names append, so insertion order survives replacements.
func (s *FileStore) Put(sch domain.Schedule) error {
	if err := sch.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(sch.Name); i >= 0 {
		s.schedules[i] = sch
	} else {
		s.schedules = append(s.schedules, sch)
	}
	return s.save()
}

// Remove deletes the named schedule and persists.
func (s *FileStore) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", domain.ErrNotFound, name)
	}
	s.schedules = append(s.schedules[:i], s.schedules[i+1:]...)
	return s.save()
}

// List returns copies of all schedules in insertion order.
func (s *FileStore) List() []domain.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Schedule, len(s.schedules))
	copy(out, s.schedules)
	return out
}

// Len reports the number of schedules.
func (s *FileStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.schedules)
}

func (s *FileStore) index(name string) int {
	for i := range s.schedules {
		if s.schedules[i].Name == name {
			return i
		}
	}
	return -1
}

// save writes the state to a temp file and renames it into place, so a
// crash mid-write can never truncate the previous state.
func (s *FileStore) save() error {
	scheds := s.schedules
	if scheds == nil {
		scheds = []domain.Schedule{}
	}
	data, err := json.MarshalIndent(fileState{Schedules: scheds}, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
