// Package filestore persists events and assignments as JSON documents in a
// directory:
//
//	<dir>/events.json               every event, in stored order
//	<dir>/assignments/<digest>.json one document per drawn event, named by
//	                                the hex SHA-256 of the event name
//
// Every write goes to a temporary file in the target directory that is then
// renamed over the old one, so readers see either the previous or the new
// document and never a partial one. Assignment documents are separate files,
// so rewriting one event's draw cannot damage another's.
package filestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/repository/dao"
)

const (
	eventsFile     = "events.json"
	assignmentsDir = "assignments"
)

type Store struct {
	mu  sync.RWMutex
	dir string
}

// Open prepares dir for use. Missing directories are created; missing files
// are treated as empty collections on read.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, assignmentsDir), 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll -> %w: %w", dao.ErrStorageUnavailable, err)
	}

	return &Store{dir: dir}, nil
}

// Events returns a view of s that satisfies the event DAO contract.
func (s *Store) Events() *EventStore {
	return &EventStore{s: s}
}

// Assignments returns a view of s that satisfies the assignment DAO contract.
func (s *Store) Assignments() *AssignmentStore {
	return &AssignmentStore{s: s}
}

type EventStore struct {
	s *Store
}

func (e *EventStore) List(_ context.Context) ([]dao.Event, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()

	return e.s.readEvents()
}

func (e *EventStore) ReplaceAll(_ context.Context, events []dao.Event) error {
	seen := make(map[string]struct{}, len(events))
	for _, ev := range events {
		if _, ok := seen[ev.Name]; ok {
			return dao.ErrEventNameExists
		}
		seen[ev.Name] = struct{}{}
	}

	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	return e.s.writeJSON(filepath.Join(e.s.dir, eventsFile), normalize(events))
}

func (e *EventStore) Append(_ context.Context, event dao.Event) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	events, err := e.s.readEvents()
	if err != nil {
		return err
	}
	for _, ev := range events {
		if ev.Name == event.Name {
			return dao.ErrEventNameExists
		}
	}

	return e.s.writeJSON(filepath.Join(e.s.dir, eventsFile), normalize(append(events, event)))
}

type AssignmentStore struct {
	s *Store
}

func (a *AssignmentStore) Find(_ context.Context, eventName string) (dao.Assignment, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	data, err := os.ReadFile(a.s.assignmentPath(eventName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return dao.Assignment{}, dao.ErrNotFound
		}
		return dao.Assignment{}, fmt.Errorf("os.ReadFile -> %w: %w", dao.ErrStorageUnavailable, err)
	}

	var assignment dao.Assignment
	if err := json.Unmarshal(data, &assignment); err != nil {
		return dao.Assignment{}, fmt.Errorf("json.Unmarshal -> %w: %w", dao.ErrStorageUnavailable, err)
	}

	return assignment, nil
}

func (a *AssignmentStore) Save(_ context.Context, assignment dao.Assignment) error {
	if assignment.Pairs == nil {
		assignment.Pairs = []dao.Pair{}
	}

	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	return a.s.writeJSON(a.s.assignmentPath(assignment.EventName), assignment)
}

func (a *AssignmentStore) Delete(_ context.Context, eventName string) (bool, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	err := os.Remove(a.s.assignmentPath(eventName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("os.Remove -> %w: %w", dao.ErrStorageUnavailable, err)
	}

	return true, nil
}

func (s *Store) readEvents() ([]dao.Event, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, eventsFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []dao.Event{}, nil
		}
		return nil, fmt.Errorf("os.ReadFile -> %w: %w", dao.ErrStorageUnavailable, err)
	}

	var events []dao.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("json.Unmarshal -> %w: %w", dao.ErrStorageUnavailable, err)
	}

	return normalize(events), nil
}

// assignmentPath maps any event name to a fixed-length file name inside the
// assignments directory. The name itself is kept in the document.
func (s *Store) assignmentPath(eventName string) string {
	sum := sha256.Sum256([]byte(eventName))
	return filepath.Join(s.dir, assignmentsDir, hex.EncodeToString(sum[:])+".json")
}

func (s *Store) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent -> %w: %w", dao.ErrStorageUnavailable, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("os.CreateTemp -> %w: %w", dao.ErrStorageUnavailable, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("tmp.Write -> %w: %w", dao.ErrStorageUnavailable, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("tmp.Sync -> %w: %w", dao.ErrStorageUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tmp.Close -> %w: %w", dao.ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("os.Rename -> %w: %w", dao.ErrStorageUnavailable, err)
	}

	return nil
}

// normalize gives every event a non-nil roster so the document always
// carries "participants": [] instead of null.
func normalize(events []dao.Event) []dao.Event {
	out := make([]dao.Event, len(events))
	for i, e := range events {
		if e.Participants == nil {
			e.Participants = []string{}
		}
		out[i] = e
	}
	return out
}
