// Package memstore keeps events and assignments in process memory. It backs
// the "memory" storage driver and the service tests.
package memstore

import (
	"context"
	"sync"

	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/repository/dao"
)

type EventStore struct {
	mu     sync.RWMutex
	events []dao.Event
}

func NewEventStore() *EventStore {
	return &EventStore{}
}

func (s *EventStore) List(_ context.Context) ([]dao.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneEvents(s.events), nil
}

func (s *EventStore) ReplaceAll(_ context.Context, events []dao.Event) error {
	seen := make(map[string]struct{}, len(events))
	for _, e := range events {
		if _, ok := seen[e.Name]; ok {
			return dao.ErrEventNameExists
		}
		seen[e.Name] = struct{}{}
	}

	next := cloneEvents(events)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = next

	return nil
}

func (s *EventStore) Append(_ context.Context, event dao.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.events {
		if e.Name == event.Name {
			return dao.ErrEventNameExists
		}
	}
	s.events = append(s.events, cloneEvent(event))

	return nil
}

type AssignmentStore struct {
	mu          sync.RWMutex
	assignments map[string]dao.Assignment
}

func NewAssignmentStore() *AssignmentStore {
	return &AssignmentStore{
		assignments: make(map[string]dao.Assignment),
	}
}

func (s *AssignmentStore) Find(_ context.Context, eventName string) (dao.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assignments[eventName]
	if !ok {
		return dao.Assignment{}, dao.ErrNotFound
	}

	return cloneAssignment(a), nil
}

func (s *AssignmentStore) Save(_ context.Context, assignment dao.Assignment) error {
	a := cloneAssignment(assignment)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[a.EventName] = a

	return nil
}

func (s *AssignmentStore) Delete(_ context.Context, eventName string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.assignments[eventName]
	delete(s.assignments, eventName)

	return ok, nil
}

func cloneEvents(events []dao.Event) []dao.Event {
	out := make([]dao.Event, len(events))
	for i, e := range events {
		out[i] = cloneEvent(e)
	}
	return out
}

func cloneEvent(e dao.Event) dao.Event {
	e.Participants = append([]string{}, e.Participants...)
	return e
}

func cloneAssignment(a dao.Assignment) dao.Assignment {
	a.Pairs = append([]dao.Pair{}, a.Pairs...)
	return a
}
