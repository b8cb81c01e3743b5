package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/domain"
)

type EventRepository interface {
	List(ctx context.Context) ([]domain.Event, error)
	ReplaceAll(ctx context.Context, events []domain.Event) error
	Append(ctx context.Context, event domain.Event) error
}

// Drawer is the part of DrawService the event flow depends on.
type Drawer interface {
	Draw(ctx context.Context, eventName string, participants []string) (domain.AssignmentSet, error)
	Redraw(ctx context.Context, eventName string, participants []string) (domain.AssignmentSet, error)
	DeleteAssignment(ctx context.Context, eventName string) error
}

// EventService owns the event collection. Every mutation is a full
// read-modify-write of the collection and runs under mu.
type EventService struct {
	mu     sync.Mutex
	repo   EventRepository
	drawer Drawer
	now    func() time.Time
}

func NewEventService(repo EventRepository, drawer Drawer) *EventService {
	return &EventService{
		repo:   repo,
		drawer: drawer,
		now:    time.Now,
	}
}

// ListEvents returns events in stored order. An empty store yields an empty
// slice.
func (s *EventService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return events, nil
}

func (s *EventService) GetEvent(ctx context.Context, name string) (domain.Event, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.List -> %w", err)
	}

	i := indexOf(events, name)
	if i < 0 {
		return domain.Event{}, fmt.Errorf("event %q: %w", name, ErrNotFound)
	}

	return events[i], nil
}

func (s *EventService) CreateEvent(ctx context.Context, name, description, price, theme string) (domain.Event, error) {
	if err := requireFields(name, description, price, theme); err != nil {
		return domain.Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.repo.List(ctx)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.List -> %w", err)
	}
	if indexOf(events, name) >= 0 {
		return domain.Event{}, fmt.Errorf("event %q: %w", name, ErrDuplicateName)
	}

	now := s.now().UTC()
	event := domain.Event{
		Name:             name,
		Description:      description,
		Price:            price,
		Theme:            theme,
		RegistrationOpen: true,
		Participants:     []string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Append(ctx, event); err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Append -> %w", err)
	}

	zap.L().Info("event created", zap.String("event", name))

	return event, nil
}

// UpdateEvent overwrites the display fields and the registration flag. The
// roster is kept as is.
func (s *EventService) UpdateEvent(ctx context.Context, name, description, price, theme string, registrationOpen bool) (domain.Event, error) {
	if err := requireFields(name, description, price, theme); err != nil {
		return domain.Event{}, err
	}

	return s.mutate(ctx, name, func(e *domain.Event) error {
		e.Description = description
		e.Price = price
		e.Theme = theme
		e.RegistrationOpen = registrationOpen
		return nil
	})
}

// DeleteEvent removes the event and its assignment set. It reports whether
// the event existed; deleting a missing event is not an error. The assignment
// set is removed even when the event is already gone, so retrying after a
// failed cascade finishes the cleanup.
func (s *EventService) DeleteEvent(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.repo.List(ctx)
	if err != nil {
		return false, fmt.Errorf("s.repo.List -> %w", err)
	}

	i := indexOf(events, name)
	if i >= 0 {
		events = append(events[:i], events[i+1:]...)
		if err := s.repo.ReplaceAll(ctx, events); err != nil {
			return false, fmt.Errorf("s.repo.ReplaceAll -> %w", err)
		}
		zap.L().Info("event deleted", zap.String("event", name))
	}

	if err := s.drawer.DeleteAssignment(ctx, name); err != nil {
		return i >= 0, fmt.Errorf("s.drawer.DeleteAssignment -> %w", err)
	}

	return i >= 0, nil
}

// Register appends participant to the roster. Whether registration is open
// is left to the caller.
func (s *EventService) Register(ctx context.Context, name, participant string) (domain.Event, error) {
	if strings.TrimSpace(participant) == "" {
		return domain.Event{}, fmt.Errorf("%w: participant name is required", ErrInvalidInput)
	}

	return s.mutate(ctx, name, func(e *domain.Event) error {
		if e.HasParticipant(participant) {
			return fmt.Errorf("%q in %q: %w", participant, name, ErrAlreadyRegistered)
		}
		e.Participants = append(e.Participants, participant)
		return nil
	})
}

// Unregister removes participant, keeping the order of everyone else. A
// missing participant is reported as ErrNotFound.
func (s *EventService) Unregister(ctx context.Context, name, participant string) (domain.Event, error) {
	return s.mutate(ctx, name, func(e *domain.Event) error {
		for i, p := range e.Participants {
			if p == participant {
				e.Participants = append(e.Participants[:i], e.Participants[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("participant %q in %q: %w", participant, name, ErrNotFound)
	})
}

func (s *EventService) CloseRegistration(ctx context.Context, name string) error {
	_, err := s.mutate(ctx, name, func(e *domain.Event) error {
		e.RegistrationOpen = false
		return nil
	})
	return err
}

// DrawEvent closes registration of name and draws its current roster. If the
// draw fails, registration is reopened; an earlier draw of name is never
// touched by a failed call.
func (s *EventService) DrawEvent(ctx context.Context, name string) (domain.AssignmentSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.repo.List(ctx)
	if err != nil {
		return domain.AssignmentSet{}, fmt.Errorf("s.repo.List -> %w", err)
	}
	i := indexOf(events, name)
	if i < 0 {
		return domain.AssignmentSet{}, fmt.Errorf("event %q: %w", name, ErrNotFound)
	}
	if err := validateRoster(name, events[i].Participants); err != nil {
		return domain.AssignmentSet{}, err
	}

	previous := events[i]
	if previous.RegistrationOpen {
		events[i].RegistrationOpen = false
		events[i].UpdatedAt = s.now().UTC()
		if err := s.repo.ReplaceAll(ctx, events); err != nil {
			return domain.AssignmentSet{}, fmt.Errorf("s.repo.ReplaceAll -> %w", err)
		}
	}

	set, err := s.drawer.Draw(ctx, name, events[i].Participants)
	if err != nil {
		if previous.RegistrationOpen {
			events[i] = previous
			if rbErr := s.repo.ReplaceAll(ctx, events); rbErr != nil {
				zap.L().Error("registration left closed after failed draw", zap.String("event", name), zap.Error(rbErr))
				err = errors.Join(err, rbErr)
			}
		}
		return domain.AssignmentSet{}, fmt.Errorf("s.drawer.Draw -> %w", err)
	}

	return set, nil
}

// RedrawEvent replaces the draw of name using its current roster.
func (s *EventService) RedrawEvent(ctx context.Context, name string) (domain.AssignmentSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.repo.List(ctx)
	if err != nil {
		return domain.AssignmentSet{}, fmt.Errorf("s.repo.List -> %w", err)
	}
	i := indexOf(events, name)
	if i < 0 {
		return domain.AssignmentSet{}, fmt.Errorf("event %q: %w", name, ErrNotFound)
	}

	set, err := s.drawer.Redraw(ctx, name, events[i].Participants)
	if err != nil {
		return domain.AssignmentSet{}, fmt.Errorf("s.drawer.Redraw -> %w", err)
	}

	return set, nil
}

// mutate runs fn on the named event and writes the whole collection back.
// Nothing is written when fn fails.
func (s *EventService) mutate(ctx context.Context, name string, fn func(e *domain.Event) error) (domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.repo.List(ctx)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.List -> %w", err)
	}

	i := indexOf(events, name)
	if i < 0 {
		return domain.Event{}, fmt.Errorf("event %q: %w", name, ErrNotFound)
	}
	if err := fn(&events[i]); err != nil {
		return domain.Event{}, err
	}
	events[i].UpdatedAt = s.now().UTC()

	if err := s.repo.ReplaceAll(ctx, events); err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.ReplaceAll -> %w", err)
	}

	return events[i], nil
}

func indexOf(events []domain.Event, name string) int {
	for i, e := range events {
		if e.Name == name {
			return i
		}
	}
	return -1
}

func requireFields(name, description, price, theme string) error {
	fields := []struct{ key, value string }{
		{"name", name},
		{"description", description},
		{"price", price},
		{"theme", theme},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, f.key)
		}
	}
	return nil
}
