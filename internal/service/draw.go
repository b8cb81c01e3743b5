package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/domain"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/pkg/random"
)

type AssignmentRepository interface {
	Find(ctx context.Context, eventName string) (domain.AssignmentSet, error)
	Save(ctx context.Context, set domain.AssignmentSet) error
	Delete(ctx context.Context, eventName string) (bool, error)
}

type DrawOption func(*DrawService)

// WithRand replaces the crypto-seeded shuffle source.
func WithRand(rng *rand.Rand) DrawOption {
	return func(s *DrawService) {
		s.rng = rng
	}
}

func WithClock(now func() time.Time) DrawOption {
	return func(s *DrawService) {
		s.now = now
	}
}

// DrawService computes and stores assignment sets. All writes, and every use
// of rng, happen under mu.
type DrawService struct {
	mu   sync.Mutex
	repo AssignmentRepository
	rng  *rand.Rand
	now  func() time.Time
}

func NewDrawService(repo AssignmentRepository, opts ...DrawOption) (*DrawService, error) {
	s := &DrawService{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.rng == nil {
		rng, err := random.New()
		if err != nil {
			return nil, fmt.Errorf("random.New -> %w", err)
		}
		s.rng = rng
	}

	return s, nil
}

// Draw assigns every participant a receiver and stores the result under
// eventName, replacing any earlier draw.
func (s *DrawService) Draw(ctx context.Context, eventName string, participants []string) (domain.AssignmentSet, error) {
	if err := validateRoster(eventName, participants); err != nil {
		return domain.AssignmentSet{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.newSet(eventName, participants)
	if err := s.repo.Save(ctx, set); err != nil {
		return domain.AssignmentSet{}, fmt.Errorf("s.repo.Save -> %w", err)
	}

	zap.L().Info("assignments drawn",
		zap.String("event", eventName),
		zap.String("draw_id", set.DrawID),
		zap.Int("participants", len(set.Pairs)),
	)

	return set, nil
}

// Redraw discards the current draw for eventName and draws again. If the new
// set cannot be stored, the previous one is put back; if that also fails the
// returned error wraps ErrStorageUnavailable and names both failures.
func (s *DrawService) Redraw(ctx context.Context, eventName string, participants []string) (domain.AssignmentSet, error) {
	if err := validateRoster(eventName, participants); err != nil {
		return domain.AssignmentSet{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, err := s.repo.Find(ctx, eventName)
	hadPrevious := err == nil
	if err != nil && !errors.Is(err, ErrNotFound) {
		return domain.AssignmentSet{}, fmt.Errorf("s.repo.Find -> %w", err)
	}

	if _, err := s.repo.Delete(ctx, eventName); err != nil {
		return domain.AssignmentSet{}, fmt.Errorf("s.repo.Delete -> %w", err)
	}

	set := s.newSet(eventName, participants)
	if err := s.repo.Save(ctx, set); err != nil {
		if !hadPrevious {
			return domain.AssignmentSet{}, fmt.Errorf("s.repo.Save -> %w", err)
		}
		if restoreErr := s.repo.Save(ctx, previous); restoreErr != nil {
			zap.L().Error("previous draw lost during redraw",
				zap.String("event", eventName),
				zap.String("draw_id", previous.DrawID),
				zap.Error(restoreErr),
			)
			return domain.AssignmentSet{}, fmt.Errorf("redraw %q: %w: %w", eventName, ErrStorageUnavailable, errors.Join(err, restoreErr))
		}
		return domain.AssignmentSet{}, fmt.Errorf("s.repo.Save -> %w", err)
	}

	zap.L().Info("assignments redrawn",
		zap.String("event", eventName),
		zap.String("draw_id", set.DrawID),
		zap.String("previous_draw_id", previous.DrawID),
	)

	return set, nil
}

// Lookup returns the receiver assigned to giver.
func (s *DrawService) Lookup(ctx context.Context, eventName, giver string) (string, error) {
	set, err := s.repo.Find(ctx, eventName)
	if err != nil {
		return "", fmt.Errorf("s.repo.Find -> %w", err)
	}

	receiver, ok := set.ReceiverOf(giver)
	if !ok {
		return "", ErrParticipantNotFound
	}

	return receiver, nil
}

func (s *DrawService) Results(ctx context.Context, eventName string) ([]domain.Pair, error) {
	set, err := s.Assignment(ctx, eventName)
	if err != nil {
		return nil, err
	}

	return set.Pairs, nil
}

// Assignment returns the whole stored set, including its draw ID.
func (s *DrawService) Assignment(ctx context.Context, eventName string) (domain.AssignmentSet, error) {
	set, err := s.repo.Find(ctx, eventName)
	if err != nil {
		return domain.AssignmentSet{}, fmt.Errorf("s.repo.Find -> %w", err)
	}

	return set, nil
}

// DeleteAssignment is a no-op when eventName has no draw.
func (s *DrawService) DeleteAssignment(ctx context.Context, eventName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted, err := s.repo.Delete(ctx, eventName)
	if err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}
	if deleted {
		zap.L().Info("assignments deleted", zap.String("event", eventName))
	}

	return nil
}

// newSet must be called with mu held.
func (s *DrawService) newSet(eventName string, participants []string) domain.AssignmentSet {
	order := append([]string(nil), participants...)
	s.rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	return domain.AssignmentSet{
		EventName: eventName,
		DrawID:    uuid.NewString(),
		DrawnAt:   s.now().UTC(),
		Pairs:     pairCycle(order),
	}
}

// pairCycle links each position to the next one, wrapping around. With two or
// more distinct names nobody is paired with themself.
func pairCycle(order []string) []domain.Pair {
	n := len(order)
	pairs := make([]domain.Pair, n)
	for i, giver := range order {
		pairs[i] = domain.Pair{Giver: giver, Receiver: order[(i+1)%n]}
	}
	return pairs
}

func validateRoster(eventName string, participants []string) error {
	if strings.TrimSpace(eventName) == "" {
		return fmt.Errorf("%w: event name is required", ErrInvalidInput)
	}
	if len(participants) < 2 {
		return ErrInsufficientParticipants
	}

	seen := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: empty participant name", ErrInvalidInput)
		}
		if _, ok := seen[p]; ok {
			return fmt.Errorf("%w: %q appears twice", ErrInvalidInput, p)
		}
		seen[p] = struct{}{}
	}

	return nil
}
