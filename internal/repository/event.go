package repository

import (
	"context"
	"fmt"

	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/domain"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/repository/dao"
)

var (
	ErrEventNameExists    = dao.ErrEventNameExists
	ErrNotFound           = dao.ErrNotFound
	ErrStorageUnavailable = dao.ErrStorageUnavailable
)

// EventDAO is the backing collection of events. Implementations must make
// ReplaceAll and Append visible to List as a whole or not at all.
type EventDAO interface {
	List(ctx context.Context) ([]dao.Event, error)
	ReplaceAll(ctx context.Context, events []dao.Event) error
	Append(ctx context.Context, event dao.Event) error
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) List(ctx context.Context) ([]domain.Event, error) {
	found, err := r.dao.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	events := make([]domain.Event, 0, len(found))
	for _, e := range found {
		events = append(events, r.daoToDomain(e))
	}

	return events, nil
}

func (r *EventRepository) ReplaceAll(ctx context.Context, events []domain.Event) error {
	rows := make([]dao.Event, len(events))
	for i, e := range events {
		rows[i] = r.domainToDao(e)
	}

	if err := r.dao.ReplaceAll(ctx, rows); err != nil {
		return fmt.Errorf("r.dao.ReplaceAll -> %w", err)
	}

	return nil
}

func (r *EventRepository) Append(ctx context.Context, event domain.Event) error {
	if err := r.dao.Append(ctx, r.domainToDao(event)); err != nil {
		return fmt.Errorf("r.dao.Append -> %w", err)
	}

	return nil
}

func (r *EventRepository) domainToDao(e domain.Event) dao.Event {
	return dao.Event{
		Name:             e.Name,
		Description:      e.Description,
		Price:            e.Price,
		Theme:            e.Theme,
		RegistrationOpen: e.RegistrationOpen,
		Participants:     append([]string{}, e.Participants...),
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func (r *EventRepository) daoToDomain(e dao.Event) domain.Event {
	return domain.Event{
		Name:             e.Name,
		Description:      e.Description,
		Price:            e.Price,
		Theme:            e.Theme,
		RegistrationOpen: e.RegistrationOpen,
		Participants:     append([]string{}, e.Participants...),
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}
