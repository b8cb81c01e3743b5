package repository

import (
	"context"
	"fmt"

	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/domain"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/repository/dao"
)

// AssignmentDAO stores one record per event name. Save replaces the record
// for that name only.
type AssignmentDAO interface {
	Find(ctx context.Context, eventName string) (dao.Assignment, error)
	Save(ctx context.Context, assignment dao.Assignment) error
	Delete(ctx context.Context, eventName string) (bool, error)
}

type AssignmentRepository struct {
	dao AssignmentDAO
}

func NewAssignmentRepository(dao AssignmentDAO) *AssignmentRepository {
	return &AssignmentRepository{
		dao: dao,
	}
}

func (r *AssignmentRepository) Find(ctx context.Context, eventName string) (domain.AssignmentSet, error) {
	found, err := r.dao.Find(ctx, eventName)
	if err != nil {
		return domain.AssignmentSet{}, fmt.Errorf("r.dao.Find -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *AssignmentRepository) Save(ctx context.Context, set domain.AssignmentSet) error {
	if err := r.dao.Save(ctx, r.domainToDao(set)); err != nil {
		return fmt.Errorf("r.dao.Save -> %w", err)
	}

	return nil
}

func (r *AssignmentRepository) Delete(ctx context.Context, eventName string) (bool, error) {
	deleted, err := r.dao.Delete(ctx, eventName)
	if err != nil {
		return false, fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return deleted, nil
}

func (r *AssignmentRepository) domainToDao(a domain.AssignmentSet) dao.Assignment {
	pairs := make([]dao.Pair, len(a.Pairs))
	for i, p := range a.Pairs {
		pairs[i] = dao.Pair{Giver: p.Giver, Receiver: p.Receiver}
	}

	return dao.Assignment{
		EventName: a.EventName,
		DrawID:    a.DrawID,
		Pairs:     pairs,
		DrawnAt:   a.DrawnAt,
	}
}

func (r *AssignmentRepository) daoToDomain(a dao.Assignment) domain.AssignmentSet {
	pairs := make([]domain.Pair, len(a.Pairs))
	for i, p := range a.Pairs {
		pairs[i] = domain.Pair{Giver: p.Giver, Receiver: p.Receiver}
	}

	return domain.AssignmentSet{
		EventName: a.EventName,
		DrawID:    a.DrawID,
		Pairs:     pairs,
		DrawnAt:   a.DrawnAt,
	}
}
