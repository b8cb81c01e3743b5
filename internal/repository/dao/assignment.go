package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Pair struct {
	Giver    string `json:"giver"`
	Receiver string `json:"receiver"`
}

type Assignment struct {
	EventName string    `gorm:"primaryKey" json:"event_name"`
	DrawID    string    `gorm:"not null" json:"draw_id"`
	Pairs     []Pair    `gorm:"serializer:json;not null" json:"pairs"`
	DrawnAt   time.Time `gorm:"not null" json:"drawn_at"`
}

type AssignmentDAO struct {
	db *gorm.DB
}

func NewAssignmentDAO(db *gorm.DB) *AssignmentDAO {
	return &AssignmentDAO{
		db: db,
	}
}

func (d *AssignmentDAO) Find(ctx context.Context, eventName string) (Assignment, error) {
	var assignment Assignment

	result := d.db.WithContext(ctx).First(&assignment, "event_name = ?", eventName)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Assignment{}, ErrNotFound
		}

		return Assignment{}, storageErr("AssignmentDAO.Find", result.Error)
	}

	return assignment, nil
}

// Save upserts the record for assignment.EventName. Other events' rows are
// never touched.
func (d *AssignmentDAO) Save(ctx context.Context, assignment Assignment) error {
	result := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_name"}},
		UpdateAll: true,
	}).Create(&assignment)
	if result.Error != nil {
		return storageErr("AssignmentDAO.Save", result.Error)
	}

	return nil
}

// Delete reports whether a record was removed.
func (d *AssignmentDAO) Delete(ctx context.Context, eventName string) (bool, error) {
	result := d.db.WithContext(ctx).Where("event_name = ?", eventName).Delete(&Assignment{})
	if result.Error != nil {
		return false, storageErr("AssignmentDAO.Delete", result.Error)
	}

	return result.RowsAffected > 0, nil
}
