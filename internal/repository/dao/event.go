package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Event struct {
	Name             string    `gorm:"primaryKey" json:"name"`
	Position         int       `gorm:"not null;index" json:"-"`
	Description      string    `gorm:"not null" json:"description"`
	Price            string    `gorm:"not null" json:"price"`
	Theme            string    `gorm:"not null" json:"theme"`
	RegistrationOpen bool      `gorm:"not null" json:"registration_open"`
	Participants     []string  `gorm:"serializer:json;not null" json:"participants"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) List(ctx context.Context) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).Order("position").Find(&events)
	if result.Error != nil {
		return nil, storageErr("EventDAO.List", result.Error)
	}

	return events, nil
}

// ReplaceAll swaps the whole collection in one transaction. Slice order
// becomes the stored order.
func (d *EventDAO) ReplaceAll(ctx context.Context, events []Event) error {
	rows := make([]Event, len(events))
	copy(rows, events)
	for i := range rows {
		rows[i].Position = i
	}

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&Event{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEventNameExists
		}
		return storageErr("EventDAO.ReplaceAll", err)
	}

	return nil
}

func (d *EventDAO) Append(ctx context.Context, event Event) error {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int
		if err := tx.Model(&Event{}).Select("COALESCE(MAX(position), -1)").Scan(&last).Error; err != nil {
			return err
		}
		event.Position = last + 1
		if event.Participants == nil {
			event.Participants = []string{}
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEventNameExists
		}
		return storageErr("EventDAO.Append", err)
	}

	return nil
}
