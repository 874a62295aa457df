package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Event is a row of the events table. Date is a calendar date without a time component.
type Event struct {
	ID          uint           `gorm:"column:id;primaryKey;autoIncrement" json:"event_id"`
	OrganizerID uint           `gorm:"column:organizer_id;not null;index" json:"organizer_id"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	Description string         `gorm:"column:description;not null" json:"description"`
	Date        datatypes.Date `gorm:"column:date;not null" json:"date"`
	IsPublic    bool           `gorm:"column:is_public;not null;default:false" json:"is_public"`
	CreatedAt   time.Time      `json:"-"`
	UpdatedAt   time.Time      `json:"-"`
}

func (Event) TableName() string {
	return "events"
}
