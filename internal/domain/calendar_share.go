package domain

import "time"

// CalendarShare grants SharedWithID read access to OwnerID's calendar.
type CalendarShare struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement" json:"calendar_id"`
	OwnerID      uint      `gorm:"column:owner_id;not null;uniqueIndex:idx_calendar_owner_shared" json:"owner_id"`
	SharedWithID uint      `gorm:"column:shared_with_id;not null;uniqueIndex:idx_calendar_owner_shared;index" json:"shared_with_id"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

func (CalendarShare) TableName() string {
	return "calendar_shares"
}
