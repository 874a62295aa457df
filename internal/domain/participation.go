package domain

import "time"

// Participation statuses. They share their spelling with the answered invitation statuses.
const (
	ParticipationAccepted = "accepted"
	ParticipationDeclined = "declined"
	ParticipationMaybe    = "maybe"
)

// Participation is a row of the participations table. (user_id, event_id) is unique.
type Participation struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"participation_id"`
	UserID    uint      `gorm:"column:user_id;not null;uniqueIndex:idx_participation_user_event" json:"user_id"`
	EventID   uint      `gorm:"column:event_id;not null;uniqueIndex:idx_participation_user_event" json:"event_id"`
	Status    string    `gorm:"column:status;not null" json:"status"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (Participation) TableName() string {
	return "participations"
}

func IsParticipationStatus(s string) bool {
	switch s {
	case ParticipationAccepted, ParticipationDeclined, ParticipationMaybe:
		return true
	}
	return false
}
