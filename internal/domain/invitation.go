package domain

import "time"

// Invitation statuses. Pending is the only initial state; answered invitations never return to pending.
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
	InvitationMaybe    = "maybe"
)

// Invitation is a row of the invitations table: UserID invited InviteeID to EventID.
type Invitation struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"invite_id"`
	EventID   uint      `gorm:"column:event_id;not null;index" json:"event_id"`
	UserID    uint      `gorm:"column:user_id;not null" json:"user_id"`
	InviteeID uint      `gorm:"column:invitee_id;not null;index" json:"invitee_id"`
	Status    string    `gorm:"column:status;not null;default:'pending'" json:"status"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (Invitation) TableName() string {
	return "invitations"
}

// IsInvitationStatus reports whether s is one of the four invitation statuses.
func IsInvitationStatus(s string) bool {
	switch s {
	case InvitationPending, InvitationAccepted, InvitationDeclined, InvitationMaybe:
		return true
	}
	return false
}
