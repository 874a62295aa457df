package invitations

import (
	"context"
	"errors"
	"strings"

	"planner-backend/internal/domain"

	"gorm.io/gorm"
)

var (
	ErrInvitationNotFound = errors.New("Invitation not found")
	ErrInvalidStatus      = errors.New("Invalid status. Use: pending, accepted, declined, maybe")
	ErrReopen             = errors.New("An answered invitation cannot return to pending")
	ErrMissingReference   = errors.New("user_id, event_id and invitee_id are required")
)

// Service owns the invitations table.
type Service struct {
	DB *gorm.DB
}

type CreateInput struct {
	UserID    uint `json:"user_id"`
	EventID   uint `json:"event_id"`
	InviteeID uint `json:"invitee_id"`
}

type Filter struct {
	UserID    uint
	EventID   uint
	InviteeID uint
	Status    string
}

// Create stores a pending invitation. Referenced ids are validated by the gateway.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Invitation, error) {
	if in.UserID == 0 || in.EventID == 0 || in.InviteeID == 0 {
		return nil, ErrMissingReference
	}
	inv := &domain.Invitation{
		UserID:    in.UserID,
		EventID:   in.EventID,
		InviteeID: in.InviteeID,
		Status:    domain.InvitationPending,
	}
	if err := s.DB.WithContext(ctx).Create(inv).Error; err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*domain.Invitation, error) {
	var inv domain.Invitation
	if err := s.DB.WithContext(ctx).First(&inv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// List returns invitations matching every non-zero filter field, oldest first.
func (s *Service) List(ctx context.Context, f Filter) ([]domain.Invitation, error) {
	f.Status = strings.ToLower(strings.TrimSpace(f.Status))
	if f.Status != "" && !domain.IsInvitationStatus(f.Status) {
		return nil, ErrInvalidStatus
	}
	list := make([]domain.Invitation, 0)
	q := s.DB.WithContext(ctx).Order("id ASC")
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.EventID != 0 {
		q = q.Where("event_id = ?", f.EventID)
	}
	if f.InviteeID != 0 {
		q = q.Where("invitee_id = ?", f.InviteeID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateStatus answers an invitation. Any status among accepted, declined and maybe may follow
// pending or another answer; setting the current status again is a no-op. Only the way back to
// pending is refused.
func (s *Service) UpdateStatus(ctx context.Context, id uint, status string) (*domain.Invitation, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !domain.IsInvitationStatus(status) {
		return nil, ErrInvalidStatus
	}

	var out *domain.Invitation
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv domain.Invitation
		if err := tx.First(&inv, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvitationNotFound
			}
			return err
		}
		if inv.Status == status {
			out = &inv
			return nil
		}
		if status == domain.InvitationPending {
			return ErrReopen
		}
		if err := tx.Model(&inv).Update("status", status).Error; err != nil {
			return err
		}
		inv.Status = status
		out = &inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
