package participations

import (
	"context"
	"errors"
	"strings"

	"planner-backend/internal/domain"
	"planner-backend/internal/infrastructure/database"

	"gorm.io/gorm"
)

var (
	ErrParticipationNotFound = errors.New("Participation not found")
	ErrInvalidStatus         = errors.New("Invalid status. Use: accepted, declined, maybe")
	ErrDuplicate             = errors.New("Participation already exists")
	ErrMissingReference      = errors.New("user_id and event_id are required")
)

// Service owns the participations table. A user has at most one participation per event.
type Service struct {
	DB *gorm.DB
}

type CreateInput struct {
	UserID  uint   `json:"user_id"`
	EventID uint   `json:"event_id"`
	Status  string `json:"status"`
}

type Filter struct {
	UserID  uint
	EventID uint
	Status  string
}

func normalizeStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Create inserts a participation; a second row for the same (user, event) is ErrDuplicate.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Participation, error) {
	if in.UserID == 0 || in.EventID == 0 {
		return nil, ErrMissingReference
	}
	status := normalizeStatus(in.Status)
	if !domain.IsParticipationStatus(status) {
		return nil, ErrInvalidStatus
	}
	p := &domain.Participation{UserID: in.UserID, EventID: in.EventID, Status: status}
	if err := s.DB.WithContext(ctx).Create(p).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*domain.Participation, error) {
	var p domain.Participation
	if err := s.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipationNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]domain.Participation, error) {
	status := normalizeStatus(f.Status)
	if status != "" && !domain.IsParticipationStatus(status) {
		return nil, ErrInvalidStatus
	}
	list := make([]domain.Participation, 0)
	q := s.DB.WithContext(ctx).Order("id ASC")
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.EventID != 0 {
		q = q.Where("event_id = ?", f.EventID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateStatus sets the status. Any of the three statuses may follow any other.
func (s *Service) UpdateStatus(ctx context.Context, id uint, status string) (*domain.Participation, error) {
	status = normalizeStatus(status)
	if !domain.IsParticipationStatus(status) {
		return nil, ErrInvalidStatus
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == status {
		return p, nil
	}
	if err := s.DB.WithContext(ctx).Model(p).Update("status", status).Error; err != nil {
		return nil, err
	}
	p.Status = status
	return p, nil
}
