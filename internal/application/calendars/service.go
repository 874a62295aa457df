package calendars

import (
	"context"
	"errors"

	"planner-backend/internal/domain"
	"planner-backend/internal/infrastructure/database"

	"gorm.io/gorm"
)

var (
	ErrShareNotFound    = errors.New("Calendar share not found")
	ErrSelfShare        = errors.New("User cannot share calendar with themselves.")
	ErrAlreadyShared    = errors.New("Calendar already shared with this user")
	ErrMissingReference = errors.New("owner_id and shared_with_id are required")
)

// Service owns the calendar_shares table.
type Service struct {
	DB *gorm.DB
}

type Filter struct {
	OwnerID      uint
	SharedWithID uint
}

// Create grants sharedWithID read access to ownerID's calendar.
func (s *Service) Create(ctx context.Context, ownerID, sharedWithID uint) (*domain.CalendarShare, error) {
	if ownerID == 0 || sharedWithID == 0 {
		return nil, ErrMissingReference
	}
	if ownerID == sharedWithID {
		return nil, ErrSelfShare
	}
	share := &domain.CalendarShare{OwnerID: ownerID, SharedWithID: sharedWithID}
	if err := s.DB.WithContext(ctx).Create(share).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrAlreadyShared
		}
		return nil, err
	}
	return share, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*domain.CalendarShare, error) {
	var share domain.CalendarShare
	if err := s.DB.WithContext(ctx).First(&share, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShareNotFound
		}
		return nil, err
	}
	return &share, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]domain.CalendarShare, error) {
	list := make([]domain.CalendarShare, 0)
	q := s.DB.WithContext(ctx).Order("id ASC")
	if f.OwnerID != 0 {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	if f.SharedWithID != 0 {
		q = q.Where("shared_with_id = ?", f.SharedWithID)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
