package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"planner-backend/internal/domain"
	"planner-backend/internal/pkg/validation"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound    = errors.New("Event not found")
	ErrTitleRequired    = errors.New("Title is required")
	ErrOrganizerMissing = errors.New("organizer_id is required")
)

// Service owns the events table.
type Service struct {
	DB *gorm.DB
}

type CreateInput struct {
	OrganizerID uint   `json:"organizer_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	IsPublic    bool   `json:"is_public"`
}

// Filter narrows List. Zero values mean "any".
type Filter struct {
	PublicOnly  bool
	OrganizerID uint
}

// Create stores an event. The organizer's existence is checked by the caller (the gateway).
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Event, error) {
	if in.OrganizerID == 0 {
		return nil, ErrOrganizerMissing
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	day, err := validation.ParseDate(in.Date)
	if err != nil {
		return nil, err
	}
	e := &domain.Event{
		OrganizerID: in.OrganizerID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Date:        datatypes.Date(day),
		IsPublic:    in.IsPublic,
	}
	if err := s.DB.WithContext(ctx).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*domain.Event, error) {
	var e domain.Event
	if err := s.DB.WithContext(ctx).First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

// List returns events ordered by date, then id.
func (s *Service) List(ctx context.Context, f Filter) ([]domain.Event, error) {
	list := make([]domain.Event, 0)
	q := s.DB.WithContext(ctx).Order("date ASC").Order("id ASC")
	if f.PublicOnly {
		q = q.Where("is_public = ?", true)
	}
	if f.OrganizerID != 0 {
		q = q.Where("organizer_id = ?", f.OrganizerID)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Day formats an event date as YYYY-MM-DD.
func Day(d datatypes.Date) string {
	return time.Time(d).UTC().Format("2006-01-02")
}
