package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"calendar/internal/calendar"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("not found")
var ErrInvalidEvent = errors.New("invalid event")

// Store is what the HTTP layer needs from event persistence.
type Store interface {
	List(ctx context.Context, userID uint64, r Range) ([]Event, error)
	Create(ctx context.Context, userID uint64, in Input) (Event, error)
	Update(ctx context.Context, userID, id uint64, in Input) (Event, error)
	Delete(ctx context.Context, userID, id uint64) error
}

// Normalize trims in and validates it. Title, date and a readable time are
// required; the time is re-padded to "HH:MM AM|PM".
func Normalize(in Input) (Input, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.CourseName = strings.TrimSpace(in.CourseName)
	if in.Title == "" || in.Date.IsZero() {
		return in, ErrInvalidEvent
	}
	t, ok := calendar.NormalizeTime(in.Time)
	if !ok {
		return in, ErrInvalidEvent
	}
	in.Time = t
	in.Date = calendar.DayOf(in.Date)
	return in, nil
}

type Service struct {
	DB *gorm.DB
}

func (s *Service) List(ctx context.Context, userID uint64, r Range) ([]Event, error) {
	q := s.DB.WithContext(ctx).Where("user_id = ?", userID)
	if !r.From.IsZero() {
		q = q.Where("date >= ?", calendar.DayOf(r.From))
	}
	if !r.To.IsZero() {
		q = q.Where("date <= ?", calendar.DayOf(r.To))
	}

	var rows []Event
	if err := q.Order("date asc, id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) Create(ctx context.Context, userID uint64, in Input) (Event, error) {
	in, err := Normalize(in)
	if err != nil {
		return Event{}, err
	}
	ev := Event{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		CourseName:  in.CourseName,
		Date:        in.Date,
		Time:        in.Time,
	}
	if err := s.DB.WithContext(ctx).Create(&ev).Error; err != nil {
		return Event{}, err
	}
	return ev, nil
}

// Update replaces every writable field of an event the user owns.
func (s *Service) Update(ctx context.Context, userID, id uint64, in Input) (Event, error) {
	in, err := Normalize(in)
	if err != nil {
		return Event{}, err
	}

	var ev Event
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", id, userID).
			First(&ev).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		ev.Title = in.Title
		ev.Description = in.Description
		ev.CourseName = in.CourseName
		ev.Date = in.Date
		ev.Time = in.Time
		ev.UpdatedAt = time.Now()
		return tx.Save(&ev).Error
	})
	return ev, err
}

func (s *Service) Delete(ctx context.Context, userID, id uint64) error {
	res := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&Event{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
