package events

import (
	"strconv"
	"time"

	"calendar/internal/calendar"
)

// Event is a persisted calendar event owned by one user.
type Event struct {
	ID          uint64    `gorm:"primaryKey"`
	UserID      uint64    `gorm:"index;not null"`
	Title       string    `gorm:"type:text;not null"`
	Description string    `gorm:"type:text;not null;default:''"`
	CourseName  string    `gorm:"type:text;not null;default:''"`
	Date        time.Time `gorm:"type:date;index;not null"`
	Time        string    `gorm:"type:text;not null"`
	CreatedAt   time.Time `gorm:"not null;default:now()"`
	UpdatedAt   time.Time `gorm:"not null;default:now()"`
}

// Calendar converts the row to the client-side event shape.
func (e Event) Calendar() calendar.Event {
	return calendar.Event{
		ID:         strconv.FormatUint(e.ID, 10),
		Date:       calendar.DayOf(e.Date),
		Title:      e.Title,
		CourseName: e.CourseName,
		Time:       e.Time,
		Desc:       e.Description,
	}
}

// Input is the writable part of an Event.
type Input struct {
	Title       string
	Description string
	CourseName  string
	Date        time.Time
	Time        string
}

// Range filters List by day, both ends inclusive. Zero ends are open.
type Range struct {
	From time.Time
	To   time.Time
}
