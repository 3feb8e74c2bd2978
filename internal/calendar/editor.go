package calendar

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxTitleLen = 20
	MaxDescLen  = 60
)

var (
	ErrMissingFields = errors.New("please fill in all required fields")
	ErrPastDate      = errors.New("cannot add events to past dates")
	ErrInvalidTime   = errors.New("invalid time of day")
	ErrTooLong       = errors.New("field exceeds its length limit")
)

// Input is the editor form. Hours, Minutes and AMPM are kept as the user
// typed them; FormatTime pads them on commit.
type Input struct {
	Title      string
	Hours      string
	Minutes    string
	AMPM       string
	CourseName string
	Desc       string
}

// SetTitle ignores values longer than MaxTitleLen, like the form's input.
func (in *Input) SetTitle(v string) bool {
	if utf8.RuneCountInString(v) > MaxTitleLen {
		return false
	}
	in.Title = v
	return true
}

func (in *Input) SetDesc(v string) bool {
	if utf8.RuneCountInString(v) > MaxDescLen {
		return false
	}
	in.Desc = v
	return true
}

func (in Input) validate() error {
	if strings.TrimSpace(in.Title) == "" || in.Hours == "" || in.Minutes == "" {
		return ErrMissingFields
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Title)) > MaxTitleLen ||
		utf8.RuneCountInString(strings.TrimSpace(in.Desc)) > MaxDescLen {
		return ErrTooLong
	}
	h, ok := clockField(in.Hours)
	if !ok || h < 1 || h > 12 {
		return ErrInvalidTime
	}
	m, ok := clockField(in.Minutes)
	if !ok || m > 59 {
		return ErrInvalidTime
	}
	switch in.AMPM {
	case "", "AM", "PM":
	default:
		return ErrInvalidTime
	}
	return nil
}

func (in Input) toEvent(id string, date time.Time) Event {
	return Event{
		ID:         id,
		Date:       DayOf(date),
		Title:      strings.TrimSpace(in.Title),
		CourseName: strings.TrimSpace(in.CourseName),
		Time:       FormatTime(in.Hours, in.Minutes, in.AMPM),
		Desc:       strings.TrimSpace(in.Desc),
	}
}

// Editor commits form input to a Store. It never touches the network.
type Editor struct {
	Store *Store
	// Now and NewID default to time.Now and uuid strings.
	Now   func() time.Time
	NewID func() string

	selected time.Time
}

func NewEditor(store *Store) *Editor {
	return &Editor{Store: store}
}

func (e *Editor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Editor) newID() string {
	if e.NewID != nil {
		return e.NewID()
	}
	return uuid.NewString()
}

// IsPast reports whether day is before today.
func (e *Editor) IsPast(day time.Time) bool {
	return DayOf(day).Before(DayOf(e.now()))
}

// Select picks the day a new event will be created on. Past days are
// refused.
func (e *Editor) Select(day time.Time) error {
	if e.IsPast(day) {
		return ErrPastDate
	}
	e.selected = DayOf(day)
	return nil
}

// Selected is the last day accepted by Select, or the zero time.
func (e *Editor) Selected() time.Time { return e.selected }

// Create validates in and appends a new event on date. The past-date rule is
// checked again here because the day may have rolled over since Select.
func (e *Editor) Create(date time.Time, in Input) (Event, error) {
	if e.IsPast(date) {
		return Event{}, ErrPastDate
	}
	if err := in.validate(); err != nil {
		return Event{}, err
	}
	ev := in.toEvent(e.newID(), date)
	e.Store.Add(ev)
	return ev, nil
}

// Update replaces every field of the event with id. A missing id is a no-op
// and reports false.
func (e *Editor) Update(id string, date time.Time, in Input) (bool, error) {
	if err := in.validate(); err != nil {
		return false, err
	}
	return e.Store.Replace(in.toEvent(id, date)), nil
}

// Remove deletes the event with id once confirm approves it.
func (e *Editor) Remove(id string, confirm func(Event) bool) bool {
	ev, ok := e.Store.Get(id)
	if !ok || confirm == nil || !confirm(ev) {
		return false
	}
	return e.Store.Remove(id)
}

// Prefill loads an existing event back into form fields.
func (e *Editor) Prefill(id string) (Input, time.Time, bool) {
	ev, ok := e.Store.Get(id)
	if !ok {
		return Input{}, time.Time{}, false
	}
	h, m, ampm := SplitTime(ev.Time)
	return Input{
		Title:      ev.Title,
		Hours:      h,
		Minutes:    m,
		AMPM:       ampm,
		CourseName: ev.CourseName,
		Desc:       ev.Desc,
	}, ev.Date, true
}
