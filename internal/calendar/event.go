package calendar

import (
	"sort"
	"sync"
	"time"
)

// Event is one dated entry on the calendar. Date is always a local midnight;
// the time of day lives in Time as "hh:mm AM|PM".
type Event struct {
	ID         string    `json:"id"`
	Date       time.Time `json:"date"`
	Title      string    `json:"title"`
	CourseName string    `json:"courseName,omitempty"`
	Time       string    `json:"time"`
	Desc       string    `json:"desc,omitempty"`
}

// DayOf truncates t to midnight in its own location.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay compares calendar days, ignoring time of day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Store keeps events in insertion order.
type Store struct {
	mu     sync.RWMutex
	events []Event
}

func NewStore(events ...Event) *Store {
	s := &Store{}
	s.Add(events...)
	return s
}

// Add appends events, normalizing their dates to the day bucket.
func (s *Store) Add(events ...Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range events {
		ev.Date = DayOf(ev.Date)
		s.events = append(s.events, ev)
	}
}

func (s *Store) Get(id string) (Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ev := range s.events {
		if ev.ID == id {
			return ev, true
		}
	}
	return Event{}, false
}

// Replace swaps the record with ev.ID for ev. It reports false when no such
// record exists.
func (s *Store) Replace(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].ID == ev.ID {
			ev.Date = DayOf(ev.Date)
			s.events[i] = ev
			return true
		}
	}
	return false
}

func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return true
		}
	}
	return false
}

// All returns a copy of the events in insertion order.
func (s *Store) All() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// OnDay returns the events whose date falls on day.
func (s *Store) OnDay(day time.Time) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, ev := range s.events {
		if SameDay(ev.Date, day) {
			out = append(out, ev)
		}
	}
	return out
}

// SortChronological orders events by day and then by time of day. Events
// with an unreadable time sort first within their day.
func SortChronological(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !SameDay(a.Date, b.Date) {
			return a.Date.Before(b.Date)
		}
		return minutesOfDay(a.Time) < minutesOfDay(b.Time)
	})
}

// Start combines Date and Time into an instant. ok is false when Time does
// not parse, in which case the day itself is returned.
func (ev Event) Start() (start time.Time, ok bool) {
	mins := minutesOfDay(ev.Time)
	if mins < 0 {
		return ev.Date, false
	}
	y, m, d := ev.Date.Date()
	return time.Date(y, m, d, mins/60, mins%60, 0, 0, ev.Date.Location()), true
}
