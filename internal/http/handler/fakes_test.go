package handler

import (
	"context"
	"sync"
	"time"

	"calendar/internal/auth"
	"calendar/internal/events"
)

type memUsers struct {
	mu    sync.Mutex
	next  uint64
	users map[string]auth.User
}

func newMemUsers() *memUsers { return &memUsers{users: make(map[string]auth.User)} }

func (m *memUsers) Create(_ context.Context, u *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Username]; ok {
		return auth.ErrUsernameTaken
	}
	m.next++
	u.ID = m.next
	m.users[u.Username] = *u
	return nil
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return u, nil
}

type memEvents struct {
	mu   sync.Mutex
	next uint64
	rows []events.Event
}

func (m *memEvents) List(_ context.Context, userID uint64, r events.Range) ([]events.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []events.Event
	for _, e := range m.rows {
		if e.UserID != userID {
			continue
		}
		if !r.From.IsZero() && e.Date.Before(r.From) {
			continue
		}
		if !r.To.IsZero() && e.Date.After(r.To) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *memEvents) Create(_ context.Context, userID uint64, in events.Input) (events.Event, error) {
	in, err := events.Normalize(in)
	if err != nil {
		return events.Event{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	e := events.Event{
		ID: m.next, UserID: userID, Title: in.Title, Description: in.Description,
		CourseName: in.CourseName, Date: in.Date, Time: in.Time, UpdatedAt: time.Now(),
	}
	m.rows = append(m.rows, e)
	return e, nil
}

func (m *memEvents) Update(_ context.Context, userID, id uint64, in events.Input) (events.Event, error) {
	in, err := events.Normalize(in)
	if err != nil {
		return events.Event{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.rows {
		if e.ID == id && e.UserID == userID {
			e.Title, e.Description, e.CourseName, e.Date, e.Time = in.Title, in.Description, in.CourseName, in.Date, in.Time
			m.rows[i] = e
			return e, nil
		}
	}
	return events.Event{}, events.ErrNotFound
}

func (m *memEvents) Delete(_ context.Context, userID, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.rows {
		if e.ID == id && e.UserID == userID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return events.ErrNotFound
}
