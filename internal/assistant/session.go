package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"calendar/internal/calendar"
)

const (
	Greeting     = "Hi! Paste your assignment list, and I'll extract the due dates and titles for you."
	FoundPrompt  = "Here are the assignments I found:"
	NothingFound = "I couldn't find any specific events or dates. Please try rephrasing or adding more details."
	AddedMessage = "Events added to your calendar!"
)

var (
	ErrBusy     = errors.New("a request is already in progress")
	ErrNoDrafts = errors.New("no extracted events to confirm")
	ErrEmpty    = errors.New("nothing to send")
	// ErrNoValidDrafts means every pending draft had an unreadable date.
	ErrNoValidDrafts = errors.New("none of the extracted events has a usable date")
)

type Sender string

const (
	FromUser Sender = "user"
	FromAI   Sender = "ai"
)

type Message struct {
	From   Sender
	Text   string
	Drafts []Draft
}

// Extractor is the part of Client a Session uses.
type Extractor interface {
	ExtractText(ctx context.Context, text string) ([]Draft, error)
	ExtractFile(ctx context.Context, filename string, r io.Reader) ([]Draft, error)
	Usage(ctx context.Context) (Usage, error)
}

// Session is one chat panel. Only one request may be in flight; drafts
// from the last successful request wait until Confirm or Discard.
type Session struct {
	client Extractor

	// Now and NewID default to time.Now and uuid strings.
	Now   func() time.Time
	NewID func() string

	mu       sync.Mutex
	busy     bool
	drafts   []Draft
	messages []Message
	usage    *Usage
}

func NewSession(client Extractor) *Session {
	return &Session{
		client:   client,
		messages: []Message{{From: FromAI, Text: Greeting}},
	}
}

// Send extracts events from pasted text.
func (s *Session) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmpty
	}
	return s.run(ctx, text, func() ([]Draft, error) {
		return s.client.ExtractText(ctx, text)
	})
}

// Upload extracts events from a document.
func (s *Session) Upload(ctx context.Context, filename string, r io.Reader) error {
	return s.run(ctx, "Uploaded file: "+filename, func() ([]Draft, error) {
		return s.client.ExtractFile(ctx, filename, r)
	})
}

func (s *Session) run(ctx context.Context, userText string, call func() ([]Draft, error)) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.busy = true
	s.drafts = nil
	s.messages = append(s.messages, Message{From: FromUser, Text: userText})
	s.mu.Unlock()

	drafts, err := call()

	// quota changes whatever the outcome
	var usage *Usage
	if u, uerr := s.client.Usage(ctx); uerr == nil {
		usage = &u
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if usage != nil {
		s.usage = usage
	}

	var qe *QuotaError
	switch {
	case errors.As(err, &qe):
		msg := qe.Error()
		if qe.Limit > 0 {
			msg = fmt.Sprintf("%s (used %d of %d today)", msg, qe.Used, qe.Limit)
		}
		if qe.RetryAfter > 0 {
			msg = fmt.Sprintf("%s Retry in %ds.", msg, qe.RetryAfter)
		}
		s.messages = append(s.messages, Message{From: FromAI, Text: msg})
		return err
	case err != nil:
		s.messages = append(s.messages, Message{From: FromAI, Text: "Sorry, I ran into an error: " + err.Error()})
		return err
	case len(drafts) == 0:
		s.messages = append(s.messages, Message{From: FromAI, Text: NothingFound})
		return nil
	}

	s.drafts = drafts
	s.messages = append(s.messages, Message{From: FromAI, Text: FoundPrompt, Drafts: drafts})
	return nil
}

// Confirm commits the pending drafts to store and clears them. Drafts with
// an unreadable date are skipped and counted in the transcript; if none is
// usable nothing is added and ErrNoValidDrafts is returned.
func (s *Session) Confirm(store *calendar.Store) ([]calendar.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return nil, ErrBusy
	}
	if len(s.drafts) == 0 {
		return nil, ErrNoDrafts
	}

	loc := s.now().Location()
	out := make([]calendar.Event, 0, len(s.drafts))
	for _, d := range s.drafts {
		ev, err := ToEvent(d, s.newID(), loc)
		if err != nil {
			continue
		}
		out = append(out, ev)
	}
	skipped := len(s.drafts) - len(out)
	s.drafts = nil

	if len(out) == 0 {
		s.messages = append(s.messages, Message{From: FromAI, Text: "Nothing was added: " + ErrNoValidDrafts.Error() + "."})
		return nil, ErrNoValidDrafts
	}
	store.Add(out...)

	msg := AddedMessage
	if skipped > 0 {
		msg = fmt.Sprintf("%s (%d skipped, unreadable date)", msg, skipped)
	}
	s.messages = append(s.messages, Message{From: FromAI, Text: msg})
	return out, nil
}

// Discard drops pending drafts without adding anything.
func (s *Session) Discard() {
	s.mu.Lock()
	s.drafts = nil
	s.mu.Unlock()
}

func (s *Session) Drafts() []Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Draft(nil), s.drafts...)
}

func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

// Usage is the last quota reading, if any.
func (s *Session) Usage() (Usage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.usage == nil {
		return Usage{}, false
	}
	return *s.usage, true
}

// RefreshUsage re-reads the quota from the server.
func (s *Session) RefreshUsage(ctx context.Context) (Usage, error) {
	u, err := s.client.Usage(ctx)
	if err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	s.usage = &u
	s.mu.Unlock()
	return u, nil
}

func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *Session) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Session) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

// ToEvent maps a draft onto a calendar event. A missing time becomes
// calendar.DefaultTime, a missing description mentions the title, and
// category wins over courseName.
func ToEvent(d Draft, id string, loc *time.Location) (calendar.Event, error) {
	date, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(d.Date), loc)
	if err != nil {
		return calendar.Event{}, fmt.Errorf("draft %q: %w", d.Title, err)
	}

	ev := calendar.Event{
		ID:    id,
		Date:  date,
		Title: d.Title,
		Time:  calendar.DefaultTime,
		Desc:  fmt.Sprintf("Added via AI from text: %q", d.Title),
	}
	if v := deref(d.Time); v != "" {
		ev.Time = v
	}
	if v := deref(d.Desc); v != "" {
		ev.Desc = v
	}
	if v := deref(d.Category); v != "" {
		ev.CourseName = v
	} else {
		ev.CourseName = deref(d.CourseName)
	}
	return ev, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
