package quota

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Usage is an identity's standing for the current day.
type Usage struct {
	Used    int
	Limit   int
	ResetAt time.Time
}

func (u Usage) Remaining() int {
	return max(0, u.Limit-u.Used)
}

// ExceededError rejects a request once the day's allowance is spent.
type ExceededError struct {
	Usage
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("daily limit exceeded: you can only make %d requests per day", e.Limit)
}

// Store counts requests per identity per local day.
type Store interface {
	// Acquire admits and counts one request, or returns *ExceededError
	// without counting it.
	Acquire(ctx context.Context, identity string, now time.Time) (Usage, error)
	Peek(ctx context.Context, identity string, now time.Time) (Usage, error)
	// Reset forgets every counter.
	Reset(ctx context.Context) error
}

// NextMidnight is the first instant of the day after now, in now's zone.
func NextMidnight(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}

// DayKey buckets now into its local calendar day.
func DayKey(now time.Time) string {
	return now.Format(time.DateOnly)
}

type memKey struct {
	identity string
	day      string
}

// Limiter is the in-process Store. Check and increment happen under one
// lock, so concurrent requests can never overshoot the limit.
type Limiter struct {
	limit int

	mu     sync.Mutex
	counts map[memKey]int
}

func NewLimiter(limit int) *Limiter {
	return &Limiter{limit: limit, counts: make(map[memKey]int)}
}

func (l *Limiter) Acquire(_ context.Context, identity string, now time.Time) (Usage, error) {
	k := memKey{identity: identity, day: DayKey(now)}

	l.mu.Lock()
	defer l.mu.Unlock()

	used := l.counts[k]
	u := Usage{Used: used, Limit: l.limit, ResetAt: NextMidnight(now)}
	if used >= l.limit {
		return u, &ExceededError{Usage: u}
	}
	u.Used++
	l.counts[k] = u.Used
	return u, nil
}

func (l *Limiter) Peek(_ context.Context, identity string, now time.Time) (Usage, error) {
	k := memKey{identity: identity, day: DayKey(now)}

	l.mu.Lock()
	defer l.mu.Unlock()
	return Usage{Used: l.counts[k], Limit: l.limit, ResetAt: NextMidnight(now)}, nil
}

func (l *Limiter) Reset(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.counts)
	return nil
}

// Len is the number of live identity-day keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.counts)
}
