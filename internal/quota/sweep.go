package quota

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	appLog "calendar/internal/log"
)

// ResetSpec fires at every local midnight. cron works out the following
// activation after each run, so the sweep does not drift.
const ResetSpec = "0 0 * * *"

// Sweeper clears a Store at midnight.
type Sweeper struct {
	store Store
	cron  *cron.Cron
}

func NewSweeper(store Store, loc *time.Location) (*Sweeper, error) {
	if loc == nil {
		loc = time.Local
	}
	s := &Sweeper{store: store, cron: cron.New(cron.WithLocation(loc))}
	if _, err := s.cron.AddFunc(ResetSpec, s.Sweep); err != nil {
		return nil, err
	}
	return s, nil
}

// Sweep resets the store now.
func (s *Sweeper) Sweep() {
	if err := s.store.Reset(context.Background()); err != nil {
		appLog.Error("daily usage reset failed", err)
		return
	}
	appLog.Info("daily usage reset")
}

func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and returns a context done once a running sweep
// has finished.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}
