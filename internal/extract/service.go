package extract

import (
	"context"
	"strings"
	"time"

	appLog "calendar/internal/log"
)

// Service runs one extraction round trip: prompt, model call, reply parse.
type Service struct {
	Model Model
	// Timeout bounds the model call when positive.
	Timeout time.Duration
	Now     func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) Extract(ctx context.Context, text string) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, ErrNoInput
	}
	if s.Model == nil {
		return Result{}, ErrModelUnavailable
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	reply, err := s.Model.Generate(ctx, BuildPrompt(s.now(), text))
	if err != nil {
		return Result{}, err
	}
	appLog.Debug("model reply", "bytes", len(reply))

	res, skipped, err := ParseReply(reply)
	if err != nil {
		appLog.Error("model reply rejected", err, "reply", truncate(reply, 200))
		return Result{}, err
	}
	if skipped > 0 {
		appLog.Info("dropped incomplete events from model reply", "skipped", skipped, "kept", len(res.Events))
	}
	return res, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
