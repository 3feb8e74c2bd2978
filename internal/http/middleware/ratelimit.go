package middleware

import (
	"net/http"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memory "github.com/ulule/limiter/v3/drivers/store/memory"

	"calendar/internal/http/respond"
)

// RateLimit throttles bursts per client IP. rate uses the limiter's
// formatted notation, e.g. "20-M" for twenty requests a minute.
func RateLimit(rate string) (func(http.Handler) http.Handler, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, err
	}
	instance := limiter.New(memory.NewStore(), r)

	mw := stdlib.NewMiddleware(instance,
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, _ *http.Request) {
			respond.Error(w, http.StatusTooManyRequests, "too many requests")
		}),
	)
	return mw.Handler, nil
}
