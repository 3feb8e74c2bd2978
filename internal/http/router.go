package http

import (
	"net/http"
	"time"

	"calendar/internal/auth"
	"calendar/internal/config"
	"calendar/internal/events"
	"calendar/internal/http/handler"
	mw "calendar/internal/http/middleware"
	"calendar/internal/metrics"
	"calendar/internal/quota"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Deps are the services behind the routes. Users, Events and JWT are
// optional as a group: without them the account and event routes are not
// mounted.
type Deps struct {
	Extract handler.Extractor
	Quota   quota.Store

	Users  auth.Users
	Events events.Store
	JWT    *auth.JWT

	// Now defaults to time.Now.
	Now func() time.Time
}

func NewRouter(cfg config.Config, d Deps) (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	// RemoteAddr is the quota identity; forwarded headers are client
	// controlled unless a trusted proxy sets them.
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())

	usage := &handler.UsageHandler{Quota: d.Quota, Now: d.Now}
	extract := &handler.ExtractHandler{Svc: d.Extract, Quota: d.Quota, Now: d.Now}

	var authLimit func(http.Handler) http.Handler
	if cfg.AuthRateLimit != "" {
		var err error
		if authLimit, err = mw.RateLimit(cfg.AuthRateLimit); err != nil {
			return nil, err
		}
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/usage", usage.Usage)
		r.Post("/extract-events", extract.Extract)

		if d.Users == nil || d.Events == nil || d.JWT == nil {
			return
		}

		ah := &handler.AuthHandler{Users: d.Users, JWT: d.JWT}
		r.Group(func(r chi.Router) {
			if authLimit != nil {
				r.Use(authLimit)
			}
			r.Post("/register", ah.Register)
			r.Post("/login", ah.Login)
		})

		me := &handler.MeHandler{}
		evH := &handler.EventsHandler{Store: d.Events}
		icsH := &handler.ICSHandler{Store: d.Events}

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(d.JWT))

			r.Get("/me", me.Me)
			r.Get("/events", evH.List)
			r.Post("/events", evH.Create)
			r.Get("/events.ics", icsH.Export)
			r.Put("/events/{id}", evH.Update)
			r.Delete("/events/{id}", evH.Delete)
		})
	})

	return r, nil
}
