package handler

import (
	"net/http"
	"time"

	"calendar/internal/auth"
	"calendar/internal/calendar"
	"calendar/internal/events"
	"calendar/internal/http/respond"
	"calendar/internal/ics"
	appLog "calendar/internal/log"
)

// ICSHandler serves a user's events as an iCalendar feed.
type ICSHandler struct {
	Store events.Store
	Name  string
}

func (h *ICSHandler) Export(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	rng, err := parseRange(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	rows, err := h.Store.List(r.Context(), uid, rng)
	if err != nil {
		appLog.Error("list events for ics failed", err, "user_id", uid)
		respond.Error(w, http.StatusInternalServerError, "server error")
		return
	}

	evs := make([]calendar.Event, 0, len(rows))
	for _, row := range rows {
		evs = append(evs, row.Calendar())
	}

	name := h.Name
	if name == "" {
		name = "Calendar"
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ics.Export(name, evs, time.Now())))
}
