package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"calendar/internal/auth"
	"calendar/internal/events"
	"calendar/internal/http/respond"
	appLog "calendar/internal/log"
	"calendar/internal/metrics"

	"github.com/go-chi/chi/v5"
)

type EventsHandler struct {
	Store events.Store
}

type eventDTO struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CourseName  string    `json:"courseName"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toDTO(e events.Event) eventDTO {
	return eventDTO{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		CourseName:  e.CourseName,
		Date:        e.Date.Format(time.DateOnly),
		Time:        e.Time,
		UpdatedAt:   e.UpdatedAt,
	}
}

type eventReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	// Desc is the client-side name for Description.
	Desc       string `json:"desc"`
	CourseName string `json:"courseName"`
	Date       string `json:"date"` // YYYY-MM-DD
	Time       string `json:"time"`
}

func (req eventReq) input() (events.Input, error) {
	date, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(req.Date), time.Local)
	if err != nil {
		return events.Input{}, errors.New("invalid date (YYYY-MM-DD)")
	}
	desc := req.Description
	if strings.TrimSpace(desc) == "" {
		desc = req.Desc
	}
	return events.Input{
		Title:       req.Title,
		Description: desc,
		CourseName:  req.CourseName,
		Date:        date,
		Time:        req.Time,
	}, nil
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	rng, err := parseRange(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.Store.List(r.Context(), uid, rng)
	if err != nil {
		appLog.Error("list events failed", err, "user_id", uid)
		respond.Error(w, http.StatusInternalServerError, "server error")
		return
	}

	out := make([]eventDTO, 0, len(rows))
	for _, e := range rows {
		out = append(out, toDTO(e))
	}
	respond.JSON(w, http.StatusOK, out)
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	in, ok := decodeEvent(w, r)
	if !ok {
		return
	}

	ev, err := h.Store.Create(r.Context(), uid, in)
	if err != nil {
		writeEventErr(w, err)
		return
	}
	metrics.ObserveEventWrite("create")
	respond.JSON(w, http.StatusCreated, toDTO(ev))
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, ok := eventID(w, r)
	if !ok {
		return
	}
	in, ok := decodeEvent(w, r)
	if !ok {
		return
	}

	ev, err := h.Store.Update(r.Context(), uid, id, in)
	if err != nil {
		writeEventErr(w, err)
		return
	}
	metrics.ObserveEventWrite("update")
	respond.JSON(w, http.StatusOK, toDTO(ev))
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, ok := eventID(w, r)
	if !ok {
		return
	}
	if err := h.Store.Delete(r.Context(), uid, id); err != nil {
		writeEventErr(w, err)
		return
	}
	metrics.ObserveEventWrite("delete")
	w.WriteHeader(http.StatusNoContent)
}

func decodeEvent(w http.ResponseWriter, r *http.Request) (events.Input, bool) {
	var req eventReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "bad json")
		return events.Input{}, false
	}
	in, err := req.input()
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return events.Input{}, false
	}
	return in, true
}

func eventID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func writeEventErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, events.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, events.ErrInvalidEvent):
		respond.Error(w, http.StatusBadRequest, "title, date and a valid time (hh:mm AM|PM) are required")
	default:
		appLog.Error("event write failed", err)
		respond.Error(w, http.StatusInternalServerError, "server error")
	}
}

// parseRange reads optional from/to query days.
func parseRange(r *http.Request) (events.Range, error) {
	var rng events.Range
	for _, p := range []struct {
		key string
		dst *time.Time
	}{{"from", &rng.From}, {"to", &rng.To}} {
		v := strings.TrimSpace(r.URL.Query().Get(p.key))
		if v == "" {
			continue
		}
		t, err := time.ParseInLocation(time.DateOnly, v, time.Local)
		if err != nil {
			return events.Range{}, errors.New("invalid " + p.key + " (YYYY-MM-DD)")
		}
		*p.dst = t
	}
	if !rng.From.IsZero() && !rng.To.IsZero() && rng.To.Before(rng.From) {
		return events.Range{}, errors.New("to is before from")
	}
	return rng, nil
}
