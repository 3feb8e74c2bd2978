package handler

import (
	"net/http"
	"time"

	"calendar/internal/http/respond"
	appLog "calendar/internal/log"
	"calendar/internal/quota"
)

type UsageHandler struct {
	Quota quota.Store
	Now   func() time.Time
}

type usageDTO struct {
	Used      int    `json:"used"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	ResetTime string `json:"resetTime"`
}

func (h *UsageHandler) Usage(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	u, err := h.Quota.Peek(r.Context(), ClientIP(r), now)
	if err != nil {
		appLog.Error("quota peek failed", err)
		respond.Error(w, http.StatusInternalServerError, "server error")
		return
	}
	respond.JSON(w, http.StatusOK, usageDTO{
		Used:      u.Used,
		Limit:     u.Limit,
		Remaining: u.Remaining(),
		ResetTime: u.ResetAt.Format(time.RFC3339),
	})
}
