package handler

import (
	"net/http"

	"calendar/internal/auth"
	"calendar/internal/http/respond"
)

type MeHandler struct{}

func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	respond.JSON(w, http.StatusOK, map[string]any{
		"user_id": uid,
	})
}
