package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"calendar/internal/auth"
	"calendar/internal/http/respond"
	appLog "calendar/internal/log"
)

type AuthHandler struct {
	Users auth.Users
	JWT   *auth.JWT
}

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "bad json")
		return
	}
	req.Username = strings.TrimSpace(strings.ToLower(req.Username))
	if req.Username == "" || len(req.Password) < 8 {
		respond.Error(w, http.StatusBadRequest, "invalid input")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "server error")
		return
	}

	u := auth.User{Username: req.Username, PasswordHash: hash}
	if err := h.Users.Create(r.Context(), &u); err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			respond.Error(w, http.StatusConflict, "username already used")
			return
		}
		appLog.Error("create user failed", err)
		respond.Error(w, http.StatusInternalServerError, "server error")
		return
	}
	appLog.Info("user registered", "user_id", u.ID)

	h.issue(w, http.StatusCreated, u)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "bad json")
		return
	}
	req.Username = strings.TrimSpace(strings.ToLower(req.Username))
	if req.Username == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "invalid input")
		return
	}

	u, err := h.Users.FindByUsername(r.Context(), req.Username)
	if err != nil {
		if !errors.Is(err, auth.ErrUserNotFound) {
			appLog.Error("find user failed", err)
		}
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !auth.ComparePassword(u.PasswordHash, req.Password) {
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.issue(w, http.StatusOK, u)
}

func (h *AuthHandler) issue(w http.ResponseWriter, status int, u auth.User) {
	token, err := h.JWT.Sign(u.ID, u.Username)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "server error")
		return
	}
	respond.JSON(w, status, map[string]any{
		"token":    token,
		"username": u.Username,
	})
}
