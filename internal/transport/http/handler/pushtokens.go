package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/projtrack-notify/internal/application/pushtoken"
	"github.com/projtrack-notify/internal/domain"
	"github.com/projtrack-notify/internal/transport/http/middleware"
)

// PushTokenHandler registers and removes the bearer's device tokens.
type PushTokenHandler struct {
	svc pushtoken.Service
}

func NewPushTokenHandler(svc pushtoken.Service) *PushTokenHandler {
	return &PushTokenHandler{svc: svc}
}

func (h *PushTokenHandler) Register(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.RegisterTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	t, err := h.svc.Register(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, PushTokenEnvelope{Token: t})
}

func (h *PushTokenHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Unregister(r.Context(), claims.UserID, chi.URLParam(r, "token")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "push token removed"})
}
