package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/projtrack-notify/internal/application/notification"
	"github.com/projtrack-notify/internal/domain"
	"github.com/projtrack-notify/internal/transport/http/middleware"
)

// NotificationHandler serves a recipient's own notifications. The recipient
// is always the bearer; it is never taken from the request.
type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	kind, ok := domain.RecipientKindForRole(claims.Role)
	if !ok {
		writeError(w, http.StatusForbidden, "role has no inbox")
		return
	}

	page := domain.PageRequest{Cursor: r.URL.Query().Get("cursor")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		page.Limit = limit
	}

	views, next, err := h.svc.List(r.Context(), claims.UserID, kind, page)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NotificationListEnvelope{Data: views, NextCursor: next})
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	kind, ok := domain.RecipientKindForRole(claims.Role)
	if !ok {
		writeError(w, http.StatusForbidden, "role has no inbox")
		return
	}
	if err := h.svc.MarkAsRead(r.Context(), chi.URLParam(r, "id"), claims.UserID, kind); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "notification marked as read"})
}
