package handler

import (
	"encoding/json"
	"net/http"

	"github.com/projtrack-notify/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// NotificationListEnvelope wraps one page of the caller's notifications.
type NotificationListEnvelope struct {
	Data       []domain.NotificationView `json:"data"`
	NextCursor string                    `json:"next_cursor,omitempty"`
}

// PushTokenEnvelope wraps a registered token.
type PushTokenEnvelope struct {
	Token *domain.PushToken `json:"token"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg, ErrorCode: status})
}
