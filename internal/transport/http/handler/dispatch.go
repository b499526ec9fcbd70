package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/projtrack-notify/internal/domain"
)

// Dispatcher is satisfied by *dispatch.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, in domain.NotificationInput) (*domain.DispatchResult, error)
	ProjectAssigned(ctx context.Context, e domain.ProjectAssignment) (*domain.DispatchResult, error)
	TaskAssigned(ctx context.Context, e domain.TaskAssignment) (*domain.DispatchResult, error)
	ReviewPosted(ctx context.Context, e domain.ReviewPosted) (*domain.DispatchResult, error)
	ForumPostCreated(ctx context.Context, e domain.ForumPost) (*domain.DispatchResult, error)
	TaskCompleted(ctx context.Context, e domain.TaskCompletion) (*domain.DispatchResult, error)
}

// DispatchHandler is the producer-facing surface used by the portal's other modules.
type DispatchHandler struct {
	d Dispatcher
}

func NewDispatchHandler(d Dispatcher) *DispatchHandler {
	return &DispatchHandler{d: d}
}

func (h *DispatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	produce(w, r, h.d.Dispatch)
}

func (h *DispatchHandler) ProjectAssigned(w http.ResponseWriter, r *http.Request) {
	produce(w, r, h.d.ProjectAssigned)
}

func (h *DispatchHandler) TaskAssigned(w http.ResponseWriter, r *http.Request) {
	produce(w, r, h.d.TaskAssigned)
}

func (h *DispatchHandler) ReviewPosted(w http.ResponseWriter, r *http.Request) {
	produce(w, r, h.d.ReviewPosted)
}

func (h *DispatchHandler) ForumPostCreated(w http.ResponseWriter, r *http.Request) {
	produce(w, r, h.d.ForumPostCreated)
}

func (h *DispatchHandler) TaskCompleted(w http.ResponseWriter, r *http.Request) {
	produce(w, r, h.d.TaskCompleted)
}

// produce decodes a T from the body and answers 201 with the stored record,
// or 200 when the event addressed nobody.
func produce[T any](w http.ResponseWriter, r *http.Request, fn func(context.Context, T) (*domain.DispatchResult, error)) {
	var in T
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := fn(r.Context(), in)
	if err != nil {
		httpError(w, err)
		return
	}
	status := http.StatusCreated
	if res.Notification == nil {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}
