package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/projtrack-notify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDispatcher struct{ mock.Mock }

func (m *mockDispatcher) result(args mock.Arguments) (*domain.DispatchResult, error) {
	if r, _ := args.Get(0).(*domain.DispatchResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockDispatcher) Dispatch(ctx context.Context, in domain.NotificationInput) (*domain.DispatchResult, error) {
	return m.result(m.Called(ctx, in))
}
func (m *mockDispatcher) ProjectAssigned(ctx context.Context, e domain.ProjectAssignment) (*domain.DispatchResult, error) {
	return m.result(m.Called(ctx, e))
}
func (m *mockDispatcher) TaskAssigned(ctx context.Context, e domain.TaskAssignment) (*domain.DispatchResult, error) {
	return m.result(m.Called(ctx, e))
}
func (m *mockDispatcher) ReviewPosted(ctx context.Context, e domain.ReviewPosted) (*domain.DispatchResult, error) {
	return m.result(m.Called(ctx, e))
}
func (m *mockDispatcher) ForumPostCreated(ctx context.Context, e domain.ForumPost) (*domain.DispatchResult, error) {
	return m.result(m.Called(ctx, e))
}
func (m *mockDispatcher) TaskCompleted(ctx context.Context, e domain.TaskCompletion) (*domain.DispatchResult, error) {
	return m.result(m.Called(ctx, e))
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body)))
	return rr
}

func TestCreateNotification_Created(t *testing.T) {
	d := &mockDispatcher{}
	stored := &domain.Notification{NotificationID: "01A", Title: "New Task", Recipients: []string{"S1"}}
	d.On("Dispatch", mock.Anything, mock.MatchedBy(func(in domain.NotificationInput) bool {
		return in.Title == "New Task" && in.RecipientKind == domain.RecipientStudent
	})).Return(&domain.DispatchResult{Notification: stored}, nil)

	rr := post(NewDispatchHandler(d).Create, `{"title":"New Task","recipients":["S1"],"recipient_kind":"Student"}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var resp domain.DispatchResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "01A", resp.Notification.NotificationID)
}

func TestCreateNotification_ErrorMapping(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"validation": {domain.ErrValidation, http.StatusBadRequest},
		"store down": {domain.ErrStoreUnavailable, http.StatusServiceUnavailable},
		"conflict":   {domain.ErrConflict, http.StatusConflict},
		"unexpected": {errors.New("kaboom"), http.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			d := &mockDispatcher{}
			d.On("Dispatch", mock.Anything, mock.Anything).Return(nil, tc.err)
			rr := post(NewDispatchHandler(d).Create, `{"title":"x"}`)
			assert.Equal(t, tc.want, rr.Code)

			var resp MessageEnvelope
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.NotContains(t, resp.Error, "kaboom")
		})
	}
}

func TestCreateNotification_InvalidBody(t *testing.T) {
	d := &mockDispatcher{}
	rr := post(NewDispatchHandler(d).Create, `{`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	d.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestForumPost_EmptyRosterAnswers200(t *testing.T) {
	d := &mockDispatcher{}
	d.On("ForumPostCreated", mock.Anything, domain.ForumPost{PostID: "F1", Title: "Viva"}).Return(&domain.DispatchResult{}, nil)

	rr := post(NewDispatchHandler(d).ForumPostCreated, `{"post_id":"F1","title":"Viva"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestEventRoutesDecodeTheirPayload(t *testing.T) {
	ok := &domain.DispatchResult{Notification: &domain.Notification{NotificationID: "01A"}}
	d := &mockDispatcher{}
	d.On("ProjectAssigned", mock.Anything, mock.MatchedBy(func(e domain.ProjectAssignment) bool { return e.ProjectID == "P1" })).Return(ok, nil)
	d.On("TaskAssigned", mock.Anything, mock.MatchedBy(func(e domain.TaskAssignment) bool { return e.DueDate != nil })).Return(ok, nil)
	d.On("ReviewPosted", mock.Anything, mock.MatchedBy(func(e domain.ReviewPosted) bool { return e.ReviewerRole == domain.ReviewerIncharge })).Return(ok, nil)
	d.On("TaskCompleted", mock.Anything, mock.MatchedBy(func(e domain.TaskCompletion) bool { return e.FacultyID == "F7" })).Return(ok, nil)
	h := NewDispatchHandler(d)

	assert.Equal(t, http.StatusCreated, post(h.ProjectAssigned, `{"project_id":"P1","project_title":"Capstone","student_ids":["S1"]}`).Code)
	assert.Equal(t, http.StatusCreated, post(h.TaskAssigned, `{"task_id":"T1","task_title":"Survey","due_date":"2026-06-01T00:00:00Z","student_ids":["S1"]}`).Code)
	assert.Equal(t, http.StatusCreated, post(h.ReviewPosted, `{"project_id":"P1","project_title":"Capstone","reviewer_name":"Dr. Rao","reviewer_role":"incharge","student_ids":["S1"]}`).Code)
	assert.Equal(t, http.StatusCreated, post(h.TaskCompleted, `{"task_id":"T1","task_title":"Survey","student_name":"Asha","faculty_id":"F7"}`).Code)
	d.AssertExpectations(t)
}
