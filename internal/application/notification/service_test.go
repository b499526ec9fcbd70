package notification

import (
	"context"
	"testing"
	"time"

	"github.com/projtrack-notify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) ListFor(ctx context.Context, recipientID string, kind domain.RecipientKind, page domain.PageRequest) (*domain.NotificationPage, error) {
	args := m.Called(ctx, recipientID, kind, page)
	if p, _ := args.Get(0).(*domain.NotificationPage); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStore) MarkRead(ctx context.Context, notificationID, recipientID string, kind domain.RecipientKind) error {
	return m.Called(ctx, notificationID, recipientID, kind).Error(0)
}

func TestList_ProjectsCallerReadFlagOnly(t *testing.T) {
	created := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	page := &domain.NotificationPage{
		Items: []domain.Notification{
			{
				NotificationID: "01B", Title: "New Task", Type: domain.TypeActivity,
				Recipients: []string{"S1", "S2"}, RecipientKind: domain.RecipientStudent,
				ReadState: map[string]bool{"S1": false, "S2": true}, CreatedAt: created,
			},
			// Stray record for someone else must never leak through.
			{
				NotificationID: "01A", Recipients: []string{"S9"}, RecipientKind: domain.RecipientStudent,
				ReadState: map[string]bool{"S9": true},
			},
		},
		NextCursor: "abc",
	}
	store := &mockStore{}
	store.On("ListFor", mock.Anything, "S1", domain.RecipientStudent, domain.PageRequest{Limit: 10}).Return(page, nil)

	views, cursor, err := NewService(store).List(context.Background(), "S1", domain.RecipientStudent, domain.PageRequest{Limit: 10})
	require.NoError(t, err)

	require.Len(t, views, 1)
	assert.Equal(t, "01B", views[0].ID)
	assert.False(t, views[0].Read)
	assert.Equal(t, created, views[0].CreatedAt)
	assert.Equal(t, "abc", cursor)
}

func TestList_PropagatesStoreError(t *testing.T) {
	store := &mockStore{}
	store.On("ListFor", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrStoreUnavailable)

	_, _, err := NewService(store).List(context.Background(), "S1", domain.RecipientStudent, domain.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestMarkAsRead_PassesThrough(t *testing.T) {
	store := &mockStore{}
	store.On("MarkRead", mock.Anything, "01B", "S1", domain.RecipientStudent).Return(nil).Once()
	store.On("MarkRead", mock.Anything, "missing", "S1", domain.RecipientStudent).Return(domain.ErrNotFound).Once()
	store.On("MarkRead", mock.Anything, "01B", "S1", domain.RecipientFaculty).Return(nil).Once()

	svc := NewService(store)
	assert.NoError(t, svc.MarkAsRead(context.Background(), "01B", "S1", domain.RecipientStudent))
	assert.ErrorIs(t, svc.MarkAsRead(context.Background(), "missing", "S1", domain.RecipientStudent), domain.ErrNotFound)
	assert.NoError(t, svc.MarkAsRead(context.Background(), "01B", "S1", domain.RecipientFaculty))
	store.AssertExpectations(t)
}
