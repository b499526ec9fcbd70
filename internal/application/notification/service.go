package notification

import (
	"context"

	"github.com/projtrack-notify/internal/domain"
)

type Service interface {
	List(ctx context.Context, recipientID string, kind domain.RecipientKind, page domain.PageRequest) ([]domain.NotificationView, string, error)
	MarkAsRead(ctx context.Context, notificationID, recipientID string, kind domain.RecipientKind) error
}

type notificationStore interface {
	ListFor(ctx context.Context, recipientID string, kind domain.RecipientKind, page domain.PageRequest) (*domain.NotificationPage, error)
	MarkRead(ctx context.Context, notificationID, recipientID string, kind domain.RecipientKind) error
}

type service struct {
	repo notificationStore
}

func NewService(repo notificationStore) Service {
	return &service{repo: repo}
}

// List returns one page of recipientID's notifications, each reduced to the
// caller's own read flag, and the cursor for the next page.
func (s *service) List(ctx context.Context, recipientID string, kind domain.RecipientKind, page domain.PageRequest) ([]domain.NotificationView, string, error) {
	res, err := s.repo.ListFor(ctx, recipientID, kind, page)
	if err != nil {
		return nil, "", err
	}
	views := make([]domain.NotificationView, 0, len(res.Items))
	for i := range res.Items {
		n := &res.Items[i]
		if !n.Addresses(recipientID, kind) {
			continue
		}
		views = append(views, n.ViewFor(recipientID))
	}
	return views, res.NextCursor, nil
}

// MarkAsRead flips the caller's own entry. A recipient id only identifies the
// caller within kind's namespace.
func (s *service) MarkAsRead(ctx context.Context, notificationID, recipientID string, kind domain.RecipientKind) error {
	return s.repo.MarkRead(ctx, notificationID, recipientID, kind)
}
