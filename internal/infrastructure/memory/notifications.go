// Package memory holds in-process implementations of the stores, used with
// STORE_BACKEND=memory for local runs and by scenario tests.
package memory

import (
	"context"
	"encoding/base64"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/projtrack-notify/internal/domain"
)

type NotificationStore struct {
	mu      sync.RWMutex
	records map[string]*domain.Notification
	now     func() time.Time
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{records: make(map[string]*domain.Notification), now: time.Now}
}

func (s *NotificationStore) Create(_ context.Context, in domain.NotificationInput) (*domain.Notification, error) {
	n, err := domain.NewNotification(in, s.now())
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[n.NotificationID]; exists {
		return nil, fmt.Errorf("notification %s: %w", n.NotificationID, domain.ErrConflict)
	}
	s.records[n.NotificationID] = n
	return clone(n), nil
}

// ListFor pages newest-first by id; the cursor is the last id of the previous page.
func (s *NotificationStore) ListFor(_ context.Context, recipientID string, kind domain.RecipientKind, page domain.PageRequest) (*domain.NotificationPage, error) {
	page = page.Normalize()
	after := ""
	if page.Cursor != "" {
		b, err := base64.RawURLEncoding.DecodeString(page.Cursor)
		if err != nil || len(b) == 0 {
			return nil, fmt.Errorf("invalid cursor: %w", domain.ErrValidation)
		}
		after = string(b)
	}

	s.mu.RLock()
	matched := make([]*domain.Notification, 0)
	for _, n := range s.records {
		if !n.Addresses(recipientID, kind) {
			continue
		}
		if after != "" && n.NotificationID >= after {
			continue
		}
		matched = append(matched, clone(n))
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *domain.Notification) int {
		return strings.Compare(b.NotificationID, a.NotificationID)
	})

	out := &domain.NotificationPage{Items: make([]domain.Notification, 0, min(len(matched), page.Limit))}
	for i, n := range matched {
		if i == page.Limit {
			out.NextCursor = base64.RawURLEncoding.EncodeToString([]byte(matched[i-1].NotificationID))
			break
		}
		out.Items = append(out.Items, *n)
	}
	return out, nil
}

func (s *NotificationStore) MarkRead(_ context.Context, notificationID, recipientID string, kind domain.RecipientKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.records[notificationID]
	if !ok {
		return fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotFound)
	}
	if n.RecipientKind != kind {
		return nil
	}
	if _, addressed := n.ReadState[recipientID]; addressed {
		n.ReadState[recipientID] = true
	}
	return nil
}

// Get returns a copy of one record; it exists for tests and local debugging.
func (s *NotificationStore) Get(notificationID string) (*domain.Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.records[notificationID]
	if !ok {
		return nil, false
	}
	return clone(n), true
}

func clone(n *domain.Notification) *domain.Notification {
	c := *n
	c.Recipients = slices.Clone(n.Recipients)
	c.ReadState = maps.Clone(n.ReadState)
	if n.RelatedRef != nil {
		ref := *n.RelatedRef
		c.RelatedRef = &ref
	}
	return &c
}
