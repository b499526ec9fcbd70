package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/projtrack-notify/internal/pkg/id"
	"github.com/projtrack-notify/internal/pkg/validate"
)

// NotificationType drives client-side icon and routing only; the dispatcher never branches on it.
type NotificationType string

const (
	TypeProject  NotificationType = "project"
	TypeActivity NotificationType = "activity"
	TypeForum    NotificationType = "forum"
	TypeReview   NotificationType = "review"
	TypeGeneral  NotificationType = "general"
)

// RecipientKind names the identity namespace a notification's recipients belong to.
type RecipientKind string

const (
	RecipientStudent RecipientKind = "Student"
	RecipientFaculty RecipientKind = "Faculty"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Notification is the durable record of one dispatched event.
// ReadState holds exactly one entry per element of Recipients.
type Notification struct {
	NotificationID string           `json:"id" dynamodbav:"notification_id"`
	Title          string           `json:"title" dynamodbav:"title"`
	Body           string           `json:"body" dynamodbav:"body"`
	Type           NotificationType `json:"type" dynamodbav:"type"`
	Recipients     []string         `json:"recipients" dynamodbav:"recipients"`
	RecipientKind  RecipientKind    `json:"recipient_kind" dynamodbav:"recipient_kind"`
	ReadState      map[string]bool  `json:"read_state" dynamodbav:"read_state"`
	RelatedRef     *string          `json:"related_ref,omitempty" dynamodbav:"related_ref,omitempty"`
	CreatedAt      time.Time        `json:"created" dynamodbav:"created_at"`
}

// NotificationInput is what producers supply to create a notification.
type NotificationInput struct {
	Title         string           `json:"title"`
	Body          string           `json:"body"`
	Type          NotificationType `json:"type" validate:"omitempty,oneof=project activity forum review general"`
	Recipients    []string         `json:"recipients" validate:"required,min=1,dive,required"`
	RecipientKind RecipientKind    `json:"recipient_kind" validate:"required,oneof=Student Faculty"`
	RelatedRef    *string          `json:"related_ref"`
}

// NotificationView is a record as seen by one recipient: only that recipient's read flag is exposed.
type NotificationView struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Body       string           `json:"body"`
	Type       NotificationType `json:"type"`
	RelatedRef *string          `json:"related_ref,omitempty"`
	Read       bool             `json:"read"`
	CreatedAt  time.Time        `json:"created"`
}

// PageRequest selects one newest-first page of a recipient's notifications.
type PageRequest struct {
	Limit  int
	Cursor string
}

// Normalize clamps Limit into [1, MaxPageLimit], defaulting to DefaultPageLimit.
func (p PageRequest) Normalize() PageRequest {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// NotificationPage is one page of records; NextCursor is empty on the last page.
type NotificationPage struct {
	Items      []Notification
	NextCursor string
}

// DispatchResult reflects only whether the durable record was created.
type DispatchResult struct {
	Notification *Notification `json:"notification"`
}

// NewNotification validates in and builds a record with an all-false read state.
// Recipients are trimmed and de-duplicated preserving first occurrence.
func NewNotification(in NotificationInput, now time.Time) (*Notification, error) {
	in.Recipients = normalizeRecipients(in.Recipients)
	if in.Type == "" {
		in.Type = TypeGeneral
	}
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrValidation)
	}

	readState := make(map[string]bool, len(in.Recipients))
	for _, r := range in.Recipients {
		readState[r] = false
	}

	var related *string
	if in.RelatedRef != nil && strings.TrimSpace(*in.RelatedRef) != "" {
		ref := *in.RelatedRef
		related = &ref
	}

	now = now.UTC()
	return &Notification{
		NotificationID: id.NewAt(now),
		Title:          in.Title,
		Body:           in.Body,
		Type:           in.Type,
		Recipients:     in.Recipients,
		RecipientKind:  in.RecipientKind,
		ReadState:      readState,
		RelatedRef:     related,
		CreatedAt:      now,
	}, nil
}

// normalizeRecipients trims entries and drops duplicates. Blank entries are
// kept so that validation rejects them instead of silently narrowing the audience.
func normalizeRecipients(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, r := range in {
		r = strings.TrimSpace(r)
		if r != "" {
			if _, dup := seen[r]; dup {
				continue
			}
			seen[r] = struct{}{}
		}
		out = append(out, r)
	}
	return out
}

// Addresses reports whether recipientID of the given kind is one of n's recipients.
func (n *Notification) Addresses(recipientID string, kind RecipientKind) bool {
	return n.RecipientKind == kind && slices.Contains(n.Recipients, recipientID)
}

// ViewFor projects n down to what recipientID may see.
func (n *Notification) ViewFor(recipientID string) NotificationView {
	return NotificationView{
		ID:         n.NotificationID,
		Title:      n.Title,
		Body:       n.Body,
		Type:       n.Type,
		RelatedRef: n.RelatedRef,
		Read:       n.ReadState[recipientID],
		CreatedAt:  n.CreatedAt,
	}
}

// InboxKey is the per-recipient index key: "<kind>#<recipientID>".
func InboxKey(kind RecipientKind, recipientID string) string {
	return string(kind) + "#" + recipientID
}
