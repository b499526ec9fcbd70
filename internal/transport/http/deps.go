package http

import (
	"context"

	"github.com/projtrack-notify/internal/domain"
	"github.com/projtrack-notify/internal/transport/http/handler"
	appmiddleware "github.com/projtrack-notify/internal/transport/http/middleware"
)

// NotificationRepository is the minimal interface the router requires from a notification store.
type NotificationRepository interface {
	ListFor(ctx context.Context, recipientID string, kind domain.RecipientKind, page domain.PageRequest) (*domain.NotificationPage, error)
	MarkRead(ctx context.Context, notificationID, recipientID string, kind domain.RecipientKind) error
}

// PushTokenRepository is the minimal interface the router requires from a token registry.
type PushTokenRepository interface {
	Register(ctx context.Context, t *domain.PushToken) error
	Unregister(ctx context.Context, userID, token string) error
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	NotificationRepo NotificationRepository
	PushTokenRepo    PushTokenRepository
	Dispatcher       handler.Dispatcher
	JWTVerifier      appmiddleware.TokenVerifier
}
