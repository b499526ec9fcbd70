package pushtoken

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/projtrack-notify/internal/domain"
	"github.com/projtrack-notify/internal/pkg/validate"
)

type Service interface {
	Register(ctx context.Context, userID string, req domain.RegisterTokenRequest) (*domain.PushToken, error)
	Unregister(ctx context.Context, userID, token string) error
}

type tokenStore interface {
	Register(ctx context.Context, t *domain.PushToken) error
	Unregister(ctx context.Context, userID, token string) error
}

type service struct {
	repo tokenStore
	now  func() time.Time
}

func NewService(repo tokenStore) Service {
	return &service{repo: repo, now: time.Now}
}

// Register upserts the token under userID; a token previously held by another
// user moves to userID.
func (s *service) Register(ctx context.Context, userID string, req domain.RegisterTokenRequest) (*domain.PushToken, error) {
	req.Token = strings.TrimSpace(req.Token)
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrValidation)
	}
	if userID == "" {
		return nil, fmt.Errorf("missing user: %w", domain.ErrUnauthorized)
	}
	t := &domain.PushToken{
		Token:        req.Token,
		UserID:       userID,
		Platform:     req.Platform,
		RegisteredAt: s.now().UTC(),
	}
	if err := s.repo.Register(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) Unregister(ctx context.Context, userID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token is required: %w", domain.ErrValidation)
	}
	return s.repo.Unregister(ctx, userID, token)
}
