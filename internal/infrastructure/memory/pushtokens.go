package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/projtrack-notify/internal/domain"
)

type PushTokenRegistry struct {
	mu     sync.RWMutex
	tokens map[string]domain.PushToken
	// order keeps registration order so TokensFor output is stable.
	order []string
}

func NewPushTokenRegistry() *PushTokenRegistry {
	return &PushTokenRegistry{tokens: make(map[string]domain.PushToken)}
}

func (r *PushTokenRegistry) Register(_ context.Context, t *domain.PushToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[t.Token]; !ok {
		r.order = append(r.order, t.Token)
	}
	r.tokens[t.Token] = *t
	return nil
}

func (r *PushTokenRegistry) Unregister(_ context.Context, userID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok || t.UserID != userID {
		return fmt.Errorf("push token: %w", domain.ErrNotFound)
	}
	delete(r.tokens, token)
	for i, v := range r.order {
		if v == token {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// TokensFor returns tokens grouped in userIDs order.
func (r *PushTokenRegistry) TokensFor(_ context.Context, userIDs []string) ([]domain.PushToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.PushToken
	seen := make(map[string]struct{}, len(userIDs))
	for _, u := range userIDs {
		if _, dup := seen[u]; dup || u == "" {
			continue
		}
		seen[u] = struct{}{}
		for _, tok := range r.order {
			if t := r.tokens[tok]; t.UserID == u {
				out = append(out, t)
			}
		}
	}
	return out, nil
}
