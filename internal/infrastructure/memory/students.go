package memory

import (
	"context"
	"slices"
	"sync"
)

// StudentRoster is a fixed set of active student ids.
type StudentRoster struct {
	mu  sync.RWMutex
	ids []string
}

func NewStudentRoster(ids ...string) *StudentRoster {
	return &StudentRoster{ids: slices.Clone(ids)}
}

func (r *StudentRoster) Set(ids ...string) {
	r.mu.Lock()
	r.ids = slices.Clone(ids)
	r.mu.Unlock()
}

func (r *StudentRoster) ActiveStudentIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.ids), nil
}
