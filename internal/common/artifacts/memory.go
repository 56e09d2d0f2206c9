// internal/common/artifacts/memory.go
package artifacts

import (
	"context"
	"sync"
	"time"

	"lex-build-workers/internal/models"
)

var _ Repository = (*MemoryRepository)(nil)

// MemoryRepository keeps artifacts in process. Used by the local runner and
// tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]models.Artifact
	now   func() time.Time
}

func NewMemoryRepository(seed ...models.Artifact) *MemoryRepository {
	r := &MemoryRepository{items: make(map[string]models.Artifact), now: time.Now}
	for _, a := range seed {
		r.Put(a)
	}
	return r
}

// Put stores a full artifact.
func (r *MemoryRepository) Put(a models.Artifact) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[a.ID] = clone(a)
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*models.Artifact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := clone(a)
	return &out, nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, patch Patch) (*models.Artifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	apply(&a, patch)
	a.UpdatedAt = r.now().UTC()
	r.items[id] = clone(a)
	out := clone(a)
	return &out, nil
}

func clone(a models.Artifact) models.Artifact {
	a.StatusMessages = append([]models.StatusMessage{}, a.StatusMessages...)
	return a
}
