// internal/casino/memory.go
package casino

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryRepository keeps the serialized table state in memory. It round-trips
// through JSON like the durable repositories so tests exercise the same
// encode/decode path a restart would.
type MemoryRepository struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Load(ctx context.Context) (*TableState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.data == nil {
		return nil, nil
	}
	var state TableState
	if err := json.Unmarshal(r.data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *MemoryRepository) Save(ctx context.Context, state *TableState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.data = data
	r.mu.Unlock()
	return nil
}
