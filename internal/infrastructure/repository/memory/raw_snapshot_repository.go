package memory

import (
	"context"
	"sync"

	"github.com/cagewatch/live-tracker/internal/domain/rawdata"
)

type RawSnapshotRepository struct {
	mu    sync.RWMutex
	items []rawdata.Snapshot
}

func NewRawSnapshotRepository() *RawSnapshotRepository {
	return &RawSnapshotRepository{}
}

func (r *RawSnapshotRepository) Insert(_ context.Context, snapshot rawdata.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, snapshot)
	return nil
}

func (r *RawSnapshotRepository) All() []rawdata.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]rawdata.Snapshot, len(r.items))
	copy(out, r.items)
	return out
}
