package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/fauzanhakim/league-hub/internal/domain/result"
)

// SnapshotRepository is the storage used when no database is configured.
// Snapshots survive only for the lifetime of the process.
type SnapshotRepository struct {
	mu    sync.RWMutex
	items map[string]result.StoredSnapshot
}

func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{items: make(map[string]result.StoredSnapshot)}
}

func (r *SnapshotRepository) Upsert(_ context.Context, snap result.StoredSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[snap.LeagueKey] = cloneSnapshot(snap)
	return nil
}

func (r *SnapshotRepository) GetLatest(_ context.Context, leagueKey string) (*result.StoredSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[leagueKey]
	if !ok {
		return nil, nil
	}

	copied := cloneSnapshot(item)
	return &copied, nil
}

func (r *SnapshotRepository) ListLatest(_ context.Context, year int) ([]result.StoredSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]result.StoredSnapshot, 0, len(r.items))
	for _, item := range r.items {
		if item.Year != year {
			continue
		}
		out = append(out, cloneSnapshot(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LeagueKey < out[j].LeagueKey })
	return out, nil
}

func cloneSnapshot(snap result.StoredSnapshot) result.StoredSnapshot {
	copied := snap
	copied.Payload = append([]byte(nil), snap.Payload...)
	return copied
}
