package result

import (
	"context"
	"time"
)

// StoredSnapshot is one persisted fetch-cycle output for a league.
type StoredSnapshot struct {
	LeagueKey string
	Week      int
	Year      int
	Payload   []byte
	CreatedAt time.Time
}

// SnapshotRepository persists the latest unified result per league so a
// restart can serve stale data while the first live cycle runs.
type SnapshotRepository interface {
	Upsert(ctx context.Context, snap StoredSnapshot) error
	GetLatest(ctx context.Context, leagueKey string) (*StoredSnapshot, error)
	ListLatest(ctx context.Context, year int) ([]StoredSnapshot, error)
}
