package memory

import (
	"context"
	"testing"
	"time"

	"github.com/fauzanhakim/league-hub/internal/domain/result"
)

func TestSnapshotRepository_UpsertReplacesPerLeague(t *testing.T) {
	t.Parallel()

	repo := NewSnapshotRepository()
	ctx := context.Background()

	first := result.StoredSnapshot{
		LeagueKey: "sleeper:1",
		Week:      3,
		Year:      2025,
		Payload:   []byte(`{"week":3}`),
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	second := first
	second.Week = 4
	second.Payload = []byte(`{"week":4}`)
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("upsert replacement: %v", err)
	}

	got, err := repo.GetLatest(ctx, "sleeper:1")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if got == nil || got.Week != 4 {
		t.Fatalf("expected replaced snapshot for week 4, got %+v", got)
	}
	if string(got.Payload) != `{"week":4}` {
		t.Fatalf("unexpected payload: %s", got.Payload)
	}
}

func TestSnapshotRepository_GetLatestUnknownIsNil(t *testing.T) {
	t.Parallel()

	repo := NewSnapshotRepository()
	got, err := repo.GetLatest(context.Background(), "espn:999")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for unknown league, got %+v", got)
	}
}

func TestSnapshotRepository_ListLatestFiltersByYear(t *testing.T) {
	t.Parallel()

	repo := NewSnapshotRepository()
	ctx := context.Background()

	snaps := []result.StoredSnapshot{
		{LeagueKey: "sleeper:2", Year: 2025, Week: 4, Payload: []byte(`{}`)},
		{LeagueKey: "espn:1", Year: 2025, Week: 4, Payload: []byte(`{}`)},
		{LeagueKey: "sleeper:old", Year: 2024, Week: 17, Payload: []byte(`{}`)},
	}
	for _, snap := range snaps {
		if err := repo.Upsert(ctx, snap); err != nil {
			t.Fatalf("upsert %s: %v", snap.LeagueKey, err)
		}
	}

	got, err := repo.ListLatest(ctx, 2025)
	if err != nil {
		t.Fatalf("list latest: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 snapshots for 2025, got %d", len(got))
	}
	// Sorted by league key.
	if got[0].LeagueKey != "espn:1" || got[1].LeagueKey != "sleeper:2" {
		t.Fatalf("unexpected order: %s, %s", got[0].LeagueKey, got[1].LeagueKey)
	}
}

func TestSnapshotRepository_ReturnsCopies(t *testing.T) {
	t.Parallel()

	repo := NewSnapshotRepository()
	ctx := context.Background()

	if err := repo.Upsert(ctx, result.StoredSnapshot{
		LeagueKey: "sleeper:1", Year: 2025, Payload: []byte(`{"a":1}`),
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.GetLatest(ctx, "sleeper:1")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	got.Payload[0] = 'X'

	again, err := repo.GetLatest(ctx, "sleeper:1")
	if err != nil {
		t.Fatalf("get latest again: %v", err)
	}
	if string(again.Payload) != `{"a":1}` {
		t.Fatalf("stored payload was mutated through a returned copy: %s", again.Payload)
	}
}
