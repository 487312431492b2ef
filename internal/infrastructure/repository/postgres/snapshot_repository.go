package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fauzanhakim/league-hub/internal/domain/result"
	qb "github.com/fauzanhakim/league-hub/internal/platform/querybuilder"
)

// SnapshotRepository keeps one row per league holding the last unified
// result payload. The row is replaced on every successful fetch cycle.
type SnapshotRepository struct {
	db *sqlx.DB
}

func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Upsert(ctx context.Context, snap result.StoredSnapshot) error {
	createdAt := snap.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	insertModel := snapshotInsertModel{
		LeagueKey: snap.LeagueKey,
		Week:      snap.Week,
		Year:      snap.Year,
		Payload:   snap.Payload,
		CreatedAt: createdAt,
	}

	query, args, err := qb.InsertModel("result_snapshots", insertModel, `ON CONFLICT (league_key)
DO UPDATE SET
    week = EXCLUDED.week,
    year = EXCLUDED.year,
    payload = EXCLUDED.payload,
    created_at = EXCLUDED.created_at,
    updated_at = NOW()
RETURNING updated_at`)
	if err != nil {
		return fmt.Errorf("build snapshot upsert query: %w", err)
	}

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	defer rows.Close()

	var updatedAt time.Time
	if rows.Next() {
		if err := rows.Scan(&updatedAt); err != nil {
			return fmt.Errorf("scan snapshot updated_at: %w", err)
		}
		return nil
	}

	return fmt.Errorf("upsert snapshot: no row returned")
}

func (r *SnapshotRepository) GetLatest(ctx context.Context, leagueKey string) (*result.StoredSnapshot, error) {
	query, args, err := snapshotBaseSelectBuilder().
		Where(qb.Eq("league_key", leagueKey)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get snapshot query: %w", err)
	}

	var row snapshotTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	snap := snapshotFromRow(row)
	return &snap, nil
}

func (r *SnapshotRepository) ListLatest(ctx context.Context, year int) ([]result.StoredSnapshot, error) {
	query, args, err := snapshotBaseSelectBuilder().
		Where(qb.Eq("year", year)).
		OrderBy("league_key").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list snapshots query: %w", err)
	}

	var rows []snapshotTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	out := make([]result.StoredSnapshot, 0, len(rows))
	for _, row := range rows {
		out = append(out, snapshotFromRow(row))
	}
	return out, nil
}

func snapshotFromRow(row snapshotTableModel) result.StoredSnapshot {
	return result.StoredSnapshot{
		LeagueKey: row.LeagueKey,
		Week:      row.Week,
		Year:      row.Year,
		Payload:   append([]byte(nil), row.Payload...),
		CreatedAt: row.CreatedAt,
	}
}

func snapshotBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select("*").From("result_snapshots")
}
