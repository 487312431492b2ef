package postgres

import "time"

type snapshotTableModel struct {
	ID        int64     `db:"id"`
	LeagueKey string    `db:"league_key"`
	Week      int       `db:"week"`
	Year      int       `db:"year"`
	Payload   []byte    `db:"payload"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type snapshotInsertModel struct {
	LeagueKey string    `db:"league_key"`
	Week      int       `db:"week"`
	Year      int       `db:"year"`
	Payload   []byte    `db:"payload"`
	CreatedAt time.Time `db:"created_at"`
}
