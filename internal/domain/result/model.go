package result

import (
	"time"

	"github.com/fauzanhakim/league-hub/internal/domain/league"
	"github.com/fauzanhakim/league-hub/internal/domain/roster"
)

// Kind tags which shape a Unified result carries.
type Kind string

const (
	KindMatchup Kind = "matchup"
	KindRanking Kind = "ranking"
)

// MatchupStatus tracks where a head-to-head matchup is in its lifecycle.
type MatchupStatus string

const (
	MatchupUpcoming MatchupStatus = "upcoming"
	MatchupLive     MatchupStatus = "live"
	MatchupComplete MatchupStatus = "complete"
)

// Matchup pairs exactly two roster snapshots for one week.
// Invariant: Home.TeamID != Away.TeamID.
type Matchup struct {
	Week           int
	Status         MatchupStatus
	Home           roster.Snapshot
	Away           roster.Snapshot
	WinProbability float64
}

// EliminationStatus buckets a ranked team by how close it sits to the cut.
type EliminationStatus string

const (
	StatusChampion EliminationStatus = "champion"
	StatusSafe     EliminationStatus = "safe"
	StatusWarning  EliminationStatus = "warning"
	StatusDanger   EliminationStatus = "danger"
	StatusCritical EliminationStatus = "critical"
)

// RankedTeam is one row of an elimination-pool table.
type RankedTeam struct {
	roster.Snapshot

	Rank                int
	Status              EliminationStatus
	Eliminated          bool
	SurvivalProbability float64
}

// Ranking is the flat table for leagues with no paired opponents.
// Ranks are a dense 1..N permutation.
type Ranking struct {
	Week            int
	Teams           []RankedTeam
	EliminatedCount int
}

// Unified is the single output of one league's fetch cycle: either a
// Matchup or a Ranking, never both. Replaced wholesale each cycle.
type Unified struct {
	League     league.Ref
	UserTeamID string
	Kind       Kind
	Matchup    *Matchup
	Ranking    *Ranking

	// Byes lists teams left without an opponent on a head-to-head
	// week. A bye is never promoted to a Matchup.
	Byes []roster.Snapshot

	LastUpdated time.Time
}

// Priority orders results for display. Live matchups first, then
// elimination pools, then a fixed platform preference. Ties keep
// insertion order.
func (u Unified) Priority() int {
	score := 0
	if u.Kind == KindMatchup && u.Matchup != nil && u.Matchup.Status == MatchupLive {
		score += 100
	}
	if u.Kind == KindRanking {
		score += 50
	}
	switch u.League.Platform {
	case league.PlatformSleeper:
		score += 30
	case league.PlatformESPN:
		score += 20
	}
	return score
}
