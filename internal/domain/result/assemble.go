package result

import (
	"sort"

	"github.com/fauzanhakim/league-hub/internal/domain/roster"
)

// PairedEntry is one roster's week entry carrying the platform-supplied
// pairing key that groups it with its opponent.
type PairedEntry struct {
	PairKey  string
	Status   MatchupStatus
	Snapshot roster.Snapshot
}

// BuildMatchups groups paired entries by pairing key. A group of two
// becomes one Matchup; a group of one is a bye and is returned
// separately, never as a Matchup. Larger groups are malformed upstream
// data and are dropped.
func BuildMatchups(week int, entries []PairedEntry) ([]Matchup, []roster.Snapshot) {
	groups := make(map[string][]PairedEntry, len(entries)/2+1)
	order := make([]string, 0, len(entries)/2+1)
	for _, entry := range entries {
		if _, seen := groups[entry.PairKey]; !seen {
			order = append(order, entry.PairKey)
		}
		groups[entry.PairKey] = append(groups[entry.PairKey], entry)
	}

	matchups := make([]Matchup, 0, len(order))
	byes := make([]roster.Snapshot, 0)
	for _, key := range order {
		group := groups[key]
		switch len(group) {
		case 1:
			byes = append(byes, group[0].Snapshot)
		case 2:
			home, away := group[0], group[1]
			if home.Snapshot.TeamID == away.Snapshot.TeamID {
				continue
			}
			matchups = append(matchups, Matchup{
				Week:           week,
				Status:         home.Status,
				Home:           home.Snapshot,
				Away:           away.Snapshot,
				WinProbability: WinProbability(home.Snapshot.Score, away.Snapshot.Score),
			})
		}
	}
	return matchups, byes
}

// WinProbability is a linear heuristic on the current score gap, not a
// statistical model. Downstream display thresholds depend on its exact
// shape; do not replace it with a fitted model.
func WinProbability(home, away float64) float64 {
	edge := (home - away) / 100
	if edge > 0.5 {
		edge = 0.5
	}
	if edge < -0.5 {
		edge = -0.5
	}
	return 0.5 + edge*0.3
}

// EliminationCutoff is how many teams an elimination pool drops in one
// week: two for large pools, one otherwise.
func EliminationCutoff(teamCount int) int {
	if teamCount >= 20 {
		return 2
	}
	return 1
}

// BuildRanking orders snapshots by computed score descending and assigns
// dense ranks 1..N. Ties keep the platform's raw report order. The
// bottom cutoff ranks are eliminated this week; survival probability is
// the positional heuristic (N-rank)/N, zero once eliminated.
func BuildRanking(week int, snapshots []roster.Snapshot) Ranking {
	n := len(snapshots)
	if n == 0 {
		return Ranking{Week: week, Teams: []RankedTeam{}}
	}

	ordered := make([]roster.Snapshot, n)
	copy(ordered, snapshots)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})

	cutoff := EliminationCutoff(n)
	quartile := n / 4
	teams := make([]RankedTeam, 0, n)
	for idx, snap := range ordered {
		rank := idx + 1
		eliminated := rank > n-cutoff
		team := RankedTeam{
			Snapshot:   snap,
			Rank:       rank,
			Eliminated: eliminated,
			Status:     eliminationStatus(rank, n, cutoff, quartile),
		}
		if !eliminated {
			team.SurvivalProbability = float64(n-rank) / float64(n)
		}
		teams = append(teams, team)
	}

	return Ranking{
		Week:            week,
		Teams:           teams,
		EliminatedCount: cutoff,
	}
}

func eliminationStatus(rank, n, cutoff, quartile int) EliminationStatus {
	eliminated := rank > n-cutoff
	switch {
	case rank == 1 && !eliminated:
		return StatusChampion
	case eliminated:
		return StatusCritical
	case rank > n-cutoff-quartile:
		return StatusDanger
	case rank > n-cutoff-2*quartile:
		return StatusWarning
	default:
		return StatusSafe
	}
}
