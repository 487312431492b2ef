package usecase

import (
	"context"
	stderrors "errors"
	"strconv"
	"testing"
	"time"

	"github.com/fauzanhakim/league-hub/external/sleeper"
	"github.com/fauzanhakim/league-hub/internal/domain/league"
	"github.com/fauzanhakim/league-hub/internal/domain/result"
	"github.com/fauzanhakim/league-hub/internal/platform/cache"
	"github.com/fauzanhakim/league-hub/internal/platform/logging"
)

type stubSleeperGateway struct {
	user     *sleeper.User
	userErr  error
	leagues  []sleeper.League
	league   *sleeper.League
	rosters  []sleeper.Roster
	users    []sleeper.User
	matchups []sleeper.Matchup
	stats      map[string]map[string]float64
	statsErr   error
	statsCalls int
	state      *sleeper.NFLState
}

func (s *stubSleeperGateway) GetUser(context.Context, string) (*sleeper.User, error) {
	return s.user, s.userErr
}
func (s *stubSleeperGateway) GetUserLeagues(context.Context, string, int) ([]sleeper.League, error) {
	return s.leagues, nil
}
func (s *stubSleeperGateway) GetLeague(context.Context, string) (*sleeper.League, error) {
	return s.league, nil
}
func (s *stubSleeperGateway) GetLeagueRosters(context.Context, string) ([]sleeper.Roster, error) {
	return s.rosters, nil
}
func (s *stubSleeperGateway) GetLeagueUsers(context.Context, string) ([]sleeper.User, error) {
	return s.users, nil
}
func (s *stubSleeperGateway) GetMatchups(context.Context, string, int) ([]sleeper.Matchup, error) {
	return s.matchups, nil
}
func (s *stubSleeperGateway) GetWeekStats(context.Context, int, int) (map[string]map[string]float64, error) {
	s.statsCalls++
	return s.stats, s.statsErr
}
func (s *stubSleeperGateway) GetNFLState(context.Context) (*sleeper.NFLState, error) {
	if s.state == nil {
		return &sleeper.NFLState{Week: 4, Season: "2025", SeasonType: "regular"}, nil
	}
	return s.state, nil
}

func sleeperLeagueRef(id string) league.Ref {
	return league.Ref{Platform: league.PlatformSleeper, ExternalID: id, Name: "test league"}
}

func TestSleeperProvider_EliminationPoolBecomesRanking(t *testing.T) {
	t.Parallel()

	rosters := make([]sleeper.Roster, 0, 12)
	matchups := make([]sleeper.Matchup, 0, 12)
	users := make([]sleeper.User, 0, 12)
	for i := 1; i <= 12; i++ {
		owner := "owner-" + strconv.Itoa(i)
		rosters = append(rosters, sleeper.Roster{RosterID: i, OwnerID: owner})
		users = append(users, sleeper.User{UserID: owner, DisplayName: "Owner " + strconv.Itoa(i)})
		// No matchup ids: nobody is paired, everyone plays the field.
		matchups = append(matchups, sleeper.Matchup{
			RosterID: i,
			Points:   float64(150 - i*10),
		})
	}

	gateway := &stubSleeperGateway{
		league:   &sleeper.League{LeagueID: "77", Name: "Guillotine", TotalRosters: 12, ScoringSettings: map[string]float64{"pass_td": 4}},
		rosters:  rosters,
		users:    users,
		matchups: matchups,
	}
	provider := NewSleeperProvider(gateway, logging.NewNop())

	identity := league.UserIdentity{SleeperUserID: "12345"}
	gateway.rosters[4].OwnerID = "12345"

	unified, err := provider.FetchResult(context.Background(), identity, sleeperLeagueRef("77"), 2025, 4)
	if err != nil {
		t.Fatalf("FetchResult: %v", err)
	}

	if unified.Kind != result.KindRanking || unified.Ranking == nil {
		t.Fatalf("expected ranking result, got %+v", unified)
	}
	if unified.UserTeamID != "5" {
		t.Fatalf("user team not resolved from owner id: %s", unified.UserTeamID)
	}
	ranking := unified.Ranking
	if len(ranking.Teams) != 12 {
		t.Fatalf("expected 12 ranked teams, got %d", len(ranking.Teams))
	}
	if ranking.EliminatedCount != 1 {
		t.Fatalf("pool of 12 cuts one team, got %d", ranking.EliminatedCount)
	}
	bottom := ranking.Teams[11]
	if !bottom.Eliminated || bottom.TeamID != "12" {
		t.Fatalf("lowest scorer must be eliminated: %+v", bottom)
	}
	if ranking.Teams[0].TeamID != "1" || ranking.Teams[0].Rank != 1 {
		t.Fatalf("highest scorer must rank first: %+v", ranking.Teams[0])
	}
}

func TestSleeperProvider_HeadToHeadBecomesUserMatchup(t *testing.T) {
	t.Parallel()

	gateway := &stubSleeperGateway{
		user:   &sleeper.User{UserID: "u2"},
		league: &sleeper.League{LeagueID: "88", Name: "H2H", TotalRosters: 4},
		rosters: []sleeper.Roster{
			{RosterID: 1, OwnerID: "u1", Settings: sleeper.RosterSettings{Wins: 3, Losses: 1}},
			{RosterID: 2, OwnerID: "u2"},
			{RosterID: 3, OwnerID: "u3"},
			{RosterID: 4, OwnerID: "u4"},
		},
		users: []sleeper.User{
			{UserID: "u1", DisplayName: "Alice", Metadata: map[string]string{"team_name": "Alice Army"}},
			{UserID: "u2", DisplayName: "Bob"},
		},
		matchups: []sleeper.Matchup{
			{RosterID: 1, MatchupID: 1, Points: 101.5},
			{RosterID: 2, MatchupID: 1, Points: 88.25},
			{RosterID: 3, MatchupID: 2, Points: 95.0},
			{RosterID: 4, MatchupID: 2, Points: 90.0},
		},
	}
	provider := NewSleeperProvider(gateway, logging.NewNop())

	unified, err := provider.FetchResult(context.Background(),
		league.UserIdentity{SleeperUserID: "u2"}, sleeperLeagueRef("88"), 2025, 4)
	if err != nil {
		t.Fatalf("FetchResult: %v", err)
	}

	if unified.Kind != result.KindMatchup || unified.Matchup == nil {
		t.Fatalf("expected matchup result, got %+v", unified)
	}
	m := unified.Matchup
	if m.Home.TeamID != "1" || m.Away.TeamID != "2" {
		t.Fatalf("wrong pairing: %s vs %s", m.Home.TeamID, m.Away.TeamID)
	}
	if m.Home.TeamName != "Alice Army" {
		t.Fatalf("team name metadata not used: %q", m.Home.TeamName)
	}
	if m.Home.Score != 101.5 || m.Away.Score != 88.25 {
		t.Fatalf("reported totals must pass through: %v vs %v", m.Home.Score, m.Away.Score)
	}
	if m.Status != result.MatchupLive {
		t.Fatalf("nonzero scores in the current week must be live, got %s", m.Status)
	}
	if m.WinProbability <= 0.5 {
		t.Fatalf("leading home side must have win probability above 0.5, got %v", m.WinProbability)
	}
}

func TestSleeperProvider_RecomputesUnscoredEntriesFromStatsFeed(t *testing.T) {
	t.Parallel()

	gateway := &stubSleeperGateway{
		user: &sleeper.User{UserID: "u1"},
		league: &sleeper.League{
			LeagueID:        "99",
			TotalRosters:    2,
			ScoringSettings: map[string]float64{"pass_td": 6, "pass_yd": 0.05},
		},
		rosters: []sleeper.Roster{
			{RosterID: 1, OwnerID: "u1"},
			{RosterID: 2, OwnerID: "u2"},
		},
		users: []sleeper.User{{UserID: "u1"}, {UserID: "u2"}},
		matchups: []sleeper.Matchup{
			{RosterID: 1, MatchupID: 1, Starters: []string{"p1", "p2"}},
			{RosterID: 2, MatchupID: 1, Starters: []string{"p3"}},
		},
		stats: map[string]map[string]float64{
			"p1": {"pass_td": 2, "pass_yd": 300},
			"p2": {"pass_td": 1},
			"p3": {"pass_yd": 100, "rush_yd": 40},
		},
	}
	provider := NewSleeperProvider(gateway, logging.NewNop())

	unified, err := provider.FetchResult(context.Background(),
		league.UserIdentity{SleeperUserID: "u1"}, sleeperLeagueRef("99"), 2025, 4)
	if err != nil {
		t.Fatalf("FetchResult: %v", err)
	}

	m := unified.Matchup
	if m == nil {
		t.Fatalf("expected matchup, got %+v", unified)
	}
	// p1: 2*6 + 300*0.05 = 27, p2: 1*6 = 6. rush_yd has no rule and
	// contributes nothing.
	if m.Home.Score != 33.0 {
		t.Fatalf("home recomputed score: got %v want 33.0", m.Home.Score)
	}
	if m.Away.Score != 5.0 {
		t.Fatalf("away recomputed score: got %v want 5.0", m.Away.Score)
	}
}

func TestSleeperProvider_StatsFeedIsCachedAcrossFetches(t *testing.T) {
	t.Parallel()

	gateway := &stubSleeperGateway{
		user:   &sleeper.User{UserID: "u1"},
		league: &sleeper.League{LeagueID: "55", TotalRosters: 2},
		rosters: []sleeper.Roster{
			{RosterID: 1, OwnerID: "u1"},
			{RosterID: 2, OwnerID: "u2"},
		},
		users: []sleeper.User{{UserID: "u1"}, {UserID: "u2"}},
		matchups: []sleeper.Matchup{
			{RosterID: 1, MatchupID: 1, Points: 50},
			{RosterID: 2, MatchupID: 1, Points: 40},
		},
		stats: map[string]map[string]float64{"p1": {"pass_td": 1}},
	}
	provider := NewSleeperProvider(gateway, logging.NewNop()).
		WithStatsCache(cache.NewStore(time.Minute))

	identity := league.UserIdentity{SleeperUserID: "u1"}
	for i := 0; i < 3; i++ {
		if _, err := provider.FetchResult(context.Background(), identity, sleeperLeagueRef("55"), 2025, 4); err != nil {
			t.Fatalf("FetchResult %d: %v", i, err)
		}
	}
	if gateway.statsCalls != 1 {
		t.Fatalf("stats feed must be fetched once for the week, got %d calls", gateway.statsCalls)
	}
}

func TestSleeperProvider_ResolvesUsernameThroughLookup(t *testing.T) {
	t.Parallel()

	gateway := &stubSleeperGateway{
		user: &sleeper.User{UserID: "777", Username: "alice"},
		leagues: []sleeper.League{
			{LeagueID: "1", Name: "A", TotalRosters: 10},
		},
	}
	provider := NewSleeperProvider(gateway, logging.NewNop())

	refs, err := provider.ListLeagues(context.Background(),
		league.UserIdentity{SleeperUsername: "alice"}, 2025)
	if err != nil {
		t.Fatalf("ListLeagues: %v", err)
	}
	if len(refs) != 1 || refs[0].Key() != "sleeper:1" {
		t.Fatalf("unexpected refs: %+v", refs)
	}
}

func TestSleeperProvider_UnresolvedTeamIsTyped(t *testing.T) {
	t.Parallel()

	gateway := &stubSleeperGateway{
		user:    &sleeper.User{UserID: "u-unknown"},
		league:  &sleeper.League{LeagueID: "1", TotalRosters: 2},
		rosters: []sleeper.Roster{{RosterID: 1, OwnerID: "someone-else"}},
	}
	provider := NewSleeperProvider(gateway, logging.NewNop())

	_, err := provider.FetchResult(context.Background(),
		league.UserIdentity{SleeperUserID: "u-unknown"}, sleeperLeagueRef("1"), 2025, 4)
	if !stderrors.Is(err, ErrTeamNotResolved) {
		t.Fatalf("expected ErrTeamNotResolved, got %v", err)
	}
}

func TestSleeperProvider_UnknownUserLookupIsTyped(t *testing.T) {
	t.Parallel()

	// The public API answers an unknown username with a null body, so
	// the gateway hands back neither a user nor an error.
	gateway := &stubSleeperGateway{}
	provider := NewSleeperProvider(gateway, logging.NewNop())

	_, err := provider.LookupUserID(context.Background(), "no-such-user")
	if !stderrors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}

	_, err = provider.FetchResult(context.Background(),
		league.UserIdentity{SleeperUsername: "no-such-user"}, sleeperLeagueRef("1"), 2025, 4)
	if !stderrors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from fetch, got %v", err)
	}
}

func TestSleeperProvider_EmptyMatchupFeedRanksEveryRoster(t *testing.T) {
	t.Parallel()

	rosters := make([]sleeper.Roster, 0, 12)
	users := make([]sleeper.User, 0, 12)
	stats := make(map[string]map[string]float64, 12)
	for i := 1; i <= 12; i++ {
		owner := "owner-" + strconv.Itoa(i)
		starter := "qb-" + strconv.Itoa(i)
		rosters = append(rosters, sleeper.Roster{
			RosterID: i,
			OwnerID:  owner,
			Starters: []string{starter},
		})
		users = append(users, sleeper.User{UserID: owner, DisplayName: "Owner " + strconv.Itoa(i)})
		stats[starter] = map[string]float64{"pass_td": float64(13 - i)}
	}

	gateway := &stubSleeperGateway{
		user: &sleeper.User{UserID: "owner-3"},
		league: &sleeper.League{
			LeagueID:        "42",
			Name:            "Guillotine",
			TotalRosters:    12,
			ScoringSettings: map[string]float64{"pass_td": 4},
		},
		rosters:  rosters,
		users:    users,
		matchups: nil,
		stats:    stats,
	}
	provider := NewSleeperProvider(gateway, logging.NewNop())

	unified, err := provider.FetchResult(context.Background(),
		league.UserIdentity{SleeperUserID: "owner-3"}, sleeperLeagueRef("42"), 2025, 5)
	if err != nil {
		t.Fatalf("FetchResult: %v", err)
	}

	if unified.Kind != result.KindRanking || unified.Ranking == nil {
		t.Fatalf("expected ranking result, got %+v", unified)
	}
	ranking := unified.Ranking
	if len(ranking.Teams) != 12 {
		t.Fatalf("every roster must be ranked: got %d teams", len(ranking.Teams))
	}
	if ranking.Teams[0].TeamID != "1" || ranking.Teams[0].Score != 48.0 {
		t.Fatalf("top scorer wrong: %+v", ranking.Teams[0])
	}
	bottom := ranking.Teams[11]
	if bottom.TeamID != "12" || bottom.Rank != 12 || !bottom.Eliminated {
		t.Fatalf("lowest recomputed scorer must sit at rank 12 and be cut: %+v", bottom)
	}
	if ranking.EliminatedCount != 1 {
		t.Fatalf("pool of 12 cuts one team, got %d", ranking.EliminatedCount)
	}
}

func TestSleeperProvider_PoolScoresKeepFullPrecision(t *testing.T) {
	t.Parallel()

	gateway := &stubSleeperGateway{
		user:   &sleeper.User{UserID: "u1"},
		league: &sleeper.League{LeagueID: "7", TotalRosters: 2},
		rosters: []sleeper.Roster{
			{RosterID: 1, OwnerID: "u1"},
			{RosterID: 2, OwnerID: "u2"},
		},
		users: []sleeper.User{{UserID: "u1"}, {UserID: "u2"}},
		// No matchup ids: a pool. The totals differ only past the
		// second decimal and must still order the table.
		matchups: []sleeper.Matchup{
			{RosterID: 1, Points: 100.004},
			{RosterID: 2, Points: 100.006},
		},
	}
	provider := NewSleeperProvider(gateway, logging.NewNop())

	unified, err := provider.FetchResult(context.Background(),
		league.UserIdentity{SleeperUserID: "u1"}, sleeperLeagueRef("7"), 2025, 4)
	if err != nil {
		t.Fatalf("FetchResult: %v", err)
	}
	ranking := unified.Ranking
	if ranking == nil {
		t.Fatalf("expected ranking, got %+v", unified)
	}
	if ranking.Teams[0].TeamID != "2" {
		t.Fatalf("higher raw total must rank first: %+v", ranking.Teams[0])
	}
	if ranking.Teams[0].Score != 100.006 {
		t.Fatalf("score must pass through unrounded: %v", ranking.Teams[0].Score)
	}
}

func TestSleeperProvider_OddEntryCountReportsBye(t *testing.T) {
	t.Parallel()

	gateway := &stubSleeperGateway{
		user:   &sleeper.User{UserID: "u1"},
		league: &sleeper.League{LeagueID: "66", TotalRosters: 3},
		rosters: []sleeper.Roster{
			{RosterID: 1, OwnerID: "u1"},
			{RosterID: 2, OwnerID: "u2"},
			{RosterID: 3, OwnerID: "u3"},
		},
		users: []sleeper.User{{UserID: "u1"}, {UserID: "u2"}, {UserID: "u3"}},
		matchups: []sleeper.Matchup{
			{RosterID: 1, MatchupID: 1, Points: 80},
			{RosterID: 2, MatchupID: 1, Points: 70},
			{RosterID: 3, MatchupID: 2, Points: 60},
		},
	}
	provider := NewSleeperProvider(gateway, logging.NewNop())

	unified, err := provider.FetchResult(context.Background(),
		league.UserIdentity{SleeperUserID: "u1"}, sleeperLeagueRef("66"), 2025, 4)
	if err != nil {
		t.Fatalf("FetchResult: %v", err)
	}

	if unified.Matchup == nil {
		t.Fatalf("expected matchup for paired user, got %+v", unified)
	}
	if len(unified.Byes) != 1 || unified.Byes[0].TeamID != "3" {
		t.Fatalf("unpaired roster must be reported as a bye: %+v", unified.Byes)
	}
}
