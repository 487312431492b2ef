package usecase

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/fauzanhakim/league-hub/external/espn"
	"github.com/fauzanhakim/league-hub/internal/domain/league"
	"github.com/fauzanhakim/league-hub/internal/domain/result"
	"github.com/fauzanhakim/league-hub/internal/platform/logging"
)

type stubESPNGateway struct {
	league     *espn.League
	leagueErr  error
	fanLeagues []espn.FanLeague
	fanErr     error
}

func (s *stubESPNGateway) FetchLeague(context.Context, espn.Credentials, string, int, int) (*espn.League, error) {
	return s.league, s.leagueErr
}

func (s *stubESPNGateway) ListFanLeagues(context.Context, espn.Credentials) ([]espn.FanLeague, error) {
	return s.fanLeagues, s.fanErr
}

func espnTestLeague() *espn.League {
	return &espn.League{
		ID:       12345,
		SeasonID: 2025,
		Status:   espn.LeagueStatus{CurrentMatchupPeriod: 4, IsActive: true},
		Settings: espn.LeagueSettings{Name: "Office League", Size: 4},
		Members: []espn.Member{
			{ID: "{AAA}", DisplayName: "alice"},
			{ID: "{BBB}", DisplayName: "bob"},
		},
		Teams: []espn.Team{
			{ID: 1, Name: "Hot Routes", Owners: []string{"{AAA}"},
				Record: espn.TeamRecord{Overall: espn.RecordSplit{Wins: 3, Losses: 1}}},
			{ID: 2, Name: "Blitz Mode", Owners: []string{"{BBB}"}},
			{ID: 3, Name: "Third Wheel", Owners: []string{"{CCC}"}},
			{ID: 4, Name: "Fourth Down", Owners: []string{"{DDD}"}},
		},
		Schedule: []espn.ScheduleItem{
			{ID: 900, MatchupPeriodID: 4, Winner: "UNDECIDED",
				Home: espn.TeamScore{TeamID: 1, TotalPointsLive: 88.4},
				Away: espn.TeamScore{TeamID: 2, TotalPointsLive: 72.1}},
			{ID: 901, MatchupPeriodID: 4, Winner: "UNDECIDED",
				Home: espn.TeamScore{TeamID: 3},
				Away: espn.TeamScore{TeamID: 4}},
			{ID: 800, MatchupPeriodID: 3, Winner: "HOME",
				Home: espn.TeamScore{TeamID: 1, TotalPoints: 120},
				Away: espn.TeamScore{TeamID: 3, TotalPoints: 100}},
		},
	}
}

func espnRef() league.Ref {
	return league.Ref{Platform: league.PlatformESPN, ExternalID: "12345"}
}

func TestESPNProvider_SelectsUserMatchupForWeek(t *testing.T) {
	t.Parallel()

	provider := NewESPNProvider(&stubESPNGateway{league: espnTestLeague()}, logging.NewNop())
	identity := league.UserIdentity{ESPNSWID: "{BBB}", ESPNS2: "s2"}

	unified, err := provider.FetchResult(context.Background(), identity, espnRef(), 2025, 4)
	if err != nil {
		t.Fatalf("FetchResult: %v", err)
	}

	if unified.Kind != result.KindMatchup || unified.Matchup == nil {
		t.Fatalf("expected matchup, got %+v", unified)
	}
	if unified.UserTeamID != "2" {
		t.Fatalf("swid must resolve to team 2, got %s", unified.UserTeamID)
	}
	m := unified.Matchup
	if m.Home.TeamID != "1" || m.Away.TeamID != "2" {
		t.Fatalf("wrong matchup selected: %s vs %s", m.Home.TeamID, m.Away.TeamID)
	}
	if m.Status != result.MatchupLive {
		t.Fatalf("live points must mark the matchup live, got %s", m.Status)
	}
	if m.Home.Score != 88.4 {
		t.Fatalf("live score must be used: %v", m.Home.Score)
	}
	if m.Home.Record == nil || m.Home.Record.Wins != 3 {
		t.Fatalf("season record missing: %+v", m.Home.Record)
	}
	if unified.League.Name != "Office League" {
		t.Fatalf("league name must come from settings: %q", unified.League.Name)
	}
}

func TestESPNProvider_PriorWeekIsFilteredOut(t *testing.T) {
	t.Parallel()

	provider := NewESPNProvider(&stubESPNGateway{league: espnTestLeague()}, logging.NewNop())
	identity := league.UserIdentity{ESPNSWID: "{AAA}"}

	unified, err := provider.FetchResult(context.Background(), identity, espnRef(), 2025, 4)
	if err != nil {
		t.Fatalf("FetchResult: %v", err)
	}
	// Week 3's completed game pairs teams 1 and 3; week 4 pairs 1 and 2.
	if unified.Matchup.Away.TeamID != "2" {
		t.Fatalf("prior week schedule leaked in: %+v", unified.Matchup)
	}
}

func TestESPNProvider_NoScheduleBecomesRanking(t *testing.T) {
	t.Parallel()

	lg := espnTestLeague()
	lg.Schedule = nil
	provider := NewESPNProvider(&stubESPNGateway{league: lg}, logging.NewNop())

	unified, err := provider.FetchResult(context.Background(),
		league.UserIdentity{ESPNSWID: "{AAA}"}, espnRef(), 2025, 4)
	if err != nil {
		t.Fatalf("FetchResult: %v", err)
	}
	if unified.Kind != result.KindRanking || unified.Ranking == nil {
		t.Fatalf("schedule-less league must become a ranking, got %+v", unified)
	}
	if len(unified.Ranking.Teams) != 4 {
		t.Fatalf("expected 4 ranked teams, got %d", len(unified.Ranking.Teams))
	}
}

func espnStarter(playerID int64, week int, points float64) espn.RosterEntry {
	return espn.RosterEntry{
		LineupSlotID: 0,
		PlayerPoolEntry: espn.PlayerPoolEntry{
			ID: playerID,
			Player: espn.Player{
				ID:                playerID,
				DefaultPositionID: 1,
				Stats: []espn.PlayerStat{
					{ScoringPeriodID: week, StatSourceID: 0, AppliedTotal: points},
				},
			},
		},
	}
}

func TestESPNProvider_RankingOrdersByStarterPoints(t *testing.T) {
	t.Parallel()

	lg := espnTestLeague()
	lg.Schedule = nil
	for i := range lg.Teams {
		lg.Teams[i].Roster.Entries = []espn.RosterEntry{
			espnStarter(int64(100+i), 4, float64(10*(i+1))),
			// Bench points never count toward the pool score.
			{LineupSlotID: 20, PlayerPoolEntry: espn.PlayerPoolEntry{
				ID: int64(200 + i),
				Player: espn.Player{ID: int64(200 + i), Stats: []espn.PlayerStat{
					{ScoringPeriodID: 4, StatSourceID: 0, AppliedTotal: 500},
				}},
			}},
		}
	}
	provider := NewESPNProvider(&stubESPNGateway{league: lg}, logging.NewNop())

	unified, err := provider.FetchResult(context.Background(),
		league.UserIdentity{ESPNSWID: "{AAA}"}, espnRef(), 2025, 4)
	if err != nil {
		t.Fatalf("FetchResult: %v", err)
	}
	ranking := unified.Ranking
	if ranking == nil {
		t.Fatalf("expected ranking, got %+v", unified)
	}
	top := ranking.Teams[0]
	if top.TeamID != "4" || top.Rank != 1 || top.Score != 40.0 {
		t.Fatalf("highest starter total must rank first: %+v", top)
	}
	bottom := ranking.Teams[3]
	if bottom.TeamID != "1" || bottom.Score != 10.0 {
		t.Fatalf("lowest starter total must rank last: %+v", bottom)
	}
}

func TestESPNProvider_OddScheduleEntryReportsBye(t *testing.T) {
	t.Parallel()

	lg := espnTestLeague()
	// Team 4 drops off the week-4 slate; its pairing group has one side.
	lg.Schedule = []espn.ScheduleItem{
		{ID: 900, MatchupPeriodID: 4, Winner: "UNDECIDED",
			Home: espn.TeamScore{TeamID: 1, TotalPointsLive: 88.4},
			Away: espn.TeamScore{TeamID: 2, TotalPointsLive: 72.1}},
		{ID: 901, MatchupPeriodID: 4, Winner: "UNDECIDED",
			Home: espn.TeamScore{TeamID: 3, TotalPointsLive: 50}},
	}
	provider := NewESPNProvider(&stubESPNGateway{league: lg}, logging.NewNop())

	unified, err := provider.FetchResult(context.Background(),
		league.UserIdentity{ESPNSWID: "{AAA}"}, espnRef(), 2025, 4)
	if err != nil {
		t.Fatalf("FetchResult: %v", err)
	}
	if unified.Matchup == nil {
		t.Fatalf("expected matchup for paired user, got %+v", unified)
	}
	if len(unified.Byes) != 1 || unified.Byes[0].TeamID != "3" {
		t.Fatalf("half-empty schedule slot must surface as a bye: %+v", unified.Byes)
	}
}

func TestESPNProvider_UnknownSWIDIsTyped(t *testing.T) {
	t.Parallel()

	provider := NewESPNProvider(&stubESPNGateway{league: espnTestLeague()}, logging.NewNop())

	_, err := provider.FetchResult(context.Background(),
		league.UserIdentity{ESPNSWID: "{ZZZ}"}, espnRef(), 2025, 4)
	if !stderrors.Is(err, ErrTeamNotResolved) {
		t.Fatalf("expected ErrTeamNotResolved, got %v", err)
	}
}

func TestESPNProvider_ListLeaguesMapsFanPreferences(t *testing.T) {
	t.Parallel()

	provider := NewESPNProvider(&stubESPNGateway{
		fanLeagues: []espn.FanLeague{
			{GroupID: 12345, GroupName: "Office League", GroupSize: 10},
		},
	}, logging.NewNop())

	refs, err := provider.ListLeagues(context.Background(),
		league.UserIdentity{ESPNSWID: "{AAA}"}, 2025)
	if err != nil {
		t.Fatalf("ListLeagues: %v", err)
	}
	if len(refs) != 1 || refs[0].Key() != "espn:12345" {
		t.Fatalf("unexpected refs: %+v", refs)
	}
	if refs[0].TeamCount != 10 {
		t.Fatalf("team count not mapped: %d", refs[0].TeamCount)
	}
}

func TestESPNProvider_NoIdentityListsNothing(t *testing.T) {
	t.Parallel()

	provider := NewESPNProvider(&stubESPNGateway{}, logging.NewNop())
	refs, err := provider.ListLeagues(context.Background(), league.UserIdentity{}, 2025)
	if err != nil {
		t.Fatalf("ListLeagues: %v", err)
	}
	if len(refs) != 0 {
		t.Fatalf("no credentials must list no leagues, got %+v", refs)
	}
}
