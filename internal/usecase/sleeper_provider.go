package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fauzanhakim/league-hub/external/sleeper"
	"github.com/fauzanhakim/league-hub/internal/domain/league"
	"github.com/fauzanhakim/league-hub/internal/domain/result"
	"github.com/fauzanhakim/league-hub/internal/domain/roster"
	"github.com/fauzanhakim/league-hub/internal/domain/scoring"
	"github.com/fauzanhakim/league-hub/internal/platform/cache"
	"github.com/fauzanhakim/league-hub/internal/platform/logging"
)

// sleeperGateway is the slice of the Sleeper client this provider uses.
type sleeperGateway interface {
	GetUser(ctx context.Context, usernameOrID string) (*sleeper.User, error)
	GetUserLeagues(ctx context.Context, userID string, season int) ([]sleeper.League, error)
	GetLeague(ctx context.Context, leagueID string) (*sleeper.League, error)
	GetLeagueRosters(ctx context.Context, leagueID string) ([]sleeper.Roster, error)
	GetLeagueUsers(ctx context.Context, leagueID string) ([]sleeper.User, error)
	GetMatchups(ctx context.Context, leagueID string, week int) ([]sleeper.Matchup, error)
	GetWeekStats(ctx context.Context, season, week int) (map[string]map[string]float64, error)
	GetNFLState(ctx context.Context) (*sleeper.NFLState, error)
}

type SleeperProvider struct {
	client sleeperGateway
	logger *logging.Logger
	now    func() time.Time

	// statsCache is shared across leagues: the weekly stats feed is the
	// same payload no matter which league asks for it.
	statsCache *cache.Store
}

func NewSleeperProvider(client sleeperGateway, logger *logging.Logger) *SleeperProvider {
	if logger == nil {
		logger = logging.Default()
	}
	return &SleeperProvider{
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// WithStatsCache caches the weekly stats feed across fetches.
func (p *SleeperProvider) WithStatsCache(store *cache.Store) *SleeperProvider {
	p.statsCache = store
	return p
}

func (p *SleeperProvider) Platform() league.Platform { return league.PlatformSleeper }

// LookupUserID satisfies SleeperUserLookup.
func (p *SleeperProvider) LookupUserID(ctx context.Context, usernameOrID string) (string, error) {
	user, err := p.client.GetUser(ctx, usernameOrID)
	if err != nil {
		return "", err
	}
	if user == nil || user.UserID == "" {
		return "", fmt.Errorf("%w: sleeper user %s", ErrNotFound, usernameOrID)
	}
	return user.UserID, nil
}

// CurrentWeek satisfies SeasonClock via the sport state endpoint.
func (p *SleeperProvider) CurrentWeek(ctx context.Context) (int, int, error) {
	state, err := p.client.GetNFLState(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: nfl state: %v", ErrDependencyUnavailable, err)
	}
	year, err := strconv.Atoi(state.Season)
	if err != nil {
		return 0, 0, fmt.Errorf("parse season %q: %w", state.Season, err)
	}
	week := state.Week
	if week <= 0 {
		week = state.Leg
	}
	if week <= 0 {
		week = 1
	}
	return year, week, nil
}

func (p *SleeperProvider) ListLeagues(ctx context.Context, identity league.UserIdentity, year int) ([]league.Ref, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SleeperProvider.ListLeagues")
	defer span.End()

	if identity.SleeperIdentifier() == "" {
		return nil, nil
	}
	userID, err := ResolveSleeperUserID(ctx, p, identity)
	if err != nil {
		return nil, err
	}

	leagues, err := p.client.GetUserLeagues(ctx, userID, year)
	if err != nil {
		return nil, fmt.Errorf("list sleeper leagues: %w", err)
	}

	refs := make([]league.Ref, 0, len(leagues))
	for _, item := range leagues {
		refs = append(refs, league.Ref{
			Platform:   league.PlatformSleeper,
			ExternalID: item.LeagueID,
			Name:       item.Name,
			TeamCount:  firstNonZeroInt(item.TotalRosters, item.Settings.NumTeams),
		})
	}
	return refs, nil
}

func (p *SleeperProvider) FetchResult(ctx context.Context, identity league.UserIdentity, ref league.Ref, year, week int) (result.Unified, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SleeperProvider.FetchResult")
	defer span.End()

	userID, err := ResolveSleeperUserID(ctx, p, identity)
	if err != nil {
		return result.Unified{}, err
	}

	lg, err := p.client.GetLeague(ctx, ref.ExternalID)
	if err != nil {
		return result.Unified{}, fmt.Errorf("fetch sleeper league %s: %w", ref.Key(), err)
	}
	rosters, err := p.client.GetLeagueRosters(ctx, ref.ExternalID)
	if err != nil {
		return result.Unified{}, fmt.Errorf("fetch sleeper rosters %s: %w", ref.Key(), err)
	}
	users, err := p.client.GetLeagueUsers(ctx, ref.ExternalID)
	if err != nil {
		return result.Unified{}, fmt.Errorf("fetch sleeper users %s: %w", ref.Key(), err)
	}
	matchups, err := p.client.GetMatchups(ctx, ref.ExternalID, week)
	if err != nil {
		return result.Unified{}, fmt.Errorf("fetch sleeper matchups %s week %d: %w", ref.Key(), week, err)
	}

	slots := sleeperOwnershipSlots(rosters)
	userTeamID, err := ResolveOwnedTeam(slots, userID)
	if err != nil {
		return result.Unified{}, fmt.Errorf("league %s: %w", ref.Key(), err)
	}

	// The stats feed is shared across leagues; the per-league scoring
	// rules turn its raw lines into points.
	rules := scoring.RuleSet(lg.ScoringSettings)
	statLines := p.loadStatLines(ctx, year, week)

	ref.Name = firstNonEmptyString(lg.Name, ref.Name)
	ref.TeamCount = firstNonZeroInt(lg.TotalRosters, len(rosters))

	snapshots := sleeperSnapshots(rosters, users)
	paired, unpaired := sleeperWeekEntries(matchups, snapshots, rules, statLines)

	// An empty matchup feed still describes a pool week: score each
	// roster's starters straight from the stats feed instead.
	if len(matchups) == 0 {
		unpaired = sleeperRosterEntries(rosters, snapshots, rules, statLines)
	}

	unified := result.Unified{
		League:      ref,
		UserTeamID:  userTeamID,
		LastUpdated: p.now().UTC(),
	}

	// No paired entries at all on a scored week marks an elimination
	// pool: everyone plays against the field.
	if len(paired) == 0 {
		ranking := result.BuildRanking(week, unpaired)
		unified.Kind = result.KindRanking
		unified.Ranking = &ranking
		return unified, nil
	}

	status := p.matchupStatus(ctx, week, paired)
	for i := range paired {
		paired[i].Status = status
	}
	matchupsBuilt, byes := result.BuildMatchups(week, paired)
	// Entries with no opponent this week sit out; they are reported
	// alongside the matchup, never as one.
	unified.Byes = append(unpaired, byes...)
	for i := range matchupsBuilt {
		m := matchupsBuilt[i]
		if m.Home.TeamID == userTeamID || m.Away.TeamID == userTeamID {
			unified.Kind = result.KindMatchup
			unified.Matchup = &m
			return unified, nil
		}
	}
	return result.Unified{}, fmt.Errorf("league %s week %d: %w: user team %s has no matchup entry",
		ref.Key(), week, ErrNotFound, userTeamID)
}

// loadStatLines pulls the week's raw stats. Failure degrades to the
// platform's own totals instead of failing the league.
func (p *SleeperProvider) loadStatLines(ctx context.Context, year, week int) map[string]scoring.StatLine {
	if p.statsCache == nil {
		lines, err := p.fetchStatLines(ctx, year, week)
		if err != nil {
			p.logger.WarnContext(ctx, "sleeper week stats unavailable, using reported totals", "year", year, "week", week, "error", err)
			return nil
		}
		return lines
	}

	key := fmt.Sprintf("sleeper:stats:%d:%d", year, week)
	value, err := p.statsCache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return p.fetchStatLines(ctx, year, week)
	})
	if err != nil {
		p.logger.WarnContext(ctx, "sleeper week stats unavailable, using reported totals", "year", year, "week", week, "error", err)
		return nil
	}
	lines, _ := value.(map[string]scoring.StatLine)
	return lines
}

func (p *SleeperProvider) fetchStatLines(ctx context.Context, year, week int) (map[string]scoring.StatLine, error) {
	raw, err := p.client.GetWeekStats(ctx, year, week)
	if err != nil {
		return nil, err
	}
	lines := make(map[string]scoring.StatLine, len(raw))
	for playerID, line := range raw {
		lines[playerID] = scoring.StatLine(line)
	}
	return lines, nil
}

func (p *SleeperProvider) matchupStatus(ctx context.Context, week int, paired []result.PairedEntry) result.MatchupStatus {
	state, err := p.client.GetNFLState(ctx)
	if err != nil {
		p.logger.WarnContext(ctx, "sleeper nfl state unavailable, assuming live week", "error", err)
		state = nil
	}
	if state != nil && week < state.Week {
		return result.MatchupComplete
	}
	for _, entry := range paired {
		if entry.Snapshot.Score > 0 {
			return result.MatchupLive
		}
	}
	return result.MatchupUpcoming
}

func sleeperOwnershipSlots(rosters []sleeper.Roster) []roster.Ownership {
	slots := make([]roster.Ownership, 0, len(rosters))
	for _, item := range rosters {
		slots = append(slots, roster.Ownership{
			TeamID:     strconv.Itoa(item.RosterID),
			OwnerID:    item.OwnerID,
			CoOwnerIDs: item.CoOwners,
		})
	}
	return slots
}

func sleeperSnapshots(rosters []sleeper.Roster, users []sleeper.User) map[string]roster.Snapshot {
	usersByID := make(map[string]sleeper.User, len(users))
	for _, user := range users {
		usersByID[user.UserID] = user
	}

	snapshots := make(map[string]roster.Snapshot, len(rosters))
	for _, item := range rosters {
		owner := usersByID[item.OwnerID]
		teamName := owner.Metadata["team_name"]
		snapshots[strconv.Itoa(item.RosterID)] = roster.Snapshot{
			TeamID:    strconv.Itoa(item.RosterID),
			TeamName:  firstNonEmptyString(teamName, owner.DisplayName, owner.Username),
			OwnerName: firstNonEmptyString(owner.DisplayName, owner.Username),
			AvatarURL: owner.Avatar,
			Record: &roster.Record{
				Wins:   item.Settings.Wins,
				Losses: item.Settings.Losses,
				Ties:   item.Settings.Ties,
			},
		}
	}
	return snapshots
}

// sleeperWeekEntries scores every roster's week entry and splits it
// into platform-paired entries and unpaired ones. Entries without a
// matchup id (or without any opponent sharing it) are unpaired.
func sleeperWeekEntries(
	matchups []sleeper.Matchup,
	snapshots map[string]roster.Snapshot,
	rules scoring.RuleSet,
	statLines map[string]scoring.StatLine,
) ([]result.PairedEntry, []roster.Snapshot) {
	pairSizes := make(map[int]int, len(matchups))
	for _, m := range matchups {
		if m.MatchupID > 0 {
			pairSizes[m.MatchupID]++
		}
	}

	paired := make([]result.PairedEntry, 0, len(matchups))
	unpaired := make([]roster.Snapshot, 0)
	for _, m := range matchups {
		teamID := strconv.Itoa(m.RosterID)
		snap, ok := snapshots[teamID]
		if !ok {
			continue
		}
		snap.Score = sleeperEntryScore(m, rules, statLines)
		snap.Players = sleeperStarters(m, rules, statLines)

		if m.MatchupID > 0 && pairSizes[m.MatchupID] == 2 {
			paired = append(paired, result.PairedEntry{
				PairKey:  strconv.Itoa(m.MatchupID),
				Snapshot: snap,
			})
		} else {
			unpaired = append(unpaired, snap)
		}
	}
	return paired, unpaired
}

// sleeperRosterEntries scores rosters directly when the platform posts
// no week entries. The engine's recomputation over each roster's
// starters is the only score source here.
func sleeperRosterEntries(
	rosters []sleeper.Roster,
	snapshots map[string]roster.Snapshot,
	rules scoring.RuleSet,
	statLines map[string]scoring.StatLine,
) []roster.Snapshot {
	out := make([]roster.Snapshot, 0, len(rosters))
	for _, item := range rosters {
		snap, ok := snapshots[strconv.Itoa(item.RosterID)]
		if !ok {
			continue
		}
		players := make([]roster.Player, 0, len(item.Starters))
		total := 0.0
		for _, playerID := range item.Starters {
			points := scoring.Score(statLines[playerID], rules)
			total += points
			players = append(players, roster.Player{
				PlayerID:  playerID,
				IsStarter: true,
				Points:    points,
			})
		}
		snap.Score = total
		snap.Players = players
		out = append(out, snap)
	}
	return out
}

// sleeperEntryScore prefers the platform's own reported total; when the
// platform has not scored the entry yet, the engine recomputes it from
// the raw stat lines and the league's rule set.
func sleeperEntryScore(m sleeper.Matchup, rules scoring.RuleSet, statLines map[string]scoring.StatLine) float64 {
	if m.Points > 0 {
		return m.Points
	}
	if len(m.StartersPoints) == len(m.Starters) && len(m.Starters) > 0 {
		total := 0.0
		for _, points := range m.StartersPoints {
			total += points
		}
		if total > 0 {
			return total
		}
	}
	total := 0.0
	for _, playerID := range m.Starters {
		total += scoring.Score(statLines[playerID], rules)
	}
	return total
}

func sleeperStarters(m sleeper.Matchup, rules scoring.RuleSet, statLines map[string]scoring.StatLine) []roster.Player {
	players := make([]roster.Player, 0, len(m.Starters))
	for _, playerID := range m.Starters {
		points, ok := m.PlayersPoints[playerID]
		if !ok {
			points = scoring.Score(statLines[playerID], rules)
		}
		players = append(players, roster.Player{
			PlayerID:  playerID,
			IsStarter: true,
			Points:    points,
		})
	}
	return players
}

func firstNonZeroInt(values ...int) int {
	for _, value := range values {
		if value != 0 {
			return value
		}
	}
	return 0
}
