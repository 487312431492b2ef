package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fauzanhakim/league-hub/external/espn"
	"github.com/fauzanhakim/league-hub/internal/domain/league"
	"github.com/fauzanhakim/league-hub/internal/domain/result"
	"github.com/fauzanhakim/league-hub/internal/domain/roster"
	"github.com/fauzanhakim/league-hub/internal/platform/logging"
)

// espnGateway is the slice of the ESPN client this provider uses.
type espnGateway interface {
	FetchLeague(ctx context.Context, creds espn.Credentials, leagueID string, year, week int) (*espn.League, error)
	ListFanLeagues(ctx context.Context, creds espn.Credentials) ([]espn.FanLeague, error)
}

type ESPNProvider struct {
	client espnGateway
	logger *logging.Logger
	now    func() time.Time
}

func NewESPNProvider(client espnGateway, logger *logging.Logger) *ESPNProvider {
	if logger == nil {
		logger = logging.Default()
	}
	return &ESPNProvider{
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

func (p *ESPNProvider) Platform() league.Platform { return league.PlatformESPN }

func (p *ESPNProvider) ListLeagues(ctx context.Context, identity league.UserIdentity, year int) ([]league.Ref, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ESPNProvider.ListLeagues")
	defer span.End()

	if identity.ESPNSWID == "" {
		return nil, nil
	}

	fanLeagues, err := p.client.ListFanLeagues(ctx, espnCredentials(identity))
	if err != nil {
		return nil, fmt.Errorf("list espn leagues: %w", err)
	}

	refs := make([]league.Ref, 0, len(fanLeagues))
	for _, item := range fanLeagues {
		refs = append(refs, league.Ref{
			Platform:   league.PlatformESPN,
			ExternalID: strconv.FormatInt(item.GroupID, 10),
			Name:       item.GroupName,
			TeamCount:  item.GroupSize,
		})
	}
	return refs, nil
}

func (p *ESPNProvider) FetchResult(ctx context.Context, identity league.UserIdentity, ref league.Ref, year, week int) (result.Unified, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ESPNProvider.FetchResult")
	defer span.End()

	lg, err := p.client.FetchLeague(ctx, espnCredentials(identity), ref.ExternalID, year, week)
	if err != nil {
		return result.Unified{}, fmt.Errorf("fetch espn league %s: %w", ref.Key(), err)
	}
	if week <= 0 {
		week = lg.Status.CurrentMatchupPeriod
	}

	slots := espnOwnershipSlots(lg.Teams)
	userTeamID, err := ResolveESPNTeam(slots, identity.ESPNSWID)
	if err != nil {
		return result.Unified{}, fmt.Errorf("league %s: %w", ref.Key(), err)
	}

	ref.Name = firstNonEmptyString(lg.Settings.Name, ref.Name)
	ref.TeamCount = len(lg.Teams)

	snapshots := make(map[string]roster.Snapshot, len(lg.Teams))
	for _, team := range lg.Teams {
		snapshots[strconv.Itoa(team.ID)] = p.buildTeamSnapshot(lg, team, week)
	}

	entries := espnPairedEntries(lg.Schedule, snapshots, week)
	matchups, byes := result.BuildMatchups(week, entries)

	unified := result.Unified{
		League:      ref,
		UserTeamID:  userTeamID,
		Byes:        byes,
		LastUpdated: p.now().UTC(),
	}

	// A week with no paired games on the schedule means the league is
	// scored as a flat pool, not head to head. No schedule totals exist
	// here, so each team's score is its starters' applied points.
	if len(matchups) == 0 {
		ordered := make([]roster.Snapshot, 0, len(lg.Teams))
		for _, team := range lg.Teams {
			snap := snapshots[strconv.Itoa(team.ID)]
			snap.Score = snap.StarterTotal()
			ordered = append(ordered, snap)
		}
		ranking := result.BuildRanking(week, ordered)
		unified.Kind = result.KindRanking
		unified.Ranking = &ranking
		unified.Byes = nil
		return unified, nil
	}

	for i := range matchups {
		m := matchups[i]
		if m.Home.TeamID == userTeamID || m.Away.TeamID == userTeamID {
			unified.Kind = result.KindMatchup
			unified.Matchup = &m
			return unified, nil
		}
	}
	return result.Unified{}, fmt.Errorf("league %s week %d: %w: user team %s has no scheduled matchup",
		ref.Key(), week, ErrNotFound, userTeamID)
}

func (p *ESPNProvider) buildTeamSnapshot(lg *espn.League, team espn.Team, week int) roster.Snapshot {
	ownerName := ""
	if len(team.Owners) > 0 {
		ownerName = espnMemberName(lg.Members, team.Owners[0])
	}

	players := make([]roster.Player, 0, len(team.Roster.Entries))
	for _, entry := range team.Roster.Entries {
		player := entry.PlayerPoolEntry.Player
		points, projected := espnPlayerWeekPoints(player.Stats, week)
		players = append(players, roster.Player{
			PlayerID:   strconv.FormatInt(player.ID, 10),
			Name:       player.FullName,
			Position:   espnPositionName(player.DefaultPositionID),
			LineupSlot: espnLineupSlotName(entry.LineupSlotID),
			IsStarter:  espnIsStartingSlot(entry.LineupSlotID),
			Points:     points,
			Projected:  projected,
		})
	}

	return roster.Snapshot{
		TeamID:    strconv.Itoa(team.ID),
		TeamName:  firstNonEmptyString(team.Name, team.Abbreviation),
		OwnerName: ownerName,
		AvatarURL: team.Logo,
		Record: &roster.Record{
			Wins:   team.Record.Overall.Wins,
			Losses: team.Record.Overall.Losses,
			Ties:   team.Record.Overall.Ties,
		},
		Players: players,
	}
}

func espnCredentials(identity league.UserIdentity) espn.Credentials {
	return espn.Credentials{SWID: identity.ESPNSWID, ESPNS2: identity.ESPNS2}
}

func espnOwnershipSlots(teams []espn.Team) []roster.Ownership {
	slots := make([]roster.Ownership, 0, len(teams))
	for _, team := range teams {
		slot := roster.Ownership{TeamID: strconv.Itoa(team.ID)}
		if len(team.Owners) > 0 {
			slot.OwnerID = team.Owners[0]
			slot.CoOwnerIDs = team.Owners[1:]
		}
		slots = append(slots, slot)
	}
	return slots
}

func espnPairedEntries(schedule []espn.ScheduleItem, snapshots map[string]roster.Snapshot, week int) []result.PairedEntry {
	entries := make([]result.PairedEntry, 0, len(schedule)*2)
	for _, item := range schedule {
		if item.MatchupPeriodID != week {
			continue
		}
		pairKey := strconv.FormatInt(item.ID, 10)
		status := espnMatchupStatus(item)
		for _, side := range []espn.TeamScore{item.Home, item.Away} {
			if side.TeamID <= 0 {
				continue
			}
			snap, ok := snapshots[strconv.Itoa(side.TeamID)]
			if !ok {
				continue
			}
			snap.Score = firstNonZero(side.TotalPointsLive, side.TotalPoints)
			snap.ProjectedScore = side.TotalProjectedPointsLive
			entries = append(entries, result.PairedEntry{
				PairKey:  pairKey,
				Status:   status,
				Snapshot: snap,
			})
		}
	}
	return entries
}

func espnMatchupStatus(item espn.ScheduleItem) result.MatchupStatus {
	if item.Winner != "" && item.Winner != "UNDECIDED" {
		return result.MatchupComplete
	}
	if item.Home.TotalPointsLive > 0 || item.Away.TotalPointsLive > 0 {
		return result.MatchupLive
	}
	return result.MatchupUpcoming
}

// espnPlayerWeekPoints picks the scored and projected totals for one
// scoring period. Source 0 is actual, source 1 is the projection.
func espnPlayerWeekPoints(stats []espn.PlayerStat, week int) (points, projected float64) {
	for _, stat := range stats {
		if stat.ScoringPeriodID != week {
			continue
		}
		switch stat.StatSourceID {
		case 0:
			points = stat.AppliedTotal
		case 1:
			projected = stat.AppliedTotal
		}
	}
	return points, projected
}

func espnMemberName(members []espn.Member, swid string) string {
	target := NormalizeSWID(swid)
	for _, member := range members {
		if NormalizeSWID(member.ID) == target {
			return firstNonEmptyString(member.DisplayName, member.FirstName)
		}
	}
	return ""
}

func espnPositionName(positionID int) string {
	positions := map[int]string{
		1: "QB", 2: "RB", 3: "WR", 4: "TE", 5: "K", 16: "D/ST",
	}
	if name, ok := positions[positionID]; ok {
		return name
	}
	return "Unknown"
}

func espnLineupSlotName(slotID int) string {
	switch slotID {
	case 0:
		return "QB"
	case 2:
		return "RB"
	case 4:
		return "WR"
	case 6:
		return "TE"
	case 16:
		return "D/ST"
	case 17:
		return "K"
	case 20:
		return "Bench"
	case 21:
		return "IR"
	case 23:
		return "FLEX"
	default:
		return "Unknown"
	}
}

func espnIsStartingSlot(slotID int) bool {
	switch slotID {
	case 0, 2, 4, 6, 16, 17, 23:
		return true
	default:
		return false
	}
}

func firstNonZero(values ...float64) float64 {
	for _, value := range values {
		if value != 0 {
			return value
		}
	}
	return 0
}

func firstNonEmptyString(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
