package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/fauzanhakim/league-hub/internal/domain/league"
	"github.com/fauzanhakim/league-hub/internal/domain/result"
	"github.com/fauzanhakim/league-hub/internal/domain/roster"
	"github.com/fauzanhakim/league-hub/internal/platform/logging"
	"github.com/fauzanhakim/league-hub/internal/usecase"
)

type Handler struct {
	aggregator *usecase.AggregatorService
	identity   league.UserIdentity
	logger     *logging.Logger
	validator  *validator.Validate
}

func NewHandler(
	aggregator *usecase.AggregatorService,
	identity league.UserIdentity,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		aggregator: aggregator,
		identity:   identity,
		logger:     logger,
		validator:  validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListResults")
	defer span.End()

	results := h.aggregator.Results()
	items := make([]resultDTO, 0, len(results))
	for _, item := range results {
		items = append(items, resultToDTO(ctx, item))
	}

	writeSuccess(ctx, w, http.StatusOK, resultListDTO{
		Results:     items,
		LastUpdated: formatTime(h.aggregator.LastUpdated()),
	})
}

func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetResult")
	defer span.End()

	leagueKey := strings.TrimSpace(r.PathValue("leagueKey"))
	if leagueKey == "" {
		writeError(ctx, w, fmt.Errorf("%w: league key is required", usecase.ErrInvalidInput))
		return
	}

	item, ok := h.aggregator.ResultFor(leagueKey)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: no result for league %s", usecase.ErrNotFound, leagueKey))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, resultToDTO(ctx, item))
}

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetProgress")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.aggregator.Progress())
}

func (h *Handler) ListLeagueStates(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagueStates")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.aggregator.LeagueStates())
}

func (h *Handler) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TriggerRefresh")
	defer span.End()

	var req refreshRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if req.Mode == refreshModeBackground {
		h.aggregator.RefreshInBackground(h.identity)
		writeSuccess(ctx, w, http.StatusAccepted, map[string]string{"status": "scheduled"})
		return
	}

	summary, err := h.aggregator.LoadAll(ctx, h.identity)
	if err != nil {
		h.logger.WarnContext(ctx, "foreground refresh failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summary)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

const (
	refreshModeForeground = "foreground"
	refreshModeBackground = "background"
)

type refreshRequest struct {
	Mode string `json:"mode" validate:"omitempty,oneof=foreground background"`
}

type resultListDTO struct {
	Results     []resultDTO `json:"results"`
	LastUpdated string      `json:"last_updated,omitempty"`
}

type resultDTO struct {
	LeagueKey   string        `json:"league_key"`
	Platform    string        `json:"platform"`
	LeagueName  string        `json:"league_name"`
	TeamCount   int           `json:"team_count"`
	UserTeamID  string        `json:"user_team_id"`
	Kind        string        `json:"kind"`
	Matchup     *matchupDTO   `json:"matchup,omitempty"`
	Ranking     *rankingDTO   `json:"ranking,omitempty"`
	Byes        []snapshotDTO `json:"byes,omitempty"`
	LastUpdated string        `json:"last_updated,omitempty"`
}

type matchupDTO struct {
	Week           int         `json:"week"`
	Status         string      `json:"status"`
	Home           snapshotDTO `json:"home"`
	Away           snapshotDTO `json:"away"`
	WinProbability float64     `json:"win_probability"`
}

type rankingDTO struct {
	Week            int             `json:"week"`
	EliminatedCount int             `json:"eliminated_count"`
	Teams           []rankedTeamDTO `json:"teams"`
}

type rankedTeamDTO struct {
	snapshotDTO

	Rank                int     `json:"rank"`
	Status              string  `json:"status"`
	Eliminated          bool    `json:"eliminated"`
	SurvivalProbability float64 `json:"survival_probability"`
}

type snapshotDTO struct {
	TeamID         string      `json:"team_id"`
	TeamName       string      `json:"team_name,omitempty"`
	OwnerName      string      `json:"owner_name,omitempty"`
	AvatarURL      string      `json:"avatar_url,omitempty"`
	Score          float64     `json:"score"`
	ProjectedScore float64     `json:"projected_score,omitempty"`
	Record         *recordDTO  `json:"record,omitempty"`
	Players        []playerDTO `json:"players,omitempty"`
}

type recordDTO struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`
}

type playerDTO struct {
	PlayerID   string  `json:"player_id"`
	Name       string  `json:"name"`
	Position   string  `json:"position,omitempty"`
	NFLTeam    string  `json:"nfl_team,omitempty"`
	LineupSlot string  `json:"lineup_slot,omitempty"`
	IsStarter  bool    `json:"is_starter"`
	Points     float64 `json:"points"`
	Projected  float64 `json:"projected,omitempty"`
}

func resultToDTO(ctx context.Context, v result.Unified) resultDTO {
	ctx, span := startSpan(ctx, "httpapi.resultToDTO")
	defer span.End()

	dto := resultDTO{
		LeagueKey:   v.League.Key(),
		Platform:    string(v.League.Platform),
		LeagueName:  v.League.Name,
		TeamCount:   v.League.TeamCount,
		UserTeamID:  v.UserTeamID,
		Kind:        string(v.Kind),
		LastUpdated: formatTime(v.LastUpdated),
	}
	if v.Matchup != nil {
		dto.Matchup = &matchupDTO{
			Week:           v.Matchup.Week,
			Status:         string(v.Matchup.Status),
			Home:           snapshotToDTO(v.Matchup.Home),
			Away:           snapshotToDTO(v.Matchup.Away),
			WinProbability: v.Matchup.WinProbability,
		}
	}
	if v.Ranking != nil {
		teams := make([]rankedTeamDTO, 0, len(v.Ranking.Teams))
		for _, team := range v.Ranking.Teams {
			teams = append(teams, rankedTeamDTO{
				snapshotDTO:         snapshotToDTO(team.Snapshot),
				Rank:                team.Rank,
				Status:              string(team.Status),
				Eliminated:          team.Eliminated,
				SurvivalProbability: team.SurvivalProbability,
			})
		}
		dto.Ranking = &rankingDTO{
			Week:            v.Ranking.Week,
			EliminatedCount: v.Ranking.EliminatedCount,
			Teams:           teams,
		}
	}
	for _, bye := range v.Byes {
		dto.Byes = append(dto.Byes, snapshotToDTO(bye))
	}
	return dto
}

func snapshotToDTO(v roster.Snapshot) snapshotDTO {
	dto := snapshotDTO{
		TeamID:         v.TeamID,
		TeamName:       v.TeamName,
		OwnerName:      v.OwnerName,
		AvatarURL:      v.AvatarURL,
		Score:          v.Score,
		ProjectedScore: v.ProjectedScore,
	}
	if v.Record != nil {
		dto.Record = &recordDTO{
			Wins:   v.Record.Wins,
			Losses: v.Record.Losses,
			Ties:   v.Record.Ties,
		}
	}
	if len(v.Players) > 0 {
		players := make([]playerDTO, 0, len(v.Players))
		for _, p := range v.Players {
			players = append(players, playerDTO{
				PlayerID:   p.PlayerID,
				Name:       p.Name,
				Position:   p.Position,
				NFLTeam:    p.NFLTeam,
				LineupSlot: p.LineupSlot,
				IsStarter:  p.IsStarter,
				Points:     p.Points,
				Projected:  p.Projected,
			})
		}
		dto.Players = players
	}
	return dto
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
