package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/fauzanhakim/league-hub/internal/domain/league"
	"github.com/fauzanhakim/league-hub/internal/domain/result"
	"github.com/fauzanhakim/league-hub/internal/domain/roster"
	"github.com/fauzanhakim/league-hub/internal/platform/logging"
	"github.com/fauzanhakim/league-hub/internal/usecase"
)

type fixedClock struct{}

func (fixedClock) CurrentWeek(context.Context) (int, int, error) { return 2025, 4, nil }

type fakeProvider struct {
	platform league.Platform
	leagues  []league.Ref
}

func (p *fakeProvider) Platform() league.Platform { return p.platform }

func (p *fakeProvider) ListLeagues(context.Context, league.UserIdentity, int) ([]league.Ref, error) {
	return p.leagues, nil
}

func (p *fakeProvider) FetchResult(_ context.Context, _ league.UserIdentity, ref league.Ref, _, week int) (result.Unified, error) {
	return result.Unified{
		League:     ref,
		UserTeamID: "1",
		Kind:       result.KindMatchup,
		Matchup: &result.Matchup{
			Week:           week,
			Status:         result.MatchupLive,
			Home:           roster.Snapshot{TeamID: "1", TeamName: "Home Side", Score: 101.5},
			Away:           roster.Snapshot{TeamID: "2", TeamName: "Away Side", Score: 88.25},
			WinProbability: 0.54,
		},
		LastUpdated: time.Now().UTC(),
	}, nil
}

func newTestRouter(t *testing.T, refreshToken string) http.Handler {
	t.Helper()

	provider := &fakeProvider{
		platform: league.PlatformSleeper,
		leagues: []league.Ref{
			{Platform: league.PlatformSleeper, ExternalID: "101", Name: "Test League", TeamCount: 10},
		},
	}
	aggregator := usecase.NewAggregatorService(
		[]usecase.LeagueProvider{provider},
		fixedClock{},
		nil,
		logging.NewNop(),
		usecase.AggregatorConfig{MaxWorkers: 2},
	)
	handler := NewHandler(aggregator, league.UserIdentity{SleeperUserID: "777"}, logging.NewNop())
	return NewRouter(handler, logging.NewNop(), nil, refreshToken)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	return body
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestTriggerRefresh_ThenListResults(t *testing.T) {
	router := newTestRouter(t, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/refresh", strings.NewReader(`{"mode":"foreground"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeEnvelope(t, rec)
	summary, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected summary data, got %v", body)
	}
	if got, _ := summary["loaded"].(float64); got != 1 {
		t.Fatalf("expected one loaded league, got %v", summary["loaded"])
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/results", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("results: expected status 200, got %d", rec.Code)
	}

	body = decodeEnvelope(t, rec)
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %v", body)
	}
	results, ok := data["results"].([]any)
	if !ok || len(results) != 1 {
		t.Fatalf("expected one result, got %v", data["results"])
	}
	first, _ := results[0].(map[string]any)
	if got, _ := first["league_key"].(string); got != "sleeper:101" {
		t.Fatalf("unexpected league key: %v", first["league_key"])
	}
	matchup, ok := first["matchup"].(map[string]any)
	if !ok {
		t.Fatalf("expected matchup payload, got %v", first)
	}
	if got, _ := matchup["status"].(string); got != "live" {
		t.Fatalf("expected live matchup, got %v", matchup["status"])
	}
}

func TestGetResult_ByLeagueKey(t *testing.T) {
	router := newTestRouter(t, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/refresh", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: expected status 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/results/sleeper:101", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	body := decodeEnvelope(t, rec)
	data, _ := body["data"].(map[string]any)
	if got, _ := data["user_team_id"].(string); got != "1" {
		t.Fatalf("unexpected user team id: %v", data["user_team_id"])
	}
}

func TestGetResult_UnknownLeagueIsNotFound(t *testing.T) {
	router := newTestRouter(t, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/results/espn:999", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object, got %v", body)
	}
	if got, _ := errorObj["status"].(string); got != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %v", errorObj["status"])
	}
}

func TestTriggerRefresh_InvalidModeIsRejected(t *testing.T) {
	router := newTestRouter(t, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/refresh", strings.NewReader(`{"mode":"sideways"}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTriggerRefresh_BackgroundIsAccepted(t *testing.T) {
	router := newTestRouter(t, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/refresh", strings.NewReader(`{"mode":"background"}`)))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTriggerRefresh_RequiresConfiguredToken(t *testing.T) {
	router := newTestRouter(t, "s3cret")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/refresh", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/refresh", nil)
	req.Header.Set("X-Refresh-Token", "s3cret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 with token, got %d: %s", rec.Code, rec.Body.String())
	}
}
