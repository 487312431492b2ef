package espn

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/fauzanhakim/league-hub/internal/platform/logging"
	"github.com/fauzanhakim/league-hub/internal/platform/resilience"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL    = "https://lm-api-reads.fantasy.espn.com/apis/v3/games/ffl"
	defaultFanBaseURL = "https://fan.api.espn.com/apis/v2"

	viewCombined = "mTeam,mRoster,mScoreboard,mSettings"
)

var espnS2CookieRegex = regexp.MustCompile(`espn_s2=[^;&\s"']+`)
var errESPNTransient = crerr.New("espn transient failure")

// Credentials are the two cookies a private league requires. Public
// leagues work with both left empty.
type Credentials struct {
	SWID   string
	ESPNS2 string
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	FanBaseURL     string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	fanBaseURL     string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	fanBaseURL := strings.TrimRight(strings.TrimSpace(cfg.FanBaseURL), "/")
	if fanBaseURL == "" {
		fanBaseURL = defaultFanBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		fanBaseURL:     fanBaseURL,
		maxRetries:     max(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FetchLeague pulls teams, rosters, the scoreboard and settings for one
// league in a single combined-view request. The scoreboard is filtered
// server side to the requested matchup period.
func (c *Client) FetchLeague(ctx context.Context, creds Credentials, leagueID string, year, week int) (*League, error) {
	if strings.TrimSpace(leagueID) == "" {
		return nil, fmt.Errorf("league id is required")
	}
	if year <= 0 {
		return nil, fmt.Errorf("year must be greater than zero")
	}

	path := fmt.Sprintf("/seasons/%d/segments/0/leagues/%s", year, url.PathEscape(leagueID))
	query := map[string]string{"view": viewCombined}
	if week > 0 {
		query["scoringPeriodId"] = strconv.Itoa(week)
	}

	headers := map[string]string{}
	if week > 0 {
		filter, err := sonic.Marshal(map[string]any{
			"schedule": map[string]any{
				"filterMatchupPeriodIds": map[string]any{"value": []int{week}},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("marshal scoreboard filter: %w", err)
		}
		headers["x-fantasy-filter"] = string(filter)
	}

	var out League
	if err := c.doJSON(ctx, c.baseURL+path, query, headers, creds, &out); err != nil {
		return nil, fmt.Errorf("fetch league league_id=%s year=%d: %w", leagueID, year, err)
	}
	return &out, nil
}

// ListFanLeagues resolves the leagues the authenticated account follows
// via the fan preferences endpoint, filtered to fantasy football.
func (c *Client) ListFanLeagues(ctx context.Context, creds Credentials) ([]FanLeague, error) {
	swid := strings.TrimSpace(creds.SWID)
	if swid == "" {
		return nil, fmt.Errorf("swid is required to list leagues")
	}

	path := "/fans/" + url.PathEscape(swid)
	var out fanResponse
	if err := c.doJSON(ctx, c.fanBaseURL+path, nil, nil, creds, &out); err != nil {
		return nil, fmt.Errorf("list fan leagues: %w", err)
	}

	refs := make([]FanLeague, 0, len(out.Preferences))
	for _, pref := range out.Preferences {
		if pref.TypeID != fanPreferenceTypeFFL {
			continue
		}
		for _, group := range pref.MetaData.Entry.EntryGroups {
			if group.GroupID <= 0 {
				continue
			}
			refs = append(refs, group)
		}
	}
	return refs, nil
}

func (c *Client) doJSON(ctx context.Context, fullURL string, query, headers map[string]string, creds Credentials, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "espn circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("espn is temporarily unavailable: %w", err)
		}
	}

	values := url.Values{}
	for key, value := range query {
		for _, item := range strings.Split(value, ",") {
			values.Add(key, strings.TrimSpace(item))
		}
	}
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := fullURL + "#" + headers["x-fantasy-filter"]
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL, headers, creds)
		if c.circuitEnabled {
			if reqErr != nil && stderrors.Is(reqErr, errESPNTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode espn payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string, headers map[string]string, creds Credentials) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		if swid := strings.TrimSpace(creds.SWID); swid != "" {
			req.Header.Set("Cookie", fmt.Sprintf("SWID=%s; espn_s2=%s", swid, strings.TrimSpace(creds.ESPNS2)))
		}
		for key, value := range headers {
			req.Header.Set(key, value)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errESPNTransient, sanitizeSensitiveText(err.Error(), creds.ESPNS2))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 12<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errESPNTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: espn status=%d body=%s", errESPNTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("espn status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("espn request failed")
	}
	c.logger.WarnContext(ctx, "espn request failed", "url", redactCookieURL(fullURL), "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}

func abbreviateBody(raw []byte) string {
	body := strings.TrimSpace(string(raw))
	if len(body) > 256 {
		return body[:256] + "...(truncated)"
	}
	return body
}

func sanitizeSensitiveText(value, secret string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if secret != "" {
		value = strings.ReplaceAll(value, secret, "REDACTED")
	}
	return espnS2CookieRegex.ReplaceAllString(value, "espn_s2=REDACTED")
}

func redactCookieURL(fullURL string) string {
	return espnS2CookieRegex.ReplaceAllString(fullURL, "espn_s2=REDACTED")
}
