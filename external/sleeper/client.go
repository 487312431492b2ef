package sleeper

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/fauzanhakim/league-hub/internal/platform/logging"
	"github.com/fauzanhakim/league-hub/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

const (
	defaultBaseURL      = "https://api.sleeper.app/v1"
	defaultStatsBaseURL = "https://api.sleeper.com"
)

var errSleeperTransient = crerr.New("sleeper transient failure")

type ClientConfig struct {
	HTTPClient     *fasthttp.Client
	BaseURL        string
	StatsBaseURL   string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads the public Sleeper API. No auth; the API is keyed only
// by user and league ids.
type Client struct {
	httpClient     *fasthttp.Client
	baseURL        string
	statsBaseURL   string
	timeout        time.Duration
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

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	statsBaseURL := strings.TrimRight(strings.TrimSpace(cfg.StatsBaseURL), "/")
	if statsBaseURL == "" {
		statsBaseURL = defaultStatsBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		statsBaseURL:   statsBaseURL,
		timeout:        timeout,
		maxRetries:     max(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// GetUser accepts a username or a numeric user id.
func (c *Client) GetUser(ctx context.Context, usernameOrID string) (*User, error) {
	if strings.TrimSpace(usernameOrID) == "" {
		return nil, fmt.Errorf("username or user id is required")
	}
	var user User
	if err := c.doJSON(ctx, c.baseURL, &user, "/user/", usernameOrID); err != nil {
		return nil, fmt.Errorf("get user %s: %w", usernameOrID, err)
	}
	if strings.TrimSpace(user.UserID) == "" {
		return nil, fmt.Errorf("user %s not found", usernameOrID)
	}
	return &user, nil
}

func (c *Client) GetUserLeagues(ctx context.Context, userID string, season int) ([]League, error) {
	var leagues []League
	if err := c.doJSON(ctx, c.baseURL, &leagues, "/user/", userID, "/leagues/nfl/", strconv.Itoa(season)); err != nil {
		return nil, fmt.Errorf("get leagues user_id=%s season=%d: %w", userID, season, err)
	}
	return leagues, nil
}

func (c *Client) GetLeague(ctx context.Context, leagueID string) (*League, error) {
	var league League
	if err := c.doJSON(ctx, c.baseURL, &league, "/league/", leagueID); err != nil {
		return nil, fmt.Errorf("get league %s: %w", leagueID, err)
	}
	return &league, nil
}

func (c *Client) GetLeagueRosters(ctx context.Context, leagueID string) ([]Roster, error) {
	var rosters []Roster
	if err := c.doJSON(ctx, c.baseURL, &rosters, "/league/", leagueID, "/rosters"); err != nil {
		return nil, fmt.Errorf("get rosters league_id=%s: %w", leagueID, err)
	}
	return rosters, nil
}

func (c *Client) GetLeagueUsers(ctx context.Context, leagueID string) ([]User, error) {
	var users []User
	if err := c.doJSON(ctx, c.baseURL, &users, "/league/", leagueID, "/users"); err != nil {
		return nil, fmt.Errorf("get users league_id=%s: %w", leagueID, err)
	}
	return users, nil
}

func (c *Client) GetMatchups(ctx context.Context, leagueID string, week int) ([]Matchup, error) {
	var matchups []Matchup
	if err := c.doJSON(ctx, c.baseURL, &matchups, "/league/", leagueID, "/matchups/", strconv.Itoa(week)); err != nil {
		return nil, fmt.Errorf("get matchups league_id=%s week=%d: %w", leagueID, week, err)
	}
	return matchups, nil
}

// GetWeekStats is the shared stats feed: raw stat lines per player for
// one regular-season week, independent of any league's scoring rules.
func (c *Client) GetWeekStats(ctx context.Context, season, week int) (map[string]map[string]float64, error) {
	var stats map[string]map[string]float64
	if err := c.doJSON(ctx, c.statsBaseURL, &stats, "/stats/nfl/regular/", strconv.Itoa(season), "/", strconv.Itoa(week)); err != nil {
		return nil, fmt.Errorf("get week stats season=%d week=%d: %w", season, week, err)
	}
	return stats, nil
}

func (c *Client) GetNFLState(ctx context.Context) (*NFLState, error) {
	var state NFLState
	if err := c.doJSON(ctx, c.baseURL, &state, "/state/nfl"); err != nil {
		return nil, fmt.Errorf("get nfl state: %w", err)
	}
	return &state, nil
}

func (c *Client) doJSON(ctx context.Context, baseURL string, target any, pathParts ...string) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "sleeper circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("sleeper is temporarily unavailable: %w", err)
		}
	}

	buf := bytebufferpool.Get()
	_, _ = buf.WriteString(baseURL)
	for _, part := range pathParts {
		_, _ = buf.WriteString(part)
	}
	fullURL := buf.String()
	bytebufferpool.Put(buf)

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && stderrors.Is(reqErr, errSleeperTransient) {
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
		return fmt.Errorf("decode sleeper payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := c.doOnce(ctx, fullURL)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !stderrors.Is(err, errSleeperTransient) {
			return nil, err
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
		lastErr = fmt.Errorf("sleeper request failed")
	}
	c.logger.WarnContext(ctx, "sleeper request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, fullURL string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("accept", "application/json")

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := c.httpClient.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("%w: send request: %v", errSleeperTransient, err)
	}

	status := resp.StatusCode()
	switch {
	case status >= 200 && status < 300:
		// Body is pooled with the response; copy before release.
		return append([]byte(nil), resp.Body()...), nil
	case isRetryableStatus(status):
		return nil, fmt.Errorf("%w: sleeper status=%d body=%s", errSleeperTransient, status, abbreviateBody(resp.Body()))
	default:
		return nil, fmt.Errorf("sleeper status=%d body=%s", status, abbreviateBody(resp.Body()))
	}
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == fasthttp.StatusRequestTimeout ||
		statusCode == fasthttp.StatusTooManyRequests ||
		statusCode >= fasthttp.StatusInternalServerError
}

func abbreviateBody(raw []byte) string {
	body := strings.TrimSpace(string(raw))
	if len(body) > 256 {
		return body[:256] + "...(truncated)"
	}
	return body
}
