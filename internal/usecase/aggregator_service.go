package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc"

	"github.com/fauzanhakim/league-hub/internal/domain/league"
	"github.com/fauzanhakim/league-hub/internal/domain/result"
	"github.com/fauzanhakim/league-hub/internal/platform/logging"
)

// LeagueState tracks one league through a fetch cycle.
type LeagueState string

const (
	LeagueStatePending LeagueState = "pending"
	LeagueStateLoading LeagueState = "loading"
	LeagueStateLoaded  LeagueState = "loaded"
	LeagueStateFailed  LeagueState = "failed"
)

// LeagueStatus is the externally visible per-league fetch state.
type LeagueStatus struct {
	League    league.Ref  `json:"league"`
	State     LeagueState `json:"state"`
	Error     string      `json:"error,omitempty"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Progress summarizes the current cycle for polling clients.
type Progress struct {
	Loading   bool `json:"loading"`
	Total     int  `json:"total"`
	Completed int  `json:"completed"`
	Failed    int  `json:"failed"`
}

// LoadSummary is the outcome of one full fetch cycle.
type LoadSummary struct {
	Year        int `json:"year"`
	Week        int `json:"week"`
	LeagueCount int `json:"league_count"`
	Loaded      int `json:"loaded"`
	Failed      int `json:"failed"`
	Skipped     int `json:"skipped"`
	WorkerCount int `json:"worker_count"`
}

type AggregatorConfig struct {
	MaxWorkers int
	// FallbackYear and FallbackWeek are used when no season clock is
	// configured or it is unreachable.
	FallbackYear int
	FallbackWeek int
}

// AggregatorService owns the fan-out across leagues: discovery, the
// worker pool, per-league fetch state and the ordered result set.
type AggregatorService struct {
	providers []LeagueProvider
	clock     SeasonClock
	snapshots result.SnapshotRepository
	logger    *logging.Logger
	cfg       AggregatorConfig

	// isLoading guards the foreground cycle only. Background refreshes
	// run regardless and never touch it.
	isLoading atomic.Bool

	total     atomic.Int32
	completed atomic.Int32
	failed    atomic.Int32

	mu          sync.RWMutex
	results     []result.Unified
	states      map[string]LeagueStatus
	lastUpdated time.Time

	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

func NewAggregatorService(
	providers []LeagueProvider,
	clock SeasonClock,
	snapshots result.SnapshotRepository,
	logger *logging.Logger,
	cfg AggregatorConfig,
) *AggregatorService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 8
	}
	return &AggregatorService{
		providers: providers,
		clock:     clock,
		snapshots: snapshots,
		logger:    logger,
		cfg:       cfg,
		states:    make(map[string]LeagueStatus),
		inflight:  make(map[string]struct{}),
	}
}

// LoadAll runs one full foreground cycle: discover every league the
// identity belongs to, fetch them concurrently and swap in the new
// result set. A second call while one is running is rejected rather
// than queued.
func (s *AggregatorService) LoadAll(ctx context.Context, identity league.UserIdentity) (LoadSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AggregatorService.LoadAll")
	defer span.End()

	if !s.isLoading.CompareAndSwap(false, true) {
		return LoadSummary{}, ErrRefreshInProgress
	}
	defer s.isLoading.Store(false)

	return s.runCycle(ctx, identity, false)
}

// RefreshInBackground runs the same cycle detached from the caller.
// It is independent of the foreground loading flag: a background
// refresh neither blocks LoadAll nor reports itself as loading.
func (s *AggregatorService) RefreshInBackground(identity league.UserIdentity) {
	var wg conc.WaitGroup
	wg.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if _, err := s.runCycle(ctx, identity, true); err != nil {
			s.logger.WarnContext(ctx, "background refresh failed", "error", err)
		}
	})
	go func() {
		if recovered := wg.WaitAndRecover(); recovered != nil {
			s.logger.Error("background refresh panicked", "panic", recovered.String())
		}
	}()
}

// runCycle is the shared fetch path. A background cycle leaves every
// externally visible signal alone until each league actually finishes:
// no loading states, no progress counter resets. Only the foreground
// cycle announces itself up front.
func (s *AggregatorService) runCycle(ctx context.Context, identity league.UserIdentity, background bool) (LoadSummary, error) {
	year, week := s.resolveSeason(ctx)
	if year <= 0 || week <= 0 {
		return LoadSummary{}, fmt.Errorf("%w: season could not be determined", ErrDependencyUnavailable)
	}

	refs := s.discoverLeagues(ctx, identity, year)
	if len(refs) == 0 {
		return LoadSummary{}, fmt.Errorf("%w: no leagues found for identity", ErrNotFound)
	}

	prior := s.statesCopy()
	if !background {
		s.total.Store(int32(len(refs)))
		s.completed.Store(0)
		s.failed.Store(0)
		s.markAll(refs, LeagueStateLoading)
	}

	workerCount := min(s.cfg.MaxWorkers, len(refs))
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return LoadSummary{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	type fetchOutcome struct {
		order   int
		ref     league.Ref
		unified result.Unified
		skipped bool
		err     error
	}
	outcomes := make(chan fetchOutcome, len(refs))

	var workers sync.WaitGroup
	for i, ref := range refs {
		i, ref := i, ref
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			key := fetchKey(ref, year, week)
			if !s.acquireFetch(key) {
				outcomes <- fetchOutcome{order: i, ref: ref, skipped: true}
				return
			}
			defer s.releaseFetch(key)

			unified, fetchErr := s.fetchOne(ctx, identity, ref, year, week)
			outcomes <- fetchOutcome{order: i, ref: ref, unified: unified, err: fetchErr}
		}); err != nil {
			workers.Done()
			return LoadSummary{}, fmt.Errorf("submit league fetch: %w", err)
		}
	}

	workers.Wait()
	close(outcomes)

	summary := LoadSummary{
		Year:        year,
		Week:        week,
		LeagueCount: len(refs),
		WorkerCount: workerCount,
	}

	collected := make([]fetchOutcome, 0, len(refs))
	for outcome := range outcomes {
		collected = append(collected, outcome)
	}
	sort.SliceStable(collected, func(i, j int) bool { return collected[i].order < collected[j].order })

	fresh := make([]result.Unified, 0, len(collected))
	now := time.Now().UTC()
	for _, outcome := range collected {
		switch {
		case outcome.skipped:
			// Another cycle holds this league's fetch slot. A foreground
			// cycle marked it loading, so put the pre-cycle state back; a
			// background cycle never touched it.
			summary.Skipped++
			if background {
				break
			}
			if previous, ok := prior[outcome.ref.Key()]; ok {
				s.restoreState(previous)
			} else {
				s.markOne(outcome.ref, LeagueStatePending, "")
			}
		case outcome.err != nil:
			summary.Failed++
			if !background {
				s.failed.Add(1)
			}
			s.markOne(outcome.ref, LeagueStateFailed, outcome.err.Error())
			s.logger.WarnContext(ctx, "league fetch failed",
				"league", outcome.ref.Key(), "week", week, "error", outcome.err)
		default:
			summary.Loaded++
			if !background {
				s.completed.Add(1)
			}
			s.markOne(outcome.ref, LeagueStateLoaded, "")
			fresh = append(fresh, outcome.unified)
		}
	}

	// Priority order, ties by discovery order. SliceStable keeps the
	// discovery order for equal priorities.
	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].Priority() > fresh[j].Priority()
	})

	s.mu.Lock()
	s.results = fresh
	s.lastUpdated = now
	s.mu.Unlock()

	s.persistSnapshots(ctx, fresh, year, week)
	return summary, nil
}

func (s *AggregatorService) fetchOne(ctx context.Context, identity league.UserIdentity, ref league.Ref, year, week int) (result.Unified, error) {
	for _, provider := range s.providers {
		if provider.Platform() != ref.Platform {
			continue
		}
		return provider.FetchResult(ctx, identity, ref, year, week)
	}
	return result.Unified{}, fmt.Errorf("%w: no provider for platform %s", ErrDependencyUnavailable, ref.Platform)
}

// discoverLeagues merges every provider's league list, deduplicated by
// league key. A provider failure drops only its own platform.
func (s *AggregatorService) discoverLeagues(ctx context.Context, identity league.UserIdentity, year int) []league.Ref {
	seen := make(map[string]struct{}, 8)
	refs := make([]league.Ref, 0, 8)
	for _, provider := range s.providers {
		list, err := provider.ListLeagues(ctx, identity, year)
		if err != nil {
			s.logger.WarnContext(ctx, "league discovery failed for platform",
				"platform", provider.Platform(), "error", err)
			continue
		}
		for _, ref := range list {
			if _, dup := seen[ref.Key()]; dup {
				continue
			}
			seen[ref.Key()] = struct{}{}
			refs = append(refs, ref)
		}
	}
	return refs
}

func (s *AggregatorService) resolveSeason(ctx context.Context) (int, int) {
	if s.clock != nil {
		year, week, err := s.clock.CurrentWeek(ctx)
		if err == nil && year > 0 && week > 0 {
			return year, week
		}
		s.logger.WarnContext(ctx, "season clock unavailable, using fallback", "error", err)
	}
	return s.cfg.FallbackYear, s.cfg.FallbackWeek
}

func (s *AggregatorService) persistSnapshots(ctx context.Context, fresh []result.Unified, year, week int) {
	if s.snapshots == nil {
		return
	}
	for _, item := range fresh {
		payload, err := sonic.Marshal(item)
		if err != nil {
			s.logger.WarnContext(ctx, "marshal result snapshot", "league", item.League.Key(), "error", err)
			continue
		}
		snap := result.StoredSnapshot{
			LeagueKey: item.League.Key(),
			Week:      week,
			Year:      year,
			Payload:   payload,
			CreatedAt: item.LastUpdated,
		}
		if err := s.snapshots.Upsert(ctx, snap); err != nil {
			s.logger.WarnContext(ctx, "persist result snapshot", "league", item.League.Key(), "error", err)
		}
	}
}

// RestoreFromSnapshots seeds the result set from persisted snapshots so
// a restart serves the last known state before the first fetch cycle
// completes. It never overwrites results a cycle already produced.
func (s *AggregatorService) RestoreFromSnapshots(ctx context.Context, year int) (int, error) {
	if s.snapshots == nil {
		return 0, nil
	}
	stored, err := s.snapshots.ListLatest(ctx, year)
	if err != nil {
		return 0, fmt.Errorf("list snapshots: %w", err)
	}

	restored := make([]result.Unified, 0, len(stored))
	var latest time.Time
	for _, snap := range stored {
		var item result.Unified
		if err := sonic.Unmarshal(snap.Payload, &item); err != nil {
			s.logger.WarnContext(ctx, "decode result snapshot",
				"league", snap.LeagueKey, "error", err)
			continue
		}
		restored = append(restored, item)
		if snap.CreatedAt.After(latest) {
			latest = snap.CreatedAt
		}
	}
	if len(restored) == 0 {
		return 0, nil
	}
	sort.SliceStable(restored, func(i, j int) bool {
		return restored[i].Priority() > restored[j].Priority()
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.results) > 0 {
		return 0, nil
	}
	s.results = restored
	s.lastUpdated = latest
	return len(restored), nil
}

// Results returns the current ordered result set.
func (s *AggregatorService) Results() []result.Unified {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]result.Unified, len(s.results))
	copy(out, s.results)
	return out
}

// ResultFor returns one league's latest unified result.
func (s *AggregatorService) ResultFor(leagueKey string) (result.Unified, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.results {
		if item.League.Key() == leagueKey {
			return item, true
		}
	}
	return result.Unified{}, false
}

func (s *AggregatorService) Progress() Progress {
	return Progress{
		Loading:   s.isLoading.Load(),
		Total:     int(s.total.Load()),
		Completed: int(s.completed.Load()),
		Failed:    int(s.failed.Load()),
	}
}

func (s *AggregatorService) LeagueStates() []LeagueStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]LeagueStatus, 0, len(s.states))
	for _, status := range s.states {
		out = append(out, status)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].League.Key() < out[j].League.Key()
	})
	return out
}

func (s *AggregatorService) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

func (s *AggregatorService) statesCopy() map[string]LeagueStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]LeagueStatus, len(s.states))
	for key, status := range s.states {
		out[key] = status
	}
	return out
}

func (s *AggregatorService) restoreState(status LeagueStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[status.League.Key()] = status
}

func (s *AggregatorService) markAll(refs []league.Ref, state LeagueState) {
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ref := range refs {
		s.states[ref.Key()] = LeagueStatus{League: ref, State: state, UpdatedAt: now}
	}
}

func (s *AggregatorService) markOne(ref league.Ref, state LeagueState, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[ref.Key()] = LeagueStatus{
		League:    ref,
		State:     state,
		Error:     message,
		UpdatedAt: time.Now().UTC(),
	}
}

// acquireFetch claims the per-league fetch slot. A claim held by any
// other cycle (foreground or background) makes this fetch a no-op.
func (s *AggregatorService) acquireFetch(key string) bool {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	if _, busy := s.inflight[key]; busy {
		return false
	}
	s.inflight[key] = struct{}{}
	return true
}

func (s *AggregatorService) releaseFetch(key string) {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	delete(s.inflight, key)
}

func fetchKey(ref league.Ref, year, week int) string {
	return fmt.Sprintf("%s:%d:%d", ref.Key(), week, year)
}
