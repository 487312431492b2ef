package usecase

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/fauzanhakim/league-hub/internal/domain/league"
	"github.com/fauzanhakim/league-hub/internal/platform/logging"
)

// RefreshScheduler triggers periodic background refreshes so the served
// result set keeps tracking live scoring without any client action.
type RefreshScheduler struct {
	scheduler gocron.Scheduler
	service   *AggregatorService
	identity  league.UserIdentity
	interval  time.Duration
	logger    *logging.Logger
}

func NewRefreshScheduler(
	service *AggregatorService,
	identity league.UserIdentity,
	interval time.Duration,
	logger *logging.Logger,
) (*RefreshScheduler, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	return &RefreshScheduler{
		scheduler: scheduler,
		service:   service,
		identity:  identity,
		interval:  interval,
		logger:    logger,
	}, nil
}

func (r *RefreshScheduler) Start() error {
	_, err := r.scheduler.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(r.tick),
	)
	if err != nil {
		return fmt.Errorf("create refresh job: %w", err)
	}

	r.scheduler.Start()
	r.logger.Info("refresh scheduler started", "interval", r.interval.String())
	return nil
}

func (r *RefreshScheduler) Stop() error {
	return r.scheduler.Shutdown()
}

// tick skips a round while a foreground load holds the flag; the
// background cycle would only contend for the same fetch slots.
func (r *RefreshScheduler) tick() {
	if r.service.Progress().Loading {
		r.logger.Debug("skip scheduled refresh, full load in progress")
		return
	}
	r.service.RefreshInBackground(r.identity)
}
