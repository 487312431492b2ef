package usecase

import (
	"context"

	"github.com/fauzanhakim/league-hub/internal/domain/league"
	"github.com/fauzanhakim/league-hub/internal/domain/result"
)

// LeagueProvider adapts one fantasy platform to the engine. Discovery
// and per-league fetching are separate so a failed league never hides
// its siblings.
type LeagueProvider interface {
	Platform() league.Platform

	// ListLeagues enumerates the leagues the identity belongs to for
	// one season.
	ListLeagues(ctx context.Context, identity league.UserIdentity, year int) ([]league.Ref, error)

	// FetchResult pulls one league's complete week state and reduces it
	// to a single unified result.
	FetchResult(ctx context.Context, identity league.UserIdentity, ref league.Ref, year, week int) (result.Unified, error)
}

// SeasonClock reports the sport's current season and week.
type SeasonClock interface {
	CurrentWeek(ctx context.Context) (year, week int, err error)
}
