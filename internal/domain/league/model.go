package league

import (
	"context"
	"strings"
)

// Platform identifies which fantasy provider owns a league.
type Platform string

const (
	PlatformESPN    Platform = "espn"
	PlatformSleeper Platform = "sleeper"
)

func (p Platform) Valid() bool {
	return p == PlatformESPN || p == PlatformSleeper
}

// Ref is the immutable identity of a connected league. Built by the
// league directory and read-only to everything downstream.
type Ref struct {
	Platform   Platform
	ExternalID string
	Name       string
	TeamCount  int
}

func (r Ref) Key() string {
	return string(r.Platform) + ":" + r.ExternalID
}

// UserIdentity carries the credentials and account handles needed to
// resolve the user's roster on each platform. Credential storage and
// rotation happen outside this service.
type UserIdentity struct {
	ESPNSWID        string
	ESPNS2          string
	SleeperUsername string
	SleeperUserID   string
}

// SleeperIdentifier returns the stored Sleeper handle, preferring the
// numeric user id over the username.
func (u UserIdentity) SleeperIdentifier() string {
	if id := strings.TrimSpace(u.SleeperUserID); id != "" {
		return id
	}
	return strings.TrimSpace(u.SleeperUsername)
}

// IsNumericID reports whether value looks like a platform-issued numeric
// user id rather than a username.
func IsNumericID(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Directory lists the leagues a user belongs to across both platforms.
// Implemented by the platform clients; consumed by the aggregator.
type Directory interface {
	ListLeagues(ctx context.Context, identity UserIdentity, year int) ([]Ref, error)
}
