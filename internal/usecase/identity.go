package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/fauzanhakim/league-hub/internal/domain/league"
	"github.com/fauzanhakim/league-hub/internal/domain/roster"
)

// SleeperUserLookup resolves a username to a stable account id.
type SleeperUserLookup interface {
	LookupUserID(ctx context.Context, usernameOrID string) (string, error)
}

// ownershipStrategy reports whether one team slot belongs to the user.
// Strategies run in order; the first hit wins. All of them compare
// account ids. Display names are ambiguous across platforms and are
// deliberately never consulted.
type ownershipStrategy func(slot roster.Ownership, userID string) bool

var ownershipStrategies = []ownershipStrategy{
	func(slot roster.Ownership, userID string) bool {
		return slot.OwnerID != "" && slot.OwnerID == userID
	},
	func(slot roster.Ownership, userID string) bool {
		return slices.Contains(slot.CoOwnerIDs, userID)
	},
}

// ResolveOwnedTeam walks the ownership strategies and returns the first
// team slot owned by the given account id.
func ResolveOwnedTeam(slots []roster.Ownership, userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("%w: user id is empty", ErrTeamNotResolved)
	}
	for _, strategy := range ownershipStrategies {
		for _, slot := range slots {
			if strategy(slot, userID) {
				return slot.TeamID, nil
			}
		}
	}
	return "", fmt.Errorf("%w: no team slot owned by user_id=%s", ErrTeamNotResolved, userID)
}

// ResolveSleeperUserID turns whatever the identity carries into a
// numeric account id: a stored id is used directly, a username goes
// through one lookup call.
func ResolveSleeperUserID(ctx context.Context, lookup SleeperUserLookup, identity league.UserIdentity) (string, error) {
	candidate := identity.SleeperIdentifier()
	if candidate == "" {
		return "", fmt.Errorf("%w: no sleeper identity configured", ErrInvalidInput)
	}
	if league.IsNumericID(candidate) {
		return candidate, nil
	}
	if lookup == nil {
		return "", fmt.Errorf("%w: sleeper user lookup is not configured", ErrDependencyUnavailable)
	}
	userID, err := lookup.LookupUserID(ctx, candidate)
	if err != nil {
		return "", fmt.Errorf("resolve sleeper username %s: %w", candidate, err)
	}
	return userID, nil
}

// NormalizeSWID uppercases and strips the braces ESPN wraps around the
// account guid, so stored and reported forms compare equal.
func NormalizeSWID(raw string) string {
	value := strings.ToUpper(strings.TrimSpace(raw))
	value = strings.TrimPrefix(value, "{")
	return strings.TrimSuffix(value, "}")
}

// ResolveESPNTeam matches the identity's SWID against each team's
// owners array. Owner entries are SWIDs, not display names.
func ResolveESPNTeam(slots []roster.Ownership, swid string) (string, error) {
	normalized := NormalizeSWID(swid)
	if normalized == "" {
		return "", fmt.Errorf("%w: swid is empty", ErrTeamNotResolved)
	}
	for _, slot := range slots {
		if NormalizeSWID(slot.OwnerID) == normalized {
			return slot.TeamID, nil
		}
		for _, coOwner := range slot.CoOwnerIDs {
			if NormalizeSWID(coOwner) == normalized {
				return slot.TeamID, nil
			}
		}
	}
	return "", fmt.Errorf("%w: no team owned by swid", ErrTeamNotResolved)
}
