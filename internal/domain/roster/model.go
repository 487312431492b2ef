package roster

// Player is one player on a weekly roster. Points hold the week's
// computed fantasy total once scoring has run; zero until then.
type Player struct {
	PlayerID   string
	Name       string
	Position   string
	NFLTeam    string
	LineupSlot string
	IsStarter  bool
	Points     float64
	Projected  float64
}

// Record is a team's season win-loss-tie line. Optional: elimination
// pools have no head-to-head record.
type Record struct {
	Wins   int
	Losses int
	Ties   int
}

// Snapshot is one team's complete state for a given week. Built fresh
// each fetch cycle and never mutated afterwards, only replaced.
type Snapshot struct {
	TeamID         string
	TeamName       string
	OwnerName      string
	AvatarURL      string
	Score          float64
	ProjectedScore float64
	Record         *Record
	Players        []Player
}

// StarterTotal sums the computed points of the starting lineup.
func (s Snapshot) StarterTotal() float64 {
	total := 0.0
	for _, p := range s.Players {
		if p.IsStarter {
			total += p.Points
		}
	}
	return total
}

// Ownership links a roster to its platform account owner(s). Used by
// the identity resolver; co-owner ids cover shared teams.
type Ownership struct {
	TeamID     string
	OwnerID    string
	CoOwnerIDs []string
}
