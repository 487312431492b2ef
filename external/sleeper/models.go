package sleeper

// League is one Sleeper fantasy league.
type League struct {
	LeagueID        string             `json:"league_id"`
	Name            string             `json:"name"`
	Status          string             `json:"status"`
	Sport           string             `json:"sport"`
	Season          string             `json:"season"`
	Settings        LeagueSettings     `json:"settings"`
	ScoringSettings map[string]float64 `json:"scoring_settings"`
	RosterPositions []string           `json:"roster_positions"`
	TotalRosters    int                `json:"total_rosters"`
	Avatar          string             `json:"avatar"`
}

type LeagueSettings struct {
	NumTeams      int `json:"num_teams"`
	StartWeek     int `json:"start_week"`
	LastScoredLeg int `json:"last_scored_leg"`
	Leg           int `json:"leg"`
	PlayoffTeams  int `json:"playoff_teams"`
}

type User struct {
	UserID      string            `json:"user_id"`
	Username    string            `json:"username"`
	DisplayName string            `json:"display_name"`
	Avatar      string            `json:"avatar"`
	Metadata    map[string]string `json:"metadata"`
}

// Roster is one team slot. OwnerID plus CoOwners carry every account
// attached to the slot.
type Roster struct {
	RosterID int            `json:"roster_id"`
	OwnerID  string         `json:"owner_id"`
	CoOwners []string       `json:"co_owners"`
	Players  []string       `json:"players"`
	Starters []string       `json:"starters"`
	Settings RosterSettings `json:"settings"`
}

type RosterSettings struct {
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	Ties        int     `json:"ties"`
	FPTS        float64 `json:"fpts"`
	FPTSAgainst float64 `json:"fpts_against"`
}

// Matchup is one roster's week entry. Entries sharing a MatchupID are
// opponents; MatchupID 0 means the platform paired nobody.
type Matchup struct {
	RosterID       int                `json:"roster_id"`
	MatchupID      int                `json:"matchup_id"`
	Points         float64            `json:"points"`
	Starters       []string           `json:"starters"`
	StartersPoints []float64          `json:"starters_points"`
	Players        []string           `json:"players"`
	PlayersPoints  map[string]float64 `json:"players_points"`
}

// Player is the subset of the players dump the engine needs.
type Player struct {
	PlayerID         string   `json:"player_id"`
	FullName         string   `json:"full_name"`
	Position         string   `json:"position"`
	Team             string   `json:"team"`
	FantasyPositions []string `json:"fantasy_positions"`
	InjuryStatus     string   `json:"injury_status"`
}

// NFLState is the sport clock: current week and season.
type NFLState struct {
	Week       int    `json:"week"`
	Leg        int    `json:"leg"`
	Season     string `json:"season"`
	SeasonType string `json:"season_type"`
}
