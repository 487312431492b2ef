package espn

// League is the combined response of the league endpoint when queried
// with the mTeam, mRoster, mScoreboard and mSettings views.
type League struct {
	ID              int64          `json:"id"`
	SeasonID        int            `json:"seasonId"`
	ScoringPeriodID int            `json:"scoringPeriodId"`
	Status          LeagueStatus   `json:"status"`
	Settings        LeagueSettings `json:"settings"`
	Teams           []Team         `json:"teams"`
	Members         []Member       `json:"members"`
	Schedule        []ScheduleItem `json:"schedule"`
}

type LeagueStatus struct {
	CurrentMatchupPeriod int  `json:"currentMatchupPeriod"`
	FirstScoringPeriod   int  `json:"firstScoringPeriod"`
	FinalScoringPeriod   int  `json:"finalScoringPeriod"`
	IsActive             bool `json:"isActive"`
}

type LeagueSettings struct {
	Name            string          `json:"name"`
	Size            int             `json:"size"`
	ScoringSettings ScoringSettings `json:"scoringSettings"`
}

type ScoringSettings struct {
	ScoringItems []ScoringItem `json:"scoringItems"`
}

// ScoringItem maps one numeric stat id to its point weight.
type ScoringItem struct {
	StatID int     `json:"statId"`
	Points float64 `json:"points"`
}

type Member struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
}

type Team struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Abbreviation string     `json:"abbrev"`
	Logo         string     `json:"logo"`
	Owners       []string   `json:"owners"`
	PlayoffSeed  int        `json:"playoffSeed"`
	Record       TeamRecord `json:"record"`
	Roster       Roster     `json:"roster"`
}

type TeamRecord struct {
	Overall RecordSplit `json:"overall"`
}

type RecordSplit struct {
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Ties          int     `json:"ties"`
	PointsFor     float64 `json:"pointsFor"`
	PointsAgainst float64 `json:"pointsAgainst"`
	Percentage    float64 `json:"percentage"`
}

type Roster struct {
	Entries []RosterEntry `json:"entries"`
}

type RosterEntry struct {
	LineupSlotID    int             `json:"lineupSlotId"`
	PlayerPoolEntry PlayerPoolEntry `json:"playerPoolEntry"`
}

type PlayerPoolEntry struct {
	ID               int64   `json:"id"`
	AppliedStatTotal float64 `json:"appliedStatTotal"`
	Player           Player  `json:"player"`
}

type Player struct {
	ID                int64        `json:"id"`
	FullName          string       `json:"fullName"`
	DefaultPositionID int          `json:"defaultPositionId"`
	ProTeamID         int          `json:"proTeamId"`
	InjuryStatus      string       `json:"injuryStatus"`
	Stats             []PlayerStat `json:"stats"`
}

// PlayerStat carries one scoring period's totals. StatSourceID 0 is the
// actually scored line, 1 is the projection.
type PlayerStat struct {
	ScoringPeriodID int                `json:"scoringPeriodId"`
	StatSourceID    int                `json:"statSourceId"`
	AppliedTotal    float64            `json:"appliedTotal"`
	AppliedStats    map[string]float64 `json:"appliedStats"`
}

type ScheduleItem struct {
	ID              int64     `json:"id"`
	MatchupPeriodID int       `json:"matchupPeriodId"`
	Winner          string    `json:"winner"`
	Home            TeamScore `json:"home"`
	Away            TeamScore `json:"away"`
}

type TeamScore struct {
	TeamID                   int     `json:"teamId"`
	TotalPoints              float64 `json:"totalPoints"`
	TotalPointsLive          float64 `json:"totalPointsLive"`
	TotalProjectedPointsLive float64 `json:"totalProjectedPointsLive"`
}

// fanResponse is the fan preferences endpoint: one entry per league the
// authenticated account follows.
type fanResponse struct {
	Preferences []fanPreference `json:"preferences"`
}

type fanPreference struct {
	TypeID   int         `json:"typeId"`
	MetaData fanMetaData `json:"metaData"`
}

type fanMetaData struct {
	Entry fanEntry `json:"entry"`
}

type fanEntry struct {
	EntryID      int64       `json:"entryId"`
	EntryGroups  []FanLeague `json:"groups"`
	EntryGameAbb string      `json:"abbrev"`
	SeasonID     int         `json:"seasonId"`
}

// FanLeague is one followed league from the fan preferences feed.
type FanLeague struct {
	GroupID   int64  `json:"groupId"`
	GroupName string `json:"groupName"`
	GroupSize int    `json:"groupSize"`
}

const fanPreferenceTypeFFL = 9
