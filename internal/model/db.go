package model

import (
	"time"
)

// MatchStatus is the lifecycle status reported by football-data.org.
type MatchStatus string

const (
	StatusScheduled MatchStatus = "SCHEDULED"
	StatusTimed     MatchStatus = "TIMED"
	StatusInPlay    MatchStatus = "IN_PLAY"
	StatusPaused    MatchStatus = "PAUSED"
	StatusFinished  MatchStatus = "FINISHED"
	StatusPostponed MatchStatus = "POSTPONED"
	StatusSuspended MatchStatus = "SUSPENDED"
	StatusCancelled MatchStatus = "CANCELLED"
)

// Match is one fixture keyed by its external football-data id. Rows are
// created on first sighting and updated in place on later sightings;
// the pipeline never deletes them.
type Match struct {
	MatchID         int64       `gorm:"column:match_id;primaryKey" json:"match_id"`
	UTCDate         time.Time   `gorm:"column:utc_date;not null" json:"utc_date"`
	Status          MatchStatus `gorm:"column:status;type:varchar(16);not null;default:SCHEDULED" json:"status"`
	Matchday        *int        `gorm:"column:matchday" json:"matchday,omitempty"`
	Stage           string      `gorm:"column:stage;type:varchar(32)" json:"stage,omitempty"`
	CompetitionID   int64       `gorm:"column:competition_id" json:"competition_id"`
	CompetitionName string      `gorm:"column:competition_name;type:varchar(64)" json:"competition_name"`
	CompetitionCode string      `gorm:"column:competition_code;type:varchar(8)" json:"competition_code"`
	SeasonStartYear *int        `gorm:"column:season_start_year" json:"season_start_year,omitempty"`
	HomeTeamID      int64       `gorm:"column:home_team_id;not null" json:"home_team_id"`
	HomeTeamName    string      `gorm:"column:home_team_name;type:varchar(128)" json:"home_team_name"`
	AwayTeamID      int64       `gorm:"column:away_team_id;not null" json:"away_team_id"`
	AwayTeamName    string      `gorm:"column:away_team_name;type:varchar(128)" json:"away_team_name"`
	HomeScore       *int        `gorm:"column:home_score" json:"home_score,omitempty"`
	AwayScore       *int        `gorm:"column:away_score" json:"away_score,omitempty"`
	Winner          string      `gorm:"column:winner;type:varchar(16)" json:"winner,omitempty"`
	Duration        string      `gorm:"column:duration;type:varchar(16);default:REGULAR" json:"duration"`
	Venue           string      `gorm:"column:venue;type:varchar(128)" json:"venue,omitempty"`
	CreatedAt       time.Time   `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"column:updated_at" json:"updated_at"`

	PlayerStats []PlayerStat `gorm:"foreignKey:MatchID;references:MatchID;constraint:OnDelete:CASCADE" json:"-"`
}

// PlayerStat is one player's line for one match. Immutable once written
// for a (match, player) pair except during reprocessing, which overwrites
// rather than duplicating.
type PlayerStat struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	MatchID         int64     `gorm:"column:match_id;not null;uniqueIndex:uk_player_stats_match_player" json:"match_id"`
	PlayerID        int64     `gorm:"column:player_id;not null;uniqueIndex:uk_player_stats_match_player" json:"player_id"`
	PlayerName      string    `gorm:"column:player_name;type:varchar(128);not null" json:"player_name"`
	TeamID          int64     `gorm:"column:team_id;not null" json:"team_id"`
	TeamName        string    `gorm:"column:team_name;type:varchar(128)" json:"team_name"`
	Position        string    `gorm:"column:position;type:varchar(32)" json:"position,omitempty"`
	MinutesPlayed   int       `gorm:"column:minutes_played;default:0" json:"minutes_played"`
	Goals           int       `gorm:"column:goals;default:0" json:"goals"`
	Assists         int       `gorm:"column:assists;default:0" json:"assists"`
	Shots           int       `gorm:"column:shots;default:0" json:"shots"`
	ShotsOnTarget   int       `gorm:"column:shots_on_target;default:0" json:"shots_on_target"`
	Passes          int       `gorm:"column:passes;default:0" json:"passes"`
	PassesCompleted int       `gorm:"column:passes_completed;default:0" json:"passes_completed"`
	Tackles         int       `gorm:"column:tackles;default:0" json:"tackles"`
	Interceptions   int       `gorm:"column:interceptions;default:0" json:"interceptions"`
	FoulsCommitted  int       `gorm:"column:fouls_committed;default:0" json:"fouls_committed"`
	FoulsDrawn      int       `gorm:"column:fouls_drawn;default:0" json:"fouls_drawn"`
	YellowCards     int       `gorm:"column:yellow_cards;default:0" json:"yellow_cards"`
	RedCards        int       `gorm:"column:red_cards;default:0" json:"red_cards"`
	Efficiency      float64   `gorm:"column:efficiency;default:0" json:"efficiency"`
	InvolvementRate float64   `gorm:"column:involvement_rate;default:0" json:"involvement_rate"`
	FormScore       float64   `gorm:"column:form_score;default:0" json:"form_score"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
}

// Team is keyed by its external football-data id; metadata is refreshed
// on every sighting.
type Team struct {
	TeamID    int64     `gorm:"column:team_id;primaryKey" json:"team_id"`
	Name      string    `gorm:"column:team_name;type:varchar(128);not null" json:"team_name"`
	ShortName string    `gorm:"column:short_name;type:varchar(64)" json:"short_name,omitempty"`
	TLA       string    `gorm:"column:tla;type:varchar(8)" json:"tla,omitempty"`
	CrestURL  string    `gorm:"column:crest_url;type:varchar(256)" json:"crest_url,omitempty"`
	Founded   *int      `gorm:"column:founded" json:"founded,omitempty"`
	Venue     string    `gorm:"column:venue;type:varchar(128)" json:"venue,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Match) TableName() string      { return "matches" }
func (PlayerStat) TableName() string { return "player_stats" }
func (Team) TableName() string       { return "teams" }

// PlayerSummary is one row of the player_performance_summary view.
type PlayerSummary struct {
	PlayerID           int64   `gorm:"column:player_id" json:"player_id"`
	PlayerName         string  `gorm:"column:player_name" json:"player_name"`
	TeamID             int64   `gorm:"column:team_id" json:"team_id"`
	TeamName           string  `gorm:"column:team_name" json:"team_name"`
	MatchesPlayed      int     `gorm:"column:matches_played" json:"matches_played"`
	TotalMinutes       int     `gorm:"column:total_minutes" json:"total_minutes"`
	TotalGoals         int     `gorm:"column:total_goals" json:"total_goals"`
	TotalAssists       int     `gorm:"column:total_assists" json:"total_assists"`
	TotalShots         int     `gorm:"column:total_shots" json:"total_shots"`
	TotalPasses        int     `gorm:"column:total_passes" json:"total_passes"`
	AvgEfficiency      float64 `gorm:"column:avg_efficiency" json:"avg_efficiency"`
	AvgInvolvementRate float64 `gorm:"column:avg_involvement_rate" json:"avg_involvement_rate"`
	AvgFormScore       float64 `gorm:"column:avg_form_score" json:"avg_form_score"`
	// MAX(created_at) loses its column type through the view, so this
	// stays a string as sqlite hands it back.
	LastUpdated string `gorm:"column:last_updated" json:"last_updated"`
}

// TeamSummary is one row of the team_performance_summary view.
type TeamSummary struct {
	TeamID        int64   `gorm:"column:team_id" json:"team_id"`
	TeamName      string  `gorm:"column:team_name" json:"team_name"`
	MatchesPlayed int     `gorm:"column:matches_played" json:"matches_played"`
	TotalGoals    int     `gorm:"column:total_goals" json:"total_goals"`
	TotalAssists  int     `gorm:"column:total_assists" json:"total_assists"`
	AvgEfficiency float64 `gorm:"column:avg_efficiency" json:"avg_efficiency"`
	PlayersUsed   int     `gorm:"column:players_used" json:"players_used"`
}
