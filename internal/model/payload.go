package model

// Typed shapes of the football-data.org v4 JSON payloads. Only the fields
// the normalizer reads are declared; everything else is ignored on decode.
// Values that may legitimately be absent (scores before full time, squad
// founding year) are pointers.

// MatchesResponse is the body of /v4/matches and
// /v4/competitions/{code}/matches.
type MatchesResponse struct {
	Competition CompetitionPayload `json:"competition"`
	ResultSet   ResultSetPayload   `json:"resultSet"`
	Matches     []MatchPayload     `json:"matches"`
}

// ResultSetPayload summarizes the returned window.
type ResultSetPayload struct {
	Count int    `json:"count"`
	First string `json:"first"`
	Last  string `json:"last"`
}

// MatchPayload is one raw fixture.
type MatchPayload struct {
	ID          int64              `json:"id"`
	UTCDate     string             `json:"utcDate"`
	Status      string             `json:"status"`
	Matchday    *int               `json:"matchday"`
	Stage       string             `json:"stage"`
	Venue       string             `json:"venue"`
	Competition CompetitionPayload `json:"competition"`
	Season      SeasonPayload      `json:"season"`
	HomeTeam    TeamPayload        `json:"homeTeam"`
	AwayTeam    TeamPayload        `json:"awayTeam"`
	Score       ScorePayload       `json:"score"`
	// Per-player lines when the subscription tier provides them; the free
	// tier leaves this empty and the normalizer falls back to squad rows.
	PlayerStats []PlayerStatPayload `json:"playerStats"`
}

// CompetitionPayload identifies the competition of a fixture.
type CompetitionPayload struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// SeasonPayload carries the season window; StartDate is YYYY-MM-DD.
type SeasonPayload struct {
	ID        int64  `json:"id"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// TeamPayload is a team reference as embedded in fixtures, or the full
// record from /v4/teams/{id}.
type TeamPayload struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	TLA       string `json:"tla"`
	Crest     string `json:"crest"`
	Founded   *int   `json:"founded"`
	Venue     string `json:"venue"`
}

// ScorePayload is the nested score block of a fixture.
type ScorePayload struct {
	Winner   string    `json:"winner"`
	Duration string    `json:"duration"`
	FullTime ScorePair `json:"fullTime"`
	HalfTime ScorePair `json:"halfTime"`
}

// ScorePair holds home/away goals; nil until the relevant period exists.
type ScorePair struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

// PlayerStatPayload is one player's raw line within a match. Counting
// stats are pointers so that absent fields default to zero downstream.
type PlayerStatPayload struct {
	Player          PlayerRefPayload `json:"player"`
	Team            TeamPayload      `json:"team"`
	Position        string           `json:"position"`
	MinutesPlayed   *int             `json:"minutesPlayed"`
	Goals           *int             `json:"goals"`
	Assists         *int             `json:"assists"`
	Shots           *int             `json:"shots"`
	ShotsOnTarget   *int             `json:"shotsOnTarget"`
	Passes          *int             `json:"passes"`
	PassesCompleted *int             `json:"passesCompleted"`
	Tackles         *int             `json:"tackles"`
	Interceptions   *int             `json:"interceptions"`
	FoulsCommitted  *int             `json:"foulsCommitted"`
	FoulsDrawn      *int             `json:"foulsDrawn"`
	YellowCards     *int             `json:"yellowCards"`
	RedCards        *int             `json:"redCards"`
}

// PlayerRefPayload identifies a player.
type PlayerRefPayload struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
}

// ScorersResponse is the body of /v4/competitions/{code}/scorers.
type ScorersResponse struct {
	Competition CompetitionPayload `json:"competition"`
	Scorers     []ScorerPayload    `json:"scorers"`
}

// ScorerPayload is one entry of the top-scorers table.
type ScorerPayload struct {
	Player        PlayerRefPayload `json:"player"`
	Team          TeamPayload      `json:"team"`
	PlayedMatches int              `json:"playedMatches"`
	Goals         int              `json:"goals"`
	Assists       *int             `json:"assists"`
	Penalties     *int             `json:"penalties"`
}
