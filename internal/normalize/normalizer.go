package normalize

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"sportsync/internal/interfaces"
	"sportsync/internal/model"

	"github.com/sirupsen/logrus"
)

// formWindow is the number of matches (current one included) the rolling
// form score averages over.
const formWindow = 5

// SchemaError reports a missing or malformed required identity field in a
// raw snapshot. Optional fields never raise it; they default instead.
type SchemaError struct {
	Field  string
	Index  int // index of the offending match in the snapshot, -1 for the body
	Detail string
}

func (e *SchemaError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("schema error at match %d: field %s %s", e.Index, e.Field, e.Detail)
	}
	return fmt.Sprintf("schema error: %s %s", e.Field, e.Detail)
}

// Normalizer flattens raw match snapshots into ordered Match, PlayerStat
// and Team rows and computes the derived metrics. The rolling form score
// needs the player's stored history, injected as a read-only reader.
type Normalizer struct {
	reader interfaces.EfficiencyReader
	logger *logrus.Logger
}

func New(reader interfaces.EfficiencyReader, logger *logrus.Logger) *Normalizer {
	return &Normalizer{reader: reader, logger: logger}
}

// Normalize parses one matches snapshot. Output order is stable so that
// batched inserts are deterministic: matches ascending by external id,
// stats grouped by match then ascending player id, teams deduped
// ascending by id.
func (n *Normalizer) Normalize(ctx context.Context, snap *model.RawSnapshot) (*model.Batch, error) {
	var resp model.MatchesResponse
	if err := json.Unmarshal(snap.Body, &resp); err != nil {
		return nil, &SchemaError{Field: "body", Index: -1, Detail: "is not valid JSON: " + err.Error()}
	}

	batch := &model.Batch{}
	teams := make(map[int64]model.Team)
	payloads := make(map[int64]model.MatchPayload, len(resp.Matches))

	for i, raw := range resp.Matches {
		if raw.ID == 0 {
			return nil, &SchemaError{Field: "match.id", Index: i, Detail: "is missing"}
		}
		if raw.HomeTeam.ID == 0 {
			return nil, &SchemaError{Field: "homeTeam.id", Index: i, Detail: "is missing"}
		}
		if raw.AwayTeam.ID == 0 {
			return nil, &SchemaError{Field: "awayTeam.id", Index: i, Detail: "is missing"}
		}
		if raw.HomeTeam.ID == raw.AwayTeam.ID {
			return nil, &SchemaError{Field: "awayTeam.id", Index: i, Detail: "equals homeTeam.id"}
		}

		utcDate, err := time.Parse(time.RFC3339, raw.UTCDate)
		if err != nil {
			// Unparseable dates drop the match, they do not fail the batch.
			n.logger.WithFields(logrus.Fields{
				"match_id": raw.ID,
				"utc_date": raw.UTCDate,
			}).Warn("dropping match with unparseable date")
			continue
		}

		batch.Matches = append(batch.Matches, model.Match{
			MatchID:         raw.ID,
			UTCDate:         utcDate.UTC(),
			Status:          matchStatus(raw.Status),
			Matchday:        raw.Matchday,
			Stage:           raw.Stage,
			CompetitionID:   raw.Competition.ID,
			CompetitionName: raw.Competition.Name,
			CompetitionCode: raw.Competition.Code,
			SeasonStartYear: seasonYear(raw.Season.StartDate),
			HomeTeamID:      raw.HomeTeam.ID,
			HomeTeamName:    raw.HomeTeam.Name,
			AwayTeamID:      raw.AwayTeam.ID,
			AwayTeamName:    raw.AwayTeam.Name,
			HomeScore:       raw.Score.FullTime.Home,
			AwayScore:       raw.Score.FullTime.Away,
			Winner:          raw.Score.Winner,
			Duration:        duration(raw.Score.Duration),
			Venue:           raw.Venue,
		})
		payloads[raw.ID] = raw

		for _, tp := range []model.TeamPayload{raw.HomeTeam, raw.AwayTeam} {
			teams[tp.ID] = model.Team{
				TeamID:    tp.ID,
				Name:      tp.Name,
				ShortName: tp.ShortName,
				TLA:       tp.TLA,
				CrestURL:  tp.Crest,
				Founded:   tp.Founded,
				Venue:     tp.Venue,
			}
		}
	}

	sort.Slice(batch.Matches, func(i, j int) bool {
		return batch.Matches[i].MatchID < batch.Matches[j].MatchID
	})

	for _, m := range batch.Matches {
		rows := n.statRows(m, payloads[m.MatchID])
		sort.Slice(rows, func(i, j int) bool { return rows[i].PlayerID < rows[j].PlayerID })
		for i := range rows {
			if err := n.deriveMetrics(ctx, &rows[i]); err != nil {
				return nil, err
			}
		}
		batch.Stats = append(batch.Stats, rows...)
	}

	teamIDs := make([]int64, 0, len(teams))
	for id := range teams {
		teamIDs = append(teamIDs, id)
	}
	sort.Slice(teamIDs, func(i, j int) bool { return teamIDs[i] < teamIDs[j] })
	for _, id := range teamIDs {
		batch.Teams = append(batch.Teams, teams[id])
	}

	return batch, nil
}

// statRows builds the per-player rows of one match. When the payload has
// no player lines (free tier) and the match is finished, one squad-level
// row per team keeps the stats path and views populated, as a stand-in
// keyed by the negated team id.
func (n *Normalizer) statRows(m model.Match, raw model.MatchPayload) []model.PlayerStat {
	if len(raw.PlayerStats) > 0 {
		rows := make([]model.PlayerStat, 0, len(raw.PlayerStats))
		for _, ps := range raw.PlayerStats {
			if ps.Player.ID == 0 {
				n.logger.WithFields(logrus.Fields{
					"match_id": m.MatchID,
					"player":   ps.Player.Name,
				}).Warn("dropping player row without player id")
				continue
			}
			position := ps.Position
			if position == "" {
				position = ps.Player.Position
			}
			rows = append(rows, model.PlayerStat{
				MatchID:         m.MatchID,
				PlayerID:        ps.Player.ID,
				PlayerName:      ps.Player.Name,
				TeamID:          ps.Team.ID,
				TeamName:        ps.Team.Name,
				Position:        position,
				MinutesPlayed:   n.counting(m.MatchID, "minutesPlayed", ps.MinutesPlayed),
				Goals:           n.counting(m.MatchID, "goals", ps.Goals),
				Assists:         n.counting(m.MatchID, "assists", ps.Assists),
				Shots:           n.counting(m.MatchID, "shots", ps.Shots),
				ShotsOnTarget:   n.counting(m.MatchID, "shotsOnTarget", ps.ShotsOnTarget),
				Passes:          n.counting(m.MatchID, "passes", ps.Passes),
				PassesCompleted: n.counting(m.MatchID, "passesCompleted", ps.PassesCompleted),
				Tackles:         n.counting(m.MatchID, "tackles", ps.Tackles),
				Interceptions:   n.counting(m.MatchID, "interceptions", ps.Interceptions),
				FoulsCommitted:  n.counting(m.MatchID, "foulsCommitted", ps.FoulsCommitted),
				FoulsDrawn:      n.counting(m.MatchID, "foulsDrawn", ps.FoulsDrawn),
				YellowCards:     n.counting(m.MatchID, "yellowCards", ps.YellowCards),
				RedCards:        n.counting(m.MatchID, "redCards", ps.RedCards),
			})
		}
		return rows
	}

	if m.Status != model.StatusFinished {
		return nil
	}
	return []model.PlayerStat{
		squadRow(m.MatchID, m.HomeTeamID, m.HomeTeamName, m.HomeScore),
		squadRow(m.MatchID, m.AwayTeamID, m.AwayTeamName, m.AwayScore),
	}
}

func squadRow(matchID, teamID int64, teamName string, score *int) model.PlayerStat {
	goals := 0
	if score != nil {
		goals = *score
	}
	return model.PlayerStat{
		MatchID:       matchID,
		PlayerID:      -teamID,
		PlayerName:    teamName + " Squad",
		TeamID:        teamID,
		TeamName:      teamName,
		Position:      "Squad",
		MinutesPlayed: 90,
		Goals:         goals,
	}
}

// deriveMetrics fills efficiency, involvement rate and the rolling form
// score. Divide-by-zero yields 0.0, never an error.
func (n *Normalizer) deriveMetrics(ctx context.Context, st *model.PlayerStat) error {
	if st.MinutesPlayed > 0 {
		st.Efficiency = round4(float64(st.Goals+st.Assists) / float64(st.MinutesPlayed))
		st.InvolvementRate = round4(float64(st.Shots+st.Passes) / float64(st.MinutesPlayed))
	}

	// Window is inclusive of the current match: current efficiency plus up
	// to formWindow-1 stored prior values, the row being (re)written
	// excluded so reprocessing does not double count.
	prior, err := n.reader.RecentEfficiencies(ctx, st.PlayerID, st.MatchID, formWindow-1)
	if err != nil {
		return fmt.Errorf("form window lookup for player %d: %w", st.PlayerID, err)
	}
	sum := st.Efficiency
	for _, e := range prior {
		sum += e
	}
	st.FormScore = round4(sum / float64(len(prior)+1))
	return nil
}

// counting dereferences an optional counting stat, defaulting absent
// values to 0 and clamping negatives with a warning.
func (n *Normalizer) counting(matchID int64, field string, v *int) int {
	if v == nil {
		return 0
	}
	if *v < 0 {
		n.logger.WithFields(logrus.Fields{
			"match_id": matchID,
			"field":    field,
			"value":    *v,
		}).Warn("negative counting stat clamped to 0")
		return 0
	}
	return *v
}

func matchStatus(s string) model.MatchStatus {
	switch model.MatchStatus(s) {
	case model.StatusScheduled, model.StatusTimed, model.StatusInPlay, model.StatusPaused,
		model.StatusFinished, model.StatusPostponed, model.StatusSuspended, model.StatusCancelled:
		return model.MatchStatus(s)
	case "LIVE": // alias the API uses in status filters
		return model.StatusInPlay
	default:
		return model.StatusScheduled
	}
}

func seasonYear(startDate string) *int {
	if len(startDate) < 4 {
		return nil
	}
	year, err := strconv.Atoi(startDate[:4])
	if err != nil {
		return nil
	}
	return &year
}

func duration(d string) string {
	if d == "" {
		return "REGULAR"
	}
	return d
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
