package normalize

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sportsync/internal/model"
)

// fakeReader serves canned prior efficiencies per player.
type fakeReader struct {
	priors map[int64][]float64
	err    error
}

func (f *fakeReader) RecentEfficiencies(_ context.Context, playerID, _ int64, limit int) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	effs := f.priors[playerID]
	if len(effs) > limit {
		effs = effs[:limit]
	}
	return effs, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestNormalizer(priors map[int64][]float64) *Normalizer {
	return New(&fakeReader{priors: priors}, quietLogger())
}

func intp(v int) *int { return &v }

func matchPayload(id int64) model.MatchPayload {
	return model.MatchPayload{
		ID:      id,
		UTCDate: "2026-08-22T15:00:00Z",
		Status:  "FINISHED",
		Competition: model.CompetitionPayload{
			ID: 2021, Name: "Premier League", Code: "PL",
		},
		Season:   model.SeasonPayload{ID: 1, StartDate: "2026-08-01", EndDate: "2027-05-31"},
		HomeTeam: model.TeamPayload{ID: 10, Name: "Home FC", TLA: "HOM"},
		AwayTeam: model.TeamPayload{ID: 20, Name: "Away FC", TLA: "AWY"},
		Score: model.ScorePayload{
			Winner:   "HOME_TEAM",
			Duration: "REGULAR",
			FullTime: model.ScorePair{Home: intp(2), Away: intp(1)},
		},
	}
}

func playerLine(playerID int64, name string, teamID int64, minutes, goals, assists int) model.PlayerStatPayload {
	teamName := "Home FC"
	if teamID == 20 {
		teamName = "Away FC"
	}
	return model.PlayerStatPayload{
		Player:        model.PlayerRefPayload{ID: playerID, Name: name, Position: "Midfielder"},
		Team:          model.TeamPayload{ID: teamID, Name: teamName},
		MinutesPlayed: intp(minutes),
		Goals:         intp(goals),
		Assists:       intp(assists),
	}
}

func snapshotFor(t *testing.T, matches ...model.MatchPayload) *model.RawSnapshot {
	t.Helper()
	body, err := json.Marshal(model.MatchesResponse{Matches: matches})
	require.NoError(t, err)
	return &model.RawSnapshot{Name: "matches_PL", Body: body, CapturedAt: time.Now()}
}

func TestNormalize_ScenarioFinishedMatch(t *testing.T) {
	// 1. One finished 2-1 match with two player lines.
	raw := matchPayload(1001)
	raw.PlayerStats = []model.PlayerStatPayload{
		playerLine(44, "A", 10, 90, 1, 1),
		playerLine(45, "B", 20, 45, 0, 0),
	}
	n := newTestNormalizer(nil)

	batch, err := n.Normalize(context.Background(), snapshotFor(t, raw))
	require.NoError(t, err)

	// 2. Match row with the external id as key, scores and winner mapped.
	require.Len(t, batch.Matches, 1)
	m := batch.Matches[0]
	assert.Equal(t, int64(1001), m.MatchID)
	assert.Equal(t, model.StatusFinished, m.Status)
	require.NotNil(t, m.HomeScore)
	assert.Equal(t, 2, *m.HomeScore)
	require.NotNil(t, m.AwayScore)
	assert.Equal(t, 1, *m.AwayScore)
	assert.Equal(t, "HOME_TEAM", m.Winner)

	// 3. Derived metrics: (1g+1a)/90min rounded to 4 decimals; zero
	// contributions stay at 0.0.
	require.Len(t, batch.Stats, 2)
	assert.Equal(t, int64(44), batch.Stats[0].PlayerID)
	assert.InDelta(t, 0.0222, batch.Stats[0].Efficiency, 1e-9)
	assert.Equal(t, int64(45), batch.Stats[1].PlayerID)
	assert.Zero(t, batch.Stats[1].Efficiency)

	// 4. Both teams collected once.
	require.Len(t, batch.Teams, 2)
	assert.Equal(t, int64(10), batch.Teams[0].TeamID)
	assert.Equal(t, int64(20), batch.Teams[1].TeamID)
}

func TestNormalize_ZeroMinutesYieldsZeroMetrics(t *testing.T) {
	raw := matchPayload(1)
	line := playerLine(44, "A", 10, 0, 2, 1) // data glitch: goals without minutes
	raw.PlayerStats = []model.PlayerStatPayload{line}
	n := newTestNormalizer(nil)

	batch, err := n.Normalize(context.Background(), snapshotFor(t, raw))
	require.NoError(t, err)
	require.Len(t, batch.Stats, 1)
	assert.Zero(t, batch.Stats[0].Efficiency)
	assert.Zero(t, batch.Stats[0].InvolvementRate)
	assert.Zero(t, batch.Stats[0].FormScore)
}

func TestNormalize_InvolvementRate(t *testing.T) {
	raw := matchPayload(1)
	line := playerLine(44, "A", 10, 90, 0, 0)
	line.Shots = intp(3)
	line.Passes = intp(42)
	raw.PlayerStats = []model.PlayerStatPayload{line}
	n := newTestNormalizer(nil)

	batch, err := n.Normalize(context.Background(), snapshotFor(t, raw))
	require.NoError(t, err)
	require.Len(t, batch.Stats, 1)
	assert.InDelta(t, 0.5, batch.Stats[0].InvolvementRate, 1e-9)
}

func TestNormalize_FormScoreWindow(t *testing.T) {
	// Four stored priors plus the current efficiency: the sixth match's
	// form is the mean over matches two through six.
	raw := matchPayload(6)
	raw.PlayerStats = []model.PlayerStatPayload{playerLine(44, "A", 10, 90, 1, 1)}
	n := newTestNormalizer(map[int64][]float64{
		44: {0.05, 0.04, 0.03, 0.02, 0.01}, // fifth value is outside the window
	})

	batch, err := n.Normalize(context.Background(), snapshotFor(t, raw))
	require.NoError(t, err)
	require.Len(t, batch.Stats, 1)

	current := batch.Stats[0].Efficiency
	assert.InDelta(t, 0.0222, current, 1e-9)
	want := (current + 0.05 + 0.04 + 0.03 + 0.02) / 5
	assert.InDelta(t, want, batch.Stats[0].FormScore, 1e-4)
}

func TestNormalize_FormScoreFewerThanFiveMatches(t *testing.T) {
	raw := matchPayload(2)
	raw.PlayerStats = []model.PlayerStatPayload{playerLine(44, "A", 10, 90, 1, 0)}
	n := newTestNormalizer(map[int64][]float64{44: {0.03}})

	batch, err := n.Normalize(context.Background(), snapshotFor(t, raw))
	require.NoError(t, err)
	require.Len(t, batch.Stats, 1)

	current := batch.Stats[0].Efficiency
	assert.InDelta(t, (current+0.03)/2, batch.Stats[0].FormScore, 1e-4)
}

func TestNormalize_SchemaErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.MatchPayload)
		field  string
	}{
		{"missing match id", func(m *model.MatchPayload) { m.ID = 0 }, "match.id"},
		{"missing home team id", func(m *model.MatchPayload) { m.HomeTeam.ID = 0 }, "homeTeam.id"},
		{"missing away team id", func(m *model.MatchPayload) { m.AwayTeam.ID = 0 }, "awayTeam.id"},
		{"same team on both sides", func(m *model.MatchPayload) { m.AwayTeam.ID = m.HomeTeam.ID }, "awayTeam.id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := matchPayload(1)
			tc.mutate(&raw)
			n := newTestNormalizer(nil)

			batch, err := n.Normalize(context.Background(), snapshotFor(t, raw))
			require.Error(t, err)
			assert.Nil(t, batch)

			var se *SchemaError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tc.field, se.Field)
			assert.Equal(t, 0, se.Index)
		})
	}
}

func TestNormalize_MalformedBody(t *testing.T) {
	n := newTestNormalizer(nil)
	snap := &model.RawSnapshot{Name: "matches_PL", Body: []byte("{not json")}

	batch, err := n.Normalize(context.Background(), snap)
	require.Error(t, err)
	assert.Nil(t, batch)

	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "body", se.Field)
	assert.Equal(t, -1, se.Index)
}

func TestNormalize_DropsUnparseableDate(t *testing.T) {
	good := matchPayload(1)
	bad := matchPayload(2)
	bad.UTCDate = "yesterday"
	n := newTestNormalizer(nil)

	batch, err := n.Normalize(context.Background(), snapshotFor(t, good, bad))
	require.NoError(t, err)
	require.Len(t, batch.Matches, 1)
	assert.Equal(t, int64(1), batch.Matches[0].MatchID)
}

func TestNormalize_StableOrdering(t *testing.T) {
	m3, m1 := matchPayload(3), matchPayload(1)
	m1.PlayerStats = []model.PlayerStatPayload{
		playerLine(99, "Z", 10, 90, 0, 0),
		playerLine(11, "A", 10, 90, 0, 0),
	}
	n := newTestNormalizer(nil)

	batch, err := n.Normalize(context.Background(), snapshotFor(t, m3, m1))
	require.NoError(t, err)

	require.Len(t, batch.Matches, 2)
	assert.Equal(t, int64(1), batch.Matches[0].MatchID)
	assert.Equal(t, int64(3), batch.Matches[1].MatchID)

	// Match 1's lines lead and are ordered by player id; match 3 falls
	// back to squad rows keyed by negated team ids.
	require.Len(t, batch.Stats, 4)
	assert.Equal(t, int64(11), batch.Stats[0].PlayerID)
	assert.Equal(t, int64(99), batch.Stats[1].PlayerID)
	assert.Equal(t, int64(-20), batch.Stats[2].PlayerID)
	assert.Equal(t, int64(-10), batch.Stats[3].PlayerID)
}

func TestNormalize_SquadFallbackForFinishedMatch(t *testing.T) {
	raw := matchPayload(7) // finished, no player lines
	n := newTestNormalizer(nil)

	batch, err := n.Normalize(context.Background(), snapshotFor(t, raw))
	require.NoError(t, err)
	require.Len(t, batch.Stats, 2)

	home := batch.Stats[1] // sorted ascending, -10 after -20
	assert.Equal(t, int64(-10), home.PlayerID)
	assert.Equal(t, "Squad", home.Position)
	assert.Equal(t, 90, home.MinutesPlayed)
	assert.Equal(t, 2, home.Goals, "squad row carries the team score")

	away := batch.Stats[0]
	assert.Equal(t, int64(-20), away.PlayerID)
	assert.Equal(t, 1, away.Goals)
}

func TestNormalize_NoSquadRowsForScheduledMatch(t *testing.T) {
	raw := matchPayload(8)
	raw.Status = "TIMED"
	raw.Score = model.ScorePayload{}
	n := newTestNormalizer(nil)

	batch, err := n.Normalize(context.Background(), snapshotFor(t, raw))
	require.NoError(t, err)
	assert.Empty(t, batch.Stats)
	assert.Equal(t, model.StatusTimed, batch.Matches[0].Status)
	assert.Equal(t, "REGULAR", batch.Matches[0].Duration)
}

func TestNormalize_OptionalStatDefaultsAndClamping(t *testing.T) {
	raw := matchPayload(1)
	line := model.PlayerStatPayload{
		Player: model.PlayerRefPayload{ID: 44, Name: "A"},
		Team:   model.TeamPayload{ID: 10, Name: "Home FC"},
		Goals:  intp(-3), // corrupt feed value
	}
	raw.PlayerStats = []model.PlayerStatPayload{line}
	n := newTestNormalizer(nil)

	batch, err := n.Normalize(context.Background(), snapshotFor(t, raw))
	require.NoError(t, err)
	require.Len(t, batch.Stats, 1)
	st := batch.Stats[0]
	assert.Zero(t, st.Goals, "negative values clamp to 0")
	assert.Zero(t, st.MinutesPlayed, "absent values default to 0")
	assert.Zero(t, st.Efficiency)
}

func TestNormalize_DropsPlayerRowWithoutID(t *testing.T) {
	raw := matchPayload(1)
	raw.PlayerStats = []model.PlayerStatPayload{
		{Player: model.PlayerRefPayload{Name: "Unknown"}, Team: model.TeamPayload{ID: 10}},
		playerLine(44, "A", 10, 90, 0, 0),
	}
	n := newTestNormalizer(nil)

	batch, err := n.Normalize(context.Background(), snapshotFor(t, raw))
	require.NoError(t, err)
	require.Len(t, batch.Stats, 1)
	assert.Equal(t, int64(44), batch.Stats[0].PlayerID)
}

func TestNormalize_SeasonYearFromStartDate(t *testing.T) {
	raw := matchPayload(1)
	n := newTestNormalizer(nil)

	batch, err := n.Normalize(context.Background(), snapshotFor(t, raw))
	require.NoError(t, err)
	require.NotNil(t, batch.Matches[0].SeasonStartYear)
	assert.Equal(t, 2026, *batch.Matches[0].SeasonStartYear)
}

func TestRound4(t *testing.T) {
	assert.Equal(t, 0.0222, round4(2.0/90))
	assert.Equal(t, 0.0333, round4(3.0/90))
	assert.Equal(t, 0.0, round4(0))
}
