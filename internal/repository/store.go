package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"sportsync/internal/model"
)

// PersistenceError reports a rejected write; the whole batch it belonged
// to has been rolled back. Key names the offending record's identity.
type PersistenceError struct {
	Table string
	Key   string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting %s %s failed: %v", e.Table, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Store owns the three base tables and the derived views. All batch
// writes are transactional; readers see either the whole batch or none of
// it. WAL mode keeps readers unblocked during a batch commit.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the embedded database file, applies the
// sqlite pragmas and runs migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir %s: %w", dir, err)
		}
	}
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// New wraps an already-open, already-migrated gorm handle (tests).
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for administrative use.
func (s *Store) DB() *gorm.DB { return s.db }

// SaveBatch applies one normalized batch atomically: teams, then matches,
// then player stats. On any rejected record nothing of the batch remains
// visible and the returned *PersistenceError names the record.
func (s *Store) SaveBatch(ctx context.Context, batch *model.Batch) error {
	if batch.Empty() {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertTeams(tx, batch.Teams); err != nil {
			return err
		}
		if err := upsertMatches(tx, batch.Matches); err != nil {
			return err
		}
		return upsertPlayerStats(tx, batch.Stats)
	})
}

// UpsertMatches applies a match sequence in one transaction.
func (s *Store) UpsertMatches(ctx context.Context, matches []model.Match) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return upsertMatches(tx, matches)
	})
}

// UpsertPlayerStats applies a stat sequence in one transaction.
func (s *Store) UpsertPlayerStats(ctx context.Context, stats []model.PlayerStat) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return upsertPlayerStats(tx, stats)
	})
}

// UpsertTeams applies a team sequence in one transaction.
func (s *Store) UpsertTeams(ctx context.Context, teams []model.Team) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return upsertTeams(tx, teams)
	})
}

func upsertTeams(tx *gorm.DB, teams []model.Team) error {
	for i := range teams {
		t := teams[i]
		if t.TeamID == 0 {
			return &PersistenceError{Table: "teams", Key: t.Name, Err: fmt.Errorf("missing team id")}
		}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "team_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"team_name", "short_name", "tla", "crest_url", "founded", "venue", "updated_at",
			}),
		}).Create(&t).Error
		if err != nil {
			return &PersistenceError{Table: "teams", Key: fmt.Sprintf("%d", t.TeamID), Err: err}
		}
	}
	return nil
}

func upsertMatches(tx *gorm.DB, matches []model.Match) error {
	for i := range matches {
		m := matches[i]
		key := fmt.Sprintf("%d", m.MatchID)
		if m.MatchID == 0 {
			return &PersistenceError{Table: "matches", Key: key, Err: fmt.Errorf("missing match id")}
		}
		if m.HomeTeamID == m.AwayTeamID {
			return &PersistenceError{Table: "matches", Key: key, Err: fmt.Errorf("home team equals away team (%d)", m.HomeTeamID)}
		}
		err := tx.Omit("PlayerStats").Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "match_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"utc_date", "status", "matchday", "stage", "season_start_year",
				"home_score", "away_score", "winner", "duration", "venue", "updated_at",
			}),
		}).Create(&m).Error
		if err != nil {
			return &PersistenceError{Table: "matches", Key: key, Err: err}
		}
	}
	return nil
}

func upsertPlayerStats(tx *gorm.DB, stats []model.PlayerStat) error {
	for i := range stats {
		st := stats[i]
		key := fmt.Sprintf("match %d player %d", st.MatchID, st.PlayerID)
		if err := validateStat(&st); err != nil {
			return &PersistenceError{Table: "player_stats", Key: key, Err: err}
		}
		// Rows are immutable per (match, player) outside reprocessing;
		// the conflict branch is the reprocessing overwrite.
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "match_id"}, {Name: "player_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"player_name", "team_id", "team_name", "position", "minutes_played",
				"goals", "assists", "shots", "shots_on_target", "passes", "passes_completed",
				"tackles", "interceptions", "fouls_committed", "fouls_drawn",
				"yellow_cards", "red_cards", "efficiency", "involvement_rate", "form_score",
			}),
		}).Create(&st).Error
		if err != nil {
			return &PersistenceError{Table: "player_stats", Key: key, Err: err}
		}
	}
	return nil
}

func validateStat(st *model.PlayerStat) error {
	if st.MatchID == 0 {
		return fmt.Errorf("missing match id")
	}
	if st.PlayerID == 0 {
		return fmt.Errorf("missing player id")
	}
	counts := map[string]int{
		"minutes_played":   st.MinutesPlayed,
		"goals":            st.Goals,
		"assists":          st.Assists,
		"shots":            st.Shots,
		"shots_on_target":  st.ShotsOnTarget,
		"passes":           st.Passes,
		"passes_completed": st.PassesCompleted,
		"tackles":          st.Tackles,
		"interceptions":    st.Interceptions,
		"fouls_committed":  st.FoulsCommitted,
		"fouls_drawn":      st.FoulsDrawn,
		"yellow_cards":     st.YellowCards,
		"red_cards":        st.RedCards,
	}
	for field, v := range counts {
		if v < 0 {
			return fmt.Errorf("%s must be >= 0, got %d", field, v)
		}
	}
	return nil
}

// DeleteMatch removes a match and, via the cascade, its player stats.
// Administrative only; the pipeline never calls it.
func (s *Store) DeleteMatch(ctx context.Context, matchID int64) error {
	return s.db.WithContext(ctx).Delete(&model.Match{}, "match_id = ?", matchID).Error
}
