package repository

import (
	"fmt"

	"gorm.io/gorm"

	"sportsync/internal/model"
)

// migrations run after AutoMigrate: the query-path indexes and the three
// read-only views. Views are pure derivations recomputed on read, never
// materialized.
var migrations = []string{
	`CREATE INDEX IF NOT EXISTS idx_matches_utc_date ON matches(utc_date)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_home_away ON matches(home_team_id, away_team_id)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_competition_id ON matches(competition_id)`,
	`CREATE INDEX IF NOT EXISTS idx_player_stats_match_id ON player_stats(match_id)`,
	`CREATE INDEX IF NOT EXISTS idx_player_stats_player_id ON player_stats(player_id)`,
	`CREATE INDEX IF NOT EXISTS idx_player_stats_team_id ON player_stats(team_id)`,
	`CREATE INDEX IF NOT EXISTS idx_player_stats_created_at ON player_stats(created_at)`,

	`CREATE VIEW IF NOT EXISTS player_performance_summary AS
	SELECT
		player_id,
		player_name,
		team_id,
		team_name,
		COUNT(*) AS matches_played,
		SUM(minutes_played) AS total_minutes,
		SUM(goals) AS total_goals,
		SUM(assists) AS total_assists,
		SUM(shots) AS total_shots,
		SUM(passes) AS total_passes,
		AVG(efficiency) AS avg_efficiency,
		AVG(involvement_rate) AS avg_involvement_rate,
		AVG(form_score) AS avg_form_score,
		MAX(created_at) AS last_updated
	FROM player_stats
	GROUP BY player_id`,

	`CREATE VIEW IF NOT EXISTS team_performance_summary AS
	SELECT
		team_id,
		team_name,
		COUNT(DISTINCT match_id) AS matches_played,
		SUM(goals) AS total_goals,
		SUM(assists) AS total_assists,
		AVG(efficiency) AS avg_efficiency,
		COUNT(DISTINCT player_id) AS players_used
	FROM player_stats
	GROUP BY team_id`,

	`CREATE VIEW IF NOT EXISTS recent_matches AS
	SELECT * FROM matches ORDER BY utc_date DESC LIMIT 100`,
}

// Migrate creates tables (dependency order), indexes and views. Idempotent.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Team{},
		&model.Match{},
		&model.PlayerStat{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, m := range migrations {
		if err := db.Exec(m).Error; err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
