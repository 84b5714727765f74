package repository

import (
	"context"
	"time"

	"sportsync/internal/model"
)

// RecentEfficiencies returns up to limit stored efficiency values for a
// player, most recent first, skipping excludeMatchID (the match currently
// being normalized). Implements interfaces.EfficiencyReader.
func (s *Store) RecentEfficiencies(ctx context.Context, playerID, excludeMatchID int64, limit int) ([]float64, error) {
	var effs []float64
	err := s.db.WithContext(ctx).
		Model(&model.PlayerStat{}).
		Where("player_id = ? AND match_id <> ?", playerID, excludeMatchID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Pluck("efficiency", &effs).Error
	if err != nil {
		return nil, err
	}
	return effs, nil
}

// RecentMatches reads the recent_matches view (top 100 by date
// descending), optionally trimmed further.
func (s *Store) RecentMatches(ctx context.Context, limit int) ([]model.Match, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var matches []model.Match
	err := s.db.WithContext(ctx).
		Raw(`SELECT * FROM recent_matches LIMIT ?`, limit).
		Scan(&matches).Error
	return matches, err
}

// PlayerSummaries reads the player aggregate view, best scorers first.
func (s *Store) PlayerSummaries(ctx context.Context) ([]model.PlayerSummary, error) {
	var out []model.PlayerSummary
	err := s.db.WithContext(ctx).
		Raw(`SELECT * FROM player_performance_summary ORDER BY total_goals DESC, player_id ASC`).
		Scan(&out).Error
	return out, err
}

// PlayerSummary reads one player's aggregate row; nil when the player has
// no stored stats.
func (s *Store) PlayerSummary(ctx context.Context, playerID int64) (*model.PlayerSummary, error) {
	var out []model.PlayerSummary
	err := s.db.WithContext(ctx).
		Raw(`SELECT * FROM player_performance_summary WHERE player_id = ?`, playerID).
		Scan(&out).Error
	if err != nil || len(out) == 0 {
		return nil, err
	}
	return &out[0], nil
}

// TeamSummaries reads the team aggregate view.
func (s *Store) TeamSummaries(ctx context.Context) ([]model.TeamSummary, error) {
	var out []model.TeamSummary
	err := s.db.WithContext(ctx).
		Raw(`SELECT * FROM team_performance_summary ORDER BY total_goals DESC, team_id ASC`).
		Scan(&out).Error
	return out, err
}

// TeamSummary reads one team's aggregate row; nil when absent.
func (s *Store) TeamSummary(ctx context.Context, teamID int64) (*model.TeamSummary, error) {
	var out []model.TeamSummary
	err := s.db.WithContext(ctx).
		Raw(`SELECT * FROM team_performance_summary WHERE team_id = ?`, teamID).
		Scan(&out).Error
	if err != nil || len(out) == 0 {
		return nil, err
	}
	return &out[0], nil
}

// MatchesByTeam lists matches a team played on either side, newest first.
func (s *Store) MatchesByTeam(ctx context.Context, teamID int64) ([]model.Match, error) {
	var matches []model.Match
	err := s.db.WithContext(ctx).
		Where("home_team_id = ? OR away_team_id = ?", teamID, teamID).
		Order("utc_date DESC").
		Find(&matches).Error
	return matches, err
}

// MatchesByDateRange lists matches within [from, to), oldest first.
func (s *Store) MatchesByDateRange(ctx context.Context, from, to time.Time) ([]model.Match, error) {
	var matches []model.Match
	err := s.db.WithContext(ctx).
		Where("utc_date >= ? AND utc_date < ?", from, to).
		Order("utc_date ASC").
		Find(&matches).Error
	return matches, err
}

// StatsByPlayer lists a player's stored match lines, newest first.
func (s *Store) StatsByPlayer(ctx context.Context, playerID int64) ([]model.PlayerStat, error) {
	var stats []model.PlayerStat
	err := s.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("created_at DESC, id DESC").
		Find(&stats).Error
	return stats, err
}

// Counts reports table sizes for the cycle log.
func (s *Store) Counts(ctx context.Context) (matches, stats, teams int64, err error) {
	if err = s.db.WithContext(ctx).Model(&model.Match{}).Count(&matches).Error; err != nil {
		return
	}
	if err = s.db.WithContext(ctx).Model(&model.PlayerStat{}).Count(&stats).Error; err != nil {
		return
	}
	err = s.db.WithContext(ctx).Model(&model.Team{}).Count(&teams).Error
	return
}
