package service

import (
	"context"
	"encoding/json"
	"time"

	"sportsync/internal/config"
	"sportsync/internal/interfaces"
	"sportsync/internal/model"

	"github.com/sirupsen/logrus"
)

// Pipeline runs one fetch -> normalize -> persist cycle over the
// configured competitions. All collaborators come in as interfaces; there
// is no process-wide state.
type Pipeline struct {
	source       interfaces.MatchSource
	normalizer   interfaces.Normalizer
	store        interfaces.BatchStore
	competitions []string
	lookbackDays int
	scorersLimit int
	logger       *logrus.Logger
}

// CycleResult summarizes a successful cycle for the outcome log.
type CycleResult struct {
	Matches     int
	PlayerStats int
	Teams       int
	Duration    time.Duration
}

func NewPipeline(source interfaces.MatchSource, normalizer interfaces.Normalizer, store interfaces.BatchStore, fetchCfg *config.FetchConfig, logger *logrus.Logger) *Pipeline {
	return &Pipeline{
		source:       source,
		normalizer:   normalizer,
		store:        store,
		competitions: fetchCfg.Competitions,
		lookbackDays: fetchCfg.LookbackDays,
		scorersLimit: 10,
		logger:       logger,
	}
}

// RunCycle processes every configured competition over the lookback
// window. The first component error fails the whole cycle; the raw
// snapshot of a failed normalization stays on disk for manual
// reprocessing. The top-scorers pass is supplementary and only warns.
func (p *Pipeline) RunCycle(ctx context.Context) (*CycleResult, error) {
	start := time.Now()
	dateTo := time.Now()
	dateFrom := dateTo.AddDate(0, 0, -p.lookbackDays)

	result := &CycleResult{}
	for _, comp := range p.competitions {
		snap, err := p.source.FetchMatches(ctx, model.MatchFilter{
			CompetitionCode: comp,
			DateFrom:        dateFrom,
			DateTo:          dateTo,
		})
		if err != nil {
			return nil, err
		}

		batch, err := p.normalizer.Normalize(ctx, snap)
		if err != nil {
			return nil, err
		}

		if err := p.store.SaveBatch(ctx, batch); err != nil {
			return nil, err
		}

		result.Matches += len(batch.Matches)
		result.PlayerStats += len(batch.Stats)
		result.Teams += len(batch.Teams)

		p.logTopScorers(ctx, comp)
	}

	result.Duration = time.Since(start)
	return result, nil
}

// logTopScorers fetches and logs the competition's scorers table. Nothing
// is persisted; failures never fail the cycle.
func (p *Pipeline) logTopScorers(ctx context.Context, competitionCode string) {
	snap, err := p.source.FetchScorers(ctx, competitionCode, p.scorersLimit)
	if err != nil {
		p.logger.WithField("competition", competitionCode).WithError(err).Warn("scorers fetch failed")
		return
	}
	var resp model.ScorersResponse
	if err := json.Unmarshal(snap.Body, &resp); err != nil {
		p.logger.WithField("competition", competitionCode).WithError(err).Warn("scorers payload unreadable")
		return
	}
	for i, sc := range resp.Scorers {
		if i >= p.scorersLimit {
			break
		}
		assists := 0
		if sc.Assists != nil {
			assists = *sc.Assists
		}
		p.logger.WithFields(logrus.Fields{
			"competition": competitionCode,
			"player":      sc.Player.Name,
			"team":        sc.Team.Name,
			"goals":       sc.Goals,
			"assists":     assists,
		}).Info("top scorer")
	}
}
