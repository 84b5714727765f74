package interfaces

import (
	"context"

	"sportsync/internal/model"
)

// MatchSource retrieves raw snapshots from the upstream API. Implemented
// by fetcher.Client; the pipeline depends on this contract only.
type MatchSource interface {
	FetchMatches(ctx context.Context, filter model.MatchFilter) (*model.RawSnapshot, error)
	FetchScorers(ctx context.Context, competitionCode string, limit int) (*model.RawSnapshot, error)
}

// Normalizer turns a raw snapshot into an ordered, typed batch.
type Normalizer interface {
	Normalize(ctx context.Context, snap *model.RawSnapshot) (*model.Batch, error)
}

// BatchStore applies one normalized batch atomically.
type BatchStore interface {
	SaveBatch(ctx context.Context, batch *model.Batch) error
}

// EfficiencyReader is the read-only window query the normalizer needs for
// the rolling form score. excludeMatchID keeps a reprocessed match's own
// stored row out of its window so reprocessing is idempotent.
type EfficiencyReader interface {
	RecentEfficiencies(ctx context.Context, playerID, excludeMatchID int64, limit int) ([]float64, error)
}
