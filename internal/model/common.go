package model

import "time"

// RawSnapshot is one verbatim upstream response, captured at a point in
// time and already persisted to the snapshot directory. Snapshots are
// write-once; Path names the file on disk for replays.
type RawSnapshot struct {
	Name       string
	Body       []byte
	CapturedAt time.Time
	Path       string
}

// MatchFilter names the target collection for a retrieval call.
type MatchFilter struct {
	CompetitionCode string
	DateFrom        time.Time
	DateTo          time.Time
	Status          MatchStatus
	Matchday        int
	Season          int
}

// Batch is one normalized unit of work: the ordered output of the
// normalizer and the atomic unit of persistence. Matches are ordered by
// ascending external id; stats grouped by match then ascending player id;
// teams deduped and ordered by ascending id.
type Batch struct {
	Matches []Match
	Stats   []PlayerStat
	Teams   []Team
}

// Empty reports whether the batch carries no records at all.
func (b *Batch) Empty() bool {
	return b == nil || (len(b.Matches) == 0 && len(b.Stats) == 0 && len(b.Teams) == 0)
}
