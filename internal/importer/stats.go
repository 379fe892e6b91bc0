package importer

// Stats accumulates counts for one import run. Counts survive partial
// failure: a run aborted mid-file still reports everything committed
// before the failure.
type Stats struct {
	RowsSeen         int            `json:"rows_seen"`
	RowsAccepted     int            `json:"rows_accepted"`
	SkippedByReason  map[string]int `json:"rows_skipped_by_reason"`
	EntitiesCreated  int            `json:"entities_created"`
	EntitiesUpdated  int            `json:"entities_updated"`
	BatchesCommitted int            `json:"batches_committed"`
	ChunkErrors      []ChunkError   `json:"chunk_errors,omitempty"`
}

// ChunkError records a rolled-back batch and its 1-based row range within
// the accepted rows.
type ChunkError struct {
	FirstRow int    `json:"first_row"`
	LastRow  int    `json:"last_row"`
	Error    string `json:"error"`
}

func newStats() *Stats {
	return &Stats{SkippedByReason: map[string]int{}}
}

func (s *Stats) skip(reason SkipReason) {
	s.SkippedByReason[string(reason)]++
}

// Clone returns an independent snapshot, safe to hand to progress callbacks
// while the run keeps mutating the original.
func (s *Stats) Clone() Stats {
	out := *s
	out.SkippedByReason = make(map[string]int, len(s.SkippedByReason))
	for k, v := range s.SkippedByReason {
		out.SkippedByReason[k] = v
	}
	out.ChunkErrors = append([]ChunkError(nil), s.ChunkErrors...)
	return out
}

// Report holds per-kind statistics for a combined import run.
type Report struct {
	Factsheet *Stats `json:"factsheet,omitempty"`
	Holdings  *Stats `json:"holdings,omitempty"`
	Returns   *Stats `json:"returns,omitempty"`
	Nav       *Stats `json:"nav,omitempty"`
}
