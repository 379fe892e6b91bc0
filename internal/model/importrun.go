package model

import "time"

// Import run statuses.
const (
	ImportStatusRunning   = "running"
	ImportStatusCompleted = "completed"
	ImportStatusFailed    = "failed"
)

// ImportRun is one recorded execution of the bulk importer.
// Stats holds a JSON snapshot of the run's statistics, updated as
// batches commit so in-flight runs report progress.
type ImportRun struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	Filename   *string    `json:"filename"`
	Status     string     `json:"status"`
	Message    *string    `json:"message"`
	Stats      *string    `json:"stats"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
}
