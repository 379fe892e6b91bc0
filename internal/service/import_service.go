package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/fundsetu/mfdata-backend/internal/apperrors"
	"github.com/fundsetu/mfdata-backend/internal/importer"
	"github.com/fundsetu/mfdata-backend/internal/model"
	"github.com/fundsetu/mfdata-backend/internal/repository"
	"github.com/fundsetu/mfdata-backend/internal/sourcefile"
)

// ImportService wraps the importer with run bookkeeping and a single-run
// gate. The importer itself does not coordinate concurrent runs; the
// semaphore here is that coordination.
type ImportService struct {
	importer         *importer.Importer
	runRepo          *repository.ImportRunRepository
	sem              *semaphore.Weighted
	defaultBatchSize int
}

// NewImportService creates a new ImportService.
func NewImportService(imp *importer.Importer, runRepo *repository.ImportRunRepository, defaultBatchSize int) *ImportService {
	return &ImportService{
		importer:         imp,
		runRepo:          runRepo,
		sem:              semaphore.NewWeighted(1),
		defaultBatchSize: defaultBatchSize,
	}
}

// ImportRequest describes one requested import run.
type ImportRequest struct {
	Kind          importer.Kind
	Filename      string
	File          io.Reader
	ClearExisting bool
	BatchSize     int // 0 means use the configured default
}

// ImportResult pairs a run's statistics with its log entry ID.
type ImportResult struct {
	RunID string          `json:"run_id"`
	Stats *importer.Stats `json:"stats"`
}

// Run executes one import run. Returns apperrors.ErrImportInProgress without
// touching the store when another run is active. On a run-fatal import error
// the result still carries the statistics accumulated before the failure.
func (s *ImportService) Run(req ImportRequest) (*ImportResult, error) {
	if !s.sem.TryAcquire(1) {
		return nil, apperrors.ErrImportInProgress
	}
	defer s.sem.Release(1)

	batchSize := req.BatchSize
	if batchSize == 0 {
		batchSize = s.defaultBatchSize
	}
	if batchSize < 1 {
		return nil, apperrors.ErrInvalidBatchSize
	}

	table, err := sourcefile.Read(req.File, req.Filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnsupportedFileType, err)
	}
	if len(table.Rows) == 0 {
		return nil, apperrors.ErrEmptyFile
	}

	run := &model.ImportRun{
		ID:        uuid.New().String(),
		Kind:      string(req.Kind),
		Filename:  &req.Filename,
		Status:    model.ImportStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := s.runRepo.Create(run); err != nil {
		return nil, err
	}

	log.Printf("import: run %s started: kind=%s file=%s clear=%t batch_size=%d",
		run.ID, req.Kind, req.Filename, req.ClearExisting, batchSize)

	stats, runErr := s.importer.ImportKind(req.Kind, table, importer.Options{
		ClearExisting: req.ClearExisting,
		BatchSize:     batchSize,
		Progress: func(snapshot importer.Stats) {
			s.recordProgress(run.ID, snapshot)
		},
	})

	s.finishRun(run.ID, stats, runErr)

	return &ImportResult{RunID: run.ID, Stats: stats}, runErr
}

// ImportNavDirectory imports every XLSX/CSV file found in dir as NAV data,
// in name order. Used by the scheduled import. Per-file failures are logged
// and do not stop the scan.
func (s *ImportService) ImportNavDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read nav import directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".csv", ".xlsx", ".xls":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		file, err := os.Open(path)
		if err != nil {
			log.Printf("import: failed to open %s: %v", path, err)
			continue
		}

		result, err := s.Run(ImportRequest{
			Kind:     importer.KindNav,
			Filename: name,
			File:     file,
		})
		file.Close()

		if err != nil {
			log.Printf("import: scheduled nav import of %s failed: %v", name, err)
			continue
		}
		log.Printf("import: scheduled nav import of %s done: accepted=%d created=%d",
			name, result.Stats.RowsAccepted, result.Stats.EntitiesCreated)
	}

	return nil
}

// GetRuns retrieves recent import runs, newest first.
func (s *ImportService) GetRuns(limit int) ([]model.ImportRun, error) {
	return s.runRepo.GetRuns(limit)
}

// GetRun retrieves one import run by ID.
func (s *ImportService) GetRun(id string) (*model.ImportRun, error) {
	return s.runRepo.GetRun(id)
}

// recordProgress stores a mid-run stats snapshot on the run's log entry.
// Runs between chunk transactions, so the store is free.
func (s *ImportService) recordProgress(runID string, snapshot importer.Stats) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	if err := s.runRepo.UpdateStats(runID, string(data)); err != nil {
		log.Printf("import: failed to record progress for run %s: %v", runID, err)
	}
}

func (s *ImportService) finishRun(runID string, stats *importer.Stats, runErr error) {
	status := model.ImportStatusCompleted
	var message *string
	if runErr != nil {
		status = model.ImportStatusFailed
		msg := runErr.Error()
		message = &msg
	}

	encoded := "{}"
	if stats != nil {
		if data, err := json.Marshal(stats); err == nil {
			encoded = string(data)
		}
	}

	if err := s.runRepo.Finish(runID, status, message, encoded, time.Now().UTC()); err != nil {
		log.Printf("import: failed to finish run %s: %v", runID, err)
	}
}
