package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fundsetu/mfdata-backend/internal/apperrors"
	"github.com/fundsetu/mfdata-backend/internal/api/response"
	"github.com/fundsetu/mfdata-backend/internal/importer"
	"github.com/fundsetu/mfdata-backend/internal/service"
	"github.com/fundsetu/mfdata-backend/internal/validation"
)

// ImportHandler handles data import HTTP requests
type ImportHandler struct {
	importService  *service.ImportService
	maxUploadBytes int64
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(importService *service.ImportService, maxUploadBytes int64) *ImportHandler {
	return &ImportHandler{
		importService:  importService,
		maxUploadBytes: maxUploadBytes,
	}
}

// UploadResponse is returned after a successful import.
type UploadResponse struct {
	Message  string          `json:"message"`
	Filename string          `json:"filename"`
	RunID    string          `json:"run_id"`
	Stats    *importer.Stats `json:"stats"`
}

// Upload handles multipart file uploads and runs the importer.
// Form fields: file (required), file_type (factsheet|holdings|returns|nav,
// required), clear_existing (bool), batch_size (int >= 1).
//
// Endpoint: POST /api/upload
// Response: 200 OK with UploadResponse; 409 when another run is active;
// 500 with partial statistics when the run aborts mid-file.
func (h *ImportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		response.RespondError(w, http.StatusBadRequest, "failed to parse upload", err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "no file provided", nil)
		return
	}
	defer file.Close()

	if !validation.AllowedUploadFile(header.Filename) {
		response.RespondError(w, http.StatusBadRequest,
			"invalid file type, only .xlsx, .xls and .csv files are allowed", header.Filename)
		return
	}

	fileType := r.FormValue("file_type")
	if fileType == "" {
		response.RespondError(w, http.StatusBadRequest, "file type not specified", nil)
		return
	}
	kind, err := importer.ParseKind(fileType)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "unsupported file type", fileType)
		return
	}

	clearExisting := strings.EqualFold(r.FormValue("clear_existing"), "true")

	batchSize := 0
	if v := r.FormValue("batch_size"); v != "" {
		batchSize, err = strconv.Atoi(v)
		if err != nil || batchSize < 1 {
			response.RespondError(w, http.StatusBadRequest, "batch_size must be a positive integer", v)
			return
		}
	}

	result, runErr := h.importService.Run(service.ImportRequest{
		Kind:          kind,
		Filename:      header.Filename,
		File:          file,
		ClearExisting: clearExisting,
		BatchSize:     batchSize,
	})

	switch {
	case runErr == nil:
		respondJSON(w, http.StatusOK, UploadResponse{
			Message:  fileType + " data imported successfully",
			Filename: header.Filename,
			RunID:    result.RunID,
			Stats:    result.Stats,
		})
	case errors.Is(runErr, apperrors.ErrImportInProgress):
		response.RespondError(w, http.StatusConflict, "an import is already in progress", nil)
	case errors.Is(runErr, apperrors.ErrEmptyFile),
		errors.Is(runErr, apperrors.ErrUnsupportedFileType),
		errors.Is(runErr, apperrors.ErrInvalidBatchSize):
		response.RespondError(w, http.StatusBadRequest, "import rejected", runErr.Error())
	default:
		// Run-level failure: partial statistics are still reported.
		body := map[string]any{"error": runErr.Error()}
		if result != nil {
			body["run_id"] = result.RunID
			body["stats"] = result.Stats
		}
		respondJSON(w, http.StatusInternalServerError, body)
	}
}

// GetRuns handles GET requests for recent import runs.
//
// Endpoint: GET /api/imports
func (h *ImportHandler) GetRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			response.RespondError(w, http.StatusBadRequest, "invalid limit", v)
			return
		}
		limit = parsed
	}

	runs, err := h.importService.GetRuns(limit)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve import runs", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, runs)
}

// GetRun handles GET requests for a single import run.
//
// Endpoint: GET /api/imports/{id}
func (h *ImportHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := validation.ValidateUUID(id); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid import run ID", id)
		return
	}

	run, err := h.importService.GetRun(id)
	if err != nil {
		if errors.Is(err, apperrors.ErrImportRunNotFound) {
			response.RespondError(w, http.StatusNotFound, "import run not found", id)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve import run", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, run)
}
