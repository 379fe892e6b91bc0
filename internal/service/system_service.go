package service

import (
	"database/sql"

	"github.com/fundsetu/mfdata-backend/internal/database"
	"github.com/fundsetu/mfdata-backend/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db *sql.DB
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{
		db: db,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// Version returns the application version string.
func (s *SystemService) Version() string {
	return version.Version
}
