package service

import (
	"database/sql"
	"runtime"

	"github.com/ycliang/portfolio-performance-engine/internal/database"
	"github.com/ycliang/portfolio-performance-engine/internal/model"
	"github.com/ycliang/portfolio-performance-engine/internal/version"
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

// CheckVersion returns version information for the running binary.
func (s *SystemService) CheckVersion() model.VersionInfo {
	return model.VersionInfo{
		Version:   version.Version,
		GoVersion: runtime.Version(),
	}
}
