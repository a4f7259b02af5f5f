package api

import (
	"sync"
	"time"

	"github.com/starford/ccd/internal/engine"
	"github.com/starford/ccd/internal/models"
)

// Service holds the most recent pipeline result for read-only serving.
// The monitor goroutine replaces the result wholesale; handlers only read.
type Service struct {
	mu        sync.RWMutex
	result    *engine.Result
	updatedAt time.Time
}

// NewService creates an empty Service.
func NewService() *Service {
	return &Service{}
}

// Update replaces the current result.
func (s *Service) Update(res *engine.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = res
	s.updatedAt = time.Now()
}

// Report returns the repository report, module reports, and the time of the
// last validation. The last return is false before the first run completes.
func (s *Service) Report() (models.HealthReport, []models.HealthReport, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return models.HealthReport{}, nil, time.Time{}, false
	}
	return s.result.Repo, s.result.Modules, s.updatedAt, true
}

// Files returns the per-file results of the latest run.
func (s *Service) Files() []models.FileResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return nil
	}
	return s.result.Files
}

// File returns the result for one source path.
func (s *Service) File(path string) (models.FileResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return models.FileResult{}, false
	}
	for _, r := range s.result.Files {
		if r.File.Path == path {
			return r, true
		}
	}
	return models.FileResult{}, false
}

// Artifacts returns the registry contents of the latest run.
func (s *Service) Artifacts() []models.Artifact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return nil
	}
	return s.result.Artifacts
}
