package status

import (
	"sync"
	"time"

	"newsdigest/internal/domain"
	"newsdigest/internal/ports"
)

// Store is an in-memory job status store safe for concurrent writers
// (orchestrator, enrichment workers) and readers (pollers).
type Store struct {
	mu   sync.RWMutex
	jobs map[string]domain.JobStatus
}

var _ ports.StatusStore = (*Store)(nil)

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{jobs: map[string]domain.JobStatus{}}
}

// Set overwrites the status record for a job.
func (s *Store) Set(jobID string, status domain.JobStatus) {
	status.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	s.jobs[jobID] = status
	s.mu.Unlock()
}

// Get returns the current status, or an idle sentinel if the job has never
// run.
func (s *Store) Get(jobID string) domain.JobStatus {
	s.mu.RLock()
	status, ok := s.jobs[jobID]
	s.mu.RUnlock()

	if !ok {
		return domain.JobStatus{
			Phase:        domain.PhaseIdle,
			ProgressText: "No refresh has run yet.",
		}
	}
	return status
}
