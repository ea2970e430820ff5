package domain

import "time"

// JobPhase enumerates refresh-cycle milestones.
type JobPhase string

const (
	PhaseIdle        JobPhase = "idle"
	PhaseFetching    JobPhase = "fetching"
	PhaseProcessing  JobPhase = "processing"
	PhaseSummarizing JobPhase = "summarizing"
	PhaseCompleted   JobPhase = "completed"
	PhaseFailed      JobPhase = "failed"
)

// JobStatus is the process-visible record of the current cycle, overwritten
// wholesale on every transition.
type JobStatus struct {
	Phase          JobPhase
	ProgressText   string
	TotalItems     int
	ProcessedItems int
	UpdatedAt      time.Time
}
