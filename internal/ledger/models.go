package ledger

import "time"

// RunStatus describes the lifecycle state of a generation run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// ImageStatus describes the outcome of one per-image job.
type ImageStatus string

const (
	ImageStatusCompleted ImageStatus = "completed"
	ImageStatusFailed    ImageStatus = "failed"
)

// Run is one recorded invocation of the generator.
type Run struct {
	ID            string
	Source        string
	OutputDir     string
	Preprocessing string
	Status        RunStatus
	StartedAt     time.Time
	FinishedAt    *time.Time
	ImageCount    int
	ErrorMessage  string
}

// ImageRecord is the outcome of a single per-image job within a run.
type ImageRecord struct {
	RunID         string
	ParticipantID string
	SessionID     string
	SourcePath    string
	OutputPath    string
	Gamma         float64
	Status        ImageStatus
	ErrorMessage  string
}
