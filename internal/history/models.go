package history

import "time"

// Status enumerates job lifecycle states.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job records a single clean run.
type Job struct {
	ID         string
	InputPath  string
	OutputPath string
	Status     Status

	TargetI float64
	Bitrate string

	// Measured loudness statistics from the first pass, as printed by ffmpeg.
	InputI       string
	InputTP      string
	InputLRA     string
	InputThresh  string
	TargetOffset string

	InputBytes      int64
	OutputBytes     int64
	DurationSeconds float64
	ErrorMessage    string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Stats carries the completion details recorded for a successful job.
type Stats struct {
	InputI       string
	InputTP      string
	InputLRA     string
	InputThresh  string
	TargetOffset string
	InputBytes   int64
	OutputBytes  int64
}
