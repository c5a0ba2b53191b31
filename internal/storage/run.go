package storage

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a sync run.
type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// RunError records a fixture that could not be written to the calendar.
type RunError struct {
	Fixture string `json:"fixture"`
	Error   string `json:"error"`
}

// Run is the summary of one sync run. Only the most recent run is kept.
type Run struct {
	ID         string     `json:"run_id"`
	Status     Status     `json:"status"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	Duration   string     `json:"duration,omitempty"`
	DurationMS int64      `json:"duration_ms"`
	Found      int        `json:"found"`
	Created    int        `json:"created"`
	Updated    int        `json:"updated"`
	Skipped    int        `json:"skipped"`
	Errors     []RunError `json:"errors"`
	Message    string     `json:"message,omitempty"`
}

// NewRun starts a run record with a fresh id.
func NewRun(start time.Time) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Status:    StatusRunning,
		StartTime: start.UTC(),
		Errors:    []RunError{},
	}
}

// Finish stamps the end time and duration. A non-nil err marks the run as failed and
// stores its text as the message.
func (r *Run) Finish(end time.Time, err error) {
	end = end.UTC()
	r.EndTime = &end

	elapsed := end.Sub(r.StartTime)
	if elapsed < 0 {
		elapsed = 0
	}
	r.Duration = elapsed.Round(time.Millisecond).String()
	r.DurationMS = elapsed.Milliseconds()

	if err != nil {
		r.Status = StatusError
		r.Message = err.Error()
		return
	}
	r.Status = StatusSuccess
}

// Elapsed returns the run duration, or zero while the run is still in progress.
func (r *Run) Elapsed() time.Duration {
	return time.Duration(r.DurationMS) * time.Millisecond
}
