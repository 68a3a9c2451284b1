// Package jobs tracks pipeline run submissions through their lifecycle.
// The registry is the API server's source of truth for job status; the
// in-memory implementation serves single-process deployments and tests,
// the SQLite implementation survives restarts.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"reelforge/internal/services"
)

// Status is the job lifecycle state. Transitions are one-way:
// pending -> running -> completed or failed. A pending job may also fail
// directly when its configuration cannot be loaded.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is one submitted pipeline run.
type Job struct {
	ID          string     `json:"id"`
	ProfileID   string     `json:"profile_id"`
	Config      string     `json:"config,omitempty"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	Result      string     `json:"result,omitempty"`
}

// Registry stores jobs and enforces lifecycle transitions.
type Registry interface {
	// Submit records a new pending job and returns it with a fresh id.
	Submit(ctx context.Context, profileID, configJSON string) (Job, error)
	// Start moves a pending job to running.
	Start(ctx context.Context, id string) error
	// Complete moves a running job to completed with a result payload.
	Complete(ctx context.Context, id, resultJSON string) error
	// Fail moves a pending or running job to failed with a message.
	Fail(ctx context.Context, id, message string) error
	// Get returns the job, or an error wrapping services.ErrNotFound.
	Get(ctx context.Context, id string) (Job, error)
	// List returns all jobs, newest first.
	List(ctx context.Context) ([]Job, error)
}

func newJob(profileID, configJSON string) Job {
	return Job{
		ID:        uuid.NewString(),
		ProfileID: profileID,
		Config:    configJSON,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

func notFound(op, id string) error {
	return services.Wrap(services.ErrNotFound, "jobs", op, "job "+id, nil)
}

func transitionError(op, id string, from, to Status) error {
	return services.Wrap(services.ErrValidation, "jobs", op,
		fmt.Sprintf("job %s: illegal transition %s -> %s", id, from, to), nil)
}
