package jobs

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRegistry keeps jobs in process memory.
type MemoryRegistry struct {
	mu   sync.RWMutex
	jobs map[string]Job
}

// NewMemoryRegistry constructs an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{jobs: make(map[string]Job)}
}

// Submit implements Registry.
func (r *MemoryRegistry) Submit(_ context.Context, profileID, configJSON string) (Job, error) {
	job := newJob(profileID, configJSON)
	r.mu.Lock()
	r.jobs[job.ID] = job
	r.mu.Unlock()
	return job, nil
}

// Start implements Registry.
func (r *MemoryRegistry) Start(_ context.Context, id string) error {
	return r.transition("start", id, func(job *Job) error {
		if job.Status != StatusPending {
			return transitionError("start", id, job.Status, StatusRunning)
		}
		now := time.Now().UTC()
		job.Status = StatusRunning
		job.StartedAt = &now
		return nil
	})
}

// Complete implements Registry.
func (r *MemoryRegistry) Complete(_ context.Context, id, resultJSON string) error {
	return r.transition("complete", id, func(job *Job) error {
		if job.Status != StatusRunning {
			return transitionError("complete", id, job.Status, StatusCompleted)
		}
		now := time.Now().UTC()
		job.Status = StatusCompleted
		job.CompletedAt = &now
		job.Result = resultJSON
		return nil
	})
}

// Fail implements Registry.
func (r *MemoryRegistry) Fail(_ context.Context, id, message string) error {
	return r.transition("fail", id, func(job *Job) error {
		if job.Status.Terminal() {
			return transitionError("fail", id, job.Status, StatusFailed)
		}
		now := time.Now().UTC()
		job.Status = StatusFailed
		job.CompletedAt = &now
		job.Error = message
		return nil
	})
}

// Get implements Registry.
func (r *MemoryRegistry) Get(_ context.Context, id string) (Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return Job{}, notFound("get", id)
	}
	return job, nil
}

// List implements Registry.
func (r *MemoryRegistry) List(_ context.Context) ([]Job, error) {
	r.mu.RLock()
	out := make([]Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		out = append(out, job)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRegistry) transition(op, id string, apply func(*Job) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return notFound(op, id)
	}
	if err := apply(&job); err != nil {
		return err
	}
	r.jobs[id] = job
	return nil
}
