// Package jobs provides storage for asynchronous embedding jobs.
//
// The HTTP API accepts embedding requests that can run for minutes; rather
// than holding the connection open, it creates a job, runs the search in the
// background, and lets the client poll. The Store interface abstracts the
// backend:
//   - file: single-instance deployments and tests
//   - redis: production multi-instance deployments
//
// Jobs carry their request and result as raw JSON so the store stays
// decoupled from the engine's types, and expire after a TTL.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for job operations.
var (
	// ErrNotFound names the missing-job condition. The stores in this
	// package do not return it: Store.Get reports a missing job as nil, nil.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a job exists but exceeded its TTL.
	ErrExpired = errors.New("expired")
)

// Status is a job's lifecycle state.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Job is one asynchronous embedding request.
type Job struct {
	ID        string          `json:"id"`
	Status    Status          `json:"status"`
	Request   json.RawMessage `json:"request"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// IsExpired reports whether the job has exceeded its TTL.
func (j *Job) IsExpired() bool {
	return time.Now().After(j.ExpiresAt)
}

// Done reports whether the job has reached a terminal state.
func (j *Job) Done() bool {
	return j.Status == StatusDone || j.Status == StatusFailed
}

// Store is the interface for job storage backends.
type Store interface {
	// Get retrieves a job by ID.
	// Returns nil, nil if the job doesn't exist.
	// Returns nil, ErrExpired if the job exists but has expired.
	Get(ctx context.Context, id string) (*Job, error)

	// Set stores or updates a job.
	Set(ctx context.Context, job *Job) error

	// Delete removes a job.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired jobs (may be a no-op for backends with
	// native expiry, like redis).
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// DefaultTTL is how long a job stays retrievable, counted from its creation.
const DefaultTTL = 24 * time.Hour

// New creates a pending job wrapping the given request payload.
func New(request json.RawMessage, ttl time.Duration) *Job {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		Request:   request,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Transition updates the job's status and touch time.
func (j *Job) Transition(s Status) {
	j.Status = s
	j.UpdatedAt = time.Now()
}
