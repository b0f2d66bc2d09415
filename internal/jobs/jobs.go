// Package jobs implements the bulk-operation Job Registry collaborator of
// spec.md §6, grounded on original_source's JobManager: an in-memory,
// mutex-guarded registry tracking long-running batch-verify operations
// submitted through the HTTP front-end.
package jobs

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is a job's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// maxErrors bounds the retained error log per job, per spec.md §6.
const maxErrors = 10

// Job is a shallow, safe-to-share snapshot of a registry entry; callers
// never get a pointer into the registry's internal state.
type Job struct {
	ID             string
	Type           string
	Status         Status
	TotalRows      int
	ProcessedRows  int
	SuccessRows    int
	ErrorRows      int
	CreatedAt      time.Time
	StartedAt      *time.Time
	FinishedAt     *time.Time
	Message        string
	OutputPath     string
	OutputFilename string
	Errors         []string
	Metadata       map[string]any
}

// Registry is the thread-safe job store. The zero value is not usable;
// construct with New.
type Registry struct {
	mu   sync.Mutex
	jobs map[string]*Job
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{jobs: make(map[string]*Job)}
}

// Create registers a new job and returns its ID.
func (r *Registry) Create(jobType string, totalRows int, metadata map[string]any) string {
	id := uuid.NewString()
	job := &Job{
		ID:        id,
		Type:      jobType,
		Status:    StatusPending,
		TotalRows: totalRows,
		CreatedAt: time.Now(),
		Metadata:  metadata,
	}

	r.mu.Lock()
	r.jobs[id] = job
	r.mu.Unlock()
	return id
}

// Start marks a job running. No-op if the job is unknown.
func (r *Registry) Start(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return
	}
	now := time.Now()
	job.Status = StatusRunning
	job.StartedAt = &now
}

// Increment records one processed row's outcome, retaining at most the
// last ten error strings.
func (r *Registry) Increment(id string, success bool, errorDetail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return
	}
	job.ProcessedRows++
	if success {
		job.SuccessRows++
		return
	}
	job.ErrorRows++
	if errorDetail == "" {
		return
	}
	job.Errors = append(job.Errors, errorDetail)
	if len(job.Errors) > maxErrors {
		job.Errors = job.Errors[len(job.Errors)-maxErrors:]
	}
}

// Complete marks a job finished successfully.
func (r *Registry) Complete(id, outputPath, outputFilename string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return
	}
	now := time.Now()
	job.Status = StatusCompleted
	job.FinishedAt = &now
	job.OutputPath = outputPath
	job.OutputFilename = outputFilename
}

// Fail marks a job failed, recording the detail both as the job message
// and in its bounded error log.
func (r *Registry) Fail(id, errorDetail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return
	}
	now := time.Now()
	job.Status = StatusFailed
	job.FinishedAt = &now
	job.Message = errorDetail
	job.Errors = append(job.Errors, errorDetail)
	if len(job.Errors) > maxErrors {
		job.Errors = job.Errors[len(job.Errors)-maxErrors:]
	}
}

// Get returns a shallow copy of the job, or false if unknown.
func (r *Registry) Get(id string) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	snapshot := *job
	snapshot.Errors = append([]string(nil), job.Errors...)
	return snapshot, true
}
