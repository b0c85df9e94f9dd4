package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/specdocx/internal/engine"
	"github.com/dgallion1/specdocx/internal/parser"
	"github.com/dgallion1/specdocx/internal/spec"
)

// JobStatus represents the state of a conversion job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusParsing    JobStatus = "parsing"
	StatusConverting JobStatus = "converting"
	StatusAssembling JobStatus = "assembling"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// statusForPhase maps an engine phase to the job status shown to clients.
func statusForPhase(p engine.Phase) JobStatus {
	switch p {
	case engine.PhaseParsing:
		return StatusParsing
	case engine.PhaseConverting:
		return StatusConverting
	case engine.PhaseAssembling:
		return StatusAssembling
	}
	return StatusQueued
}

// Job tracks the state of a single conversion.
type Job struct {
	mu sync.Mutex

	ID     string    `json:"job_id"`
	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`
	Files  []string  `json:"files"`

	Progress Progress `json:"progress"`

	ResultHash string    `json:"result_hash,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Internal: not serialized.
	inputs      []parser.Input
	template    []byte
	result      []byte
	diagnostics []spec.Diagnostic
	failures    []string
}

// Progress holds the counts of a finished run and any job-level failures.
type Progress struct {
	Files    int      `json:"files"`
	Sections int      `json:"sections"`
	Terms    int      `json:"terms"`
	Errors   int      `json:"errors"`
	Warnings int      `json:"warnings"`
	Failures []string `json:"failures"`
}

// NewJob creates a queued job for inputs. A nil template selects the
// service default.
func NewJob(inputs []parser.Input, template []byte) *Job {
	now := time.Now()
	files := make([]string, len(inputs))
	for i, in := range inputs {
		files[i] = in.Name
	}
	return &Job{
		ID:        uuid.NewString(),
		Status:    StatusQueued,
		Phase:     "queued",
		Files:     files,
		CreatedAt: now,
		UpdatedAt: now,
		inputs:    inputs,
		template:  template,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of stored jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Fail records err and marks the job failed in its current phase.
func (j *Job) Fail(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.failures = append(j.failures, err)
	j.Status = StatusFailed
	j.UpdatedAt = time.Now()
}

// AddError records a job-level failure without changing the status.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.failures = append(j.failures, err)
	j.UpdatedAt = time.Now()
}

// SetResult stores the outcome of a run. doc is nil when nothing was
// written.
func (j *Job) SetResult(res *engine.Result, doc []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Files = len(res.Files)
	j.Progress.Sections = len(res.Sections)
	j.Progress.Terms = len(res.Terms)
	j.Progress.Errors = res.Errors
	j.Progress.Warnings = res.Warnings
	j.diagnostics = res.Diagnostics
	if doc != nil {
		j.result = doc
		j.ResultHash = ContentHashHex(doc)
	}
	// Sources are no longer needed once converted.
	j.inputs = nil
	j.template = nil
	j.UpdatedAt = time.Now()
}

// Inputs returns the Markdown sources of the job.
func (j *Job) Inputs() []parser.Input {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inputs
}

// Template returns the uploaded template, or nil.
func (j *Job) Template() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.template
}

// Result returns the assembled document once the job has completed.
func (j *Job) Result() ([]byte, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status != StatusCompleted {
		return nil, false
	}
	return j.result, true
}

// Diagnostics returns the diagnostics of the run. It is never nil.
func (j *Job) Diagnostics() []spec.Diagnostic {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]spec.Diagnostic, len(j.diagnostics))
	copy(out, j.diagnostics)
	return out
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID         string    `json:"job_id"`
	Status     JobStatus `json:"status"`
	Phase      string    `json:"phase"`
	Files      []string  `json:"files"`
	Progress   Progress  `json:"progress"`
	ResultHash string    `json:"result_hash,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	failures := make([]string, len(j.failures))
	copy(failures, j.failures)
	files := j.Files
	if files == nil {
		files = []string{}
	}
	progress := j.Progress
	progress.Failures = failures
	return JobSnapshot{
		ID:         j.ID,
		Status:     j.Status,
		Phase:      j.Phase,
		Files:      files,
		Progress:   progress,
		ResultHash: j.ResultHash,
		CreatedAt:  j.CreatedAt,
		UpdatedAt:  j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
