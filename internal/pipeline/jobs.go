package pipeline

import (
	"sync"
	"time"
)

// JobStatus represents the state of a playbook generation job.
type JobStatus string

const (
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusError      JobStatus = "error"
)

// Options are the analysis parameters supplied at upload time.
type Options struct {
	AgreementType string `json:"agreement_type"`
	UserRole      string `json:"user_role"`
	RiskTolerance string `json:"risk_tolerance"`
}

// Job tracks the state of a single playbook generation.
type Job struct {
	mu sync.Mutex

	ID         string  `json:"job_id"`
	Filename   string  `json:"filename"`
	UploadPath string  `json:"-"`
	Opts       Options `json:"options"`

	Status  JobStatus `json:"status"`
	Percent int       `json:"percent"`
	Message string    `json:"message"`

	ChunksTotal  int `json:"chunks_total"`
	ChunksFailed int `json:"chunks_failed"`

	OutputPath string `json:"-"`
	Error      string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewJob creates a job in the processing state.
func NewJob(id, filename, uploadPath string, opts Options) *Job {
	now := time.Now()
	return &Job{
		ID:         id,
		Filename:   filename,
		UploadPath: uploadPath,
		Opts:       opts,
		Status:     StatusProcessing,
		Message:    "uploaded, awaiting processing",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// SetProgress updates percent and message. Percent never moves backward
// and 100 is reserved for Complete.
func (j *Job) SetProgress(percent int, message string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status != StatusProcessing {
		return
	}
	if percent > 99 {
		percent = 99
	}
	if percent > j.Percent {
		j.Percent = percent
	}
	j.Message = message
	j.UpdatedAt = time.Now()
}

// SetChunksTotal records the planned chunk count.
func (j *Job) SetChunksTotal(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ChunksTotal = n
	j.UpdatedAt = time.Now()
}

// IncrChunksFailed counts one skipped chunk.
func (j *Job) IncrChunksFailed() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ChunksFailed++
	j.UpdatedAt = time.Now()
}

// Complete marks the job done and records the rendered workbook path.
func (j *Job) Complete(outputPath, message string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusCompleted
	j.Percent = 100
	j.Message = message
	j.OutputPath = outputPath
	j.UpdatedAt = time.Now()
}

// Fail marks the job as errored. Percent stays where it was.
func (j *Job) Fail(errMsg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusError
	j.Message = "processing failed"
	j.Error = errMsg
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID           string    `json:"job_id"`
	Filename     string    `json:"filename"`
	Options      Options   `json:"options"`
	Status       JobStatus `json:"status"`
	Percent      int       `json:"percent"`
	Message      string    `json:"message"`
	ChunksTotal  int       `json:"chunks_total"`
	ChunksFailed int       `json:"chunks_failed"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobSnapshot{
		ID:           j.ID,
		Filename:     j.Filename,
		Options:      j.Opts,
		Status:       j.Status,
		Percent:      j.Percent,
		Message:      j.Message,
		ChunksTotal:  j.ChunksTotal,
		ChunksFailed: j.ChunksFailed,
		Error:        j.Error,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
	}
}

// CurrentStatus returns status, output path and upload path without
// exposing the full snapshot.
func (j *Job) CurrentStatus() (JobStatus, string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.Status, j.OutputPath
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

// Cleanup removes expired jobs and returns their output paths so the
// caller can delete the rendered files.
func (s *JobStore) Cleanup() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	var stale []string
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := now.Sub(job.UpdatedAt) > s.ttl
		out := job.OutputPath
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
			if out != "" {
				stale = append(stale, out)
			}
		}
	}
	return stale
}
