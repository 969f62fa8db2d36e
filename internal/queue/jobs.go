package queue

import (
	"slices"
	"sync"
	"time"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/types"
)

// Job represents one recording waiting to be summarized into a session
type Job struct {
	ID         string    `json:"job_id"`
	SessionID  string    `json:"session_id"`
	Title      string    `json:"title"`
	SourceType string    `json:"source_type"`
	FilePath   string    `json:"-"`
	KeepSource bool      `json:"-"`
	Speakers   int       `json:"speakers"`
	Diarize    bool      `json:"diarize"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	ChatTitle  string    `json:"chat_title,omitempty"`
	LocalPath  string    `json:"local_path,omitempty"`
	GDriveURL  string    `json:"gdrive_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// NewJob creates a new job with default values
func NewJob(id, sessionID, title, sourceType, filePath string) *Job {
	return &Job{
		ID:         id,
		SessionID:  sessionID,
		Title:      title,
		SourceType: sourceType,
		FilePath:   filePath,
		Diarize:    true,
		Status:     types.StatusQueued,
		CreatedAt:  time.Now(),
	}
}

// Registry remembers every job's latest state for status polling
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*Job)}
}

// Get returns a snapshot of the job with id
func (r *Registry) Get(id string) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

// Session lists the jobs submitted to a session, oldest first
func (r *Registry) Session(sessionID string) []Job {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Job{}
	for _, j := range r.jobs {
		if j.SessionID == sessionID {
			out = append(out, *j)
		}
	}
	slices.SortStableFunc(out, func(a, b Job) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out
}

// Forget drops finished jobs that ended before cutoff
func (r *Registry) Forget(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, j := range r.jobs {
		if !j.FinishedAt.IsZero() && j.FinishedAt.Before(cutoff) {
			delete(r.jobs, id)
			n++
		}
	}
	return n
}

// Track registers a job that is still being fetched before it can be enqueued
func (r *Registry) Track(j *Job) {
	j.Status = types.StatusDownloading
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now()
	}
	r.put(j)
}

// Fail marks a job as failed with err
func (r *Registry) Fail(id string, err error) {
	r.update(id, func(j *Job) {
		j.Status = types.StatusFailed
		j.Error = err.Error()
		j.FinishedAt = time.Now()
	})
}

func (r *Registry) put(j *Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *j
	r.jobs[j.ID] = &cp
}

func (r *Registry) update(id string, fn func(*Job)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.jobs[id]; ok {
		fn(j)
	}
}
