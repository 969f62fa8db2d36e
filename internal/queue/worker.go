package queue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/logger"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/pipeline"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/session"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/storage"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/types"
)

var (
	// ErrQueueFull is returned when the job buffer has no room left
	ErrQueueFull = errors.New("job queue is full")
	// ErrQueueClosed is returned once the pool has been stopped
	ErrQueueClosed = errors.New("job queue is closed")
)

// Runner turns one recording into a summarized meeting
type Runner interface {
	Run(ctx context.Context, in pipeline.Input) (*types.Meeting, error)
}

// Archive keeps finished meetings on local disk
type Archive interface {
	SaveMeeting(m *types.Meeting) (string, error)
}

// Uploader exports finished meetings to remote storage
type Uploader interface {
	Upload(ctx context.Context, m *types.Meeting) (string, error)
}

// Index records meeting metadata for listing
type Index interface {
	SaveMeeting(ctx context.Context, rec storage.MeetingRecord) error
}

// Deps are the collaborators a worker calls for each job. Uploader and Index may be nil.
type Deps struct {
	Runner   Runner
	Sessions *session.Manager
	Archive  Archive
	Uploader Uploader
	Index    Index
}

// WorkerPool manages a pool of workers processing meeting jobs
type WorkerPool struct {
	jobQueue    chan *Job
	workerCount int
	deps        Deps
	registry    *Registry
	logger      logger.Logger

	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(workerCount, queueSize int, deps Deps, registry *Registry, log logger.Logger) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	if queueSize < 1 {
		queueSize = 100
	}
	return &WorkerPool{
		jobQueue:    make(chan *Job, queueSize),
		workerCount: workerCount,
		deps:        deps,
		registry:    registry,
		logger:      log,
	}
}

// Registry exposes job state for polling
func (wp *WorkerPool) Registry() *Registry {
	return wp.registry
}

// Start initializes all workers. Jobs run under ctx.
func (wp *WorkerPool) Start(ctx context.Context) {
	wp.logger.Info(ctx, "Starting worker pool with %d workers", wp.workerCount)
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

// Stop closes the queue and waits for in-flight jobs to finish
func (wp *WorkerPool) Stop() {
	wp.mu.Lock()
	if !wp.closed {
		wp.closed = true
		close(wp.jobQueue)
	}
	wp.mu.Unlock()
	wp.wg.Wait()
}

// EnqueueJob adds a job to the queue without blocking
func (wp *WorkerPool) EnqueueJob(job *Job) error {
	job.Status = types.StatusQueued
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return ErrQueueClosed
	}

	wp.registry.put(job)

	select {
	case wp.jobQueue <- job:
	default:
		wp.registry.Fail(job.ID, ErrQueueFull)
		return ErrQueueFull
	}

	wp.logger.Info(context.Background(), "Job %s enqueued (source: %s, session: %s, title: %q)",
		job.ID, job.SourceType, job.SessionID, job.Title)
	return nil
}

// worker processes jobs from the queue
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	wp.logger.Debug(ctx, "Worker %d started", id)

	for job := range wp.jobQueue {
		// Panic recovery
		func() {
			defer func() {
				if r := recover(); r != nil {
					wp.logger.Error(ctx, "Worker %d: PANIC processing job %s: %v\n%s",
						id, job.ID, r, string(debug.Stack()))
					wp.fail(job, fmt.Errorf("worker panic: %v", r))
				}
			}()

			wp.processJob(ctx, id, job)
		}()
	}
}

// processJob runs the pipeline and files the result into the job's session
func (wp *WorkerPool) processJob(ctx context.Context, workerID int, job *Job) {
	log := wp.logger.WithField("job_id", job.ID)
	log.Info(ctx, "Worker %d: Processing job", workerID)
	wp.registry.update(job.ID, func(j *Job) { j.Status = types.StatusProcessing })
	if !job.KeepSource {
		defer wp.cleanupTempFile(ctx, job.FilePath)
	}

	sess, err := wp.deps.Sessions.Get(job.SessionID)
	if err != nil {
		wp.fail(job, err)
		return
	}

	// Step 1: Pipeline
	meeting, err := wp.deps.Runner.Run(ctx, pipeline.Input{
		Path:     job.FilePath,
		Title:    job.Title,
		Speakers: job.Speakers,
		Diarize:  job.Diarize,
	})
	if err != nil {
		log.Error(ctx, "Worker %d: Pipeline failed: %v", workerID, err)
		wp.fail(job, err)
		return
	}
	meeting.JobID = job.ID

	// Step 2: Save into the session
	rec, err := sess.Save(job.Title, session.Record{
		JobID:      job.ID,
		Transcript: meeting.Transcript,
		Summary:    meeting.Summary,
		Lines:      meeting.Attributed,
	})
	if err != nil {
		log.Error(ctx, "Worker %d: Session save failed: %v", workerID, err)
		wp.fail(job, err)
		return
	}
	meeting.Title = rec.Title

	// Step 3: Save locally
	if wp.deps.Archive != nil {
		localPath, err := wp.deps.Archive.SaveMeeting(meeting)
		if err != nil {
			log.Warn(ctx, "Worker %d: Local save failed: %v", workerID, err)
		} else {
			meeting.LocalPath = localPath
		}
	}

	// Step 4: Upload to Google Drive, once
	if wp.deps.Uploader != nil {
		driveURL, err := wp.deps.Uploader.Upload(ctx, meeting)
		if err != nil {
			log.Warn(ctx, "Worker %d: Google Drive upload failed, keeping local copy only: %v", workerID, err)
		} else {
			meeting.GDriveURL = driveURL
		}
	}

	// Step 5: Save metadata to database
	if wp.deps.Index != nil {
		err := wp.deps.Index.SaveMeeting(ctx, storage.MeetingRecord{
			JobID:        job.ID,
			SessionID:    job.SessionID,
			Title:        meeting.Title,
			SourceType:   job.SourceType,
			GDriveURL:    meeting.GDriveURL,
			LocalPath:    meeting.LocalPath,
			CreatedAt:    meeting.ProcessedAt,
			Duration:     meeting.Duration,
			WordCount:    meeting.WordCount,
			SpeakerCount: meeting.SpeakerCount,
			ChunkCount:   meeting.ChunkCount,
			FailedChunks: meeting.FailedChunks,
		})
		if err != nil {
			log.Warn(ctx, "Worker %d: Database save failed: %v", workerID, err)
		}
	}

	wp.registry.update(job.ID, func(j *Job) {
		j.Status = types.StatusCompleted
		j.ChatTitle = meeting.Title
		j.LocalPath = meeting.LocalPath
		j.GDriveURL = meeting.GDriveURL
		j.FinishedAt = time.Now()
	})
	log.Info(ctx, "Worker %d: Job completed as chat %q (local: %s, gdrive: %s)",
		workerID, meeting.Title, meeting.LocalPath, meeting.GDriveURL)
}

func (wp *WorkerPool) fail(job *Job, err error) {
	wp.registry.Fail(job.ID, err)
}

// cleanupTempFile removes a temporary file
func (wp *WorkerPool) cleanupTempFile(ctx context.Context, filePath string) {
	if filePath == "" {
		return
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		wp.logger.Warn(ctx, "Failed to cleanup temp file %s: %v", filePath, err)
	}
}
