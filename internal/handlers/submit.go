package handlers

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/logger"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/queue"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/session"
)

// Queue accepts jobs and exposes their state
type Queue interface {
	EnqueueJob(job *queue.Job) error
	Registry() *queue.Registry
}

// JobOptions are the per-recording choices shared by every ingestion route
type JobOptions struct {
	Title    string `json:"title"`
	Speakers int    `json:"speakers"`
	Diarize  *bool  `json:"diarize"`
}

// Submitter holds what every ingestion handler needs to turn a file into a job
type Submitter struct {
	sessions        *session.Manager
	queue           Queue
	tempDir         string
	defaultSpeakers int
	logger          logger.Logger
}

// NewSubmitter creates the shared ingestion helper
func NewSubmitter(sessions *session.Manager, q Queue, tempDir string, defaultSpeakers int, log logger.Logger) *Submitter {
	if defaultSpeakers < 1 {
		defaultSpeakers = 2
	}
	return &Submitter{
		sessions:        sessions,
		queue:           q,
		tempDir:         tempDir,
		defaultSpeakers: defaultSpeakers,
		logger:          log,
	}
}

// session resolves the :id route parameter
func (s *Submitter) session(c *fiber.Ctx) (*session.Session, error) {
	sess, err := s.sessions.Get(c.Params("id"))
	if err != nil {
		return nil, err
	}
	sess.Touch()
	return sess, nil
}

// check validates opts against the session and fills in defaults
func (s *Submitter) check(sess *session.Session, opts *JobOptions) (code, msg string) {
	opts.Title = strings.TrimSpace(opts.Title)
	if opts.Speakers == 0 {
		opts.Speakers = s.defaultSpeakers
	}
	if opts.Speakers < 1 {
		return "ERR_INVALID_SPEAKERS", "speakers must be at least 1"
	}
	if opts.Title != "" {
		if _, err := sess.Get(opts.Title); err == nil {
			return "ERR_DUPLICATE_TITLE", fmt.Sprintf("a chat titled %q already exists", opts.Title)
		}
	}
	return "", ""
}

// newJob builds the job for a file that is (or will be) at path
func (s *Submitter) newJob(id string, sess *session.Session, opts JobOptions, source, path string) *queue.Job {
	job := queue.NewJob(id, sess.ID, opts.Title, source, path)
	job.Speakers = opts.Speakers
	if opts.Diarize != nil {
		job.Diarize = *opts.Diarize
	}
	return job
}

// enqueue submits job and writes the 202 response
func (s *Submitter) enqueue(c *fiber.Ctx, job *queue.Job, message string) error {
	if err := s.queue.EnqueueJob(job); err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"job_id":     job.ID,
		"session_id": job.SessionID,
		"status":     "queued",
		"message":    message,
	})
}

// formOptions reads JobOptions from multipart form fields
func formOptions(c *fiber.Ctx) (JobOptions, error) {
	opts := JobOptions{Title: c.FormValue("title")}
	if v := c.FormValue("speakers"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("speakers: %w", err)
		}
		opts.Speakers = n
	}
	if v := c.FormValue("diarize"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("diarize: %w", err)
		}
		opts.Diarize = &b
	}
	return opts, nil
}

// titleParam decodes the :title route parameter
func titleParam(c *fiber.Ctx) string {
	raw := c.Params("title")
	if t, err := url.PathUnescape(raw); err == nil {
		return t
	}
	return raw
}
