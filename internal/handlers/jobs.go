package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/queue"
)

// JobHandler serves job status polling
type JobHandler struct {
	jobs *queue.Registry
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobs *queue.Registry) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// Get returns the latest state of one job
func (h *JobHandler) Get(c *fiber.Ctx) error {
	job, ok := h.jobs.Get(c.Params("id"))
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, "ERR_JOB_NOT_FOUND", "Job not found")
	}
	return c.JSON(job)
}
