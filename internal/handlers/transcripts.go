package handlers

import (
	"context"
	"errors"
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/storage"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// MeetingIndex is the read side of the metadata database
type MeetingIndex interface {
	GetMeeting(ctx context.Context, jobID string) (storage.MeetingRecord, error)
	ListMeetings(ctx context.Context, limit int) ([]storage.MeetingRecord, error)
}

// TranscriptHandler serves archived meetings from the metadata database
type TranscriptHandler struct {
	db MeetingIndex
}

// NewTranscriptHandler creates a new transcript handler
func NewTranscriptHandler(db MeetingIndex) *TranscriptHandler {
	return &TranscriptHandler{db: db}
}

// List returns the most recent meetings
func (h *TranscriptHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultListLimit)
	if limit < 1 || limit > maxListLimit {
		limit = defaultListLimit
	}
	meetings, err := h.db.ListMeetings(c.UserContext(), limit)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "ERR_INTERNAL", err.Error())
	}
	return c.JSON(meetings)
}

// Text returns the archived transcript file of one meeting
func (h *TranscriptHandler) Text(c *fiber.Ctx) error {
	rec, err := h.db.GetMeeting(c.UserContext(), c.Params("id"))
	if errors.Is(err, storage.ErrNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "ERR_NOT_FOUND", "Transcript not found")
	}
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "ERR_INTERNAL", err.Error())
	}
	if rec.LocalPath == "" {
		return errorJSON(c, fiber.StatusNotFound, "ERR_NOT_FOUND", "Transcript file path not found")
	}

	content, err := os.ReadFile(rec.LocalPath)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "ERR_READ_FAILED", "Failed to read transcript file")
	}
	return c.SendString(string(content))
}
