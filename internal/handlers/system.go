package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// LogSource returns the most recent log lines
type LogSource interface {
	Lines() []string
}

// SessionCounter reports how many sessions are live
type SessionCounter interface {
	Count() int
}

// SystemHandler serves health and log endpoints
type SystemHandler struct {
	version  string
	logs     LogSource
	sessions SessionCounter
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(version string, logs LogSource, sessions SessionCounter) *SystemHandler {
	return &SystemHandler{version: version, logs: logs, sessions: sessions}
}

// Health reports liveness
func (h *SystemHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "healthy",
		"version":  h.version,
		"sessions": h.sessions.Count(),
	})
}

// Logs returns recent server log lines
func (h *SystemHandler) Logs(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"logs": h.logs.Lines(),
	})
}
