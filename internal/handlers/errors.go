package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/chat"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/queue"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/session"
)

// errorJSON writes the {error, code} body every endpoint uses for failures
func errorJSON(c *fiber.Ctx, status int, code, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
		"code":  code,
	})
}

// domainError maps known errors to a status and code
func domainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return errorJSON(c, fiber.StatusNotFound, "ERR_SESSION_NOT_FOUND", "Session not found")
	case errors.Is(err, session.ErrChatNotFound):
		return errorJSON(c, fiber.StatusNotFound, "ERR_CHAT_NOT_FOUND", "Chat not found")
	case errors.Is(err, session.ErrDuplicateTitle):
		return errorJSON(c, fiber.StatusConflict, "ERR_DUPLICATE_TITLE", err.Error())
	case errors.Is(err, chat.ErrEmptyQuestion):
		return errorJSON(c, fiber.StatusBadRequest, "ERR_EMPTY_QUESTION", "Question is required")
	case errors.Is(err, chat.ErrNotStarted):
		return errorJSON(c, fiber.StatusConflict, "ERR_CHAT_NOT_STARTED", "Chat has no summary yet")
	case errors.Is(err, queue.ErrQueueClosed):
		return errorJSON(c, fiber.StatusServiceUnavailable, "ERR_SHUTTING_DOWN", "Server is shutting down")
	case errors.Is(err, queue.ErrQueueFull):
		return errorJSON(c, fiber.StatusServiceUnavailable, "ERR_QUEUE_FULL", "Too many recordings waiting, try again later")
	default:
		return errorJSON(c, fiber.StatusInternalServerError, "ERR_INTERNAL", err.Error())
	}
}
