package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/logger"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/queue"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/session"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/summarizer"
)

const docxMime = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// SessionHandler serves session lifecycle and the chats saved in them
type SessionHandler struct {
	sessions *session.Manager
	jobs     *queue.Registry
	tempDir  string
	logger   logger.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *session.Manager, jobs *queue.Registry, tempDir string, log logger.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		jobs:     jobs,
		tempDir:  tempDir,
		logger:   log,
	}
}

// AskRequest is the body of a chat message
type AskRequest struct {
	Question string `json:"question"`
}

// Create starts an empty session
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	s := h.sessions.Create()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"session_id": s.ID,
		"created_at": s.CreatedAt,
	})
}

// Delete ends a session and everything saved in it
func (h *SessionHandler) Delete(c *fiber.Ctx) error {
	if err := h.sessions.Delete(c.Params("id")); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListChats returns saved chat titles in the order they were saved
func (h *SessionHandler) ListChats(c *fiber.Ctx) error {
	s, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	s.Touch()
	return c.JSON(fiber.Map{
		"session_id": s.ID,
		"titles":     s.Titles(),
	})
}

// GetChat returns one saved chat with its transcript, summary and history
func (h *SessionHandler) GetChat(c *fiber.Ctx) error {
	rec, err := h.record(c)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(fiber.Map{
		"title":      rec.Title,
		"job_id":     rec.JobID,
		"transcript": rec.Transcript,
		"lines":      rec.Lines,
		"summary":    rec.Summary,
		"created_at": rec.CreatedAt,
		"history":    rec.Conversation.History(),
	})
}

// Ask sends a follow-up question to a saved chat. A failed model call still
// answers 200 with the warning that was recorded in the history.
func (h *SessionHandler) Ask(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "ERR_INVALID_BODY", "Invalid request body")
	}

	s, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}

	res, err := s.Ask(c.UserContext(), titleParam(c), req.Question)
	if err != nil {
		return domainError(c, err)
	}

	body := fiber.Map{
		"answer": res.Content,
		"ok":     res.IsOk(),
	}
	if !res.IsOk() {
		body["error"] = res.Err.Error()
	}
	return c.JSON(body)
}

// Export renders a saved chat as a Word document
func (h *SessionHandler) Export(c *fiber.Ctx) error {
	rec, err := h.record(c)
	if err != nil {
		return domainError(c, err)
	}

	path := filepath.Join(h.tempDir, fmt.Sprintf("export_%s.docx", uuid.New().String()))
	defer os.Remove(path)

	doc := summarizer.Document{
		Title:      rec.Title,
		Summary:    rec.Summary,
		Lines:      rec.Lines,
		Transcript: rec.Transcript,
	}
	if err := summarizer.WriteDocx(doc, path); err != nil {
		h.logger.Error(c.UserContext(), "Export of %q failed: %v", rec.Title, err)
		return errorJSON(c, fiber.StatusInternalServerError, "ERR_EXPORT_FAILED", "Failed to export chat")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "ERR_EXPORT_FAILED", "Failed to read export")
	}

	c.Set(fiber.HeaderContentType, docxMime)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.docx"`, exportName(rec.Title)))
	return c.Send(data)
}

// Jobs lists the jobs submitted to a session
func (h *SessionHandler) Jobs(c *fiber.Ctx) error {
	s, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(fiber.Map{
		"session_id": s.ID,
		"jobs":       h.jobs.Session(s.ID),
	})
}

func (h *SessionHandler) record(c *fiber.Ctx) (*session.Record, error) {
	s, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return nil, err
	}
	return s.Get(titleParam(c))
}

func exportName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '"' || r == '/' || r == '\\' || r < 0x20:
			return '_'
		default:
			return r
		}
	}, title)
	if name == "" {
		return "meeting"
	}
	return name
}
