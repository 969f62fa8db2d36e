package handlers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/media"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/types"
)

// UploadHandler handles recording uploads into a session
type UploadHandler struct {
	*Submitter
	maxSizeMB int
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(s *Submitter, maxSizeMB int) *UploadHandler {
	return &UploadHandler{
		Submitter: s,
		maxSizeMB: maxSizeMB,
	}
}

// Handle processes the upload request
func (h *UploadHandler) Handle(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return domainError(c, err)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "ERR_NO_FILE", "No file uploaded")
	}

	// Validate file size
	maxSize := int64(h.maxSizeMB) * 1024 * 1024
	if h.maxSizeMB > 0 && file.Size > maxSize {
		return errorJSON(c, fiber.StatusBadRequest, "ERR_FILE_TOO_LARGE", fmt.Sprintf("File too large (max %dMB)", h.maxSizeMB))
	}

	// Validate file format
	if !media.ValidateFormat(file.Filename) {
		return errorJSON(c, fiber.StatusBadRequest, "ERR_INVALID_FORMAT",
			fmt.Sprintf("Unsupported format, expected one of %s", strings.Join(media.SupportedFormats(), ", ")))
	}

	opts, err := formOptions(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "ERR_INVALID_BODY", err.Error())
	}
	if code, msg := h.check(sess, &opts); code != "" {
		return errorJSON(c, statusFor(code), code, msg)
	}

	jobID := uuid.New().String()
	tempPath := filepath.Join(h.tempDir, jobID+strings.ToLower(filepath.Ext(file.Filename)))

	if err := c.SaveFile(file, tempPath); err != nil {
		h.logger.Error(c.UserContext(), "Failed to save uploaded file: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "ERR_SAVE_FAILED", "Failed to save file")
	}

	job := h.newJob(jobID, sess, opts, types.SourceUpload, tempPath)
	return h.enqueue(c, job, "File uploaded successfully, processing started")
}

func statusFor(code string) int {
	if code == "ERR_DUPLICATE_TITLE" {
		return fiber.StatusConflict
	}
	return fiber.StatusBadRequest
}
