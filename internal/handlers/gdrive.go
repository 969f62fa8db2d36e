package handlers

import (
	"context"
	"path/filepath"
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/types"
)

var (
	reDriveFilePath = regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`)
	reDriveIDParam  = regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`)
	reDriveBareID   = regexp.MustCompile(`^([a-zA-Z0-9_-]{25,40})$`)
)

// Downloader fetches a Drive file to a local path
type Downloader interface {
	Download(ctx context.Context, fileID, dest string) error
}

// GDriveHandler handles Google Drive link processing
type GDriveHandler struct {
	*Submitter
	downloader Downloader
	timeout    time.Duration
}

// NewGDriveHandler creates a new Google Drive handler
func NewGDriveHandler(s *Submitter, downloader Downloader, timeout time.Duration) *GDriveHandler {
	return &GDriveHandler{
		Submitter:  s,
		downloader: downloader,
		timeout:    timeout,
	}
}

// GDriveRequest represents the request body
type GDriveRequest struct {
	URL string `json:"url"`
	JobOptions
}

// Handle downloads the linked recording and queues it
func (h *GDriveHandler) Handle(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return domainError(c, err)
	}

	var req GDriveRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "ERR_INVALID_BODY", "Invalid request body")
	}
	if req.URL == "" {
		return errorJSON(c, fiber.StatusBadRequest, "ERR_NO_URL", "URL is required")
	}

	fileID := extractGDriveFileID(req.URL)
	if fileID == "" {
		return errorJSON(c, fiber.StatusBadRequest, "ERR_INVALID_URL", "Invalid Google Drive URL")
	}
	if code, msg := h.check(sess, &req.JobOptions); code != "" {
		return errorJSON(c, statusFor(code), code, msg)
	}

	jobID := uuid.New().String()
	// ffmpeg probes the real container, the extension only has to be one it accepts
	tempPath := filepath.Join(h.tempDir, jobID+".mp3")

	ctx := c.UserContext()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	h.logger.Info(ctx, "Downloading from Google Drive: %s", fileID)
	if err := h.downloader.Download(ctx, fileID, tempPath); err != nil {
		h.logger.Warn(ctx, "Failed to download from Google Drive: %v", err)
		return errorJSON(c, fiber.StatusBadGateway, "ERR_DOWNLOAD_FAILED",
			"Failed to download file from Google Drive (it may be private or missing)")
	}

	job := h.newJob(jobID, sess, req.JobOptions, types.SourceGDrive, tempPath)
	return h.enqueue(c, job, "Google Drive file downloaded, processing started")
}

// extractGDriveFileID extracts the file ID from various Google Drive URL formats
func extractGDriveFileID(url string) string {
	// https://drive.google.com/file/d/{ID}/view
	if m := reDriveFilePath.FindStringSubmatch(url); len(m) > 1 {
		return m[1]
	}
	// https://drive.google.com/open?id={ID}
	if m := reDriveIDParam.FindStringSubmatch(url); len(m) > 1 {
		return m[1]
	}
	if m := reDriveBareID.FindStringSubmatch(url); len(m) > 1 {
		return m[1]
	}
	return ""
}
