package handlers

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/queue"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/session"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/types"
	"github.com/codebuildervaibhav/meeting-summarizer/pkg/executor"
)

// TitleLookup resolves a page title for a video URL
type TitleLookup func(ctx context.Context, videoURL string) (string, error)

// YouTubeHandler handles YouTube recording capture
type YouTubeHandler struct {
	*Submitter
	exec        executor.Executor
	ytDlp       string
	lookupTitle TitleLookup
	timeout     time.Duration
}

// NewYouTubeHandler creates a new YouTube handler. lookup may be nil to
// leave untitled videos to the default chat title.
func NewYouTubeHandler(s *Submitter, exec executor.Executor, ytDlp string, lookup TitleLookup, timeout time.Duration) *YouTubeHandler {
	if ytDlp == "" {
		ytDlp = "yt-dlp"
	}
	return &YouTubeHandler{
		Submitter:   s,
		exec:        exec,
		ytDlp:       ytDlp,
		lookupTitle: lookup,
		timeout:     timeout,
	}
}

// YouTubeRequest represents the request body
type YouTubeRequest struct {
	URL string `json:"url"`
	JobOptions
}

// Handle starts a background capture and returns the job ID at once
func (h *YouTubeHandler) Handle(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return domainError(c, err)
	}

	var req YouTubeRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "ERR_INVALID_BODY", "Invalid request body")
	}
	if req.URL == "" {
		return errorJSON(c, fiber.StatusBadRequest, "ERR_NO_URL", "URL is required")
	}
	if !isYouTubeURL(req.URL) {
		return errorJSON(c, fiber.StatusBadRequest, "ERR_INVALID_URL", "Not a YouTube URL")
	}
	if code, msg := h.check(sess, &req.JobOptions); code != "" {
		return errorJSON(c, statusFor(code), code, msg)
	}

	jobID := uuid.New().String()
	job := h.newJob(jobID, sess, req.JobOptions, types.SourceYouTube, "")
	h.queue.Registry().Track(job)

	// capture can take minutes for long videos
	go h.capture(sess, job, req.URL)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"job_id":     jobID,
		"session_id": sess.ID,
		"status":     "capturing",
		"message":    "YouTube audio capture started (this may take a few minutes for long videos)",
	})
}

func (h *YouTubeHandler) capture(sess *session.Session, job *queue.Job, videoURL string) {
	ctx := context.Background()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	if job.Title == "" && h.lookupTitle != nil {
		job.Title = h.videoTitle(ctx, sess, videoURL)
	}

	path, err := h.download(ctx, job.ID, videoURL)
	if err != nil {
		h.logger.Error(ctx, "Failed to capture YouTube audio: %v", err)
		h.queue.Registry().Fail(job.ID, err)
		return
	}
	job.FilePath = path

	if err := h.queue.EnqueueJob(job); err != nil {
		h.logger.Error(ctx, "Failed to enqueue YouTube job %s: %v", job.ID, err)
		h.queue.Registry().Fail(job.ID, err)
		os.Remove(path)
	}
}

// videoTitle returns the page title, or "" when it is unavailable or already taken
func (h *YouTubeHandler) videoTitle(ctx context.Context, sess *session.Session, videoURL string) string {
	lookupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	title, err := h.lookupTitle(lookupCtx, videoURL)
	if err != nil {
		h.logger.Warn(ctx, "Title lookup failed for %s: %v", videoURL, err)
		return ""
	}
	title = strings.TrimSpace(title)
	if _, err := sess.Get(title); err == nil {
		return ""
	}
	return title
}

// download extracts the audio track with yt-dlp
func (h *YouTubeHandler) download(ctx context.Context, jobID, videoURL string) (string, error) {
	h.logger.Info(ctx, "Using yt-dlp to download: %s", videoURL)

	template := filepath.Join(h.tempDir, jobID+".%(ext)s")
	_, err := h.exec.Execute(ctx, h.ytDlp,
		"-x",
		"--audio-format", "opus",
		"--no-playlist",
		"-o", template,
		videoURL,
	)
	if err != nil {
		return "", fmt.Errorf("yt-dlp failed: %w", err)
	}

	path := filepath.Join(h.tempDir, jobID+".opus")
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("yt-dlp produced no audio: %w", err)
	}
	h.logger.Info(ctx, "YouTube audio downloaded to %s", path)
	return path, nil
}

// ChromeTitle loads the page in headless Chrome and reads its title
func ChromeTitle(ctx context.Context, videoURL string) (string, error) {
	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	var title string
	err := chromedp.Run(ctx,
		chromedp.Navigate(videoURL),
		chromedp.WaitReady("body"),
		chromedp.Title(&title),
	)
	if err != nil {
		return "", fmt.Errorf("failed to navigate to YouTube: %w", err)
	}
	return strings.TrimSuffix(strings.TrimSpace(title), " - YouTube"), nil
}

func isYouTubeURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	return host == "youtube.com" || host == "youtu.be" || host == "music.youtube.com"
}
