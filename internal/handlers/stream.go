package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	fastws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/types"
)

const maxStreamTitle = 200

// StreamHandler handles WebSocket audio streaming into a session.
// Binary frames carry audio; a text frame of "END" finishes the recording.
// Any other text frame sets the options, either as a JSON JobOptions object
// or as a plain title. A stream larger than maxBytes is dropped.
type StreamHandler struct {
	*Submitter
	maxBytes int64
}

// NewStreamHandler creates a new stream handler. maxBytes <= 0 disables the limit.
func NewStreamHandler(s *Submitter, maxBytes int64) *StreamHandler {
	return &StreamHandler{Submitter: s, maxBytes: maxBytes}
}

// Upgrade rejects non-websocket requests and unknown sessions before the handshake
func (h *StreamHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return errorJSON(c, fiber.StatusUpgradeRequired, "ERR_UPGRADE_REQUIRED", "WebSocket upgrade required")
	}
	if _, err := h.session(c); err != nil {
		return domainError(c, err)
	}
	return c.Next()
}

// Handle processes WebSocket connections
func (h *StreamHandler) Handle(c *websocket.Conn) {
	defer c.Close()

	ctx := context.Background()
	jobID := uuid.New().String()
	sess, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		h.reply(c, map[string]string{"error": err.Error(), "code": "ERR_SESSION_NOT_FOUND"})
		return
	}

	var (
		buffer   bytes.Buffer
		opts     JobOptions
		tooLarge bool
	)
	if h.maxBytes > 0 {
		c.SetReadLimit(h.maxBytes)
	}

	h.logger.Info(ctx, "WebSocket connection established: %s (session %s)", jobID, sess.ID)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			tooLarge = errors.Is(err, fastws.ErrReadLimit)
			h.logger.Debug(ctx, "WebSocket read ended: %v", err)
			break
		}

		if messageType == websocket.TextMessage {
			msg := strings.TrimSpace(string(message))
			if msg == "END" {
				h.logger.Info(ctx, "Received END signal, processing stream %s", jobID)
				break
			}
			parseStreamOptions(msg, &opts)
			continue
		}

		if messageType == websocket.BinaryMessage {
			if h.maxBytes > 0 && int64(buffer.Len()+len(message)) > h.maxBytes {
				tooLarge = true
				break
			}
			buffer.Write(message)
		}
	}

	if tooLarge {
		h.logger.Warn(ctx, "Stream %s exceeded %d bytes, dropping it", jobID, h.maxBytes)
		h.reply(c, map[string]string{
			"error": fmt.Sprintf("Stream too large (max %d bytes)", h.maxBytes),
			"code":  "ERR_FILE_TOO_LARGE",
		})
		return
	}

	if buffer.Len() == 0 {
		h.logger.Info(ctx, "No audio data received in stream %s", jobID)
		return
	}

	if code, msg := h.check(sess, &opts); code != "" {
		h.reply(c, map[string]string{"error": msg, "code": code})
		return
	}

	tempPath := filepath.Join(h.tempDir, jobID+".webm")
	if err := os.WriteFile(tempPath, buffer.Bytes(), 0644); err != nil {
		h.logger.Error(ctx, "Failed to save stream buffer: %v", err)
		h.reply(c, map[string]string{"error": "failed to save stream", "code": "ERR_SAVE_FAILED"})
		return
	}
	h.logger.Info(ctx, "Stream saved to %s (%d bytes)", tempPath, buffer.Len())

	job := h.newJob(jobID, sess, opts, types.SourceStream, tempPath)
	if err := h.queue.EnqueueJob(job); err != nil {
		os.Remove(tempPath)
		h.reply(c, map[string]string{"error": err.Error(), "code": "ERR_QUEUE_FULL"})
		return
	}

	h.reply(c, map[string]string{"job_id": jobID, "status": "queued"})
}

func (h *StreamHandler) reply(c *websocket.Conn, body map[string]string) {
	b, _ := json.Marshal(body)
	if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
		h.logger.Debug(context.Background(), "WebSocket write failed: %v", err)
	}
}

func parseStreamOptions(msg string, opts *JobOptions) {
	if strings.HasPrefix(msg, "{") {
		var parsed JobOptions
		if err := json.Unmarshal([]byte(msg), &parsed); err == nil {
			*opts = parsed
			return
		}
	}
	if msg != "" && len(msg) < maxStreamTitle {
		opts.Title = msg
	}
}
