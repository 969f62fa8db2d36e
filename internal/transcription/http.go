package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/logger"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/types"
)

type asrResponse struct {
	Segments []types.Segment `json:"segments"`
	Language string          `json:"language"`
}

// HTTPTranscriber posts audio to a speech-to-text service exposing POST /transcribe
type HTTPTranscriber struct {
	url    string
	client *http.Client
	logger logger.Logger
}

// NewHTTPTranscriber creates a transcriber for the service at baseURL
func NewHTTPTranscriber(baseURL string, timeout time.Duration, log logger.Logger) *HTTPTranscriber {
	return &HTTPTranscriber{
		url:    strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: timeout},
		logger: log,
	}
}

// Transcribe uploads the WAV file as multipart form field "file"
func (h *HTTPTranscriber) Transcribe(ctx context.Context, audioPath string) (*types.TranscriptionResult, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, err
	}
	fd, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer fd.Close()

	if _, err = io.Copy(fw, fd); err != nil {
		return nil, err
	}
	if err = w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url+"/transcribe", &b)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	h.logger.Info(ctx, "Sending %s to ASR service %s", audioPath, h.url)
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("asr request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("asr %s: %s", resp.Status, string(body))
	}

	var out asrResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("asr decode: %w", err)
	}
	if err := validateSegments(out.Segments); err != nil {
		return nil, fmt.Errorf("asr response: %w", err)
	}

	return buildResult(out.Language, out.Segments), nil
}
