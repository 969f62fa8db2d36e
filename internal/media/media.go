package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/logger"
	"github.com/codebuildervaibhav/meeting-summarizer/pkg/executor"
)

var (
	audioFormats = []string{".mp3", ".wav", ".m4a"}
	videoFormats = []string{".mp4", ".mov", ".mkv"}
)

// Normalizer converts uploads into the 16kHz mono WAV the pipeline consumes
type Normalizer struct {
	exec    executor.Executor
	tempDir string
	logger  logger.Logger
}

// NewNormalizer creates a Normalizer writing its output into tempDir
func NewNormalizer(exec executor.Executor, tempDir string, log logger.Logger) *Normalizer {
	return &Normalizer{exec: exec, tempDir: tempDir, logger: log}
}

// Normalize converts any supported audio or video file to 16kHz mono WAV.
// Video streams are dropped so only the audio track is kept.
func (n *Normalizer) Normalize(ctx context.Context, inputPath string) (string, error) {
	if err := os.MkdirAll(n.tempDir, 0755); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	outputPath := filepath.Join(n.tempDir, fmt.Sprintf("normalized_%s.wav", uuid.New().String()))

	if IsVideo(inputPath) {
		n.logger.Info(ctx, "Extracting audio track from video: %s", inputPath)
	}

	args := []string{
		"-i", inputPath,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-y",
		outputPath,
	}
	if _, err := n.exec.Execute(ctx, "ffmpeg", args...); err != nil {
		return "", fmt.Errorf("ffmpeg normalize: %w", err)
	}

	n.logger.Debug(ctx, "Normalized %s -> %s", inputPath, outputPath)
	return outputPath, nil
}

// Duration returns the length of a media file in seconds using ffprobe
func (n *Normalizer) Duration(ctx context.Context, path string) (float64, error) {
	out, err := n.exec.Execute(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w", err)
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(out), err)
	}
	return d, nil
}

// ValidateFormat reports whether filename has a supported audio or video extension
func ValidateFormat(filename string) bool {
	return hasExt(filename, audioFormats) || hasExt(filename, videoFormats)
}

// IsVideo reports whether filename is a video container that needs demuxing
func IsVideo(filename string) bool {
	return hasExt(filename, videoFormats)
}

// SupportedFormats lists every accepted extension, audio first
func SupportedFormats() []string {
	out := make([]string, 0, len(audioFormats)+len(videoFormats))
	out = append(out, audioFormats...)
	return append(out, videoFormats...)
}

func hasExt(filename string, formats []string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, format := range formats {
		if ext == format {
			return true
		}
	}
	return false
}
