package transcription

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/logger"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/types"
	"github.com/codebuildervaibhav/meeting-summarizer/pkg/executor"
)

// WhisperOptions tunes the python whisper CLI
type WhisperOptions struct {
	Binary   string // interpreter, usually "python"
	Model    string
	Device   string
	Language string // empty lets whisper detect it
	BeamSize int
	Threads  int
	TempDir  string
}

// WhisperTranscriber wraps Python's OpenAI Whisper for transcription
type WhisperTranscriber struct {
	opts   WhisperOptions
	exec   executor.Executor
	logger logger.Logger
	mu     sync.Mutex // one model run at a time
}

// NewWhisperTranscriber creates a new transcriber using Python Whisper
func NewWhisperTranscriber(opts WhisperOptions, exec executor.Executor, log logger.Logger) *WhisperTranscriber {
	if opts.Binary == "" {
		opts.Binary = "python"
	}
	if opts.Model == "" {
		opts.Model = "base"
	}
	if opts.BeamSize <= 0 {
		opts.BeamSize = 5
	}
	if opts.TempDir == "" {
		opts.TempDir = "temp"
	}
	return &WhisperTranscriber{opts: opts, exec: exec, logger: log}
}

// Transcribe processes an audio file and returns the transcript
func (wt *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (*types.TranscriptionResult, error) {
	wt.mu.Lock()
	defer wt.mu.Unlock()

	wt.logger.Info(ctx, "Transcribing with whisper (%s): %s", wt.opts.Model, audioPath)

	outDir := filepath.Join(wt.opts.TempDir, "whisper_"+uuid.New().String())
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create whisper output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	absAudioPath, err := filepath.Abs(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	if _, err := wt.exec.Execute(ctx, wt.opts.Binary, wt.args(absAudioPath, outDir)...); err != nil {
		return nil, fmt.Errorf("whisper transcription failed: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonData, err := os.ReadFile(filepath.Join(outDir, baseName+".json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read whisper output: %w", err)
	}

	result, err := parseWhisperJSON(jsonData)
	if err != nil {
		return nil, err
	}

	wt.logger.Info(ctx, "Transcription completed: %d segments, %.2fs duration", len(result.Segments), result.Duration)
	return result, nil
}

func (wt *WhisperTranscriber) args(audioPath, outDir string) []string {
	args := []string{"-m", "whisper",
		audioPath,
		"--model", wt.opts.Model,
		"--output_dir", outDir,
		"--output_format", "json",
		"--beam_size", strconv.Itoa(wt.opts.BeamSize),
		"--fp16", "False",
	}
	if wt.opts.Language != "" {
		args = append(args, "--language", wt.opts.Language)
	}
	if wt.opts.Device != "" {
		args = append(args, "--device", wt.opts.Device)
	}
	if wt.opts.Threads > 0 {
		args = append(args, "--threads", strconv.Itoa(wt.opts.Threads))
	}
	return args
}

// WhisperOutput matches Python Whisper's JSON output format
type WhisperOutput struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Segments []WhisperSegment `json:"segments"`
}

// WhisperSegment represents a timestamped segment from Whisper
type WhisperSegment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

func parseWhisperJSON(data []byte) (*types.TranscriptionResult, error) {
	var out WhisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse whisper JSON: %w", err)
	}

	segments := make([]types.Segment, len(out.Segments))
	for i, seg := range out.Segments {
		segments[i] = types.Segment{Start: seg.Start, End: seg.End, Text: seg.Text}
	}
	if err := validateSegments(segments); err != nil {
		return nil, fmt.Errorf("whisper output: %w", err)
	}

	return buildResult(out.Language, segments), nil
}
