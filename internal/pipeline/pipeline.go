package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/diarization"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/logger"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/summarizer"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/transcription"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/types"
)

// ErrTooLong is returned for recordings above the configured duration limit
var ErrTooLong = errors.New("recording exceeds the maximum duration")

// Normalizer prepares an upload for transcription
type Normalizer interface {
	Normalize(ctx context.Context, inputPath string) (string, error)
	Duration(ctx context.Context, path string) (float64, error)
}

// Diarizer attributes a normalized recording to speakers
type Diarizer interface {
	DiarizeFile(ctx context.Context, path string, speakers int) ([]diarization.Segment, error)
}

// Summarizer condenses a transcript
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) summarizer.Summary
}

// Options bounds the external steps of a run
type Options struct {
	TranscribeTimeout time.Duration
	DiarizeTimeout    time.Duration
	MaxDuration       time.Duration
}

// Input is one recording to process
type Input struct {
	Path     string
	Title    string
	Speakers int
	Diarize  bool
}

// Pipeline processes one recording at a time, step by step
type Pipeline struct {
	normalizer  Normalizer
	transcriber transcription.Transcriber
	diarizer    Diarizer
	summarizer  Summarizer
	opts        Options
	logger      logger.Logger
}

// New creates a Pipeline. diarizer may be nil, which disables speaker attribution.
func New(n Normalizer, t transcription.Transcriber, d Diarizer, s Summarizer, opts Options, log logger.Logger) *Pipeline {
	return &Pipeline{
		normalizer:  n,
		transcriber: t,
		diarizer:    d,
		summarizer:  s,
		opts:        opts,
		logger:      log,
	}
}

// Run normalizes, transcribes, optionally diarizes and aligns, then summarizes in.Path.
// The input file itself is left in place.
func (p *Pipeline) Run(ctx context.Context, in Input) (*types.Meeting, error) {
	started := time.Now()

	if p.opts.MaxDuration > 0 {
		d, err := p.normalizer.Duration(ctx, in.Path)
		if err != nil {
			p.logger.Warn(ctx, "Could not probe duration of %s: %v", in.Path, err)
		} else if time.Duration(d*float64(time.Second)) > p.opts.MaxDuration {
			return nil, fmt.Errorf("%w: %.0fs > %s", ErrTooLong, d, p.opts.MaxDuration)
		}
	}

	// Step 1: Normalize audio
	wavPath, err := p.normalizer.Normalize(ctx, in.Path)
	if err != nil {
		return nil, fmt.Errorf("audio normalization failed: %w", err)
	}
	defer os.Remove(wavPath)

	// Step 2: Transcribe
	result, err := p.transcribe(ctx, wavPath)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	meeting := &types.Meeting{
		Title:      in.Title,
		Transcript: result.Text,
		Language:   result.Language,
		Duration:   result.Duration,
		WordCount:  len(strings.Fields(result.Text)),
		Segments:   result.Segments,
	}

	// Step 3: Diarize and align
	summaryInput := result.Text
	if in.Diarize && p.diarizer != nil {
		segments, err := p.diarize(ctx, wavPath, in.Speakers)
		if err != nil {
			return nil, fmt.Errorf("diarization failed: %w", err)
		}
		lines := diarization.RenderLines(diarization.Align(segments, result.Segments))
		meeting.Attributed = lines
		meeting.SpeakerCount = diarization.CountSpeakers(segments)
		if len(lines) > 0 {
			summaryInput = strings.Join(lines, "\n")
		}
	}

	// Step 4: Summarize
	summary := p.summarizer.Summarize(ctx, summaryInput)
	meeting.Summary = summary.Text()
	meeting.ChunkCount = len(summary.Chunks)
	meeting.FailedChunks = summary.Failed()
	meeting.ProcessedAt = time.Now()

	p.logger.Info(ctx, "Processed %s in %s: %d words, %d speakers, %d/%d chunks summarized",
		in.Path, time.Since(started).Round(time.Millisecond), meeting.WordCount, meeting.SpeakerCount,
		meeting.ChunkCount-meeting.FailedChunks, meeting.ChunkCount)
	return meeting, nil
}

func (p *Pipeline) transcribe(ctx context.Context, wavPath string) (*types.TranscriptionResult, error) {
	if p.opts.TranscribeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.TranscribeTimeout)
		defer cancel()
	}
	return p.transcriber.Transcribe(ctx, wavPath)
}

func (p *Pipeline) diarize(ctx context.Context, wavPath string, speakers int) ([]diarization.Segment, error) {
	if p.opts.DiarizeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.DiarizeTimeout)
		defer cancel()
	}
	return p.diarizer.DiarizeFile(ctx, wavPath, speakers)
}
