package diarization

import (
	"context"
	"fmt"
	"math"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/logger"
)

const (
	// SamplesPerFrame is one 10ms frame at SampleRate
	SamplesPerFrame = 160
	// PartialFrames is the number of frames in one embedding window (1.6s)
	PartialFrames = 160

	DefaultRate        = 16.0
	DefaultMinCoverage = 0.75
)

// Window is a half-open range of sample offsets into a clip.
// End may run past the clip, in which case the encoder sees zero padding.
type Window struct {
	Start int
	End   int
}

// EmbeddingWindow is one window of a clip together with its voice embedding.
// Start and End are seconds, End clamped to the clip duration.
type EmbeddingWindow struct {
	Start  float64
	End    float64
	Vector []float32
}

// Encoder maps each window of a clip to a fixed-length voice embedding
type Encoder interface {
	Embed(ctx context.Context, clip *AudioClip, windows []Window) ([][]float32, error)
}

// Extractor slices a clip into overlapping windows and embeds each one
type Extractor struct {
	encoder     Encoder
	rate        float64
	minCoverage float64
	logger      logger.Logger
}

// NewExtractor creates an Extractor producing rate windows per second
func NewExtractor(encoder Encoder, rate, minCoverage float64, log logger.Logger) *Extractor {
	if rate <= 0 {
		rate = DefaultRate
	}
	if minCoverage <= 0 || minCoverage > 1 {
		minCoverage = DefaultMinCoverage
	}
	return &Extractor{encoder: encoder, rate: rate, minCoverage: minCoverage, logger: log}
}

// Extract returns one embedding per window, in window order
func (e *Extractor) Extract(ctx context.Context, clip *AudioClip) ([]EmbeddingWindow, error) {
	if clip == nil || len(clip.Samples) == 0 {
		return nil, loadError("", ErrEmptyAudio)
	}
	if silent(clip.Samples) {
		return nil, loadError("", ErrSilentAudio)
	}

	windows, err := PartialWindows(len(clip.Samples), e.rate, e.minCoverage)
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return nil, loadError("", ErrNoWindows)
	}

	e.logger.Debug(ctx, "Embedding %d windows over %.2fs of audio", len(windows), clip.Duration())

	vectors, err := e.encoder.Embed(ctx, clip, windows)
	if err != nil {
		return nil, fmt.Errorf("embed windows: %w", err)
	}
	if len(vectors) != len(windows) {
		return nil, fmt.Errorf("encoder returned %d embeddings for %d windows", len(vectors), len(windows))
	}

	n := len(clip.Samples)
	out := make([]EmbeddingWindow, len(windows))
	for i, w := range windows {
		end := w.End
		if end > n {
			end = n
		}
		out[i] = EmbeddingWindow{
			Start:  float64(w.Start) / SampleRate,
			End:    float64(end) / SampleRate,
			Vector: vectors[i],
		}
	}
	return out, nil
}

// PartialWindows computes the window layout for a clip of nSamples samples.
// Windows are PartialFrames long and advance by the frame step implied by rate.
// The last window is dropped if it covers less than minCoverage of real audio,
// unless it is the only one.
func PartialWindows(nSamples int, rate, minCoverage float64) ([]Window, error) {
	if nSamples <= 0 {
		return nil, nil
	}

	frameStep := int(math.Round((SampleRate / rate) / SamplesPerFrame))
	if frameStep <= 0 || frameStep > PartialFrames {
		return nil, fmt.Errorf("rate %.2f gives frame step %d, want 1..%d", rate, frameStep, PartialFrames)
	}

	nFrames := int(math.Ceil(float64(nSamples+1) / SamplesPerFrame))
	steps := nFrames - PartialFrames + frameStep + 1
	if steps < 1 {
		steps = 1
	}

	var windows []Window
	for i := 0; i < steps; i += frameStep {
		windows = append(windows, Window{
			Start: i * SamplesPerFrame,
			End:   (i + PartialFrames) * SamplesPerFrame,
		})
	}

	last := windows[len(windows)-1]
	coverage := float64(nSamples-last.Start) / float64(last.End-last.Start)
	if coverage < minCoverage && len(windows) > 1 {
		windows = windows[:len(windows)-1]
	}
	return windows, nil
}
