package diarization

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/logger"
)

// DefaultSpeakers is used when the caller does not say how many people spoke
const DefaultSpeakers = 2

// Diarizer runs extraction, clustering and segmentation for one clip at a time
type Diarizer struct {
	extractor *Extractor
	clusterer *Clusterer
	logger    logger.Logger
}

// New creates a Diarizer
func New(extractor *Extractor, clusterer *Clusterer, log logger.Logger) *Diarizer {
	return &Diarizer{extractor: extractor, clusterer: clusterer, logger: log}
}

// DiarizeFile loads a WAV recording and diarizes it
func (d *Diarizer) DiarizeFile(ctx context.Context, path string, speakers int) ([]Segment, error) {
	clip, err := LoadClip(path)
	if err != nil {
		return nil, err
	}
	segments, err := d.Diarize(ctx, clip, speakers)
	var loadErr *AudioLoadError
	if errors.As(err, &loadErr) && loadErr.Path == "" {
		loadErr.Path = path
	}
	return segments, err
}

// Diarize splits clip into speaker segments. speakers <= 0 means DefaultSpeakers.
func (d *Diarizer) Diarize(ctx context.Context, clip *AudioClip, speakers int) ([]Segment, error) {
	if speakers <= 0 {
		speakers = DefaultSpeakers
	}
	started := time.Now()

	windows, err := d.extractor.Extract(ctx, clip)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(windows))
	for i, w := range windows {
		vectors[i] = w.Vector
	}
	labels, err := d.clusterer.Cluster(vectors, speakers)
	if err != nil {
		return nil, fmt.Errorf("cluster embeddings: %w", err)
	}

	labeled, err := LabelWindows(windows, labels)
	if err != nil {
		return nil, err
	}
	segments := MergeWindows(labeled)

	d.logger.Info(ctx, "Diarization completed: %d windows, %d segments, %d speakers in %s",
		len(windows), len(segments), CountSpeakers(segments), time.Since(started).Round(time.Millisecond))
	return segments, nil
}

// CountSpeakers returns the number of distinct speakers among segments
func CountSpeakers(segments []Segment) int {
	seen := make(map[int]struct{})
	for _, s := range segments {
		seen[s.Speaker] = struct{}{}
	}
	return len(seen)
}
