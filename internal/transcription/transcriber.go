package transcription

import (
	"context"
	"fmt"
	"strings"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/types"
)

// Transcriber turns a normalized WAV file into timestamped transcript segments
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*types.TranscriptionResult, error)
}

// buildResult trims segment text, drops empty segments and derives the full text and duration
func buildResult(language string, segments []types.Segment) *types.TranscriptionResult {
	out := make([]types.Segment, 0, len(segments))
	texts := make([]string, 0, len(segments))
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		out = append(out, types.Segment{Start: seg.Start, End: seg.End, Text: text})
		texts = append(texts, text)
	}

	var duration float64
	if len(out) > 0 {
		duration = out[len(out)-1].End
	}

	return &types.TranscriptionResult{
		Text:     strings.Join(texts, " "),
		Language: language,
		Duration: duration,
		Segments: out,
	}
}

func validateSegments(segments []types.Segment) error {
	for i, seg := range segments {
		if seg.End < seg.Start {
			return fmt.Errorf("segment %d ends before it starts (%.2f < %.2f)", i, seg.End, seg.Start)
		}
	}
	return nil
}
