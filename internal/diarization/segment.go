package diarization

import (
	"fmt"
	"math"
)

// LabeledWindow is a window span tagged with its speaker label
type LabeledWindow struct {
	Start   float64
	End     float64
	Speaker int
}

// Segment is a contiguous stretch of speech attributed to one speaker.
// Text is empty until the segment has been aligned with a transcript.
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker int     `json:"speaker"`
	Text    string  `json:"text,omitempty"`
}

// SpeakerName is the display form of the segment's label
func (s Segment) SpeakerName() string {
	return SpeakerName(s.Speaker)
}

// SpeakerName renders a zero-based speaker label as "Speaker N"
func SpeakerName(label int) string {
	return fmt.Sprintf("Speaker %d", label+1)
}

// LabelWindows pairs each embedding window with its cluster label
func LabelWindows(windows []EmbeddingWindow, labels []int) ([]LabeledWindow, error) {
	if len(windows) != len(labels) {
		return nil, fmt.Errorf("have %d labels for %d windows", len(labels), len(windows))
	}
	out := make([]LabeledWindow, len(windows))
	for i, w := range windows {
		out[i] = LabeledWindow{Start: w.Start, End: w.End, Speaker: labels[i]}
	}
	return out, nil
}

// MergeWindows collapses runs of consecutive windows with the same speaker into
// segments. Times are rounded to centiseconds and each segment ends no later than
// the next one starts, so the result never overlaps. Already merged input comes
// back unchanged.
func MergeWindows(windows []LabeledWindow) []Segment {
	if len(windows) == 0 {
		return nil
	}

	segments := make([]Segment, 0, len(windows))
	cur := Segment{Start: windows[0].Start, End: windows[0].End, Speaker: windows[0].Speaker}
	for _, w := range windows[1:] {
		if w.Speaker == cur.Speaker {
			if w.End > cur.End {
				cur.End = w.End
			}
			continue
		}
		segments = append(segments, cur)
		cur = Segment{Start: w.Start, End: w.End, Speaker: w.Speaker}
	}
	segments = append(segments, cur)

	for i := range segments {
		segments[i].Start = round2(segments[i].Start)
		segments[i].End = round2(segments[i].End)
	}
	for i := range segments {
		if i+1 < len(segments) && segments[i].End > segments[i+1].Start {
			segments[i].End = segments[i+1].Start
		}
		if segments[i].End <= segments[i].Start {
			segments[i].End = round2(segments[i].Start + 0.01)
		}
	}
	return segments
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
