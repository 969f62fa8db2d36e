package diarization

import (
	"fmt"
	"strings"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/types"
)

// AlignedLine is one speaker turn of the attributed transcript
type AlignedLine struct {
	Speaker int    `json:"speaker"`
	Text    string `json:"text"`
}

func (l AlignedLine) String() string {
	return fmt.Sprintf("%s: %s", SpeakerName(l.Speaker), l.Text)
}

// Attribute returns a copy of segments with Text set to the transcript text that
// overlaps each one. Overlap is boundary-inclusive, so a transcript segment that
// touches or spans two speaker segments is counted in both.
func Attribute(segments []Segment, transcript []types.Segment) []Segment {
	out := make([]Segment, len(segments))
	for i, d := range segments {
		var texts []string
		for _, t := range transcript {
			if t.End < d.Start || t.Start > d.End {
				continue
			}
			if text := strings.TrimSpace(t.Text); text != "" {
				texts = append(texts, text)
			}
		}
		d.Text = strings.Join(texts, " ")
		out[i] = d
	}
	return out
}

// Align attributes transcript text to speakers and returns one line per speaker
// segment that received any text, in segment order
func Align(segments []Segment, transcript []types.Segment) []AlignedLine {
	attributed := Attribute(segments, transcript)
	lines := make([]AlignedLine, 0, len(attributed))
	for _, s := range attributed {
		if s.Text == "" {
			continue
		}
		lines = append(lines, AlignedLine{Speaker: s.Speaker, Text: s.Text})
	}
	return lines
}

// RenderLines formats lines as "Speaker N: text"
func RenderLines(lines []AlignedLine) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return out
}
