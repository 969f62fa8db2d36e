package diarization

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/types"
)

func TestAlignTwoSpeakers(t *testing.T) {
	segments := []Segment{
		{Start: 0.0, End: 2.0, Speaker: 0},
		{Start: 2.0, End: 4.0, Speaker: 1},
	}
	transcript := []types.Segment{
		{Start: 0.5, End: 1.8, Text: "hello there"},
		{Start: 2.1, End: 3.9, Text: "how are you"},
	}

	got := RenderLines(Align(segments, transcript))
	want := []string{"Speaker 1: hello there", "Speaker 2: how are you"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Align() mismatch (-want +got):\n%s", diff)
	}
}

func TestAlign(t *testing.T) {
	tests := []struct {
		name       string
		segments   []Segment
		transcript []types.Segment
		want       []AlignedLine
	}{
		{
			name:       "touching boundary counts as overlap",
			segments:   []Segment{{Start: 2.0, End: 4.0, Speaker: 0}},
			transcript: []types.Segment{{Start: 1.0, End: 2.0, Text: "edge"}},
			want:       []AlignedLine{{Speaker: 0, Text: "edge"}},
		},
		{
			name:       "start touching segment end counts as overlap",
			segments:   []Segment{{Start: 0, End: 2.0, Speaker: 0}},
			transcript: []types.Segment{{Start: 2.0, End: 3.0, Text: "edge"}},
			want:       []AlignedLine{{Speaker: 0, Text: "edge"}},
		},
		{
			name: "segment without overlap is dropped",
			segments: []Segment{
				{Start: 0, End: 1, Speaker: 0},
				{Start: 5, End: 6, Speaker: 1},
			},
			transcript: []types.Segment{{Start: 0.2, End: 0.8, Text: "only me"}},
			want:       []AlignedLine{{Speaker: 0, Text: "only me"}},
		},
		{
			name: "spanning transcript is duplicated into both",
			segments: []Segment{
				{Start: 0, End: 2, Speaker: 0},
				{Start: 2, End: 4, Speaker: 1},
			},
			transcript: []types.Segment{{Start: 1.5, End: 2.5, Text: "shared"}},
			want: []AlignedLine{
				{Speaker: 0, Text: "shared"},
				{Speaker: 1, Text: "shared"},
			},
		},
		{
			name:     "texts are trimmed and joined in order",
			segments: []Segment{{Start: 0, End: 10, Speaker: 0}},
			transcript: []types.Segment{
				{Start: 0, End: 1, Text: "  first "},
				{Start: 1, End: 2, Text: "   "},
				{Start: 2, End: 3, Text: "second"},
			},
			want: []AlignedLine{{Speaker: 0, Text: "first second"}},
		},
		{
			name:     "empty transcript",
			segments: []Segment{{Start: 0, End: 1, Speaker: 0}},
			want:     []AlignedLine{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Align(tt.segments, tt.transcript)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Align() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAttributeDoesNotModifyInput(t *testing.T) {
	segments := []Segment{{Start: 0, End: 1, Speaker: 0}}
	got := Attribute(segments, []types.Segment{{Start: 0, End: 1, Text: "hi"}})
	if segments[0].Text != "" {
		t.Error("input segment was modified")
	}
	if got[0].Text != "hi" {
		t.Errorf("Text = %q, want hi", got[0].Text)
	}
}
