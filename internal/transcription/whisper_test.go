package transcription

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/logger"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/types"
)

const whisperJSON = `{
  "text": " Hello team. Let's start.",
  "language": "en",
  "segments": [
    {"id": 0, "start": 0.0, "end": 2.4, "text": " Hello team."},
    {"id": 1, "start": 2.4, "end": 3.0, "text": "   "},
    {"id": 2, "start": 3.0, "end": 5.1, "text": " Let's start."}
  ]
}`

// fakeWhisper writes canned JSON where the CLI would
type fakeWhisper struct {
	body string
	err  error
	args []string
}

func (f *fakeWhisper) Execute(ctx context.Context, name string, args ...string) (string, error) {
	f.args = args
	if f.err != nil {
		return "", f.err
	}
	var outDir, audio string
	for i, a := range args {
		if a == "--output_dir" {
			outDir = args[i+1]
		}
		if i == 2 {
			audio = a
		}
	}
	base := strings.TrimSuffix(filepath.Base(audio), filepath.Ext(audio))
	return "", os.WriteFile(filepath.Join(outDir, base+".json"), []byte(f.body), 0644)
}

func (f *fakeWhisper) ExecuteInDir(ctx context.Context, dir, name string, args ...string) (string, error) {
	return f.Execute(ctx, name, args...)
}

func TestWhisperTranscribe(t *testing.T) {
	fx := &fakeWhisper{body: whisperJSON}
	wt := NewWhisperTranscriber(WhisperOptions{TempDir: t.TempDir(), Language: "en"}, fx, logger.Discard())

	got, err := wt.Transcribe(context.Background(), "meeting.wav")
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	want := &types.TranscriptionResult{
		Text:     "Hello team. Let's start.",
		Language: "en",
		Duration: 5.1,
		Segments: []types.Segment{
			{Start: 0, End: 2.4, Text: "Hello team."},
			{Start: 3.0, End: 5.1, Text: "Let's start."},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Transcribe() mismatch (-want +got):\n%s", diff)
	}

	joined := strings.Join(fx.args, " ")
	for _, flag := range []string{"--beam_size 5", "--output_format json", "--language en", "--model base"} {
		if !strings.Contains(joined, flag) {
			t.Errorf("whisper args %q missing %q", joined, flag)
		}
	}
}

func TestWhisperTranscribeErrors(t *testing.T) {
	tests := []struct {
		name string
		fx   *fakeWhisper
	}{
		{"command fails", &fakeWhisper{err: errors.New("exit status 1")}},
		{"bad json", &fakeWhisper{body: "{not json"}},
		{"inverted segment", &fakeWhisper{body: `{"segments":[{"start":3,"end":1,"text":"x"}]}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wt := NewWhisperTranscriber(WhisperOptions{TempDir: t.TempDir()}, tt.fx, logger.Discard())
			if _, err := wt.Transcribe(context.Background(), "meeting.wav"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
