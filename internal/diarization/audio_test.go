package diarization

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

func sine(freq float64, seconds float64, amp float32) []float32 {
	n := int(seconds * SampleRate)
	out := make([]float32, n)
	for i := range out {
		out[i] = amp * float32(math.Sin(2*math.Pi*freq*float64(i)/SampleRate))
	}
	return out
}

func writeWAV(t *testing.T, rate int, channels int, samples []float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	pos := 0
	streamer := beep.StreamerFunc(func(buf [][2]float64) (int, bool) {
		if pos >= len(samples) {
			return 0, false
		}
		n := 0
		for n < len(buf) && pos < len(samples) {
			buf[n][0], buf[n][1] = samples[pos], samples[pos]
			n++
			pos++
		}
		return n, true
	})

	format := beep.Format{SampleRate: beep.SampleRate(rate), NumChannels: channels, Precision: 2}
	if err := wav.Encode(f, streamer, format); err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	return path
}

func TestNewClip(t *testing.T) {
	tests := []struct {
		name    string
		samples []float32
		wantErr error
	}{
		{"empty", nil, ErrEmptyAudio},
		{"silent", make([]float32, SampleRate), ErrSilentAudio},
		{"tone", sine(440, 1, 0.5), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clip, err := NewClip(tt.samples)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewClip() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && clip.Duration() != 1 {
				t.Errorf("Duration() = %v, want 1", clip.Duration())
			}
		})
	}
}

func TestNormalizeVolume(t *testing.T) {
	rms := func(s []float32) float64 {
		var sum float64
		for _, v := range s {
			sum += float64(v) * float64(v)
		}
		return 10 * math.Log10(sum/float64(len(s)))
	}

	quiet := sine(300, 0.5, 0.001)
	raised := normalizeVolume(quiet, targetDBFS)
	if got := rms(raised); math.Abs(got-targetDBFS) > 0.01 {
		t.Errorf("quiet clip normalized to %.2f dBFS, want %.2f", got, targetDBFS)
	}
	if quiet[100] == raised[100] {
		t.Error("input slice was modified or not scaled")
	}

	loud := sine(300, 0.5, 0.9)
	kept := normalizeVolume(loud, targetDBFS)
	for i := range loud {
		if loud[i] != kept[i] {
			t.Fatalf("loud clip changed at %d", i)
		}
	}
}

func TestLoadClipResamplesAndDownmixes(t *testing.T) {
	const rate = 8000
	samples := make([]float64, rate) // 1s
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*220*float64(i)/rate)
	}
	path := writeWAV(t, rate, 2, samples)

	clip, err := LoadClip(path)
	if err != nil {
		t.Fatalf("LoadClip() error = %v", err)
	}
	if clip.SampleRate != SampleRate {
		t.Errorf("SampleRate = %d, want %d", clip.SampleRate, SampleRate)
	}
	if d := clip.Duration(); math.Abs(d-1) > 0.02 {
		t.Errorf("Duration() = %.3f, want about 1s", d)
	}
}

func TestLoadClipErrors(t *testing.T) {
	garbage := filepath.Join(t.TempDir(), "bad.wav")
	if err := os.WriteFile(garbage, []byte("definitely not a wav"), 0644); err != nil {
		t.Fatal(err)
	}
	silent := writeWAV(t, SampleRate, 1, make([]float64, SampleRate))

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(t.TempDir(), "missing.wav")},
		{"garbage", garbage},
		{"silent", silent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadClip(tt.path)
			var loadErr *AudioLoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("LoadClip() error = %v, want *AudioLoadError", err)
			}
			if loadErr.Path != tt.path {
				t.Errorf("Path = %q, want %q", loadErr.Path, tt.path)
			}
		})
	}
}
