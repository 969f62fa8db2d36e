package diarization

import (
	"fmt"
	"math"
	"os"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

const (
	// SampleRate is the rate every clip is resampled to before windowing
	SampleRate = 16000
	// targetDBFS is the loudness quiet recordings are raised to
	targetDBFS = -30.0
	// silenceFloor is the peak amplitude under which a clip counts as silent
	silenceFloor = 1e-4

	resampleQuality = 4
	streamBuffer    = 4096
)

// AudioClip is mono PCM at SampleRate. It is not modified after loading.
type AudioClip struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the clip length in seconds
func (c *AudioClip) Duration() float64 {
	if c == nil || c.SampleRate == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// LoadClip decodes a WAV file, downmixes it to mono, resamples to SampleRate and
// raises its loudness to the target level
func LoadClip(path string) (*AudioClip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, loadError(path, err)
	}
	defer f.Close()

	streamer, format, err := wav.Decode(f)
	if err != nil {
		return nil, loadError(path, fmt.Errorf("decode wav: %w", err))
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	if format.SampleRate != beep.SampleRate(SampleRate) {
		s = beep.Resample(resampleQuality, format.SampleRate, beep.SampleRate(SampleRate), streamer)
	}

	samples := make([]float32, 0, streamer.Len())
	buf := make([][2]float64, streamBuffer)
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			samples = append(samples, float32((buf[i][0]+buf[i][1])/2))
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, loadError(path, fmt.Errorf("read samples: %w", err))
	}

	clip, err := NewClip(samples)
	if err != nil {
		return nil, loadError(path, err)
	}
	return clip, nil
}

// NewClip validates mono samples already at SampleRate and normalizes their volume.
// The input slice is not modified.
func NewClip(samples []float32) (*AudioClip, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyAudio
	}

	if silent(samples) {
		return nil, ErrSilentAudio
	}

	return &AudioClip{Samples: normalizeVolume(samples, targetDBFS), SampleRate: SampleRate}, nil
}

// silent reports whether the peak amplitude stays under silenceFloor
func silent(samples []float32) bool {
	for _, v := range samples {
		if math.Abs(float64(v)) >= silenceFloor {
			return false
		}
	}
	return true
}

// normalizeVolume scales samples so their RMS level reaches target dBFS.
// Clips that are already louder are returned unchanged.
func normalizeVolume(samples []float32, target float64) []float32 {
	out := make([]float32, len(samples))
	copy(out, samples)

	var sum float64
	for _, v := range samples {
		sum += float64(v) * float64(v)
	}
	rms := sum / float64(len(samples))
	if rms == 0 {
		return out
	}

	change := target - 10*math.Log10(rms)
	if change <= 0 {
		return out
	}

	gain := float32(math.Pow(10, change/20))
	for i := range out {
		out[i] *= gain
	}
	return out
}
