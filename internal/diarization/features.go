package diarization

import (
	"context"
	"math"
)

const (
	featureFrameLen = 400 // 25ms analysis frame
	featureFFTSize  = 512
	featureMelBands = 40
	featureMinHz    = 20.0
	featureMaxHz    = 7600.0
	logFloor        = 1e-6
)

// FeatureEncoder embeds windows as their mean log mel energies with the clip
// mean removed. It needs no model server and is fully deterministic, at the cost
// of being far less speaker-discriminative than a trained voice encoder.
type FeatureEncoder struct {
	fft     *fft
	filters [][]float64
	hann    []float64
}

// NewFeatureEncoder creates the built-in filter-bank encoder
func NewFeatureEncoder() *FeatureEncoder {
	hann := make([]float64, featureFrameLen)
	for i := range hann {
		hann[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(featureFrameLen-1))
	}
	return &FeatureEncoder{
		fft:     newFFT(featureFFTSize),
		filters: melFilterbank(featureMelBands, featureFFTSize, SampleRate, featureMinHz, featureMaxHz),
		hann:    hann,
	}
}

// Dim is the embedding length
func (e *FeatureEncoder) Dim() int {
	return featureMelBands
}

func (e *FeatureEncoder) Embed(ctx context.Context, clip *AudioClip, windows []Window) ([][]float32, error) {
	if len(windows) == 0 {
		return nil, nil
	}

	nFrames := 0
	for _, w := range windows {
		if f := w.End / SamplesPerFrame; f > nFrames {
			nFrames = f
		}
	}

	// prefix[f][m] holds the sum of log energies of band m over frames [0, f)
	prefix := make([][]float64, nFrames+1)
	prefix[0] = make([]float64, featureMelBands)
	re := make([]float64, featureFFTSize)
	im := make([]float64, featureFFTSize)
	power := make([]float64, featureFFTSize/2+1)

	realFrames := 0
	for f := 0; f < nFrames; f++ {
		if f%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		start := f * SamplesPerFrame
		if start < len(clip.Samples) {
			realFrames++
		}
		for i := range re {
			re[i], im[i] = 0, 0
		}
		for i := 0; i < featureFrameLen; i++ {
			if idx := start + i; idx < len(clip.Samples) {
				re[i] = float64(clip.Samples[idx]) * e.hann[i]
			}
		}
		e.fft.power(re, im, power)

		row := make([]float64, featureMelBands)
		for m, filt := range e.filters {
			var energy float64
			for k, w := range filt {
				if w != 0 {
					energy += w * power[k]
				}
			}
			row[m] = prefix[f][m] + math.Log(energy+logFloor)
		}
		prefix[f+1] = row
	}

	// clip-level mean over frames that hold real audio
	mean := make([]float64, featureMelBands)
	if realFrames > 0 {
		for m := range mean {
			mean[m] = prefix[realFrames][m] / float64(realFrames)
		}
	}

	out := make([][]float32, len(windows))
	for i, w := range windows {
		lo, hi := w.Start/SamplesPerFrame, w.End/SamplesPerFrame
		count := float64(hi - lo)
		vec := make([]float64, featureMelBands)
		for m := range vec {
			vec[m] = (prefix[hi][m]-prefix[lo][m])/count - mean[m]
		}
		out[i] = l2Normalize(vec)
	}
	return out, nil
}

func l2Normalize(v []float64) []float32 {
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	out := make([]float32, len(v))
	if norm == 0 {
		return out
	}
	for i, x := range v {
		out[i] = float32(x / norm)
	}
	return out
}

func hzToMel(hz float64) float64 {
	return 2595 * math.Log10(1+hz/700)
}

func melToHz(mel float64) float64 {
	return 700 * (math.Pow(10, mel/2595) - 1)
}

// melFilterbank builds triangular filters over the nFFT/2+1 power bins
func melFilterbank(bands, nFFT, sampleRate int, minHz, maxHz float64) [][]float64 {
	bins := nFFT/2 + 1
	lo, hi := hzToMel(minHz), hzToMel(maxHz)

	points := make([]float64, bands+2)
	for i := range points {
		hz := melToHz(lo + (hi-lo)*float64(i)/float64(bands+1))
		points[i] = hz * float64(nFFT) / float64(sampleRate)
	}

	filters := make([][]float64, bands)
	for m := 0; m < bands; m++ {
		left, center, right := points[m], points[m+1], points[m+2]
		filt := make([]float64, bins)
		for k := 0; k < bins; k++ {
			x := float64(k)
			switch {
			case x > left && x <= center:
				filt[k] = (x - left) / (center - left)
			case x > center && x < right:
				filt[k] = (right - x) / (right - center)
			}
		}
		filters[m] = filt
	}
	return filters
}

// fft is an iterative radix-2 transform of a fixed power-of-two size
type fft struct {
	n        int
	rev      []int
	cos, sin []float64
}

func newFFT(n int) *fft {
	bits := 0
	for 1<<bits < n {
		bits++
	}
	rev := make([]int, n)
	for i := range rev {
		r := 0
		for b := 0; b < bits; b++ {
			if i&(1<<b) != 0 {
				r |= 1 << (bits - 1 - b)
			}
		}
		rev[i] = r
	}
	cos := make([]float64, n/2)
	sin := make([]float64, n/2)
	for i := range cos {
		cos[i] = math.Cos(2 * math.Pi * float64(i) / float64(n))
		sin[i] = -math.Sin(2 * math.Pi * float64(i) / float64(n))
	}
	return &fft{n: n, rev: rev, cos: cos, sin: sin}
}

// power transforms re/im in place and writes |X[k]|^2/n for k in [0, n/2] into out
func (t *fft) power(re, im, out []float64) {
	n := t.n
	for i, j := range t.rev {
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}
	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		step := n / size
		for start := 0; start < n; start += size {
			for k := 0; k < half; k++ {
				c, s := t.cos[k*step], t.sin[k*step]
				a, b := start+k, start+k+half
				tr := re[b]*c - im[b]*s
				ti := re[b]*s + im[b]*c
				re[b], im[b] = re[a]-tr, im[a]-ti
				re[a], im[a] = re[a]+tr, im[a]+ti
			}
		}
	}
	for k := 0; k <= n/2; k++ {
		out[k] = (re[k]*re[k] + im[k]*im[k]) / float64(n)
	}
}
