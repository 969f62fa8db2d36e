package diarization

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type embedRequest struct {
	SampleRate int       `json:"sample_rate"`
	Samples    []float32 `json:"samples"`
	Windows    [][2]int  `json:"windows"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// HTTPEncoder delegates embedding to a voice-embedding service exposing POST /embed
type HTTPEncoder struct {
	url    string
	client *http.Client
}

// NewHTTPEncoder creates an encoder for the service at baseURL
func NewHTTPEncoder(baseURL string, timeout time.Duration) *HTTPEncoder {
	return &HTTPEncoder{
		url:    strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

func (h *HTTPEncoder) Embed(ctx context.Context, clip *AudioClip, windows []Window) ([][]float32, error) {
	reqBody := embedRequest{
		SampleRate: clip.SampleRate,
		Samples:    clip.Samples,
		Windows:    make([][2]int, len(windows)),
	}
	for i, w := range windows {
		reqBody.Windows[i] = [2]int{w.Start, w.End}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("embed marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url+"/embed", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("embed %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("embed decode: %w", err)
	}
	if len(out.Embeddings) != len(windows) {
		return nil, fmt.Errorf("embed: got %d embeddings for %d windows", len(out.Embeddings), len(windows))
	}
	if len(out.Embeddings) > 0 {
		dim := len(out.Embeddings[0])
		for i, v := range out.Embeddings {
			if len(v) == 0 || len(v) != dim {
				return nil, fmt.Errorf("embed: embedding %d has dimension %d, want %d", i, len(v), dim)
			}
		}
	}
	return out.Embeddings, nil
}
