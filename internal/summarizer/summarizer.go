package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/llm"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/logger"
)

const (
	chunkPrompt = "Summarize the following meeting transcript chunk clearly and professionally:\n\n%s"

	DefaultTemperature = 0.3
)

// Options tunes the per-chunk requests. A nil Temperature means DefaultTemperature.
type Options struct {
	MaxWords    int
	Temperature *float64
	MaxTokens   int
	Timeout     time.Duration
}

// ChunkSummary is the outcome of summarizing one chunk. Index is 1-based.
type ChunkSummary struct {
	Index  int
	Result llm.Result
}

// Text is the chunk summary, or a warning line if the request failed
func (c ChunkSummary) Text() string {
	if c.Result.IsOk() {
		return c.Result.Text
	}
	return fmt.Sprintf("⚠️ Error generating summary for chunk %d: %v", c.Index, c.Result.Err)
}

// Summary collects the chunk summaries of one transcript in order
type Summary struct {
	Chunks []ChunkSummary
}

// Text joins every chunk's text with blank lines
func (s Summary) Text() string {
	parts := make([]string, len(s.Chunks))
	for i, c := range s.Chunks {
		parts[i] = c.Text()
	}
	return strings.Join(parts, "\n\n")
}

// Failed counts chunks whose request failed
func (s Summary) Failed() int {
	n := 0
	for _, c := range s.Chunks {
		if !c.Result.IsOk() {
			n++
		}
	}
	return n
}

// Summarizer sends transcript chunks to the model one at a time
type Summarizer struct {
	llm    llm.Completer
	opts   Options
	logger logger.Logger
}

// New creates a Summarizer with defaults for any unset option
func New(completer llm.Completer, opts Options, log logger.Logger) *Summarizer {
	if opts.MaxWords <= 0 {
		opts.MaxWords = DefaultMaxWords
	}
	if opts.Temperature == nil {
		t := DefaultTemperature
		opts.Temperature = &t
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 512
	}
	return &Summarizer{llm: completer, opts: opts, logger: log}
}

// Summarize requests one summary per chunk. A failed chunk does not stop the rest.
func (s *Summarizer) Summarize(ctx context.Context, transcript string) Summary {
	chunks := Chunk(transcript, s.opts.MaxWords)
	s.logger.Info(ctx, "Summarizing transcript in %d chunks", len(chunks))

	summary := Summary{Chunks: make([]ChunkSummary, 0, len(chunks))}
	for i, chunk := range chunks {
		req := llm.Request{
			Messages:    []llm.Message{{Role: llm.RoleUser, Content: fmt.Sprintf(chunkPrompt, chunk)}},
			Temperature: *s.opts.Temperature,
			MaxTokens:   s.opts.MaxTokens,
		}
		res := llm.Call(ctx, s.llm, fmt.Sprintf("summarize chunk %d", i+1), req, s.opts.Timeout)
		if !res.IsOk() {
			s.logger.Warn(ctx, "[%d/%d] Chunk summary failed: %v", i+1, len(chunks), res.Err)
		} else {
			s.logger.Debug(ctx, "[%d/%d] Chunk summarized (%d chars)", i+1, len(chunks), len(res.Text))
		}
		summary.Chunks = append(summary.Chunks, ChunkSummary{Index: i + 1, Result: res})
	}
	return summary
}
