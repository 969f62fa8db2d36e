package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/llm"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/logger"
)

const (
	systemPrompt = "You are a helpful assistant answering questions based on the following meeting summary:\n\n%s"

	// DefaultWindow is the most messages sent per turn, system prompt included
	DefaultWindow = 6

	DefaultTemperature = 0.5
)

var (
	ErrNotStarted     = errors.New("conversation has not been started")
	ErrAlreadyStarted = errors.New("conversation already started")
	ErrEmptyQuestion  = errors.New("question is empty")
)

// Options tunes the chat requests. A nil Temperature means DefaultTemperature.
type Options struct {
	Temperature *float64
	MaxTokens   int
	Window      int
	Timeout     time.Duration
}

// Reply is the outcome of one turn. Content is the assistant message recorded in
// history, which is the warning text when the request failed.
type Reply struct {
	llm.Result
	Content string
}

// Conversation is a follow-up chat grounded in one meeting summary.
// The first history entry is always the system prompt; turns are serialized.
type Conversation struct {
	mu      sync.Mutex
	llm     llm.Completer
	opts    Options
	logger  logger.Logger
	history []llm.Message
}

// NewConversation creates an unstarted conversation
func NewConversation(completer llm.Completer, opts Options, log logger.Logger) *Conversation {
	if opts.Temperature == nil {
		t := DefaultTemperature
		opts.Temperature = &t
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 512
	}
	if opts.Window < 2 {
		opts.Window = DefaultWindow
	}
	return &Conversation{llm: completer, opts: opts, logger: log}
}

// Start seeds the conversation with the summary. It can only be called once.
func (c *Conversation) Start(summary string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.history) > 0 {
		return ErrAlreadyStarted
	}
	c.history = []llm.Message{{Role: llm.RoleSystem, Content: fmt.Sprintf(systemPrompt, summary)}}
	return nil
}

// Started reports whether Start has been called
func (c *Conversation) Started() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.history) > 0
}

// Ask sends the question with the recent history and records the reply.
// A failed request is recorded as a warning reply and returned as a failed Reply;
// the returned error is only for misuse.
func (c *Conversation) Ask(ctx context.Context, question string) (Reply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Reply{}, ErrEmptyQuestion
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.history) == 0 {
		return Reply{}, ErrNotStarted
	}

	c.history = append(c.history, llm.Message{Role: llm.RoleUser, Content: question})

	req := llm.Request{
		Messages:    c.window(),
		Temperature: *c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	}
	res := llm.Call(ctx, c.llm, "chat", req, c.opts.Timeout)

	reply := res.Text
	if !res.IsOk() {
		c.logger.Warn(ctx, "Chat request failed: %v", res.Err)
		reply = fmt.Sprintf("⚠️ Error getting response: %v", res.Err)
	}
	c.history = append(c.history, llm.Message{Role: llm.RoleAssistant, Content: reply})
	return Reply{Result: res, Content: reply}, nil
}

// window returns the system prompt followed by the most recent turns
func (c *Conversation) window() []llm.Message {
	turns := c.history[1:]
	if keep := c.opts.Window - 1; len(turns) > keep {
		turns = turns[len(turns)-keep:]
	}
	out := make([]llm.Message, 0, len(turns)+1)
	out = append(out, c.history[0])
	return append(out, turns...)
}

// History returns the displayed messages, without the system prompt
func (c *Conversation) History() []llm.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.history) < 2 {
		return []llm.Message{}
	}
	out := make([]llm.Message, len(c.history)-1)
	copy(out, c.history[1:])
	return out
}
