package llm

import "context"

// Role of a chat message author
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a chat-completion conversation
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is a provider-neutral chat-completion request
type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Completer sends a chat-completion request and returns the reply text
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}
