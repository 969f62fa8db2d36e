package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/chat"
)

var (
	ErrDuplicateTitle = errors.New("a chat with this title already exists")
	ErrChatNotFound   = errors.New("chat not found")
)

// Record is one saved meeting: its texts and the chat grounded in its summary
type Record struct {
	Title        string             `json:"title"`
	JobID        string             `json:"job_id,omitempty"`
	Transcript   string             `json:"transcript"`
	Summary      string             `json:"summary"`
	Lines        []string           `json:"lines,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	Conversation *chat.Conversation `json:"-"`
}

// Session holds the saved chats of one user. It lives in memory only and is
// discarded when the session ends.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.RWMutex
	titles   []string
	records  map[string]*Record
	lastSeen time.Time
	newChat  func() *chat.Conversation
}

func newSession(id string, newChat func() *chat.Conversation) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		CreatedAt: now,
		titles:    []string{},
		records:   make(map[string]*Record),
		lastSeen:  now,
		newChat:   newChat,
	}
}

// Save stores rec under title and starts its conversation. An empty title
// becomes "Chat N". Titles must be unique within the session.
func (s *Session) Save(title string, rec Record) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()

	title = strings.TrimSpace(title)
	if title == "" {
		title = s.defaultTitle()
	}
	if _, ok := s.records[title]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateTitle, title)
	}

	saved := rec
	saved.Title = title
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = time.Now()
	}
	saved.Conversation = s.newChat()
	if err := saved.Conversation.Start(saved.Summary); err != nil {
		return nil, err
	}

	s.titles = append(s.titles, title)
	s.records[title] = &saved
	return &saved, nil
}

func (s *Session) defaultTitle() string {
	for n := len(s.titles) + 1; ; n++ {
		title := fmt.Sprintf("Chat %d", n)
		if _, ok := s.records[title]; !ok {
			return title
		}
	}
}

// Titles lists saved chats in the order they were saved
func (s *Session) Titles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.titles))
	copy(out, s.titles)
	return out
}

// Get returns the chat saved under title
func (s *Session) Get(title string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()

	rec, ok := s.records[title]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrChatNotFound, title)
	}
	return rec, nil
}

// Ask continues the conversation of the chat saved under title
func (s *Session) Ask(ctx context.Context, title, question string) (chat.Reply, error) {
	rec, err := s.Get(title)
	if err != nil {
		return chat.Reply{}, err
	}
	return rec.Conversation.Ask(ctx, question)
}

// LastSeen is the time of the most recent read or write
func (s *Session) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// Touch marks the session as active
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}
