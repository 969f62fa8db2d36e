package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/chat"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/llm"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/logger"
)

var ErrSessionNotFound = errors.New("session not found")

// Manager owns every live session
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	llm      llm.Completer
	chatOpts chat.Options
	logger   logger.Logger
}

// NewManager creates a Manager whose sessions chat through completer
func NewManager(completer llm.Completer, chatOpts chat.Options, log logger.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		llm:      completer,
		chatOpts: chatOpts,
		logger:   log,
	}
}

func (m *Manager) newChat() *chat.Conversation {
	return chat.NewConversation(m.llm, m.chatOpts, m.logger)
}

// Create starts an empty session with a fresh ID
func (m *Manager) Create() *Session {
	s := newSession(uuid.New().String(), m.newChat)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Debug(context.Background(), "Session %s created", s.ID)
	return s
}

// GetOrCreate returns the session with id, creating it if needed.
// Used for fixed sessions such as the inbox watcher's.
func (m *Manager) GetOrCreate(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := newSession(id, m.newChat)
	m.sessions[id] = s
	return s
}

// Get returns the session with id
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete ends a session and drops everything saved in it
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	m.logger.Debug(context.Background(), "Session %s deleted", id)
	return nil
}

// EvictIdle deletes sessions not used for longer than maxIdle, except the ids in keep
func (m *Manager) EvictIdle(maxIdle time.Duration, keep ...string) int {
	cutoff := time.Now().Add(-maxIdle)
	pinned := make(map[string]bool, len(keep))
	for _, id := range keep {
		pinned[id] = true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, s := range m.sessions {
		if pinned[id] {
			continue
		}
		if s.LastSeen().Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		m.logger.Info(context.Background(), "Evicted %d idle sessions", evicted)
	}
	return evicted
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
