package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/chat"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/llm"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/logger"
)

type echoLLM struct{}

func (echoLLM) Complete(ctx context.Context, req llm.Request) (string, error) {
	return "echo: " + req.Messages[len(req.Messages)-1].Content, nil
}

func newManager() *Manager {
	return NewManager(echoLLM{}, chat.Options{}, logger.Discard())
}

func TestSessionSaveTitles(t *testing.T) {
	s := newManager().Create()

	if got := s.Titles(); len(got) != 0 {
		t.Fatalf("new session has titles %v", got)
	}

	steps := []struct {
		title   string
		want    string
		wantErr error
	}{
		{title: "", want: "Chat 1"},
		{title: "Planning", want: "Planning"},
		{title: "  ", want: "Chat 3"},
		{title: "Planning", wantErr: ErrDuplicateTitle},
		{title: "Chat 5", want: "Chat 5"},
		{title: "", want: "Chat 6"},
		{title: "", want: "Chat 7"},
	}

	for _, step := range steps {
		rec, err := s.Save(step.title, Record{Transcript: "t", Summary: "s"})
		if !errors.Is(err, step.wantErr) {
			t.Fatalf("Save(%q) error = %v, want %v", step.title, err, step.wantErr)
		}
		if err == nil && rec.Title != step.want {
			t.Errorf("Save(%q) title = %q, want %q", step.title, rec.Title, step.want)
		}
	}

	want := []string{"Chat 1", "Planning", "Chat 3", "Chat 5", "Chat 6", "Chat 7"}
	if diff := cmp.Diff(want, s.Titles()); diff != "" {
		t.Errorf("Titles() mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionGetAndAsk(t *testing.T) {
	s := newManager().Create()
	if _, err := s.Save("Retro", Record{Summary: "We shipped late."}); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Get("Nope"); !errors.Is(err, ErrChatNotFound) {
		t.Errorf("Get(missing) error = %v", err)
	}
	if _, err := s.Ask(context.Background(), "Nope", "why?"); !errors.Is(err, ErrChatNotFound) {
		t.Errorf("Ask(missing) error = %v", err)
	}

	res, err := s.Ask(context.Background(), "Retro", "why late?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if res.Text != "echo: why late?" || res.Content != res.Text {
		t.Errorf("Ask() = %q / %q", res.Text, res.Content)
	}

	rec, _ := s.Get("Retro")
	if got := len(rec.Conversation.History()); got != 2 {
		t.Errorf("history length = %d, want 2", got)
	}
}

func TestSessionConcurrentSaves(t *testing.T) {
	s := newManager().Create()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Save("", Record{Summary: "x"}); err != nil {
				t.Errorf("Save() error = %v", err)
			}
		}()
	}
	wg.Wait()

	titles := s.Titles()
	if len(titles) != 20 {
		t.Fatalf("got %d titles, want 20", len(titles))
	}
	seen := make(map[string]bool)
	for _, title := range titles {
		if seen[title] {
			t.Errorf("duplicate title %q", title)
		}
		seen[title] = true
	}
}

func TestManager(t *testing.T) {
	m := newManager()
	a := m.Create()
	b := m.Create()

	if a.ID == b.ID {
		t.Fatal("sessions share an ID")
	}
	if got, err := m.Get(a.ID); err != nil || got != a {
		t.Errorf("Get() = %v, %v", got, err)
	}
	if err := m.Delete(a.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := m.Get(a.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get(deleted) error = %v", err)
	}
	if err := m.Delete(a.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Delete(deleted) error = %v", err)
	}

	inbox := m.GetOrCreate("inbox")
	if m.GetOrCreate("inbox") != inbox {
		t.Error("GetOrCreate returned a different session")
	}
	if m.Count() != 2 {
		t.Errorf("Count() = %d, want 2", m.Count())
	}
}

func TestManagerEvictIdle(t *testing.T) {
	m := newManager()
	stale := m.Create()
	fresh := m.Create()
	pinned := m.GetOrCreate("inbox")

	past := time.Now().Add(-2 * time.Hour)
	stale.mu.Lock()
	stale.lastSeen = past
	stale.mu.Unlock()
	pinned.mu.Lock()
	pinned.lastSeen = past
	pinned.mu.Unlock()

	if n := m.EvictIdle(time.Hour, "inbox"); n != 1 {
		t.Fatalf("EvictIdle() = %d, want 1", n)
	}
	if _, err := m.Get(stale.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Error("stale session survived")
	}
	if _, err := m.Get(fresh.ID); err != nil {
		t.Error("fresh session was evicted")
	}
	if _, err := m.Get("inbox"); err != nil {
		t.Error("pinned session was evicted")
	}
}
