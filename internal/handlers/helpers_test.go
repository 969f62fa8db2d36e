package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/chat"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/llm"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/logger"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/queue"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/session"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/storage"
)

type stubLLM struct{ err error }

func (s stubLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "answer to: " + req.Messages[len(req.Messages)-1].Content, nil
}

type stubDownloader struct{ err error }

func (s stubDownloader) Download(_ context.Context, _ string, dest string) error {
	if s.err != nil {
		return s.err
	}
	return os.WriteFile(dest, []byte("audio"), 0644)
}

// stubExec pretends to be yt-dlp: it creates the file named by the -o template
type stubExec struct{ err error }

func (s stubExec) Execute(_ context.Context, _ string, args ...string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	for i, a := range args {
		if a == "-o" && i+1 < len(args) {
			out := strings.Replace(args[i+1], "%(ext)s", "opus", 1)
			return "", os.WriteFile(out, []byte("opus"), 0644)
		}
	}
	return "", errors.New("no -o")
}

func (s stubExec) ExecuteInDir(ctx context.Context, _ string, name string, args ...string) (string, error) {
	return s.Execute(ctx, name, args...)
}

type stubIndex struct {
	recs []storage.MeetingRecord
}

func (s stubIndex) GetMeeting(_ context.Context, jobID string) (storage.MeetingRecord, error) {
	for _, r := range s.recs {
		if r.JobID == jobID {
			return r, nil
		}
	}
	return storage.MeetingRecord{}, storage.ErrNotFound
}

func (s stubIndex) ListMeetings(_ context.Context, limit int) ([]storage.MeetingRecord, error) {
	if limit < len(s.recs) {
		return s.recs[:limit], nil
	}
	return s.recs, nil
}

const streamLimit = 1024

type harness struct {
	app      *fiber.App
	sessions *session.Manager
	pool     *queue.WorkerPool
	tempDir  string
	logs     *logger.LogBuffer
}

type harnessOpts struct {
	llmErr      error
	downloadErr error
	execErr     error
	index       stubIndex
}

func newHarness(t *testing.T, o harnessOpts) *harness {
	t.Helper()
	log := logger.Discard()
	tempDir := t.TempDir()

	mgr := session.NewManager(stubLLM{err: o.llmErr}, chat.Options{}, log)
	registry := queue.NewRegistry()
	// never started: jobs stay queued so tests can inspect them
	pool := queue.NewWorkerPool(1, 10, queue.Deps{Sessions: mgr}, registry, log)

	sub := NewSubmitter(mgr, pool, tempDir, 2, log)
	lookup := func(context.Context, string) (string, error) { return "Launch Review", nil }
	logs := logger.NewLogBuffer(10)
	logs.Write([]byte("server started\n"))

	app := fiber.New()
	Register(app, Routes{
		System:      NewSystemHandler("test", logs, mgr),
		Sessions:    NewSessionHandler(mgr, registry, tempDir, log),
		Upload:      NewUploadHandler(sub, 1),
		GDrive:      NewGDriveHandler(sub, stubDownloader{err: o.downloadErr}, time.Second),
		YouTube:     NewYouTubeHandler(sub, stubExec{err: o.execErr}, "yt-dlp", lookup, time.Second),
		Stream:      NewStreamHandler(sub, streamLimit),
		Jobs:        NewJobHandler(registry),
		Transcripts: NewTranscriptHandler(o.index),
	})

	return &harness{app: app, sessions: mgr, pool: pool, tempDir: tempDir, logs: logs}
}

func (h *harness) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := h.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test(%s %s) error = %v", req.Method, req.URL, err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	return resp, body
}

func jsonRequest(method, target string, body any) *http.Request {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, target, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if filename != "" {
		fw, err := w.CreateFormFile("file", filepath.Base(filename))
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(content)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decode(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		t.Fatalf("invalid JSON %q: %v", body, err)
	}
	return m
}
