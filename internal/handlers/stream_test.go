package handlers

import (
	"bytes"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	fastws "github.com/fasthttp/websocket"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/types"
)

// listen serves the harness app on a loopback port and returns its address
func (h *harness) listen(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go h.app.Listener(ln)
	t.Cleanup(func() { h.app.Shutdown() })
	return ln.Addr().String()
}

func dialStream(t *testing.T, addr, sessionID string) *fastws.Conn {
	t.Helper()
	conn, _, err := fastws.DefaultDialer.Dial("ws://"+addr+"/ws/sessions/"+sessionID+"/stream", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func writeFrame(t *testing.T, conn *fastws.Conn, messageType int, data []byte) {
	t.Helper()
	if err := conn.WriteMessage(messageType, data); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestStreamQueuesRecording(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	s := h.sessions.Create()
	conn := dialStream(t, h.listen(t), s.ID)

	audio := bytes.Repeat([]byte{0x1a}, 300)
	writeFrame(t, conn, fastws.TextMessage, []byte(`{"title":"Standup","speakers":3}`))
	writeFrame(t, conn, fastws.BinaryMessage, audio[:150])
	writeFrame(t, conn, fastws.BinaryMessage, audio[150:])
	writeFrame(t, conn, fastws.TextMessage, []byte("END"))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read reply: %v", err)
	}
	var reply map[string]string
	if err := json.Unmarshal(msg, &reply); err != nil {
		t.Fatalf("reply %q: %v", msg, err)
	}
	if reply["status"] != "queued" {
		t.Fatalf("reply = %v", reply)
	}

	job, ok := h.pool.Registry().Get(reply["job_id"])
	if !ok {
		t.Fatalf("job %s not registered", reply["job_id"])
	}
	if job.Title != "Standup" || job.Speakers != 3 || job.SourceType != types.SourceStream {
		t.Errorf("job = %+v", job)
	}
	saved, err := os.ReadFile(job.FilePath)
	if err != nil {
		t.Fatalf("stream file: %v", err)
	}
	if !bytes.Equal(saved, audio) {
		t.Errorf("saved %d bytes, want %d", len(saved), len(audio))
	}
}

func TestStreamTooLarge(t *testing.T) {
	tests := []struct {
		name   string
		frames [][]byte
	}{
		{
			name:   "frames add up past the limit",
			frames: [][]byte{make([]byte, streamLimit/2), make([]byte, streamLimit/2), make([]byte, streamLimit/2)},
		},
		{
			name:   "single frame past the limit",
			frames: [][]byte{make([]byte, streamLimit*2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, harnessOpts{})
			s := h.sessions.Create()
			conn := dialStream(t, h.listen(t), s.ID)

			for _, f := range tt.frames {
				writeFrame(t, conn, fastws.BinaryMessage, f)
			}

			conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			_, msg, err := conn.ReadMessage()
			switch {
			case err == nil:
				var reply map[string]string
				if err := json.Unmarshal(msg, &reply); err != nil {
					t.Fatalf("reply %q: %v", msg, err)
				}
				if reply["code"] != "ERR_FILE_TOO_LARGE" {
					t.Errorf("reply = %v, want ERR_FILE_TOO_LARGE", reply)
				}
			case !fastws.IsCloseError(err, fastws.CloseMessageTooBig):
				t.Fatalf("read error = %v, want reply or close 1009", err)
			}

			if jobs := h.pool.Registry().Session(s.ID); len(jobs) != 0 {
				t.Errorf("queued %d jobs for an oversized stream", len(jobs))
			}
			if matches, _ := filepath.Glob(filepath.Join(h.tempDir, "*.webm")); len(matches) != 0 {
				t.Errorf("oversized stream left files: %v", matches)
			}
		})
	}
}
