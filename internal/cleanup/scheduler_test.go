package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/logger"
)

type fakeSessions struct {
	maxIdle time.Duration
	keep    []string
	calls   int
}

func (f *fakeSessions) EvictIdle(maxIdle time.Duration, keep ...string) int {
	f.calls++
	f.maxIdle = maxIdle
	f.keep = keep
	return 0
}

type fakeJobs struct{ cutoff time.Time }

func (f *fakeJobs) Forget(cutoff time.Time) int {
	f.cutoff = cutoff
	return 0
}

func touch(t *testing.T, path string, age time.Duration) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	mod := time.Now().Add(-age)
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatal(err)
	}
}

func TestSweep(t *testing.T) {
	dir := t.TempDir()
	oldFile := filepath.Join(dir, "old.wav")
	newFile := filepath.Join(dir, "new.wav")
	touch(t, oldFile, 48*time.Hour)
	touch(t, newFile, time.Minute)

	sessions := &fakeSessions{}
	jobs := &fakeJobs{}
	s := NewScheduler(Options{
		TempDir:      dir,
		MaxAge:       24 * time.Hour,
		SessionIdle:  2 * time.Hour,
		KeepSessions: []string{"inbox"},
	}, sessions, jobs, logger.Discard())

	s.Sweep(context.Background())

	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Error("old file should be deleted")
	}
	if _, err := os.Stat(newFile); err != nil {
		t.Errorf("new file should be kept: %v", err)
	}
	if sessions.calls != 1 || sessions.maxIdle != 2*time.Hour {
		t.Errorf("EvictIdle calls = %d, maxIdle = %s", sessions.calls, sessions.maxIdle)
	}
	if diff := cmp.Diff([]string{"inbox"}, sessions.keep); diff != "" {
		t.Errorf("keep mismatch (-want +got):\n%s", diff)
	}
	if jobs.cutoff.IsZero() || time.Since(jobs.cutoff) < 23*time.Hour {
		t.Errorf("job cutoff = %s", jobs.cutoff)
	}
}

func TestSweepWithoutSessionIdle(t *testing.T) {
	sessions := &fakeSessions{}
	s := NewScheduler(Options{TempDir: t.TempDir()}, sessions, nil, logger.Discard())
	s.Sweep(context.Background())
	if sessions.calls != 0 {
		t.Error("sessions should not be evicted when SessionIdle is zero")
	}
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(Options{TempDir: t.TempDir(), Interval: time.Hour}, nil, nil, logger.Discard())
	s.Start(context.Background())
	s.Stop()
	s.Stop()
}

func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "temp")
	b := filepath.Join(root, "outputs", "nested")
	if err := EnsureDirs(a, "", b); err != nil {
		t.Fatalf("EnsureDirs() error = %v", err)
	}
	for _, d := range []string{a, b} {
		if fi, err := os.Stat(d); err != nil || !fi.IsDir() {
			t.Errorf("%s not created", d)
		}
	}
}
