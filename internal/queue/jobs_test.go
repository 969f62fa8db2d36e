package queue

import (
	"errors"
	"testing"
	"time"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/types"
)

func TestRegistrySessionOrder(t *testing.T) {
	r := NewRegistry()
	base := time.Now()
	for i, id := range []string{"c", "a", "b"} {
		j := NewJob(id, "s1", "", types.SourceUpload, "")
		j.CreatedAt = base.Add(time.Duration(2-i) * time.Second)
		r.put(j)
	}
	r.put(NewJob("other", "s2", "", types.SourceUpload, ""))

	got := r.Session("s1")
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %d jobs, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("job[%d] = %s, want %s", i, got[i].ID, want[i])
		}
	}
}

func TestRegistrySnapshotIsCopy(t *testing.T) {
	r := NewRegistry()
	r.put(NewJob("x", "s", "", types.SourceUpload, ""))

	j, _ := r.Get("x")
	j.Status = types.StatusCompleted

	again, _ := r.Get("x")
	if again.Status != types.StatusQueued {
		t.Errorf("registry mutated through snapshot: %s", again.Status)
	}
}

func TestRegistryForget(t *testing.T) {
	r := NewRegistry()
	r.put(NewJob("done", "s", "", types.SourceUpload, ""))
	r.put(NewJob("running", "s", "", types.SourceUpload, ""))
	r.update("done", func(j *Job) { j.FinishedAt = time.Now().Add(-2 * time.Hour) })

	if n := r.Forget(time.Now().Add(-time.Hour)); n != 1 {
		t.Errorf("Forget() = %d, want 1", n)
	}
	if _, ok := r.Get("running"); !ok {
		t.Error("unfinished job should be kept")
	}
}

func TestRegistryTrackThenFail(t *testing.T) {
	r := NewRegistry()
	r.Track(NewJob("yt", "s", "", types.SourceYouTube, ""))

	j, _ := r.Get("yt")
	if j.Status != types.StatusDownloading {
		t.Errorf("status = %s, want DOWNLOADING", j.Status)
	}

	r.Fail("yt", errors.New("yt-dlp failed"))
	j, _ = r.Get("yt")
	if j.Status != types.StatusFailed || j.Error != "yt-dlp failed" || j.FinishedAt.IsZero() {
		t.Errorf("job = %+v", j)
	}
}
