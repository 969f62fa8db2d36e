package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func newTestDB(t *testing.T) *MetadataDB {
	t.Helper()
	db, err := NewMetadataDB(":memory:")
	if err != nil {
		t.Fatalf("NewMetadataDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMetadataRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rec := MeetingRecord{
		JobID:        "job-1",
		SessionID:    "sess-1",
		Title:        "Planning",
		SourceType:   "upload",
		LocalPath:    "outputs/2025/01/23/x.txt",
		CreatedAt:    time.Date(2025, 1, 23, 10, 0, 0, 0, time.UTC),
		Duration:     61.5,
		WordCount:    120,
		SpeakerCount: 2,
		ChunkCount:   1,
	}
	if err := db.SaveMeeting(ctx, rec); err != nil {
		t.Fatalf("SaveMeeting() error = %v", err)
	}

	got, err := db.GetMeeting(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetMeeting() error = %v", err)
	}
	opt := cmpopts.EquateApproxTime(time.Second)
	if diff := cmp.Diff(rec, got, opt); diff != "" {
		t.Errorf("GetMeeting() mismatch (-want +got):\n%s", diff)
	}
}

func TestGetMeetingNotFound(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.GetMeeting(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetMeeting() error = %v, want ErrNotFound", err)
	}
}

func TestListMeetingsNewestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		rec := MeetingRecord{
			JobID:      id,
			SessionID:  "s",
			Title:      id,
			SourceType: "upload",
			LocalPath:  id + ".txt",
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
		}
		if err := db.SaveMeeting(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.ListMeetings(ctx, 2)
	if err != nil {
		t.Fatalf("ListMeetings() error = %v", err)
	}
	var ids []string
	for _, r := range got {
		ids = append(ids, r.JobID)
	}
	if diff := cmp.Diff([]string{"c", "b"}, ids); diff != "" {
		t.Errorf("ListMeetings() order mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveMeetingDuplicateJob(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	rec := MeetingRecord{JobID: "dup", SessionID: "s", Title: "t", SourceType: "upload", LocalPath: "p"}
	if err := db.SaveMeeting(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveMeeting(ctx, rec); err == nil {
		t.Error("second SaveMeeting() with same job id should fail")
	}
}
