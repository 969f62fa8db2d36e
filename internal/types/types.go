package types

import "time"

// Job status constants
const (
	StatusDownloading = "DOWNLOADING"
	StatusQueued      = "QUEUED"
	StatusProcessing  = "PROCESSING"
	StatusCompleted   = "COMPLETED"
	StatusFailed      = "FAILED"
)

// Source type constants
const (
	SourceUpload  = "upload"
	SourceGDrive  = "gdrive"
	SourceYouTube = "youtube"
	SourceStream  = "stream"
	SourceInbox   = "inbox"
	SourceCLI     = "cli"
)

// TranscriptionResult represents the output from the speech-to-text engine
type TranscriptionResult struct {
	Text     string
	Language string
	Duration float64
	Segments []Segment
}

// Segment represents a timestamped segment of transcription.
// Start and End are seconds from the beginning of the recording.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Meeting is the finished output of one recording run through the pipeline.
type Meeting struct {
	JobID        string    `json:"job_id"`
	Title        string    `json:"title"`
	Transcript   string    `json:"transcript"`
	Attributed   []string  `json:"attributed,omitempty"`
	Summary      string    `json:"summary"`
	Language     string    `json:"language"`
	Duration     float64   `json:"duration_seconds"`
	WordCount    int       `json:"word_count"`
	SpeakerCount int       `json:"speaker_count"`
	ChunkCount   int       `json:"chunk_count"`
	FailedChunks int       `json:"failed_chunks"`
	Segments     []Segment `json:"segments"`
	ProcessedAt  time.Time `json:"processed_at"`
	LocalPath    string    `json:"local_path,omitempty"`
	GDriveURL    string    `json:"gdrive_url,omitempty"`
}
