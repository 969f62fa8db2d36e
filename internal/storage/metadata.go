package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no meeting has the requested job ID
var ErrNotFound = errors.New("meeting not found")

// MeetingRecord is the indexed metadata of one processed meeting
type MeetingRecord struct {
	JobID        string    `json:"job_id"`
	SessionID    string    `json:"session_id"`
	Title        string    `json:"title"`
	SourceType   string    `json:"source_type"`
	GDriveURL    string    `json:"gdrive_url"`
	LocalPath    string    `json:"local_path"`
	CreatedAt    time.Time `json:"created_at"`
	Duration     float64   `json:"duration"`
	WordCount    int       `json:"word_count"`
	SpeakerCount int       `json:"speaker_count"`
	ChunkCount   int       `json:"chunk_count"`
	FailedChunks int       `json:"failed_chunks"`
}

// MetadataDB handles SQLite database operations
type MetadataDB struct {
	db *sql.DB
}

// NewMetadataDB opens (or creates) the metadata database. ":memory:" keeps
// everything in process memory.
func NewMetadataDB(dbPath string) (*MetadataDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS meetings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT NOT NULL UNIQUE,
		session_id TEXT NOT NULL,
		title TEXT NOT NULL,
		source_type TEXT NOT NULL,
		gdrive_url TEXT NOT NULL DEFAULT '',
		local_path TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		duration REAL,
		word_count INTEGER,
		speaker_count INTEGER,
		chunk_count INTEGER,
		failed_chunks INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_created_at ON meetings(created_at);
	CREATE INDEX IF NOT EXISTS idx_title ON meetings(title);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MetadataDB{db: db}, nil
}

// SaveMeeting inserts one meeting's metadata
func (mdb *MetadataDB) SaveMeeting(ctx context.Context, rec MeetingRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	query := `
	INSERT INTO meetings (job_id, session_id, title, source_type, gdrive_url, local_path, created_at,
		duration, word_count, speaker_count, chunk_count, failed_chunks)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := mdb.db.ExecContext(ctx, query, rec.JobID, rec.SessionID, rec.Title, rec.SourceType,
		rec.GDriveURL, rec.LocalPath, rec.CreatedAt.UTC(), rec.Duration, rec.WordCount,
		rec.SpeakerCount, rec.ChunkCount, rec.FailedChunks)
	if err != nil {
		return fmt.Errorf("failed to save meeting metadata: %w", err)
	}
	return nil
}

const selectColumns = `SELECT job_id, session_id, title, source_type, gdrive_url, local_path, created_at,
	duration, word_count, speaker_count, chunk_count, failed_chunks FROM meetings`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (MeetingRecord, error) {
	var rec MeetingRecord
	err := row.Scan(&rec.JobID, &rec.SessionID, &rec.Title, &rec.SourceType, &rec.GDriveURL,
		&rec.LocalPath, &rec.CreatedAt, &rec.Duration, &rec.WordCount, &rec.SpeakerCount,
		&rec.ChunkCount, &rec.FailedChunks)
	return rec, err
}

// GetMeeting retrieves meeting metadata by job ID
func (mdb *MetadataDB) GetMeeting(ctx context.Context, jobID string) (MeetingRecord, error) {
	rec, err := scanRecord(mdb.db.QueryRowContext(ctx, selectColumns+` WHERE job_id = ?`, jobID))
	if errors.Is(err, sql.ErrNoRows) {
		return MeetingRecord{}, ErrNotFound
	}
	if err != nil {
		return MeetingRecord{}, fmt.Errorf("failed to get meeting: %w", err)
	}
	return rec, nil
}

// ListMeetings returns the most recent meetings first
func (mdb *MetadataDB) ListMeetings(ctx context.Context, limit int) ([]MeetingRecord, error) {
	rows, err := mdb.db.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	defer rows.Close()

	meetings := []MeetingRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meeting: %w", err)
		}
		meetings = append(meetings, rec)
	}
	return meetings, rows.Err()
}

// Close closes the database connection
func (mdb *MetadataDB) Close() error {
	return mdb.db.Close()
}
