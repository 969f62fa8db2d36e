package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/types"
)

// LocalStorage handles saving meetings to the local filesystem
type LocalStorage struct {
	outputDir string
}

// NewLocalStorage creates a new local storage handler
func NewLocalStorage(outputDir string) *LocalStorage {
	return &LocalStorage{
		outputDir: outputDir,
	}
}

// SaveMeeting writes the transcript, summary and metadata of a meeting under a
// dated directory and returns the transcript path
func (ls *LocalStorage) SaveMeeting(m *types.Meeting) (string, error) {
	// outputs/2025/01/23/
	now := time.Now()
	dateDir := filepath.Join(ls.outputDir,
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		fmt.Sprintf("%02d", now.Day()))

	if err := os.MkdirAll(dateDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create date directory: %w", err)
	}

	// 20250123_143022_weekly_sync
	baseFilename := fmt.Sprintf("%s_%s", now.Format("20060102_150405"), sanitizeFilename(m.Title))

	txtPath := filepath.Join(dateDir, baseFilename+".txt")
	summaryPath := filepath.Join(dateDir, baseFilename+"_summary.md")
	metaPath := filepath.Join(dateDir, baseFilename+"_meta.json")

	if err := os.WriteFile(txtPath, []byte(TranscriptText(m)), 0644); err != nil {
		return "", fmt.Errorf("failed to save transcript: %w", err)
	}

	if err := os.WriteFile(summaryPath, []byte(SummaryMarkdown(m)), 0644); err != nil {
		return "", fmt.Errorf("failed to save summary: %w", err)
	}

	meta := *m
	meta.LocalPath = txtPath
	metaJSON, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(metaPath, metaJSON, 0644); err != nil {
		return "", fmt.Errorf("failed to save metadata: %w", err)
	}

	return txtPath, nil
}

// TranscriptText is the attributed transcript when there is one, else the plain text
func TranscriptText(m *types.Meeting) string {
	if len(m.Attributed) > 0 {
		return strings.Join(m.Attributed, "\n") + "\n"
	}
	return m.Transcript
}

// SummaryMarkdown renders the summary with a title and timestamp header
func SummaryMarkdown(m *types.Meeting) string {
	processed := m.ProcessedAt
	if processed.IsZero() {
		processed = time.Now()
	}
	return fmt.Sprintf("# %s\n\n_%s_\n\n%s\n", m.Title, processed.Format("2006-01-02 15:04"), strings.TrimSpace(m.Summary))
}

// sanitizeFilename replaces characters that are unsafe in file names
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "meeting"
	}
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", " ", "_",
	)
	result := replacer.Replace(name)
	if len(result) > 100 {
		result = result[:100]
	}
	return result
}
