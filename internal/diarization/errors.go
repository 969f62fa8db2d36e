package diarization

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyAudio is returned for clips with no samples
	ErrEmptyAudio = errors.New("audio contains no samples")
	// ErrSilentAudio is returned when the loudest sample is below the silence floor
	ErrSilentAudio = errors.New("audio is silent")
	// ErrNoWindows is returned when a clip is too short to yield a single window
	ErrNoWindows = errors.New("audio yields no embedding windows")
	// ErrInvalidSpeakers is returned for a requested speaker count below one
	ErrInvalidSpeakers = errors.New("speaker count must be at least 1")
)

// AudioLoadError reports that a recording could not be turned into a usable clip.
// It is fatal for the upload it belongs to.
type AudioLoadError struct {
	Path string
	Err  error
}

func (e *AudioLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("error loading audio: %v", e.Err)
	}
	return fmt.Sprintf("error loading audio file %s: %v", e.Path, e.Err)
}

func (e *AudioLoadError) Unwrap() error {
	return e.Err
}

func loadError(path string, err error) error {
	return &AudioLoadError{Path: path, Err: err}
}
