package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/logger"
)

// SessionEvicter drops sessions that have been idle too long
type SessionEvicter interface {
	EvictIdle(maxIdle time.Duration, keep ...string) int
}

// JobForgetter drops finished job records
type JobForgetter interface {
	Forget(cutoff time.Time) int
}

// Options configures one Scheduler
type Options struct {
	TempDir     string
	Interval    time.Duration
	MaxAge      time.Duration
	SessionIdle time.Duration
	// KeepSessions are never evicted (for example the inbox session)
	KeepSessions []string
}

// Scheduler periodically removes old temp files, idle sessions and stale job records
type Scheduler struct {
	opts     Options
	sessions SessionEvicter
	jobs     JobForgetter
	logger   logger.Logger

	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewScheduler creates a new cleanup scheduler. sessions and jobs may be nil.
func NewScheduler(opts Options, sessions SessionEvicter, jobs JobForgetter, log logger.Logger) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Minute
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = 24 * time.Hour
	}
	return &Scheduler{
		opts:     opts,
		sessions: sessions,
		jobs:     jobs,
		logger:   log,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs one sweep immediately and then one per interval
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info(ctx, "Running initial cleanup...")
	s.Sweep(ctx)

	ticker := time.NewTicker(s.opts.Interval)

	go func() {
		defer close(s.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep(ctx)
			case <-s.stopChan:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	s.logger.Info(ctx, "Cleanup scheduler started (interval: %s, max age: %s, session idle: %s)",
		s.opts.Interval, s.opts.MaxAge, s.opts.SessionIdle)
}

// Stop stops the cleanup scheduler
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	<-s.done
	s.logger.Info(context.Background(), "Cleanup scheduler stopped")
}

// Sweep performs one cleanup pass
func (s *Scheduler) Sweep(ctx context.Context) {
	s.cleanOldFiles(ctx)

	if s.sessions != nil && s.opts.SessionIdle > 0 {
		s.sessions.EvictIdle(s.opts.SessionIdle, s.opts.KeepSessions...)
	}
	if s.jobs != nil {
		if n := s.jobs.Forget(time.Now().Add(-s.opts.MaxAge)); n > 0 {
			s.logger.Debug(ctx, "Forgot %d finished jobs", n)
		}
	}
}

// cleanOldFiles removes files older than MaxAge from the temp directory
func (s *Scheduler) cleanOldFiles(ctx context.Context) {
	now := time.Now()

	var deletedCount int
	var deletedSize int64

	err := filepath.Walk(s.opts.TempDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip files we can't access
		}

		if info.IsDir() {
			return nil
		}

		age := now.Sub(info.ModTime())
		if age > s.opts.MaxAge {
			size := info.Size()
			if err := os.Remove(path); err != nil {
				s.logger.Warn(ctx, "Failed to delete old file %s: %v", path, err)
			} else {
				deletedCount++
				deletedSize += size
				s.logger.Debug(ctx, "Deleted old temp file: %s (age: %s, size: %dKB)",
					filepath.Base(path), age.Round(time.Hour), size/1024)
			}
		}

		return nil
	})

	if err != nil {
		s.logger.Warn(ctx, "Error during cleanup: %v", err)
	}

	if deletedCount > 0 {
		s.logger.Info(ctx, "Cleanup complete: %d files deleted, %.2fMB freed",
			deletedCount, float64(deletedSize)/(1024*1024))
	}
}

// EnsureDirs creates the given directories if they don't exist
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
