package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/chat"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/cleanup"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/config"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/handlers"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/logger"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/queue"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/session"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/storage"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/types"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/watcher"
	"github.com/codebuildervaibhav/meeting-summarizer/pkg/executor"
)

// inboxSession collects recordings dropped into the watched directory
const inboxSession = "inbox"

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, job workers and optional inbox watcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Logs go to stdout and to the buffer behind GET /logs
	logBuffer := logger.NewLogBuffer(1000)
	sink := io.MultiWriter(os.Stdout, logBuffer)
	log := newLogger(cfg, sink)

	if err := cleanup.EnsureDirs(cfg.Storage.TempDir, cfg.Storage.OutputDir); err != nil {
		return fmt.Errorf("failed to create storage directories: %w", err)
	}

	log.Info(ctx, "Initializing components...")
	exec := executor.New()

	pipe, completer, err := newPipeline(ctx, cfg, exec, log)
	if err != nil {
		return err
	}

	sessions := session.NewManager(completer, chat.Options{
		Temperature: cfg.LLM.Chat.Temperature,
		MaxTokens:   cfg.LLM.Chat.MaxTokens,
		Window:      cfg.LLM.Chat.Window,
		Timeout:     cfg.LLMTimeout(),
	}, log)

	// Database
	db, err := storage.NewMetadataDB(cfg.Storage.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Google Drive client (optional - needs credentials and a token from drive-auth)
	var uploader queue.Uploader
	var downloader handlers.Downloader = storage.NewPublicDownloader(5 * time.Minute)
	if _, err := os.Stat(cfg.GoogleDrive.CredentialsFile); err == nil {
		driveClient, err := storage.NewDriveClient(ctx, cfg.GoogleDrive.CredentialsFile,
			cfg.GoogleDrive.TokenFile, cfg.GoogleDrive.FolderName)
		if err != nil {
			log.Warn(ctx, "Google Drive not available: %v", err)
			log.Info(ctx, "Meetings will only be saved locally")
		} else {
			log.Info(ctx, "Google Drive integration enabled")
			uploader = driveClient
			downloader = driveClient
		}
	} else {
		log.Info(ctx, "Google Drive credentials not found - saving locally only")
	}

	// Worker pool
	registry := queue.NewRegistry()
	workerPool := queue.NewWorkerPool(cfg.Workers.Count, cfg.Workers.QueueSize, queue.Deps{
		Runner:   pipe,
		Sessions: sessions,
		Archive:  storage.NewLocalStorage(cfg.Storage.OutputDir),
		Uploader: uploader,
		Index:    db,
	}, registry, log)
	workerPool.Start(ctx)
	defer workerPool.Stop()

	// Cleanup scheduler
	scheduler := cleanup.NewScheduler(cleanup.Options{
		TempDir:      cfg.Storage.TempDir,
		Interval:     time.Duration(cfg.Cleanup.IntervalMinutes) * time.Minute,
		MaxAge:       time.Duration(cfg.Cleanup.MaxAgeHours) * time.Hour,
		SessionIdle:  time.Duration(cfg.Cleanup.SessionIdleMinutes) * time.Minute,
		KeepSessions: []string{inboxSession},
	}, sessions, registry, log)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	// Inbox watcher
	if cfg.Watch.Enabled {
		if err := startInbox(ctx, cfg, sessions, workerPool, log); err != nil {
			return err
		}
	}

	app := newApp(cfg, sink)
	sub := handlers.NewSubmitter(sessions, workerPool, cfg.Storage.TempDir, cfg.Diarization.Speakers, log)
	routes := handlers.Routes{
		System:      handlers.NewSystemHandler(version, logBuffer, sessions),
		Sessions:    handlers.NewSessionHandler(sessions, registry, cfg.Storage.TempDir, log),
		Upload:      handlers.NewUploadHandler(sub, cfg.Limits.MaxFileSizeMB),
		GDrive:      handlers.NewGDriveHandler(sub, downloader, 10*time.Minute),
		Stream:      handlers.NewStreamHandler(sub, int64(cfg.Limits.MaxFileSizeMB)*1024*1024),
		Jobs:        handlers.NewJobHandler(registry),
		Transcripts: handlers.NewTranscriptHandler(db),
	}
	if cfg.YouTube.Enabled {
		var lookup handlers.TitleLookup
		if cfg.YouTube.LookupTitle {
			lookup = handlers.ChromeTitle
		}
		routes.YouTube = handlers.NewYouTubeHandler(sub, exec, cfg.YouTube.YtDlpBinary, lookup,
			time.Duration(cfg.YouTube.TimeoutMinute)*time.Minute)
	}
	handlers.Register(app, routes)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info(ctx, "Server starting on %s", addr)
	log.Info(ctx, "Endpoints:")
	for _, line := range []string{
		"POST   /sessions                             - Start a session",
		"DELETE /sessions/:id                         - End a session",
		"POST   /sessions/:id/uploads                 - Upload a recording",
		"POST   /sessions/:id/gdrive                  - Process a Google Drive link",
		"POST   /sessions/:id/youtube                 - Capture YouTube audio",
		"GET    /ws/sessions/:id/stream               - WebSocket audio streaming",
		"GET    /sessions/:id/chats                   - List saved chats",
		"GET    /sessions/:id/chats/:title            - Transcript, summary and history",
		"POST   /sessions/:id/chats/:title/messages   - Ask about a meeting",
		"GET    /sessions/:id/chats/:title/export     - Download as .docx",
		"GET    /jobs/:id                             - Job status",
		"GET    /transcripts                          - List archived meetings",
		"GET    /logs                                 - View server logs",
		"GET    /health                               - Health check",
	} {
		log.Info(ctx, "   %s", line)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info(context.Background(), "Shutting down gracefully...")
	return app.ShutdownWithTimeout(30 * time.Second)
}

// newApp builds the fiber app with the middleware stack; access logs share the app log sink
func newApp(cfg *config.Config, accessLog io.Writer) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "meeting-summarizer",
		BodyLimit:             (cfg.Limits.MaxFileSizeMB + 1) * 1024 * 1024,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{Output: accessLog}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	return app
}

// startInbox watches cfg.Watch.Dir and queues every new recording into the inbox session
func startInbox(ctx context.Context, cfg *config.Config, sessions *session.Manager, pool *queue.WorkerPool, log logger.Logger) error {
	if err := cleanup.EnsureDirs(cfg.Watch.Dir); err != nil {
		return fmt.Errorf("failed to create inbox: %w", err)
	}
	inbox := sessions.GetOrCreate(inboxSession)

	handler := func(ctx context.Context, path string) error {
		job := queue.NewJob(uuid.New().String(), inbox.ID, inboxTitle(inbox, path), types.SourceInbox, path)
		job.Speakers = cfg.Diarization.Speakers
		job.KeepSource = true
		return pool.EnqueueJob(job)
	}

	w, err := watcher.New(cfg.Watch.Dir, handler, log, cfg.Watch.MaxConcurrent)
	if err != nil {
		return fmt.Errorf("failed to start inbox watcher: %w", err)
	}

	go func() {
		defer w.Stop()
		if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error(ctx, "Inbox watcher stopped: %v", err)
		}
	}()
	return nil
}

// inboxTitle names a dropped file after its base name, or leaves it to the
// default title when that name is taken
func inboxTitle(inbox *session.Session, path string) string {
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if _, err := inbox.Get(title); err == nil {
		return ""
	}
	return title
}
