package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Routes groups the handlers mounted on the app. YouTube may be nil when disabled.
type Routes struct {
	System      *SystemHandler
	Sessions    *SessionHandler
	Upload      *UploadHandler
	GDrive      *GDriveHandler
	YouTube     *YouTubeHandler
	Stream      *StreamHandler
	Jobs        *JobHandler
	Transcripts *TranscriptHandler
}

// Register mounts every route on app
func Register(app *fiber.App, r Routes) {
	app.Get("/health", r.System.Health)
	app.Get("/logs", r.System.Logs)

	app.Post("/sessions", r.Sessions.Create)
	app.Delete("/sessions/:id", r.Sessions.Delete)
	app.Get("/sessions/:id/jobs", r.Sessions.Jobs)
	app.Get("/sessions/:id/chats", r.Sessions.ListChats)
	app.Get("/sessions/:id/chats/:title", r.Sessions.GetChat)
	app.Post("/sessions/:id/chats/:title/messages", r.Sessions.Ask)
	app.Get("/sessions/:id/chats/:title/export", r.Sessions.Export)

	app.Post("/sessions/:id/uploads", r.Upload.Handle)
	app.Post("/sessions/:id/gdrive", r.GDrive.Handle)
	if r.YouTube != nil {
		app.Post("/sessions/:id/youtube", r.YouTube.Handle)
	}
	app.Get("/ws/sessions/:id/stream", r.Stream.Upgrade, websocket.New(r.Stream.Handle))

	app.Get("/jobs/:id", r.Jobs.Get)
	app.Get("/transcripts", r.Transcripts.List)
	app.Get("/transcripts/:id/text", r.Transcripts.Text)
}
