// Package httpapi exposes the use cases over a JSON REST API built on fiber.
package httpapi

import (
	"context"
	"time"

	"github.com/dmitrijs2005/deliverynotes/internal/logging"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Options struct {
	Addr            string
	BodyLimit       int
	ShutdownTimeout time.Duration
	UploadDir       string
}

// Services bundles the use cases the handlers delegate to.
type Services struct {
	Contacts ContactUseCases
	Clients  ClientUseCases
	Projects ProjectUseCases
	Notes    NoteUseCases
	Tokens   TokenParser
}

type Server struct {
	app    *fiber.App
	opts   Options
	logger logging.Logger
}

func NewServer(opts Options, svc Services, l logging.Logger) *Server {
	logger := l.With("module", "http_server")

	app := fiber.New(fiber.Config{
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
		BodyLimit:             opts.BodyLimit,
	})
	app.Use(requestLogger(logger))
	app.Use(recover.New())
	app.Use(authenticator(svc.Tokens, logger))

	h := &handlers{
		contacts:  svc.Contacts,
		clients:   svc.Clients,
		projects:  svc.Projects,
		notes:     svc.Notes,
		uploadDir: opts.UploadDir,
		logger:    logger,
	}
	h.register(app)

	return &Server{app: app, opts: opts, logger: logger}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(s.opts.Addr)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.opts.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	if err := s.app.ShutdownWithTimeout(s.opts.ShutdownTimeout); err != nil {
		return err
	}
	return nil
}

func (h *handlers) register(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	user := api.Group("/user")
	user.Post("/register", h.registerContact)
	user.Put("/validation", h.validateEmail)
	user.Post("/login", h.login)
	user.Put("/company", h.onboardCompany)
	user.Patch("/company", h.onboardCompany)
	user.Put("/register", h.onboardPersonal)
	user.Patch("/register", h.onboardPersonal)
	user.Patch("/logo", h.uploadLogo)
	user.Get("/data", h.getContact)
	user.Delete("/delete", h.deleteContact)
	user.Post("/recovery", h.recoverPassword)
	user.Post("/recovery/newpassword", h.resetPassword)
	user.Get("/summarize", h.summarize)

	client := api.Group("/client")
	client.Post("/", h.createClient)
	client.Get("/", h.listClients)
	client.Get("/archived", h.listArchivedClients)
	client.Patch("/archived/restore/:clientId", h.restoreClient)
	client.Delete("/delete/:clientId", h.deleteClient)
	client.Get("/:clientId", h.getClient)
	client.Put("/:clientId", h.updateClient)
	client.Patch("/:clientId", h.updateClient)

	project := api.Group("/project")
	project.Post("/", h.createProject)
	project.Get("/", h.listProjects)
	project.Get("/archived", h.listArchivedProjects)
	project.Patch("/archived/restore/:projectId", h.restoreProject)
	project.Delete("/delete/:projectId", h.deleteProject)
	project.Get("/:projectId", h.getProject)
	project.Put("/:projectId", h.updateProject)
	project.Patch("/:projectId", h.updateProject)

	note := api.Group("/deliverynote")
	note.Post("/", h.createNote)
	note.Get("/", h.listNotes)
	note.Get("/pdf/:noteId", h.notePDF)
	note.Patch("/sign/:noteId", h.signNote)
	note.Delete("/delete/:noteId", h.deleteNote)
	note.Get("/:noteId", h.getNote)
}
