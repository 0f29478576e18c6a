// Package server wires configuration, storage backends, the mailer and the
// use cases together and runs the HTTP API until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/deliverynotes/internal/filex"
	"github.com/dmitrijs2005/deliverynotes/internal/logging"
	"github.com/dmitrijs2005/deliverynotes/internal/server/auth"
	"github.com/dmitrijs2005/deliverynotes/internal/server/config"
	"github.com/dmitrijs2005/deliverynotes/internal/server/httpapi"
	"github.com/dmitrijs2005/deliverynotes/internal/server/mailer"
	"github.com/dmitrijs2005/deliverynotes/internal/server/pdf"
	"github.com/dmitrijs2005/deliverynotes/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/deliverynotes/internal/server/services"
	"github.com/dmitrijs2005/deliverynotes/internal/server/storage"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, err := logging.New(cfg.LogBackend, cfg.LogLevel, os.Stdout)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	uploadDir, err := filex.EnsureDir(cfg.UploadDir)
	if err != nil {
		db.Close()
		return nil, err
	}

	files, err := newFileStore(ctx, cfg, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	mail, err := newMailer(cfg, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	tokens := auth.NewIssuer(cfg.SecretKey, cfg.TokenValidity)
	renderer := pdf.NewRenderer(&http.Client{Timeout: cfg.SignatureFetchTimeout}, logger)

	srv := httpapi.NewServer(httpapi.Options{
		Addr:            cfg.HTTPAddr,
		BodyLimit:       cfg.BodyLimit,
		ShutdownTimeout: cfg.ShutdownTimeout,
		UploadDir:       uploadDir,
	}, httpapi.Services{
		Contacts: services.NewContactService(db, rm, tokens, mail, files, logger),
		Clients:  services.NewClientService(db, rm, logger),
		Projects: services.NewProjectService(db, rm, logger),
		Notes:    services.NewNoteService(db, rm, files, renderer, logger),
		Tokens:   tokens,
	}, logger)

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

// newFileStore picks the object storage backend named in the config.
func newFileStore(ctx context.Context, cfg *config.Config, logger logging.Logger) (*storage.Store, error) {
	var backend storage.Backend
	switch cfg.StorageBackend {
	case config.StorageMinio:
		b, err := storage.NewMinioStore(storage.MinioConfig{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("minio init error: %w", err)
		}
		backend = b
	default:
		b, err := storage.NewS3Store(ctx, storage.S3Config{
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			Bucket:    cfg.S3Bucket,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		backend = b
	}

	return storage.New(backend, storage.Options{
		Bucket:        cfg.S3Bucket,
		PublicBaseURL: cfg.PublicBaseURL(),
		Attempts:      cfg.RetryAttempts,
		Delay:         cfg.RetryDelay,
	}, logger), nil
}

// newMailer returns an SMTP mailer, or a logging one when no SMTP host is set.
func newMailer(cfg *config.Config, logger logging.Logger) (services.Mailer, error) {
	if cfg.SMTPHost == "" {
		return mailer.NewLogMailer(logger), nil
	}
	m, err := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
		Attempts: cfg.RetryAttempts,
		Delay:    cfg.RetryDelay,
	}, logger)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (app *App) Run(ctx context.Context) {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			stop()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
