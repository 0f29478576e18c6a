// Package storage uploads user files (profile images, signatures, generated
// PDFs) to an S3-compatible bucket and returns their public URL.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/dmitrijs2005/deliverynotes/internal/logging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Backend puts one object into the configured bucket.
type Backend interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
}

// Options controls key layout, links and retries.
type Options struct {
	Bucket        string
	PublicBaseURL string
	Attempts      uint
	Delay         time.Duration
}

type Store struct {
	backend Backend
	opts    Options
	logger  logging.Logger
	now     func() time.Time
}

func New(backend Backend, opts Options, logger logging.Logger) *Store {
	if opts.Attempts == 0 {
		opts.Attempts = 1
	}
	return &Store{
		backend: backend,
		opts:    opts,
		logger:  logger.With("module", "storage"),
		now:     time.Now,
	}
}

// ObjectKey builds a unique key partitioned by upload date, keeping the
// lowercased extension of name.
func ObjectKey(now time.Time, name string) string {
	return fmt.Sprintf("uploads/%d/%02d/%02d/%s%s",
		now.Year(), now.Month(), now.Day(), uuid.NewString(), strings.ToLower(filepath.Ext(name)))
}

// UploadFile uploads the file at path. The local file is left in place.
func (s *Store) UploadFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	return s.put(ctx, ObjectKey(s.now(), filepath.Base(path)), data)
}

// UploadNamed stores data under key exactly as given, replacing any object
// already there, and returns its URL.
func (s *Store) UploadNamed(ctx context.Context, key string, data []byte) (string, error) {
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return "", fmt.Errorf("upload: empty key")
	}
	return s.put(ctx, key, data)
}

func (s *Store) put(ctx context.Context, key string, data []byte) (string, error) {
	contentType := mimetype.Detect(data).String()

	err := retry.Do(
		func() error {
			return s.backend.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
		},
		retry.Context(ctx),
		retry.Attempts(s.opts.Attempts),
		retry.Delay(s.opts.Delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn(ctx, "upload failed, retrying", "key", key, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	s.logger.Debug(ctx, "object uploaded", "key", key, "size", len(data), "content_type", contentType)
	return s.URL(key), nil
}

// URL is the path-style link to key.
func (s *Store) URL(key string) string {
	return strings.TrimRight(s.opts.PublicBaseURL, "/") + "/" + s.opts.Bucket + "/" + key
}
