// Package services implements the use cases of the delivery-notes backend on
// top of the repositories and the outbound collaborators declared here.
package services

import (
	"context"

	"github.com/dmitrijs2005/deliverynotes/internal/server/auth"
	"github.com/dmitrijs2005/deliverynotes/internal/server/models"
)

// Mailer delivers a single HTML email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// FileStore uploads artifacts and returns the URL they are reachable at.
type FileStore interface {
	UploadFile(ctx context.Context, path string) (string, error)
	UploadNamed(ctx context.Context, key string, data []byte) (string, error)
}

// PDFRenderer turns a note aggregate into a PDF document.
type PDFRenderer interface {
	Render(ctx context.Context, a *models.NoteAggregate) ([]byte, error)
}

// TokenIssuer signs bearer tokens for a principal.
type TokenIssuer interface {
	Issue(p auth.Principal) (string, error)
	IssuePermanent(p auth.Principal) (string, error)
}

// generateCode is a seam for tests.
var generateCode = auth.GenerateCode
