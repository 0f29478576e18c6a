package notes

import (
	"context"

	"github.com/dmitrijs2005/deliverynotes/internal/server/models"
)

// Repository persists delivery notes and their entries. Every note lookup and
// mutation is scoped to the owning contact.
type Repository interface {
	CreateNote(ctx context.Context, n *models.DeliveryNote) (*models.DeliveryNote, error)
	CreateEntry(ctx context.Context, e *models.Entry) (*models.Entry, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.DeliveryNote, error)
	GetByID(ctx context.Context, id, userID int64) (*models.DeliveryNote, error)
	ListEntries(ctx context.Context, noteID int64) ([]*models.Entry, error)
	IsSigned(ctx context.Context, id, userID int64) (bool, error)
	SetPDFURL(ctx context.Context, id, userID int64, url string) error
	Sign(ctx context.Context, id, userID int64, url string) error
	DeleteEntries(ctx context.Context, noteID int64) error
	Delete(ctx context.Context, id, userID int64) error
}
