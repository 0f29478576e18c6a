package clients

import (
	"context"

	"github.com/dmitrijs2005/deliverynotes/internal/server/models"
)

// Repository persists clients. Reads and mutations are scoped to the owning contact;
// Get is the unscoped lookup.
type Repository interface {
	CIFExists(ctx context.Context, cif string, userID int64) (bool, error)
	Create(ctx context.Context, c *models.Client) (*models.Client, error)
	Get(ctx context.Context, id int64) (*models.Client, error)
	GetByID(ctx context.Context, id, userID int64) (*models.Client, error)
	ListActive(ctx context.Context, userID int64) ([]*models.Client, error)
	ListArchived(ctx context.Context, userID int64) ([]*models.Client, error)
	Update(ctx context.Context, c *models.Client) error
	Delete(ctx context.Context, id, userID int64, soft bool) error
	Restore(ctx context.Context, id, userID int64) error
}
