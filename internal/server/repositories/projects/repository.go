package projects

import (
	"context"

	"github.com/dmitrijs2005/deliverynotes/internal/server/models"
)

type Repository interface {
	// Exists reports whether a project with the same name and email is already registered.
	Exists(ctx context.Context, name, email string) (bool, error)
	// NameTaken reports whether another project of userID already uses name.
	NameTaken(ctx context.Context, name string, userID, excludeID int64) (bool, error)
	Create(ctx context.Context, p *models.Project) (*models.Project, error)
	Get(ctx context.Context, id int64) (*models.Project, error)
	GetByID(ctx context.Context, id, userID int64) (*models.Project, error)
	ListActive(ctx context.Context, userID int64) ([]*models.Project, error)
	ListArchived(ctx context.Context, userID int64) ([]*models.Project, error)
	Update(ctx context.Context, p *models.Project) error
	Delete(ctx context.Context, id, userID int64, soft bool) error
	Restore(ctx context.Context, id, userID int64) error
}
