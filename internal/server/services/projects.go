package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/deliverynotes/internal/common"
	"github.com/dmitrijs2005/deliverynotes/internal/logging"
	"github.com/dmitrijs2005/deliverynotes/internal/server/auth"
	"github.com/dmitrijs2005/deliverynotes/internal/server/models"
	"github.com/dmitrijs2005/deliverynotes/internal/server/repositories/repomanager"
)

const (
	MsgProjectSoftDel  = "Project soft deleted"
	MsgProjectHardDel  = "Project deleted"
	MsgProjectRestored = "Project restored successfully"
)

type ProjectInput struct {
	Name     string
	Email    string
	Address  models.Address
	ClientID int64
}

type ProjectService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewProjectService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *ProjectService {
	return &ProjectService{db: db, repomanager: m, logger: logger.With("module", "projects")}
}

// Create registers a project. The pair (name, email) must be unused.
func (s *ProjectService) Create(ctx context.Context, p auth.Principal, in ProjectInput) (*models.Project, error) {
	repo := s.repomanager.Projects(s.db)

	dup, err := repo.Exists(ctx, in.Name, in.Email)
	if err != nil {
		return nil, err
	}
	if dup {
		s.logger.Warn(ctx, "project already exists", "user_id", p.ID, "name", in.Name)
		return nil, common.ErrProjectAlreadyExists
	}

	pr, err := models.NewProject(models.ProjectParams{
		Name:     in.Name,
		Email:    in.Email,
		Address:  in.Address,
		UserID:   p.ID,
		ClientID: in.ClientID,
	})
	if err != nil {
		return nil, err
	}
	pr, err = repo.Create(ctx, pr)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "project created", "user_id", p.ID, "project_id", pr.ID())
	return pr, nil
}

func (s *ProjectService) Get(ctx context.Context, p auth.Principal, id int64) (*models.Project, error) {
	return s.repomanager.Projects(s.db).GetByID(ctx, id, p.ID)
}

func (s *ProjectService) List(ctx context.Context, p auth.Principal) ([]*models.Project, error) {
	return s.repomanager.Projects(s.db).ListActive(ctx, p.ID)
}

func (s *ProjectService) ListArchived(ctx context.Context, p auth.Principal) ([]*models.Project, error) {
	return s.repomanager.Projects(s.db).ListArchived(ctx, p.ID)
}

// Update rewrites an active project. The new name must not collide with
// another project of the same owner.
func (s *ProjectService) Update(ctx context.Context, p auth.Principal, id int64, in ProjectInput) (*models.Project, error) {
	repo := s.repomanager.Projects(s.db)

	pr, err := repo.GetByID(ctx, id, p.ID)
	if err != nil {
		return nil, err
	}
	if pr.IsArchived() {
		return nil, common.ErrProjectArchived
	}
	if err := pr.SetName(in.Name); err != nil {
		return nil, err
	}
	if err := pr.SetEmail(in.Email); err != nil {
		return nil, err
	}
	if err := pr.SetAddress(in.Address); err != nil {
		return nil, err
	}
	if err := pr.SetClientID(in.ClientID); err != nil {
		return nil, err
	}

	taken, err := repo.NameTaken(ctx, pr.Name(), p.ID, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, common.ErrProjectAlreadyExists.WithMessage("Project with this name already exists")
	}

	if err := repo.Update(ctx, pr); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "project updated", "user_id", p.ID, "project_id", id)
	return repo.GetByID(ctx, id, p.ID)
}

// Delete archives the project, or removes it when soft is false.
func (s *ProjectService) Delete(ctx context.Context, p auth.Principal, id int64, soft bool) (string, error) {
	if err := s.repomanager.Projects(s.db).Delete(ctx, id, p.ID, soft); err != nil {
		return "", err
	}
	s.logger.Info(ctx, "project deleted", "user_id", p.ID, "project_id", id, "soft", soft)
	if soft {
		return MsgProjectSoftDel, nil
	}
	return MsgProjectHardDel, nil
}

func (s *ProjectService) Restore(ctx context.Context, p auth.Principal, id int64) (string, error) {
	if err := s.repomanager.Projects(s.db).Restore(ctx, id, p.ID); err != nil {
		return "", err
	}
	s.logger.Info(ctx, "project restored", "user_id", p.ID, "project_id", id)
	return MsgProjectRestored, nil
}
