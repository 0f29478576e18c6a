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
	MsgClientSoftDel  = "Client soft deleted"
	MsgClientHardDel  = "Client deleted"
	MsgClientRestored = "Client restored successfully"
)

// ClientInput carries the editable fields of a client.
type ClientInput struct {
	Name    string
	CIF     string
	Address models.Address
}

type ClientService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewClientService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *ClientService {
	return &ClientService{db: db, repomanager: m, logger: logger.With("module", "clients")}
}

// Create registers a client for the caller. A CIF may appear only once per owner.
func (s *ClientService) Create(ctx context.Context, p auth.Principal, in ClientInput) (*models.Client, error) {
	repo := s.repomanager.Clients(s.db)

	dup, err := repo.CIFExists(ctx, in.CIF, p.ID)
	if err != nil {
		return nil, err
	}
	if dup {
		s.logger.Warn(ctx, "cif already in use", "user_id", p.ID, "cif", in.CIF)
		return nil, common.ErrCifAlreadyInUse
	}

	c, err := models.NewClient(models.ClientParams{Name: in.Name, CIF: in.CIF, Address: in.Address, UserID: p.ID})
	if err != nil {
		return nil, err
	}
	c, err = repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "client created", "user_id", p.ID, "client_id", c.ID())
	return c, nil
}

func (s *ClientService) Get(ctx context.Context, p auth.Principal, id int64) (*models.Client, error) {
	return s.repomanager.Clients(s.db).GetByID(ctx, id, p.ID)
}

func (s *ClientService) List(ctx context.Context, p auth.Principal) ([]*models.Client, error) {
	return s.repomanager.Clients(s.db).ListActive(ctx, p.ID)
}

func (s *ClientService) ListArchived(ctx context.Context, p auth.Principal) ([]*models.Client, error) {
	return s.repomanager.Clients(s.db).ListArchived(ctx, p.ID)
}

// Update replaces the editable fields of an active client and returns the stored result.
func (s *ClientService) Update(ctx context.Context, p auth.Principal, id int64, in ClientInput) (*models.Client, error) {
	repo := s.repomanager.Clients(s.db)

	c, err := repo.GetByID(ctx, id, p.ID)
	if err != nil {
		return nil, err
	}
	if c.IsArchived() {
		return nil, common.ErrClientNotFound
	}
	if err := c.SetName(in.Name); err != nil {
		return nil, err
	}
	if err := c.SetCIF(in.CIF); err != nil {
		return nil, err
	}
	if err := c.SetAddress(in.Address); err != nil {
		return nil, err
	}

	if err := repo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "client updated", "user_id", p.ID, "client_id", id)
	return repo.GetByID(ctx, id, p.ID)
}

// Delete archives the client, or removes it when soft is false.
func (s *ClientService) Delete(ctx context.Context, p auth.Principal, id int64, soft bool) (string, error) {
	if err := s.repomanager.Clients(s.db).Delete(ctx, id, p.ID, soft); err != nil {
		return "", err
	}
	s.logger.Info(ctx, "client deleted", "user_id", p.ID, "client_id", id, "soft", soft)
	if soft {
		return MsgClientSoftDel, nil
	}
	return MsgClientHardDel, nil
}

func (s *ClientService) Restore(ctx context.Context, p auth.Principal, id int64) (string, error) {
	if err := s.repomanager.Clients(s.db).Restore(ctx, id, p.ID); err != nil {
		return "", err
	}
	s.logger.Info(ctx, "client restored", "user_id", p.ID, "client_id", id)
	return MsgClientRestored, nil
}
