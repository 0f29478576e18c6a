package httpapi

import (
	"context"

	"github.com/dmitrijs2005/deliverynotes/internal/logging"
	"github.com/dmitrijs2005/deliverynotes/internal/server/auth"
	"github.com/dmitrijs2005/deliverynotes/internal/server/models"
	"github.com/dmitrijs2005/deliverynotes/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/deliverynotes/internal/server/services"
)

type ContactUseCases interface {
	Register(ctx context.Context, email, password string) (*services.AuthResult, error)
	ValidateEmail(ctx context.Context, p auth.Principal, code string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	OnboardCompany(ctx context.Context, p auth.Principal, profile contacts.CompanyProfile) (*services.AuthResult, error)
	OnboardPersonal(ctx context.Context, p auth.Principal, profile contacts.PersonalProfile) (*services.AuthResult, error)
	RecoverPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, email, code, password string) (string, error)
	UploadProfileImage(ctx context.Context, p auth.Principal, path string) (*services.AuthResult, error)
	Get(ctx context.Context, p auth.Principal) (*services.AuthResult, error)
	Delete(ctx context.Context, p auth.Principal, soft bool) (string, error)
	Summarize(ctx context.Context) (*contacts.Summary, error)
}

type ClientUseCases interface {
	Create(ctx context.Context, p auth.Principal, in services.ClientInput) (*models.Client, error)
	Get(ctx context.Context, p auth.Principal, id int64) (*models.Client, error)
	List(ctx context.Context, p auth.Principal) ([]*models.Client, error)
	ListArchived(ctx context.Context, p auth.Principal) ([]*models.Client, error)
	Update(ctx context.Context, p auth.Principal, id int64, in services.ClientInput) (*models.Client, error)
	Delete(ctx context.Context, p auth.Principal, id int64, soft bool) (string, error)
	Restore(ctx context.Context, p auth.Principal, id int64) (string, error)
}

type ProjectUseCases interface {
	Create(ctx context.Context, p auth.Principal, in services.ProjectInput) (*models.Project, error)
	Get(ctx context.Context, p auth.Principal, id int64) (*models.Project, error)
	List(ctx context.Context, p auth.Principal) ([]*models.Project, error)
	ListArchived(ctx context.Context, p auth.Principal) ([]*models.Project, error)
	Update(ctx context.Context, p auth.Principal, id int64, in services.ProjectInput) (*models.Project, error)
	Delete(ctx context.Context, p auth.Principal, id int64, soft bool) (string, error)
	Restore(ctx context.Context, p auth.Principal, id int64) (string, error)
}

type NoteUseCases interface {
	Create(ctx context.Context, p auth.Principal, in services.NoteInput) (*services.NoteEntries, error)
	List(ctx context.Context, p auth.Principal) ([]services.NoteEntries, error)
	Get(ctx context.Context, p auth.Principal, id int64) (*models.NoteAggregate, error)
	GeneratePDF(ctx context.Context, p auth.Principal, id int64) (string, error)
	UploadSignature(ctx context.Context, p auth.Principal, id int64, path string) (string, error)
	Delete(ctx context.Context, p auth.Principal, id int64) (string, error)
}

var (
	_ ContactUseCases = (*services.ContactService)(nil)
	_ ClientUseCases  = (*services.ClientService)(nil)
	_ ProjectUseCases = (*services.ProjectService)(nil)
	_ NoteUseCases    = (*services.NoteService)(nil)
	_ TokenParser     = (*auth.Issuer)(nil)
)

type handlers struct {
	contacts  ContactUseCases
	clients   ClientUseCases
	projects  ProjectUseCases
	notes     NoteUseCases
	uploadDir string
	logger    logging.Logger
}

type messageResponse struct {
	Message string `json:"message"`
}
