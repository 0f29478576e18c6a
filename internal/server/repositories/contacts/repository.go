package contacts

import (
	"context"

	"github.com/dmitrijs2005/deliverynotes/internal/server/models"
)

// CompanyProfile is the onboarding data of a company account.
type CompanyProfile struct {
	Name    string
	CIF     string
	Address *string
}

// PersonalProfile is the onboarding data of a personal account.
type PersonalProfile struct {
	Name    string
	Surname string
	NIF     string
}

// Summary counts accounts by lifecycle state.
type Summary struct {
	ActiveUsers         int64 `json:"numActiveUsers"`
	SoftDeletedUsers    int64 `json:"numDeletedUsers_soft"`
	InactiveUsers       int64 `json:"numInactiveUsers"`
	ActiveCompanyUsers  int64 `json:"numActiveCompanyUsers"`
	ActivePersonalUsers int64 `json:"numActivePersonalUsers"`
	DeactivatedUsers    int64 `json:"numDeactivatedUsers"`
}

type Repository interface {
	Create(ctx context.Context, c *models.Contact) (*models.Contact, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	GetByID(ctx context.Context, id int64) (*models.Contact, error)
	GetByEmail(ctx context.Context, email string) (*models.Contact, error)
	MarkEmailValidated(ctx context.Context, id int64) error
	DecrementAttempts(ctx context.Context, id int64) error
	Deactivate(ctx context.Context, id int64) error
	UpdateCompanyProfile(ctx context.Context, id int64, p CompanyProfile) error
	UpdatePersonalProfile(ctx context.Context, id int64, p PersonalProfile) error
	SetURL(ctx context.Context, id int64, url string) error
	Delete(ctx context.Context, id int64, soft bool) error
	SetRecoveryCode(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code, passwordHash string) (bool, error)
	Summarize(ctx context.Context) (*Summary, error)
}
