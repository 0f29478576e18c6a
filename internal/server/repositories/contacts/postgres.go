// Package contacts persists accounts in PostgreSQL.
package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/deliverynotes/internal/common"
	"github.com/dmitrijs2005/deliverynotes/internal/dbx"
	"github.com/dmitrijs2005/deliverynotes/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const contactColumns = `id, email, password_hash, attempts, email_code, emailstatus, role, status,
		name, surname, nif, cif, address, url`

func (r *PostgresRepository) Create(ctx context.Context, c *models.Contact) (*models.Contact, error) {
	query :=
		`INSERT INTO contacts (email, password_hash, attempts, email_code, emailstatus, role, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		c.Email(), c.PasswordHash(), c.Attempts(), c.EmailCode(), c.EmailStatus(), c.Role(), c.Status()).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	c.SetID(id)
	return c, nil
}

func (r *PostgresRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM contacts WHERE email = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) scanOne(row *sql.Row, notFound error) (*models.Contact, error) {
	var (
		p            models.ContactParams
		passwordHash sql.NullString
		emailCode    sql.NullString
		role, status string
	)
	err := row.Scan(&p.ID, &p.Email, &passwordHash, &p.Attempts, &emailCode, &p.EmailStatus, &role, &status,
		&p.Name, &p.Surname, &p.NIF, &p.CIF, &p.Address, &p.URL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	p.PasswordHash = passwordHash.String
	p.EmailCode = emailCode.String
	p.Role = models.Role(role)
	p.Status = models.Status(status)

	return models.RestoreContact(p)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), common.ErrUserNotFound)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email), common.ErrEmailNotRegistered)
}

func (r *PostgresRepository) exec(ctx context.Context, notFound error, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireAffected(res, notFound)
}

func (r *PostgresRepository) MarkEmailValidated(ctx context.Context, id int64) error {
	return r.exec(ctx, common.ErrUserNotFound,
		`UPDATE contacts SET emailstatus = 1, status = 'active' WHERE id = $1`, id)
}

func (r *PostgresRepository) DecrementAttempts(ctx context.Context, id int64) error {
	return r.exec(ctx, common.ErrUserNotFound,
		`UPDATE contacts SET attempts = attempts - 1 WHERE id = $1 AND attempts > 0`, id)
}

func (r *PostgresRepository) Deactivate(ctx context.Context, id int64) error {
	return r.exec(ctx, common.ErrUserNotFound,
		`UPDATE contacts SET status = 'deactivated', attempts = 0 WHERE id = $1`, id)
}

func (r *PostgresRepository) UpdateCompanyProfile(ctx context.Context, id int64, p CompanyProfile) error {
	return r.exec(ctx, common.ErrUserNotFound,
		`UPDATE contacts SET name = $1, cif = $2, address = $3, role = 'company' WHERE id = $4`,
		p.Name, p.CIF, p.Address, id)
}

func (r *PostgresRepository) UpdatePersonalProfile(ctx context.Context, id int64, p PersonalProfile) error {
	return r.exec(ctx, common.ErrUserNotFound,
		`UPDATE contacts SET name = $1, surname = $2, nif = $3, role = 'personal_user' WHERE id = $4`,
		p.Name, p.Surname, p.NIF, id)
}

func (r *PostgresRepository) SetURL(ctx context.Context, id int64, url string) error {
	return r.exec(ctx, common.ErrUserNotFound, `UPDATE contacts SET url = $1 WHERE id = $2`, url, id)
}

// Delete marks the account deleted when soft is true, otherwise removes the row.
func (r *PostgresRepository) Delete(ctx context.Context, id int64, soft bool) error {
	if soft {
		return r.exec(ctx, common.ErrUserNotFound, `UPDATE contacts SET status = 'deleted' WHERE id = $1`, id)
	}
	return r.exec(ctx, common.ErrUserNotFound, `DELETE FROM contacts WHERE id = $1`, id)
}

func (r *PostgresRepository) SetRecoveryCode(ctx context.Context, email, code string) error {
	return r.exec(ctx, common.ErrEmailNotRegistered,
		`UPDATE contacts SET recovery_code = $1 WHERE email = $2`, code, email)
}

// ResetPassword replaces the password only when code matches the stored recovery code.
// The code is consumed on success. Unknown email yields ErrEmailNotRegistered.
func (r *PostgresRepository) ResetPassword(ctx context.Context, email, code, passwordHash string) (bool, error) {
	query :=
		`UPDATE contacts SET password_hash = $1, recovery_code = NULL
		 WHERE email = $2 AND recovery_code IS NOT NULL AND recovery_code = $3`

	res, err := r.db.ExecContext(ctx, query, passwordHash, email, code)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	if n > 0 {
		return true, nil
	}

	exists, err := r.EmailExists(ctx, email)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, common.ErrEmailNotRegistered
	}
	return false, nil
}

func (r *PostgresRepository) Summarize(ctx context.Context) (*Summary, error) {
	query :=
		`SELECT
			COUNT(*) FILTER (WHERE emailstatus = 1 AND status = 'active'),
			COUNT(*) FILTER (WHERE status = 'deleted'),
			COUNT(*) FILTER (WHERE emailstatus = 0),
			COUNT(*) FILTER (WHERE emailstatus = 1 AND role = 'company' AND status = 'active'),
			COUNT(*) FILTER (WHERE emailstatus = 1 AND role = 'personal_user' AND status = 'active'),
			COUNT(*) FILTER (WHERE status = 'deactivated')
		 FROM contacts`

	s := &Summary{}
	err := r.db.QueryRowContext(ctx, query).Scan(&s.ActiveUsers, &s.SoftDeletedUsers, &s.InactiveUsers,
		&s.ActiveCompanyUsers, &s.ActivePersonalUsers, &s.DeactivatedUsers)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}
