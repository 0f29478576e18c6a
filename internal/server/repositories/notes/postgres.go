// Package notes persists delivery notes and their entries in PostgreSQL.
package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

const (
	noteColumns  = `id, user_id, client_id, project_id, signed, signature_url, pdf_url, created_at`
	entryColumns = `id, delivery_note_id, type, person, hours, material, quantity, description, workdate`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*models.DeliveryNote, error) {
	var p models.DeliveryNoteParams
	if err := row.Scan(&p.ID, &p.UserID, &p.ClientID, &p.ProjectID, &p.Signed, &p.SignatureURL, &p.PDFURL, &p.CreatedAt); err != nil {
		return nil, err
	}
	return models.NewDeliveryNote(p)
}

func scanEntry(row rowScanner) (*models.Entry, error) {
	var (
		p         models.EntryParams
		entryType string
		workdate  time.Time
	)
	if err := row.Scan(&p.ID, &p.DeliveryNoteID, &entryType, &p.Person, &p.Hours, &p.Material, &p.Quantity,
		&p.Description, &workdate); err != nil {
		return nil, err
	}
	p.Type = models.EntryType(entryType)
	p.Workdate = workdate.Format(models.WorkdateLayout)
	return models.NewEntry(p)
}

func (r *PostgresRepository) CreateNote(ctx context.Context, n *models.DeliveryNote) (*models.DeliveryNote, error) {
	query :=
		`INSERT INTO delivery_notes (user_id, client_id, project_id, signed, signature_url, pdf_url)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		n.UserID(), n.ClientID(), n.ProjectID(), n.IsSigned(), n.SignatureURL(), n.PDFURL()).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	n.SetID(id)
	return n, nil
}

func (r *PostgresRepository) CreateEntry(ctx context.Context, e *models.Entry) (*models.Entry, error) {
	query :=
		`INSERT INTO delivery_note_entries (delivery_note_id, type, person, hours, material, quantity, description, workdate)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		e.DeliveryNoteID(), e.Type(), e.Person(), e.Hours(), e.Material(), e.Quantity(), e.Description(), e.Workdate()).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	e.SetID(id)
	return e, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.DeliveryNote, error) {
	query := `SELECT ` + noteColumns + ` FROM delivery_notes WHERE user_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.DeliveryNote, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id, userID int64) (*models.DeliveryNote, error) {
	query := `SELECT ` + noteColumns + ` FROM delivery_notes WHERE id = $1 AND user_id = $2`

	n, err := scanNote(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNoteNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// ListEntries returns the entries of a note in insertion order.
func (r *PostgresRepository) ListEntries(ctx context.Context, noteID int64) ([]*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM delivery_note_entries WHERE delivery_note_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, noteID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) IsSigned(ctx context.Context, id, userID int64) (bool, error) {
	var signed bool
	err := r.db.QueryRowContext(ctx, `SELECT signed FROM delivery_notes WHERE id = $1 AND user_id = $2`, id, userID).Scan(&signed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, common.ErrNoteNotFound
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return signed, nil
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireAffected(res, common.ErrNoteNotFound)
}

func (r *PostgresRepository) SetPDFURL(ctx context.Context, id, userID int64, url string) error {
	return r.exec(ctx, `UPDATE delivery_notes SET pdf_url = $1 WHERE id = $2 AND user_id = $3`, url, id, userID)
}

// Sign stores the signature location and flags the note as signed.
func (r *PostgresRepository) Sign(ctx context.Context, id, userID int64, url string) error {
	return r.exec(ctx, `UPDATE delivery_notes SET signature_url = $1, signed = TRUE WHERE id = $2 AND user_id = $3`, url, id, userID)
}

func (r *PostgresRepository) DeleteEntries(ctx context.Context, noteID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM delivery_note_entries WHERE delivery_note_id = $1`, noteID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes an unsigned note owned by userID.
func (r *PostgresRepository) Delete(ctx context.Context, id, userID int64) error {
	return r.exec(ctx, `DELETE FROM delivery_notes WHERE id = $1 AND user_id = $2 AND signed = FALSE`, id, userID)
}
