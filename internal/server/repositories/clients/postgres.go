// Package clients persists clients in PostgreSQL.
package clients

import (
	"context"
	"database/sql"
	"encoding/json"
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

const clientColumns = `id, name, cif, address, user_id, archived`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*models.Client, error) {
	var (
		p    models.ClientParams
		addr []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.CIF, &addr, &p.UserID, &p.Archived); err != nil {
		return nil, err
	}
	p.Address = models.Address{}
	if len(addr) > 0 {
		if err := json.Unmarshal(addr, &p.Address); err != nil {
			return nil, fmt.Errorf("decode address: %w", err)
		}
	}
	return models.NewClient(p)
}

func (r *PostgresRepository) CIFExists(ctx context.Context, cif string, userID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM clients WHERE cif = $1 AND user_id = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, cif, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Client) (*models.Client, error) {
	addr, err := json.Marshal(c.Address())
	if err != nil {
		return nil, fmt.Errorf("encode address: %w", err)
	}

	query :=
		`INSERT INTO clients (name, cif, address, user_id, archived)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`

	var id int64
	if err := r.db.QueryRowContext(ctx, query, c.Name(), c.CIF(), addr, c.UserID(), c.IsArchived()).Scan(&id); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	c.SetID(id)
	return c, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Client, error) {
	c, err := scanClient(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrClientNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Client, error) {
	return r.getOne(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id, userID int64) (*models.Client, error) {
	return r.getOne(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *PostgresRepository) list(ctx context.Context, userID int64, archived bool) ([]*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE user_id = $1 AND archived = $2 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID, archived)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) ListActive(ctx context.Context, userID int64) ([]*models.Client, error) {
	return r.list(ctx, userID, false)
}

func (r *PostgresRepository) ListArchived(ctx context.Context, userID int64) ([]*models.Client, error) {
	return r.list(ctx, userID, true)
}

// Update writes the mutable fields of a non-archived client owned by c.UserID().
func (r *PostgresRepository) Update(ctx context.Context, c *models.Client) error {
	addr, err := json.Marshal(c.Address())
	if err != nil {
		return fmt.Errorf("encode address: %w", err)
	}

	query :=
		`UPDATE clients SET name = $1, cif = $2, address = $3
		 WHERE id = $4 AND user_id = $5 AND archived = FALSE`

	res, err := r.db.ExecContext(ctx, query, c.Name(), c.CIF(), addr, c.ID(), c.UserID())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireAffected(res, common.ErrClientNotFound)
}

// owned loads the owner and archived flag of a client and checks ownership.
func (r *PostgresRepository) owned(ctx context.Context, id, userID int64) (bool, error) {
	var (
		owner    int64
		archived bool
	)
	err := r.db.QueryRowContext(ctx, `SELECT user_id, archived FROM clients WHERE id = $1`, id).Scan(&owner, &archived)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, common.ErrClientNotFound
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	if owner != userID {
		return false, common.ErrNotAuthorized
	}
	return archived, nil
}

// Delete archives the client when soft is true, otherwise removes it.
// Archiving an already archived client is a no-op.
func (r *PostgresRepository) Delete(ctx context.Context, id, userID int64, soft bool) error {
	if _, err := r.owned(ctx, id, userID); err != nil {
		return err
	}

	query := `DELETE FROM clients WHERE id = $1 AND user_id = $2`
	if soft {
		query = `UPDATE clients SET archived = TRUE WHERE id = $1 AND user_id = $2`
	} else if err := r.checkNoSignedNotes(ctx, id); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireAffected(res, common.ErrClientNotFound)
}

func (r *PostgresRepository) Restore(ctx context.Context, id, userID int64) error {
	archived, err := r.owned(ctx, id, userID)
	if err != nil {
		return err
	}
	if !archived {
		return common.ErrClientNotArchived
	}

	res, err := r.db.ExecContext(ctx, `UPDATE clients SET archived = FALSE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireAffected(res, common.ErrClientNotFound)
}

// checkNoSignedNotes guards hard deletes: removing the client would cascade
// to its delivery notes, and signed notes must survive.
func (r *PostgresRepository) checkNoSignedNotes(ctx context.Context, id int64) error {
	var signed bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM delivery_notes WHERE client_id = $1 AND signed)`, id).Scan(&signed)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if signed {
		return common.ErrSignedNote.WithMessage("can not delete a client with signed notes")
	}
	return nil
}
