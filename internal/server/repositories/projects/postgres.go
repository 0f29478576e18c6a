// Package projects persists projects in PostgreSQL.
package projects

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

const projectColumns = `id, name, email, address, user_id, client_id, archived`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	var (
		p    models.ProjectParams
		addr []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Email, &addr, &p.UserID, &p.ClientID, &p.Archived); err != nil {
		return nil, err
	}
	p.Address = models.Address{}
	if len(addr) > 0 {
		if err := json.Unmarshal(addr, &p.Address); err != nil {
			return nil, fmt.Errorf("decode address: %w", err)
		}
	}
	return models.NewProject(p)
}

func (r *PostgresRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var ok bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, name, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE name = $1 AND email = $2)`, name, email)
}

func (r *PostgresRepository) NameTaken(ctx context.Context, name string, userID, excludeID int64) (bool, error) {
	return r.exists(ctx,
		`SELECT EXISTS (SELECT 1 FROM projects WHERE name = $1 AND user_id = $2 AND id <> $3)`,
		name, userID, excludeID)
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	addr, err := json.Marshal(p.Address())
	if err != nil {
		return nil, fmt.Errorf("encode address: %w", err)
	}

	query :=
		`INSERT INTO projects (name, email, address, user_id, client_id, archived)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`

	var id int64
	err = r.db.QueryRowContext(ctx, query, p.Name(), p.Email(), addr, p.UserID(), p.ClientID(), p.IsArchived()).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	p.SetID(id)
	return p, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrProjectNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Project, error) {
	return r.getOne(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id, userID int64) (*models.Project, error) {
	return r.getOne(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *PostgresRepository) list(ctx context.Context, userID int64, archived bool) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE user_id = $1 AND archived = $2 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID, archived)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) ListActive(ctx context.Context, userID int64) ([]*models.Project, error) {
	return r.list(ctx, userID, false)
}

func (r *PostgresRepository) ListArchived(ctx context.Context, userID int64) ([]*models.Project, error) {
	return r.list(ctx, userID, true)
}

func (r *PostgresRepository) Update(ctx context.Context, p *models.Project) error {
	addr, err := json.Marshal(p.Address())
	if err != nil {
		return fmt.Errorf("encode address: %w", err)
	}

	query :=
		`UPDATE projects SET name = $1, email = $2, address = $3, client_id = $4
		 WHERE id = $5 AND user_id = $6 AND archived = FALSE`

	res, err := r.db.ExecContext(ctx, query, p.Name(), p.Email(), addr, p.ClientID(), p.ID(), p.UserID())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireAffected(res, common.ErrProjectNotFound)
}

func (r *PostgresRepository) owned(ctx context.Context, id, userID int64) (bool, error) {
	var (
		owner    int64
		archived bool
	)
	err := r.db.QueryRowContext(ctx, `SELECT user_id, archived FROM projects WHERE id = $1`, id).Scan(&owner, &archived)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, common.ErrProjectNotFound
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	if owner != userID {
		return false, common.ErrNotAuthorized
	}
	return archived, nil
}

// Delete archives the project when soft is true, otherwise removes it.
// An archived project cannot be archived again.
func (r *PostgresRepository) Delete(ctx context.Context, id, userID int64, soft bool) error {
	archived, err := r.owned(ctx, id, userID)
	if err != nil {
		return err
	}

	query := `DELETE FROM projects WHERE id = $1 AND user_id = $2`
	if soft {
		if archived {
			return common.ErrProjectArchived
		}
		query = `UPDATE projects SET archived = TRUE WHERE id = $1 AND user_id = $2`
	} else if err := r.checkNoSignedNotes(ctx, id); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireAffected(res, common.ErrProjectNotFound)
}

func (r *PostgresRepository) Restore(ctx context.Context, id, userID int64) error {
	archived, err := r.owned(ctx, id, userID)
	if err != nil {
		return err
	}
	if !archived {
		return common.ErrProjectNotArchived
	}

	res, err := r.db.ExecContext(ctx, `UPDATE projects SET archived = FALSE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.RequireAffected(res, common.ErrProjectNotFound)
}

// checkNoSignedNotes guards hard deletes: removing the project would cascade
// to its delivery notes, and signed notes must survive.
func (r *PostgresRepository) checkNoSignedNotes(ctx context.Context, id int64) error {
	var signed bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM delivery_notes WHERE project_id = $1 AND signed)`, id).Scan(&signed)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if signed {
		return common.ErrSignedNote.WithMessage("can not delete a project with signed notes")
	}
	return nil
}
