package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/deliverynotes/internal/dbx"
	"github.com/dmitrijs2005/deliverynotes/internal/server/repositories/clients"
	"github.com/dmitrijs2005/deliverynotes/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/deliverynotes/internal/server/repositories/notes"
	"github.com/dmitrijs2005/deliverynotes/internal/server/repositories/projects"
)

// RepositoryManager hands out repositories bound to either the pool or a
// running transaction, so services can group calls atomically.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Contacts(db dbx.DBTX) contacts.Repository
	Clients(db dbx.DBTX) clients.Repository
	Projects(db dbx.DBTX) projects.Repository
	Notes(db dbx.DBTX) notes.Repository
}
