package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/deliverynotes/internal/common"
	"github.com/dmitrijs2005/deliverynotes/internal/dbx"
	"github.com/dmitrijs2005/deliverynotes/internal/logging"
	"github.com/dmitrijs2005/deliverynotes/internal/server/auth"
	"github.com/dmitrijs2005/deliverynotes/internal/server/models"
	"github.com/dmitrijs2005/deliverynotes/internal/server/repositories/clients"
	"github.com/dmitrijs2005/deliverynotes/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/deliverynotes/internal/server/repositories/notes"
	"github.com/dmitrijs2005/deliverynotes/internal/server/repositories/projects"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var errBoom = errors.New("boom")

// --- repository manager ---

type fakeRepoManager struct {
	contacts *fakeContacts
	clients  *fakeClients
	projects *fakeProjects
	notes    *fakeNotes
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Contacts(dbx.DBTX) contacts.Repository        { return m.contacts }
func (m *fakeRepoManager) Clients(dbx.DBTX) clients.Repository          { return m.clients }
func (m *fakeRepoManager) Projects(dbx.DBTX) projects.Repository        { return m.projects }
func (m *fakeRepoManager) Notes(dbx.DBTX) notes.Repository              { return m.notes }

// --- contacts ---

type deleteCall struct {
	id   int64
	soft bool
}

type fakeContacts struct {
	mu       sync.Mutex
	rows     map[int64]*models.ContactParams
	nextID   int64
	recovery map[string]string

	deleteErr error
	deletes   []deleteCall
	summary   *contacts.Summary
}

func newFakeContacts() *fakeContacts {
	return &fakeContacts{rows: map[int64]*models.ContactParams{}, recovery: map[string]string{}, nextID: 1}
}

func (f *fakeContacts) put(p models.ContactParams) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := p
	f.rows[p.ID] = &cp
	if p.ID >= f.nextID {
		f.nextID = p.ID + 1
	}
}

func (f *fakeContacts) row(id int64) (*models.ContactParams, error) {
	r, ok := f.rows[id]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	return r, nil
}

func (f *fakeContacts) Create(_ context.Context, c *models.Contact) (*models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.SetID(f.nextID)
	f.nextID++
	f.rows[c.ID()] = &models.ContactParams{
		ID: c.ID(), Email: c.Email(), PasswordHash: c.PasswordHash(), Attempts: c.Attempts(),
		EmailCode: c.EmailCode(), Role: c.Role(), Status: c.Status(),
	}
	return c, nil
}

func (f *fakeContacts) EmailExists(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeContacts) GetByID(_ context.Context, id int64) (*models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.row(id)
	if err != nil {
		return nil, err
	}
	return models.RestoreContact(*r)
}

func (f *fakeContacts) GetByEmail(_ context.Context, email string) (*models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.Email == email {
			return models.RestoreContact(*r)
		}
	}
	return nil, common.ErrEmailNotRegistered
}

func (f *fakeContacts) update(id int64, fn func(*models.ContactParams)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.row(id)
	if err != nil {
		return err
	}
	fn(r)
	return nil
}

func (f *fakeContacts) MarkEmailValidated(_ context.Context, id int64) error {
	return f.update(id, func(r *models.ContactParams) {
		r.EmailStatus = 1
		r.Status = models.StatusActive
	})
}

func (f *fakeContacts) DecrementAttempts(_ context.Context, id int64) error {
	return f.update(id, func(r *models.ContactParams) { r.Attempts-- })
}

func (f *fakeContacts) Deactivate(_ context.Context, id int64) error {
	return f.update(id, func(r *models.ContactParams) {
		r.Status = models.StatusDeactivated
		r.Attempts = 0
	})
}

func (f *fakeContacts) UpdateCompanyProfile(_ context.Context, id int64, p contacts.CompanyProfile) error {
	return f.update(id, func(r *models.ContactParams) {
		r.Name, r.CIF, r.Address = &p.Name, &p.CIF, p.Address
		r.Role = models.RoleCompany
	})
}

func (f *fakeContacts) UpdatePersonalProfile(_ context.Context, id int64, p contacts.PersonalProfile) error {
	return f.update(id, func(r *models.ContactParams) {
		r.Name, r.Surname, r.NIF = &p.Name, &p.Surname, &p.NIF
		r.Role = models.RolePersonalUser
	})
}

func (f *fakeContacts) SetURL(_ context.Context, id int64, url string) error {
	return f.update(id, func(r *models.ContactParams) { r.URL = &url })
}

func (f *fakeContacts) Delete(_ context.Context, id int64, soft bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, deleteCall{id: id, soft: soft})
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if soft {
		if r, ok := f.rows[id]; ok {
			r.Status = models.StatusDeleted
		}
		return nil
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeContacts) SetRecoveryCode(_ context.Context, email, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.Email == email {
			f.recovery[email] = code
			return nil
		}
	}
	return common.ErrEmailNotRegistered
}

func (f *fakeContacts) ResetPassword(_ context.Context, email, code, hash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.Email != email {
			continue
		}
		if f.recovery[email] != code {
			return false, nil
		}
		r.PasswordHash = hash
		return true, nil
	}
	return false, common.ErrEmailNotRegistered
}

func (f *fakeContacts) Summarize(context.Context) (*contacts.Summary, error) {
	return f.summary, nil
}

// --- clients ---

type fakeClients struct {
	mu        sync.Mutex
	rows      map[int64]*models.Client
	nextID    int64
	cifTaken  bool
	createCnt int
	updateErr error
	deleteErr error
	restored  []int64
}

func newFakeClients() *fakeClients {
	return &fakeClients{rows: map[int64]*models.Client{}, nextID: 1}
}

func (f *fakeClients) CIFExists(context.Context, string, int64) (bool, error) { return f.cifTaken, nil }

func (f *fakeClients) Create(_ context.Context, c *models.Client) (*models.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCnt++
	c.SetID(f.nextID)
	f.nextID++
	f.rows[c.ID()] = c
	return c, nil
}

func (f *fakeClients) Get(_ context.Context, id int64) (*models.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return nil, common.ErrClientNotFound
	}
	return c, nil
}

func (f *fakeClients) GetByID(ctx context.Context, id, userID int64) (*models.Client, error) {
	c, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID() != userID {
		return nil, common.ErrClientNotFound
	}
	return c, nil
}

func (f *fakeClients) list(userID int64, archived bool) []*models.Client {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Client, 0)
	for _, c := range f.rows {
		if c.UserID() == userID && c.IsArchived() == archived {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (f *fakeClients) ListActive(_ context.Context, userID int64) ([]*models.Client, error) {
	return f.list(userID, false), nil
}

func (f *fakeClients) ListArchived(_ context.Context, userID int64) ([]*models.Client, error) {
	return f.list(userID, true), nil
}

func (f *fakeClients) Update(_ context.Context, c *models.Client) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[c.ID()] = c
	return nil
}

func (f *fakeClients) Delete(_ context.Context, id, _ int64, soft bool) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if soft {
		f.rows[id].SetArchived(true)
		return nil
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeClients) Restore(_ context.Context, id, _ int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return common.ErrNotAuthorized
	}
	if !c.IsArchived() {
		return common.ErrClientNotArchived
	}
	c.SetArchived(false)
	f.restored = append(f.restored, id)
	return nil
}

// --- projects ---

type fakeProjects struct {
	mu        sync.Mutex
	rows      map[int64]*models.Project
	nextID    int64
	exists    bool
	nameTaken bool
	updated   int
	deleteErr error
}

func newFakeProjects() *fakeProjects {
	return &fakeProjects{rows: map[int64]*models.Project{}, nextID: 1}
}

func (f *fakeProjects) Exists(context.Context, string, string) (bool, error) { return f.exists, nil }

func (f *fakeProjects) NameTaken(context.Context, string, int64, int64) (bool, error) {
	return f.nameTaken, nil
}

func (f *fakeProjects) Create(_ context.Context, p *models.Project) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.SetID(f.nextID)
	f.nextID++
	f.rows[p.ID()] = p
	return p, nil
}

func (f *fakeProjects) Get(_ context.Context, id int64) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return nil, common.ErrProjectNotFound
	}
	return p, nil
}

func (f *fakeProjects) GetByID(ctx context.Context, id, userID int64) (*models.Project, error) {
	p, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID() != userID {
		return nil, common.ErrProjectNotFound
	}
	return p, nil
}

func (f *fakeProjects) ListActive(context.Context, int64) ([]*models.Project, error) {
	return []*models.Project{}, nil
}

func (f *fakeProjects) ListArchived(context.Context, int64) ([]*models.Project, error) {
	return []*models.Project{}, nil
}

func (f *fakeProjects) Update(_ context.Context, p *models.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated++
	f.rows[p.ID()] = p
	return nil
}

func (f *fakeProjects) Delete(context.Context, int64, int64, bool) error { return f.deleteErr }

func (f *fakeProjects) Restore(context.Context, int64, int64) error { return nil }

// --- notes ---

type fakeNotes struct {
	mu      sync.Mutex
	notes   map[int64]*models.DeliveryNote
	entries map[int64][]*models.Entry
	nextID  int64

	failEntryAt int // 1-based; 0 disables
	entryCalls  int

	deleteCalled   bool
	deletedEntries []int64
	pdfURL         map[int64]string
}

func newFakeNotes() *fakeNotes {
	return &fakeNotes{
		notes:   map[int64]*models.DeliveryNote{},
		entries: map[int64][]*models.Entry{},
		pdfURL:  map[int64]string{},
		nextID:  1,
	}
}

func (f *fakeNotes) CreateNote(_ context.Context, n *models.DeliveryNote) (*models.DeliveryNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.SetID(f.nextID)
	f.nextID++
	f.notes[n.ID()] = n
	return n, nil
}

func (f *fakeNotes) CreateEntry(_ context.Context, e *models.Entry) (*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entryCalls++
	if f.failEntryAt == f.entryCalls {
		return nil, errBoom
	}
	e.SetID(int64(100 + f.entryCalls))
	f.entries[e.DeliveryNoteID()] = append(f.entries[e.DeliveryNoteID()], e)
	return e, nil
}

func (f *fakeNotes) ListByUser(_ context.Context, userID int64) ([]*models.DeliveryNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.DeliveryNote, 0)
	for _, n := range f.notes {
		if n.UserID() == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (f *fakeNotes) GetByID(_ context.Context, id, userID int64) (*models.DeliveryNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok || n.UserID() != userID {
		return nil, common.ErrNoteNotFound
	}
	return n, nil
}

func (f *fakeNotes) ListEntries(_ context.Context, noteID int64) ([]*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.Entry{}, f.entries[noteID]...), nil
}

func (f *fakeNotes) IsSigned(ctx context.Context, id, userID int64) (bool, error) {
	n, err := f.GetByID(ctx, id, userID)
	if err != nil {
		return false, err
	}
	return n.IsSigned(), nil
}

func (f *fakeNotes) SetPDFURL(ctx context.Context, id, userID int64, url string) error {
	n, err := f.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n.SetPDFURL(&url)
	f.pdfURL[id] = url
	return nil
}

func (f *fakeNotes) Sign(ctx context.Context, id, userID int64, url string) error {
	n, err := f.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}
	n.Sign(url)
	return nil
}

func (f *fakeNotes) DeleteEntries(_ context.Context, noteID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedEntries = append(f.deletedEntries, noteID)
	delete(f.entries, noteID)
	return nil
}

func (f *fakeNotes) Delete(_ context.Context, id, _ int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalled = true
	delete(f.notes, id)
	return nil
}

// --- collaborators ---

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	err  error
	sent []sentMail
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return m.err
}

type fakeFiles struct {
	err     error
	paths   []string
	names   []string
	payload []byte
}

func (f *fakeFiles) UploadFile(_ context.Context, path string) (string, error) {
	f.paths = append(f.paths, path)
	if f.err != nil {
		return "", f.err
	}
	return "https://files.example/" + path, nil
}

func (f *fakeFiles) UploadNamed(_ context.Context, name string, data []byte) (string, error) {
	f.names = append(f.names, name)
	f.payload = data
	if f.err != nil {
		return "", f.err
	}
	return "https://files.example/" + name, nil
}

type fakeRenderer struct {
	got *models.NoteAggregate
	err error
}

func (r *fakeRenderer) Render(_ context.Context, a *models.NoteAggregate) ([]byte, error) {
	r.got = a
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.3"), nil
}

type fakeTokens struct{}

func (fakeTokens) Issue(p auth.Principal) (string, error) {
	return "tok-" + string(p.Role), nil
}

func (fakeTokens) IssuePermanent(p auth.Principal) (string, error) {
	return "perm-" + p.Email, nil
}
