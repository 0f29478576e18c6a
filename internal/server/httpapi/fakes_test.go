package httpapi

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/deliverynotes/internal/logging"
	"github.com/dmitrijs2005/deliverynotes/internal/server/auth"
	"github.com/dmitrijs2005/deliverynotes/internal/server/models"
	"github.com/dmitrijs2005/deliverynotes/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/deliverynotes/internal/server/services"
)

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeContacts struct {
	err        error
	email      string
	password   string
	code       string
	company    contacts.CompanyProfile
	personal   contacts.PersonalProfile
	soft       *bool
	uploadPath string
	uploadSeen bool
	caller     auth.Principal
}

func (f *fakeContacts) result(msg string) (*services.AuthResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.AuthResult{Token: "tok", User: models.ContactData{ID: 1, Email: "a@b.com"}, Message: msg}, nil
}

func (f *fakeContacts) Register(_ context.Context, email, password string) (*services.AuthResult, error) {
	f.email, f.password = email, password
	return f.result(services.MsgRegistered)
}

func (f *fakeContacts) ValidateEmail(_ context.Context, p auth.Principal, code string) (*services.AuthResult, error) {
	f.caller, f.code = p, code
	return f.result(services.MsgEmailValidated)
}

func (f *fakeContacts) Login(_ context.Context, email, password string) (*services.AuthResult, error) {
	f.email, f.password = email, password
	return f.result(services.MsgLoginSuccessful)
}

func (f *fakeContacts) OnboardCompany(_ context.Context, p auth.Principal, profile contacts.CompanyProfile) (*services.AuthResult, error) {
	f.caller, f.company = p, profile
	return f.result("")
}

func (f *fakeContacts) OnboardPersonal(_ context.Context, p auth.Principal, profile contacts.PersonalProfile) (*services.AuthResult, error) {
	f.caller, f.personal = p, profile
	return f.result("")
}

func (f *fakeContacts) RecoverPassword(_ context.Context, email string) (string, error) {
	f.email = email
	return services.MsgRecoverySent, f.err
}

func (f *fakeContacts) ResetPassword(_ context.Context, email, code, password string) (string, error) {
	f.email, f.code, f.password = email, code, password
	return services.MsgPasswordChanged, f.err
}

func (f *fakeContacts) UploadProfileImage(_ context.Context, p auth.Principal, path string) (*services.AuthResult, error) {
	f.caller, f.uploadPath = p, path
	_, err := os.Stat(path)
	f.uploadSeen = err == nil
	return f.result(services.MsgProfileImage)
}

func (f *fakeContacts) Get(_ context.Context, p auth.Principal) (*services.AuthResult, error) {
	f.caller = p
	return f.result("")
}

func (f *fakeContacts) Delete(_ context.Context, p auth.Principal, soft bool) (string, error) {
	f.caller, f.soft = p, &soft
	if soft {
		return services.MsgContactSoftDel, f.err
	}
	return services.MsgContactHardDel, f.err
}

func (f *fakeContacts) Summarize(context.Context) (*contacts.Summary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &contacts.Summary{ActiveUsers: 3, DeactivatedUsers: 1}, nil
}

type fakeClients struct {
	err   error
	id    int64
	soft  *bool
	input services.ClientInput
}

func (f *fakeClients) client() (*models.Client, error) {
	if f.err != nil {
		return nil, f.err
	}
	return models.NewClient(models.ClientParams{ID: 5, Name: "Client", CIF: "B1", Address: models.Address{}, UserID: 1})
}

func (f *fakeClients) Create(_ context.Context, _ auth.Principal, in services.ClientInput) (*models.Client, error) {
	f.input = in
	return f.client()
}

func (f *fakeClients) Get(_ context.Context, _ auth.Principal, id int64) (*models.Client, error) {
	f.id = id
	return f.client()
}

func (f *fakeClients) List(context.Context, auth.Principal) ([]*models.Client, error) {
	c, err := f.client()
	if err != nil {
		return nil, err
	}
	return []*models.Client{c}, nil
}

func (f *fakeClients) ListArchived(context.Context, auth.Principal) ([]*models.Client, error) {
	return []*models.Client{}, f.err
}

func (f *fakeClients) Update(_ context.Context, _ auth.Principal, id int64, in services.ClientInput) (*models.Client, error) {
	f.id, f.input = id, in
	return f.client()
}

func (f *fakeClients) Delete(_ context.Context, _ auth.Principal, id int64, soft bool) (string, error) {
	f.id, f.soft = id, &soft
	return services.MsgClientSoftDel, f.err
}

func (f *fakeClients) Restore(_ context.Context, _ auth.Principal, id int64) (string, error) {
	f.id = id
	return services.MsgClientRestored, f.err
}

type fakeProjects struct {
	err   error
	id    int64
	input services.ProjectInput
}

func (f *fakeProjects) project() (*models.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	return models.NewProject(models.ProjectParams{ID: 9, Name: "Roof", Email: "site@acme.io", Address: models.Address{},
		UserID: 1, ClientID: 5})
}

func (f *fakeProjects) Create(_ context.Context, _ auth.Principal, in services.ProjectInput) (*models.Project, error) {
	f.input = in
	return f.project()
}

func (f *fakeProjects) Get(_ context.Context, _ auth.Principal, id int64) (*models.Project, error) {
	f.id = id
	return f.project()
}

func (f *fakeProjects) List(context.Context, auth.Principal) ([]*models.Project, error) {
	p, err := f.project()
	if err != nil {
		return nil, err
	}
	return []*models.Project{p}, nil
}

func (f *fakeProjects) ListArchived(context.Context, auth.Principal) ([]*models.Project, error) {
	return []*models.Project{}, f.err
}

func (f *fakeProjects) Update(_ context.Context, _ auth.Principal, id int64, in services.ProjectInput) (*models.Project, error) {
	f.id, f.input = id, in
	return f.project()
}

func (f *fakeProjects) Delete(_ context.Context, _ auth.Principal, id int64, soft bool) (string, error) {
	f.id = id
	if soft {
		return services.MsgProjectSoftDel, f.err
	}
	return services.MsgProjectHardDel, f.err
}

func (f *fakeProjects) Restore(_ context.Context, _ auth.Principal, id int64) (string, error) {
	f.id = id
	return services.MsgProjectRestored, f.err
}

type fakeNotes struct {
	err        error
	id         int64
	input      services.NoteInput
	uploadPath string
	uploadSeen bool
}

func (f *fakeNotes) noteEntries() services.NoteEntries {
	n, _ := models.NewDeliveryNote(models.DeliveryNoteParams{ID: 40, UserID: 1, ClientID: 5, ProjectID: 9})
	e, _ := models.NewEntry(models.EntryParams{ID: 1, DeliveryNoteID: 40, Type: models.EntryHours, Description: "Install",
		Workdate: "2024-03-02"})
	return services.NoteEntries{Note: n, Entries: []*models.Entry{e}}
}

func (f *fakeNotes) Create(_ context.Context, _ auth.Principal, in services.NoteInput) (*services.NoteEntries, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	ne := f.noteEntries()
	return &ne, nil
}

func (f *fakeNotes) List(context.Context, auth.Principal) ([]services.NoteEntries, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []services.NoteEntries{f.noteEntries()}, nil
}

func (f *fakeNotes) Get(_ context.Context, _ auth.Principal, id int64) (*models.NoteAggregate, error) {
	f.id = id
	if f.err != nil {
		return nil, f.err
	}
	ne := f.noteEntries()
	c, _ := (&fakeClients{}).client()
	p, _ := (&fakeProjects{}).project()
	return &models.NoteAggregate{Note: ne.Note, Client: c, Project: p, Entries: ne.Entries,
		Author: models.NoteAuthor{ID: 1, Email: "a@b.com", Role: models.RoleCompany}}, nil
}

func (f *fakeNotes) GeneratePDF(_ context.Context, _ auth.Principal, id int64) (string, error) {
	f.id = id
	return "https://files.example/delivery_note_40.pdf", f.err
}

func (f *fakeNotes) UploadSignature(_ context.Context, _ auth.Principal, id int64, path string) (string, error) {
	f.id, f.uploadPath = id, path
	_, err := os.Stat(path)
	f.uploadSeen = err == nil
	return "https://files.example/sig.png", f.err
}

func (f *fakeNotes) Delete(_ context.Context, _ auth.Principal, id int64) (string, error) {
	f.id = id
	return "Note 40 deleted successfully", f.err
}
