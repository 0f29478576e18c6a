package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/deliverynotes/internal/common"
	"github.com/dmitrijs2005/deliverynotes/internal/server/auth"
	"github.com/dmitrijs2005/deliverynotes/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

type fixture struct {
	srv      *Server
	tokens   *auth.Issuer
	contacts *fakeContacts
	clients  *fakeClients
	projects *fakeProjects
	notes    *fakeNotes
	dir      string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		tokens:   auth.NewIssuer(secret, time.Hour),
		contacts: &fakeContacts{},
		clients:  &fakeClients{},
		projects: &fakeProjects{},
		notes:    &fakeNotes{},
		dir:      t.TempDir(),
	}
	f.srv = NewServer(Options{Addr: "127.0.0.1:0", BodyLimit: 4 << 20, ShutdownTimeout: time.Second, UploadDir: f.dir},
		Services{Contacts: f.contacts, Clients: f.clients, Projects: f.projects, Notes: f.notes, Tokens: f.tokens},
		discardLogger())
	return f
}

var activeCompany = auth.Principal{ID: 1, Email: "a@b.com", Role: models.RoleCompany, EmailStatus: 1, Status: models.StatusActive}

func (f *fixture) token(t *testing.T, p auth.Principal) string {
	t.Helper()
	tok, err := f.tokens.Issue(p)
	require.NoError(t, err)
	return tok
}

func (f *fixture) do(t *testing.T, req *http.Request, token string) (int, map[string]any) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.srv.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &body))
	}
	return resp.StatusCode, body
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func imageRequest(t *testing.T, method, target string, size int) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(uploadField, "sig.PNG")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{0x89}, size))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHealthIsOpen(t *testing.T) {
	f := newFixture(t)
	status, body := f.do(t, httptest.NewRequest(http.MethodGet, "/health", nil), "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestAuthenticator(t *testing.T) {
	f := newFixture(t)

	unvalidated := auth.Principal{ID: 2, Email: "n@b.com", Role: models.RoleUser, Status: models.StatusToBeValidated}
	disabled := activeCompany
	disabled.Status = models.StatusDeleted
	personal := activeCompany
	personal.Role = models.RolePersonalUser

	tests := []struct {
		name   string
		req    *http.Request
		token  string
		status int
		msg    string
	}{
		{"missing token", httptest.NewRequest(http.MethodGet, "/api/client", nil), "", 401, common.ErrMissingJWT.Message},
		{"garbage token", httptest.NewRequest(http.MethodGet, "/api/client", nil), "garbage", 401, common.ErrInvalidJWT.Message},
		{"disabled", httptest.NewRequest(http.MethodGet, "/api/client", nil), f.token(t, disabled), 403, common.ErrUserDisabled.Message},
		{"unvalidated elsewhere", httptest.NewRequest(http.MethodGet, "/api/user/data", nil), f.token(t, unvalidated), 400,
			common.ErrInvalidEmailValidation.Message},
		{"validated on validation route", jsonRequest(http.MethodPut, "/api/user/validation", `{"email_code":"1"}`),
			f.token(t, activeCompany), 400, common.ErrEmailAlreadyValidated.Message},
		{"company on personal onboarding", jsonRequest(http.MethodPut, "/api/user/register", `{}`),
			f.token(t, activeCompany), 403, common.ErrInvalidRouteCompany.Message},
		{"personal on company onboarding", jsonRequest(http.MethodPatch, "/api/user/company", `{}`),
			f.token(t, personal), 403, common.ErrInvalidRouteUser.Message},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := f.do(t, tt.req, tt.token)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.msg, body["error"])
		})
	}
}

func TestAuthenticator_ValidationRouteAdmitsUnvalidated(t *testing.T) {
	f := newFixture(t)
	p := auth.Principal{ID: 2, Email: "n@b.com", Role: models.RoleUser, Status: models.StatusToBeValidated}

	status, body := f.do(t, jsonRequest(http.MethodPut, "/api/user/validation", `{"email_code":"123456"}`), f.token(t, p))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "123456", f.contacts.code)
	assert.Equal(t, int64(2), f.contacts.caller.ID)
	assert.Equal(t, "tok", body["jwt"])
}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, jsonRequest(http.MethodPost, "/api/user/register", `{"email":"a@b.com","password":"secret123"}`), "")
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "a@b.com", f.contacts.email)
	assert.Equal(t, "secret123", f.contacts.password)
	assert.Equal(t, "tok", body["jwt"])
	assert.NotNil(t, body["contact"])
	assert.Nil(t, body["user"])
	assert.Equal(t, "Check your email for the validation code", body["message"])
}

func TestRegister_BadBody(t *testing.T) {
	f := newFixture(t)
	status, body := f.do(t, jsonRequest(http.MethodPost, "/api/user/register", `{"email":`), "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid request body", body["error"])
}

func TestLogin_BusinessError(t *testing.T) {
	f := newFixture(t)
	f.contacts.err = common.ErrInvalidPasswordMatch

	status, body := f.do(t, jsonRequest(http.MethodPost, "/api/user/login", `{"email":"a@b.com","password":"x"}`), "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Password does not match", body["error"])
}

func TestUnexpectedErrorIsHidden(t *testing.T) {
	f := newFixture(t)
	f.contacts.err = errors.New("db error: connection reset")

	status, body := f.do(t, httptest.NewRequest(http.MethodGet, "/api/user/summarize", nil), "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal error", body["error"])
}

func TestSummarizeIsOpen(t *testing.T) {
	f := newFixture(t)
	status, body := f.do(t, httptest.NewRequest(http.MethodGet, "/api/user/summarize", nil), "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(3), body["numActiveUsers"])
}

func TestOnboarding(t *testing.T) {
	f := newFixture(t)

	status, _ := f.do(t, jsonRequest(http.MethodPatch, "/api/user/company", `{"name":"Acme","cif":"B1","address":"Main 1"}`),
		f.token(t, activeCompany))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Acme", f.contacts.company.Name)
	require.NotNil(t, f.contacts.company.Address)
	assert.Equal(t, "Main 1", *f.contacts.company.Address)

	user := activeCompany
	user.Role = models.RoleUser
	status, _ = f.do(t, jsonRequest(http.MethodPut, "/api/user/register", `{"name":"Ana","surname":"Diaz","nif":"X1"}`),
		f.token(t, user))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Diaz", f.contacts.personal.Surname)
}

func TestRecoveryAndReset(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, jsonRequest(http.MethodPost, "/api/user/recovery", `{"email":"a@b.com"}`), "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Check your email for the recovery code", body["message"])

	status, body = f.do(t, jsonRequest(http.MethodPost, "/api/user/recovery/newpassword",
		`{"email":"a@b.com","recoveryCode":"654321","password":"newsecret"}`), "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "654321", f.contacts.code)
	assert.Equal(t, "Password changed", body["message"])
}

func TestDeleteContact_SoftQuery(t *testing.T) {
	f := newFixture(t)
	tok := f.token(t, activeCompany)

	_, body := f.do(t, httptest.NewRequest(http.MethodDelete, "/api/user/delete", nil), tok)
	require.NotNil(t, f.contacts.soft)
	assert.True(t, *f.contacts.soft)
	assert.Equal(t, "Contact soft deleted", body["message"])

	_, body = f.do(t, httptest.NewRequest(http.MethodDelete, "/api/user/delete?soft=false", nil), tok)
	assert.False(t, *f.contacts.soft)
	assert.Equal(t, "Contact deleted", body["message"])
}

func TestUploadLogo(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, imageRequest(t, http.MethodPatch, "/api/user/logo", 64), f.token(t, activeCompany))
	require.Equal(t, http.StatusOK, status)
	assert.True(t, f.contacts.uploadSeen, "file exists while the use case runs")
	assert.True(t, strings.HasSuffix(f.contacts.uploadPath, ".png"))
	assert.Equal(t, "Profile image uploaded successfully", body["message"])

	_, err := os.Stat(f.contacts.uploadPath)
	assert.True(t, os.IsNotExist(err), "spooled file removed afterwards")
}

func TestUploadLogo_Rejections(t *testing.T) {
	f := newFixture(t)
	tok := f.token(t, activeCompany)

	status, body := f.do(t, jsonRequest(http.MethodPatch, "/api/user/logo", `{}`), tok)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "No file uploaded", body["error"])

	status, body = f.do(t, imageRequest(t, http.MethodPatch, "/api/user/logo", maxImageSize+1), tok)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "File too large", body["error"])
}

func TestClientRoutes(t *testing.T) {
	f := newFixture(t)
	tok := f.token(t, activeCompany)

	status, body := f.do(t, jsonRequest(http.MethodPost, "/api/client", `{"name":"Client","cif":"B1","address":{"city":"Bilbao"}}`), tok)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Client created successfully", body["message"])
	assert.Equal(t, "Bilbao", f.clients.input.Address["city"])

	status, body = f.do(t, httptest.NewRequest(http.MethodGet, "/api/client", nil), tok)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["clients"], 1)

	status, body = f.do(t, httptest.NewRequest(http.MethodGet, "/api/client/archived", nil), tok)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Archived clients retrieved successfully", body["message"])
	assert.Equal(t, []any{}, body["clients"])

	status, _ = f.do(t, httptest.NewRequest(http.MethodGet, "/api/client/:5", nil), tok)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(5), f.clients.id)

	status, body = f.do(t, jsonRequest(http.MethodPut, "/api/client/7", `{"name":"New"}`), tok)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(7), f.clients.id)
	assert.Equal(t, "Client updated successfully", body["message"])

	status, _ = f.do(t, httptest.NewRequest(http.MethodDelete, "/api/client/delete/8?soft=false", nil), tok)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, *f.clients.soft)

	status, body = f.do(t, httptest.NewRequest(http.MethodPatch, "/api/client/archived/restore/8", nil), tok)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Client restored successfully", body["message"])
}

func TestClientRoutes_Errors(t *testing.T) {
	f := newFixture(t)
	tok := f.token(t, activeCompany)

	status, body := f.do(t, httptest.NewRequest(http.MethodGet, "/api/client/abc", nil), tok)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid clientId", body["error"])

	f.clients.err = common.ErrClientNotFound
	status, body = f.do(t, httptest.NewRequest(http.MethodGet, "/api/client/5", nil), tok)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Client not found or archived", body["error"])

	f.clients.err = common.ErrClientNotArchived
	status, _ = f.do(t, httptest.NewRequest(http.MethodPatch, "/api/client/archived/restore/5", nil), tok)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestProjectRoutes(t *testing.T) {
	f := newFixture(t)
	tok := f.token(t, activeCompany)

	status, body := f.do(t, jsonRequest(http.MethodPost, "/api/project",
		`{"name":"Roof","email":"site@acme.io","address":{},"clientId":5}`), tok)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, int64(5), f.projects.input.ClientID)
	assert.Equal(t, "Project created successfully", body["message"])
	assert.NotNil(t, body["project"])

	f.projects.err = common.ErrProjectAlreadyExists.WithMessage("Project with this name already exists")
	status, body = f.do(t, jsonRequest(http.MethodPatch, "/api/project/9", `{"name":"Dup"}`), tok)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Project with this name already exists", body["error"])
}

func TestNoteRoutes(t *testing.T) {
	f := newFixture(t)
	tok := f.token(t, activeCompany)

	status, body := f.do(t, jsonRequest(http.MethodPost, "/api/deliverynote",
		`{"clientId":5,"projectId":9,"entries":[{"type":"hours","description":"x","workdate":"2024-03-02"}]}`), tok)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, int64(9), f.notes.input.ProjectID)
	assert.True(t, strings.HasPrefix(string(f.notes.input.Entries), "["))
	assert.Equal(t, "Note created successfully", body["message"])
	assert.Len(t, body["entries"], 1)

	resp, err := f.srv.app.Test(withToken(httptest.NewRequest(http.MethodGet, "/api/deliverynote", nil), tok), -1)
	require.NoError(t, err)
	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.NotNil(t, list[0]["note"])

	status, body = f.do(t, httptest.NewRequest(http.MethodGet, "/api/deliverynote/40", nil), tok)
	require.Equal(t, http.StatusOK, status)
	assert.NotNil(t, body["user"])
	assert.NotNil(t, body["client"])

	status, body = f.do(t, httptest.NewRequest(http.MethodGet, "/api/deliverynote/pdf/40", nil), tok)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "https://files.example/delivery_note_40.pdf", body["url"])

	status, body = f.do(t, imageRequest(t, http.MethodPatch, "/api/deliverynote/sign/40", 32), tok)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, f.notes.uploadSeen)
	assert.Equal(t, "Delivery note signed", body["message"])
	assert.Equal(t, "https://files.example/sig.png", body["url"])

	status, body = f.do(t, httptest.NewRequest(http.MethodDelete, "/api/deliverynote/delete/40", nil), tok)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Note 40 deleted successfully", body["message"])
}

func TestNoteRoutes_Errors(t *testing.T) {
	f := newFixture(t)
	tok := f.token(t, activeCompany)

	f.notes.err = common.ErrSignedNote
	status, body := f.do(t, httptest.NewRequest(http.MethodDelete, "/api/deliverynote/delete/40", nil), tok)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "can not delete a signed note", body["error"])

	f.notes.err = common.ErrNoteNotFound.WithMessage("No notes found for this user")
	status, body = f.do(t, httptest.NewRequest(http.MethodGet, "/api/deliverynote", nil), tok)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "No notes found for this user", body["error"])
}

func withToken(req *http.Request, tok string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+tok)
	return req
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- f.srv.Run(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	srv := NewServer(Options{Addr: "127.0.0.1:99999", ShutdownTimeout: time.Second}, Services{}, discardLogger())

	select {
	case err := <-runAsync(srv):
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not fail on an invalid address")
	}
}

func runAsync(s *Server) <-chan error {
	ch := make(chan error, 1)
	go func() { ch <- s.Run(context.Background()) }()
	return ch
}
