// Package common defines the closed set of business errors shared by the
// domain, repositories, services and the HTTP boundary. Callers should use
// errors.Is to match these values and errors.As to reach the status tag.
package common

import "net/http"

// Kind groups business errors by the class of failure they signal.
type Kind string

const (
	KindAuth           Kind = "auth"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindInfrastructure Kind = "infrastructure"
)

// Error is a tagged business error. Code identifies the concrete error,
// Status is the fixed severity tag used by the transport to pick a response code.
type Error struct {
	Code    string
	Kind    Kind
	Status  int
	Message string

	parent *Error
}

func define(code string, kind Kind, status int, msg string) *Error {
	return &Error{Code: code, Kind: kind, Status: status, Message: msg}
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on Code, so a copy with an overridden message still matches its sentinel.
// A subtype also matches its parent.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	for cur := e; cur != nil; cur = cur.parent {
		if cur.Code == t.Code {
			return true
		}
	}
	return false
}

// WithMessage returns a copy of e carrying msg. An empty msg keeps the default.
func (e *Error) WithMessage(msg string) *Error {
	c := *e
	if msg != "" {
		c.Message = msg
	}
	return &c
}

func subtype(parent *Error, code, msg string) *Error {
	e := define(code, parent.Kind, parent.Status, msg)
	e.parent = parent
	return e
}

// Authentication and authorization.
var (
	ErrUserDisabled        = define("USER_DISABLED", KindAuth, http.StatusForbidden, "Account is deactivated or deleted(soft delete)")
	ErrUserDeactivated     = subtype(ErrUserDisabled, "USER_DEACTIVATED", "Account is deactivated")
	ErrInvalidCredentials  = define("INVALID_CREDENTIALS", KindAuth, http.StatusUnauthorized, "Invalid credentials")
	ErrInvalidRouteCompany = define("INVALID_ROUTE_COMPANY", KindAuth, http.StatusForbidden, "Invalid route, your account is a company")
	ErrInvalidRouteUser    = define("INVALID_ROUTE_USER", KindAuth, http.StatusForbidden, "Invalid route, your account is a user")
	ErrInvalidJWT          = define("INVALID_JWT", KindAuth, http.StatusUnauthorized, "Invalid JWT")
	ErrMissingJWT          = define("MISSING_JWT", KindAuth, http.StatusUnauthorized, "Missing JWT")
	ErrNotAuthorized       = define("NOT_AUTHORIZED", KindAuth, http.StatusForbidden, "Not authorized")
)

// Not found.
var (
	ErrUserNotFound       = define("USER_NOT_FOUND", KindNotFound, http.StatusNotFound, "Not found")
	ErrEmailNotRegistered = define("EMAIL_NOT_REGISTERED", KindNotFound, http.StatusNotFound, "Email not registered or not found")
	ErrClientNotFound     = define("CLIENT_NOT_FOUND", KindNotFound, http.StatusNotFound, "Client not found or archived")
	ErrProjectNotFound    = define("PROJECT_NOT_FOUND", KindNotFound, http.StatusNotFound, "Project not found or archived")
	ErrNoteNotFound       = define("NOTE_NOT_FOUND", KindNotFound, http.StatusNotFound, "Note not found or archived")
	ErrEntriesNotFound    = define("ENTRIES_NOT_FOUND", KindNotFound, http.StatusNotFound, "Entries not found or archived")
)

// Conflict and validation.
var (
	ErrInvalidPassword        = define("INVALID_PASSWORD", KindConflict, http.StatusBadRequest, "Invalid password, must be at least 8 characters")
	ErrInvalidEmail           = define("INVALID_EMAIL", KindConflict, http.StatusBadRequest, "Invalid email, must be a valid email address")
	ErrEmailAlreadyInUse      = define("EMAIL_ALREADY_IN_USE", KindConflict, http.StatusBadRequest, "Email already in use")
	ErrInvalidName            = define("INVALID_NAME", KindConflict, http.StatusBadRequest, "Invalid name, must be at least 3 characters long")
	ErrInvalidEmailValidation = define("INVALID_EMAIL_VALIDATION", KindConflict, http.StatusBadRequest, "Email not validated, please validate your email before logging in or JWT is old")
	ErrEmailAlreadyValidated  = define("EMAIL_ALREADY_VALIDATED", KindConflict, http.StatusBadRequest, "Email already validated")
	ErrInvalidRecoveryCode    = define("INVALID_RECOVERY_CODE", KindConflict, http.StatusBadRequest, "Invalid recovery code")
	ErrInvalidEmailCode       = define("INVALID_EMAIL_CODE", KindConflict, http.StatusBadRequest, "Invalid email code")
	ErrInvalidPasswordMatch   = define("INVALID_PASSWORD_MATCH", KindConflict, http.StatusBadRequest, "Password does not match")
	ErrCifAlreadyInUse        = define("CIF_ALREADY_IN_USE", KindConflict, http.StatusBadRequest, "CIF already in use")
	ErrProjectAlreadyExists   = define("PROJECT_ALREADY_EXISTS", KindConflict, http.StatusBadRequest, "Project already exists")
	ErrInvalidNoteFormat      = define("INVALID_NOTE_FORMAT", KindConflict, http.StatusBadRequest, "Invalid note format")
	ErrClientNotArchived      = define("CLIENT_NOT_ARCHIVED", KindConflict, http.StatusBadRequest, "Client not archived")
	ErrProjectArchived        = define("PROJECT_ARCHIVED", KindConflict, http.StatusBadRequest, "Project archived")
	ErrProjectNotArchived     = define("PROJECT_NOT_ARCHIVED", KindConflict, http.StatusBadRequest, "Project not archived")
	ErrSignedNote             = define("SIGNED_NOTE", KindConflict, http.StatusBadRequest, "can not delete a signed note")
)

// Infrastructure.
var (
	ErrInvalidDatabase     = define("INVALID_DATABASE", KindInfrastructure, http.StatusInternalServerError, "Database error, table not found or an error occurred while creating the table")
	ErrInvalidEmailSending = define("INVALID_EMAIL_SENDING", KindInfrastructure, http.StatusBadRequest, "An error occurred during sending email, user creation rolled back.")
)
