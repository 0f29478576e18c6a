package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/deliverynotes/internal/common"
	"github.com/dmitrijs2005/deliverynotes/internal/logging"
	"github.com/dmitrijs2005/deliverynotes/internal/server/auth"
	"github.com/dmitrijs2005/deliverynotes/internal/server/models"
	"github.com/dmitrijs2005/deliverynotes/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/deliverynotes/internal/server/repositories/repomanager"
)

const (
	validationSubject = "Welcome to our platform"
	lockedSubject     = "Account deactivated due to too many attempts"
	lockedBody        = "<p>Contact support to reactivate your account</p>"
	recoverySubject   = "Password Recovery"
)

const (
	MsgRegistered      = "Check your email for the validation code"
	MsgEmailValidated  = "Email validated successfully"
	MsgLoginSuccessful = "Login successful"
	MsgRecoverySent    = "Check your email for the recovery code"
	MsgPasswordChanged = "Password changed"
	MsgProfileImage    = "Profile image uploaded successfully"
	MsgContactSoftDel  = "Contact soft deleted"
	MsgContactHardDel  = "Contact deleted"

	msgRollbackFailed = "Email sending failed and the created user could not be removed"
)

// AuthResult is returned by every use case that hands a fresh token back.
type AuthResult struct {
	Token   string
	User    models.ContactView
	Message string
}

type ContactService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      TokenIssuer
	mailer      Mailer
	files       FileStore
	logger      logging.Logger
}

func NewContactService(db *sql.DB, m repomanager.RepositoryManager, tokens TokenIssuer, mailer Mailer,
	files FileStore, logger logging.Logger) *ContactService {
	return &ContactService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		mailer:      mailer,
		files:       files,
		logger:      logger.With("module", "contacts"),
	}
}

// Register creates an account awaiting email validation and mails it the
// verification code. If the mail cannot be sent the account is removed again.
func (s *ContactService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	repo := s.repomanager.Contacts(s.db)

	taken, err := repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, common.ErrEmailAlreadyInUse
	}
	if len(password) < auth.MinPasswordLength {
		return nil, common.ErrInvalidPassword
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	code, err := generateCode()
	if err != nil {
		return nil, err
	}

	contact, err := models.NewContact(email, hash, code)
	if err != nil {
		return nil, err
	}
	contact, err = repo.Create(ctx, contact)
	if err != nil {
		return nil, err
	}

	if err := s.mailer.Send(ctx, email, validationSubject, "Your verification code is: "+code); err != nil {
		s.logger.Error(ctx, "sending verification email failed, rolling back registration",
			"user_id", contact.ID(), "error", err)
		if delErr := repo.Delete(ctx, contact.ID(), false); delErr != nil {
			s.logger.Error(ctx, "registration rollback failed", "user_id", contact.ID(), "error", delErr)
			return nil, fmt.Errorf("%w: %w", common.ErrInvalidDatabase.WithMessage(msgRollbackFailed), delErr)
		}
		return nil, common.ErrInvalidEmailSending
	}

	token, err := s.tokens.IssuePermanent(auth.PrincipalOf(contact))
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "contact registered", "user_id", contact.ID())

	return &AuthResult{Token: token, User: contact.PublicData(), Message: MsgRegistered}, nil
}

// ValidateEmail checks the submitted code. Each miss costs one attempt; the
// miss that would use up the last attempt deactivates the account instead.
func (s *ContactService) ValidateEmail(ctx context.Context, p auth.Principal, code string) (*AuthResult, error) {
	repo := s.repomanager.Contacts(s.db)

	contact, err := repo.GetByID(ctx, p.ID)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return nil, common.ErrInvalidJWT
		}
		return nil, err
	}
	if contact.Status() == models.StatusDeactivated {
		return nil, common.ErrUserDeactivated
	}

	if contact.EmailCode() == code {
		if err := repo.MarkEmailValidated(ctx, contact.ID()); err != nil {
			return nil, err
		}
		s.logger.Info(ctx, "email validated", "user_id", contact.ID())
		res, err := s.reissue(ctx, repo, contact.ID())
		if err != nil {
			return nil, err
		}
		res.Message = MsgEmailValidated
		return res, nil
	}

	if contact.Attempts() > 1 {
		if err := repo.DecrementAttempts(ctx, contact.ID()); err != nil {
			return nil, err
		}
		s.logger.Warn(ctx, "invalid email code", "user_id", contact.ID(), "attempts_left", contact.Attempts()-1)
		return nil, common.ErrInvalidEmailCode
	}

	if err := repo.Deactivate(ctx, contact.ID()); err != nil {
		return nil, err
	}
	s.logger.Warn(ctx, "account locked after too many attempts", "user_id", contact.ID())
	if err := s.mailer.Send(ctx, contact.Email(), lockedSubject, lockedBody); err != nil {
		s.logger.Error(ctx, "sending lock notification failed", "user_id", contact.ID(), "error", err)
		return nil, common.ErrInvalidEmailSending
	}
	return nil, common.ErrUserDeactivated
}

func (s *ContactService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	repo := s.repomanager.Contacts(s.db)

	contact, err := repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !contact.IsValidated() {
		return nil, common.ErrInvalidEmailValidation
	}
	if !auth.CheckPassword(password, contact.PasswordHash()) {
		return nil, common.ErrInvalidPasswordMatch
	}

	token, err := s.tokens.Issue(auth.PrincipalOf(contact))
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "login successful", "user_id", contact.ID())

	return &AuthResult{Token: token, User: contact.PublicView(), Message: MsgLoginSuccessful}, nil
}

// OnboardCompany turns the caller into a company account.
func (s *ContactService) OnboardCompany(ctx context.Context, p auth.Principal, profile contacts.CompanyProfile) (*AuthResult, error) {
	if err := models.ValidateName(&profile.Name); err != nil {
		return nil, err
	}
	repo := s.repomanager.Contacts(s.db)
	if err := repo.UpdateCompanyProfile(ctx, p.ID, profile); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "onboarded as company", "user_id", p.ID)
	return s.reissue(ctx, repo, p.ID)
}

// OnboardPersonal turns the caller into a personal user.
func (s *ContactService) OnboardPersonal(ctx context.Context, p auth.Principal, profile contacts.PersonalProfile) (*AuthResult, error) {
	if err := models.ValidateName(&profile.Name); err != nil {
		return nil, err
	}
	repo := s.repomanager.Contacts(s.db)
	if err := repo.UpdatePersonalProfile(ctx, p.ID, profile); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "onboarded as personal user", "user_id", p.ID)
	return s.reissue(ctx, repo, p.ID)
}

// RecoverPassword stores a fresh recovery code and mails it. The code stays
// stored when the mail fails; the caller can simply ask again.
func (s *ContactService) RecoverPassword(ctx context.Context, email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	if err := s.repomanager.Contacts(s.db).SetRecoveryCode(ctx, email, code); err != nil {
		return "", err
	}

	body := "<p>Use this code together with your email to choose a new password.</p>" +
		"<p>Recovery code: " + code + "</p>"
	if err := s.mailer.Send(ctx, email, recoverySubject, body); err != nil {
		s.logger.Error(ctx, "sending recovery email failed", "error", err)
		return "", common.ErrInvalidEmailSending
	}
	return MsgRecoverySent, nil
}

func (s *ContactService) ResetPassword(ctx context.Context, email, code, password string) (string, error) {
	if len(password) < auth.MinPasswordLength {
		return "", common.ErrInvalidPassword
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}

	ok, err := s.repomanager.Contacts(s.db).ResetPassword(ctx, email, code, hash)
	if err != nil {
		return "", err
	}
	if !ok {
		s.logger.Warn(ctx, "invalid recovery code", "email", email)
		return "", common.ErrInvalidRecoveryCode
	}
	return MsgPasswordChanged, nil
}

// UploadProfileImage stores the image at path and links it to the caller.
func (s *ContactService) UploadProfileImage(ctx context.Context, p auth.Principal, path string) (*AuthResult, error) {
	url, err := s.files.UploadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	repo := s.repomanager.Contacts(s.db)
	if err := repo.SetURL(ctx, p.ID, url); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "profile image uploaded", "user_id", p.ID, "url", url)

	res, err := s.reissue(ctx, repo, p.ID)
	if err != nil {
		return nil, err
	}
	res.Message = MsgProfileImage
	return res, nil
}

func (s *ContactService) Get(ctx context.Context, p auth.Principal) (*AuthResult, error) {
	return s.reissue(ctx, s.repomanager.Contacts(s.db), p.ID)
}

// Delete marks the caller as deleted, or removes the row when soft is false.
func (s *ContactService) Delete(ctx context.Context, p auth.Principal, soft bool) (string, error) {
	if err := s.repomanager.Contacts(s.db).Delete(ctx, p.ID, soft); err != nil {
		return "", err
	}
	s.logger.Info(ctx, "contact deleted", "user_id", p.ID, "soft", soft)
	if soft {
		return MsgContactSoftDel, nil
	}
	return MsgContactHardDel, nil
}

func (s *ContactService) Summarize(ctx context.Context) (*contacts.Summary, error) {
	return s.repomanager.Contacts(s.db).Summarize(ctx)
}

// reissue reloads the contact and signs an expiring token for its current state.
func (s *ContactService) reissue(ctx context.Context, repo contacts.Repository, id int64) (*AuthResult, error) {
	contact, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Issue(auth.PrincipalOf(contact))
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: contact.PublicView()}, nil
}
