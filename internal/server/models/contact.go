// Package models holds the self-validating domain entities. Fields are
// unexported; every setter re-checks the invariants the constructors enforce.
package models

import (
	"regexp"

	"github.com/dmitrijs2005/deliverynotes/internal/common"
)

type Role string

const (
	RoleUser         Role = "user"
	RolePersonalUser Role = "personal_user"
	RoleCompany      Role = "company"
)

type Status string

const (
	StatusToBeValidated Status = "tobevalidated"
	StatusActive        Status = "active"
	StatusDeactivated   Status = "deactivated"
	StatusDeleted       Status = "deleted"
)

// DefaultAttempts is the number of email-code guesses a new account gets.
const DefaultAttempts = 5

var contactEmailPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,6}$`)

// ValidateEmail reports ErrInvalidEmail unless email looks like local@domain.tld.
func ValidateEmail(email string) error {
	if !contactEmailPattern.MatchString(email) {
		return common.ErrInvalidEmail
	}
	return nil
}

// ValidateName accepts nil and any string of at least 3 characters.
func ValidateName(name *string) error {
	if name != nil && len([]rune(*name)) < 3 {
		return common.ErrInvalidName
	}
	return nil
}

// Contact is an authenticatable account, either a person or a company.
type Contact struct {
	id           int64
	email        string
	passwordHash string
	attempts     int
	emailCode    string
	emailStatus  int
	role         Role
	status       Status
	name         *string
	surname      *string
	nif          *string
	cif          *string
	address      *string
	url          *string
}

// ContactParams carries persisted state into RestoreContact.
type ContactParams struct {
	ID           int64
	Email        string
	PasswordHash string
	Attempts     int
	EmailCode    string
	EmailStatus  int
	Role         Role
	Status       Status
	Name         *string
	Surname      *string
	NIF          *string
	CIF          *string
	Address      *string
	URL          *string
}

// NewContact builds a freshly registered account awaiting email validation.
func NewContact(email, passwordHash, emailCode string) (*Contact, error) {
	c := &Contact{
		passwordHash: passwordHash,
		attempts:     DefaultAttempts,
		emailCode:    emailCode,
		role:         RoleUser,
		status:       StatusToBeValidated,
	}
	if err := c.SetEmail(email); err != nil {
		return nil, err
	}
	return c, nil
}

// RestoreContact rebuilds a Contact from stored state, re-checking its invariants.
func RestoreContact(p ContactParams) (*Contact, error) {
	c := &Contact{
		id:           p.ID,
		passwordHash: p.PasswordHash,
		attempts:     p.Attempts,
		emailCode:    p.EmailCode,
		emailStatus:  p.EmailStatus,
		role:         p.Role,
		status:       p.Status,
		surname:      p.Surname,
		nif:          p.NIF,
		cif:          p.CIF,
		address:      p.Address,
		url:          p.URL,
	}
	if c.role == "" {
		c.role = RoleUser
	}
	if c.status == "" {
		c.status = StatusToBeValidated
	}
	if err := c.SetEmail(p.Email); err != nil {
		return nil, err
	}
	if err := c.SetName(p.Name); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Contact) ID() int64            { return c.id }
func (c *Contact) Email() string        { return c.email }
func (c *Contact) PasswordHash() string { return c.passwordHash }
func (c *Contact) Attempts() int        { return c.attempts }
func (c *Contact) EmailCode() string    { return c.emailCode }
func (c *Contact) EmailStatus() int     { return c.emailStatus }
func (c *Contact) Role() Role           { return c.role }
func (c *Contact) Status() Status       { return c.status }
func (c *Contact) Name() *string        { return c.name }
func (c *Contact) Surname() *string     { return c.surname }
func (c *Contact) NIF() *string         { return c.nif }
func (c *Contact) CIF() *string         { return c.cif }
func (c *Contact) Address() *string     { return c.address }
func (c *Contact) URL() *string         { return c.url }

func (c *Contact) SetID(id int64) { c.id = id }

func (c *Contact) SetEmail(email string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	c.email = email
	return nil
}

func (c *Contact) SetName(name *string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	c.name = name
	return nil
}

func (c *Contact) SetPasswordHash(hash string) { c.passwordHash = hash }
func (c *Contact) SetSurname(v *string)        { c.surname = v }
func (c *Contact) SetNIF(v *string)            { c.nif = v }
func (c *Contact) SetCIF(v *string)            { c.cif = v }
func (c *Contact) SetAddress(v *string)        { c.address = v }
func (c *Contact) SetURL(v *string)            { c.url = v }
func (c *Contact) SetRole(r Role)              { c.role = r }
func (c *Contact) SetStatus(s Status)          { c.status = s }

// IsValidated reports whether the account confirmed its email address.
func (c *Contact) IsValidated() bool { return c.emailStatus == 1 }

// ContactView is one of the public projections of a Contact.
type ContactView interface {
	contactView()
}

// ContactData is the pre-onboarding projection.
type ContactData struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Attempts    int    `json:"attempts"`
	EmailStatus int    `json:"emailstatus"`
	Role        Role   `json:"role"`
	Status      Status `json:"status"`
}

// UserData is the projection of a personal user.
type UserData struct {
	ContactData
	Name    *string `json:"name"`
	Surname *string `json:"surname"`
	NIF     *string `json:"nif"`
	URL     *string `json:"url"`
}

// CompanyData is the projection of a company account.
type CompanyData struct {
	ContactData
	Name    *string `json:"name"`
	CIF     *string `json:"cif"`
	Address *string `json:"address"`
	URL     *string `json:"url"`
}

func (ContactData) contactView() {}
func (UserData) contactView()    {}
func (CompanyData) contactView() {}

func (c *Contact) PublicData() ContactData {
	return ContactData{
		ID:          c.id,
		Email:       c.email,
		Attempts:    c.attempts,
		EmailStatus: c.emailStatus,
		Role:        c.role,
		Status:      c.status,
	}
}

func (c *Contact) PublicDataUser() UserData {
	return UserData{ContactData: c.PublicData(), Name: c.name, Surname: c.surname, NIF: c.nif, URL: c.url}
}

func (c *Contact) PublicDataCompany() CompanyData {
	return CompanyData{ContactData: c.PublicData(), Name: c.name, CIF: c.cif, Address: c.address, URL: c.url}
}

// PublicView picks the projection matching the contact's role.
func (c *Contact) PublicView() ContactView {
	switch c.role {
	case RoleCompany:
		return c.PublicDataCompany()
	case RolePersonalUser:
		return c.PublicDataUser()
	default:
		return c.PublicData()
	}
}
