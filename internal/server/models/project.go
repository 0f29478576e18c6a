package models

import (
	"regexp"
	"strings"

	"github.com/dmitrijs2005/deliverynotes/internal/common"
)

var projectEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Project is a piece of work done for a client.
type Project struct {
	id       int64
	name     string
	email    string
	address  Address
	userID   int64
	clientID int64
	archived bool
}

// ProjectParams carries the fields NewProject validates.
type ProjectParams struct {
	ID       int64
	Name     string
	Email    string
	Address  Address
	UserID   int64
	ClientID int64
	Archived bool
}

// NewProject builds a Project bound to one owner and one client.
func NewProject(p ProjectParams) (*Project, error) {
	pr := &Project{id: p.ID, archived: p.Archived}
	if err := pr.SetName(p.Name); err != nil {
		return nil, err
	}
	if err := pr.SetEmail(p.Email); err != nil {
		return nil, err
	}
	if err := pr.SetAddress(p.Address); err != nil {
		return nil, err
	}
	if err := pr.SetUserID(p.UserID); err != nil {
		return nil, err
	}
	if err := pr.SetClientID(p.ClientID); err != nil {
		return nil, err
	}
	return pr, nil
}

func (p *Project) ID() int64          { return p.id }
func (p *Project) Name() string       { return p.name }
func (p *Project) Email() string      { return p.email }
func (p *Project) Address() Address   { return p.address }
func (p *Project) UserID() int64      { return p.userID }
func (p *Project) ClientID() int64    { return p.clientID }
func (p *Project) IsArchived() bool   { return p.archived }
func (p *Project) SetID(id int64)     { p.id = id }
func (p *Project) SetArchived(v bool) { p.archived = v }

// SetName checks the trimmed length but stores name as given.
func (p *Project) SetName(name string) error {
	if len([]rune(strings.TrimSpace(name))) < 2 {
		return common.ErrInvalidCredentials.WithMessage("A valid name is required for the project")
	}
	p.name = name
	return nil
}

// SetEmail requires a local@domain.tld shaped address.
func (p *Project) SetEmail(email string) error {
	if !projectEmailPattern.MatchString(email) {
		return common.ErrInvalidCredentials.WithMessage("A valid email is required for the project")
	}
	p.email = email
	return nil
}

func (p *Project) SetAddress(a Address) error {
	if a == nil {
		return common.ErrInvalidCredentials.WithMessage("A valid address is required for the project")
	}
	p.address = a
	return nil
}

func (p *Project) SetUserID(id int64) error {
	if !validOwnerID(id) {
		return common.ErrInvalidCredentials.WithMessage("Invalid userId for project")
	}
	p.userID = id
	return nil
}

func (p *Project) SetClientID(id int64) error {
	if !validOwnerID(id) {
		return common.ErrInvalidCredentials.WithMessage("Invalid clientId for project")
	}
	p.clientID = id
	return nil
}

// ProjectData is the JSON projection of a Project.
type ProjectData struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Address  Address `json:"address"`
	UserID   int64   `json:"userId"`
	ClientID int64   `json:"clientId"`
	Archived bool    `json:"archived"`
}

// PublicData returns the project as exposed to its owner.
func (p *Project) PublicData() ProjectData {
	return ProjectData{
		ID:       p.id,
		Name:     p.name,
		Email:    p.email,
		Address:  p.address,
		UserID:   p.userID,
		ClientID: p.clientID,
		Archived: p.archived,
	}
}
