package models

import (
	"strings"

	"github.com/dmitrijs2005/deliverynotes/internal/common"
)

// Address is a free-form postal address; the domain does not look inside it.
type Address map[string]any

func validOwnerID(id int64) bool { return id > 0 }

// Client is a customer owned by exactly one contact.
type Client struct {
	id       int64
	name     string
	cif      string
	address  Address
	userID   int64
	archived bool
}

// ClientParams carries the fields NewClient validates.
type ClientParams struct {
	ID       int64
	Name     string
	CIF      string
	Address  Address
	UserID   int64
	Archived bool
}

// NewClient builds a Client, rejecting an empty name or CIF, a nil address or a missing owner.
func NewClient(p ClientParams) (*Client, error) {
	c := &Client{id: p.ID, archived: p.Archived}
	if err := c.SetName(p.Name); err != nil {
		return nil, err
	}
	if err := c.SetCIF(p.CIF); err != nil {
		return nil, err
	}
	if err := c.SetAddress(p.Address); err != nil {
		return nil, err
	}
	if err := c.SetUserID(p.UserID); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) ID() int64          { return c.id }
func (c *Client) Name() string       { return c.name }
func (c *Client) CIF() string        { return c.cif }
func (c *Client) Address() Address   { return c.address }
func (c *Client) UserID() int64      { return c.userID }
func (c *Client) IsArchived() bool   { return c.archived }
func (c *Client) SetID(id int64)     { c.id = id }
func (c *Client) SetArchived(v bool) { c.archived = v }

// SetName rejects a blank name.
func (c *Client) SetName(name string) error {
	if strings.TrimSpace(name) == "" {
		return common.ErrInvalidCredentials
	}
	c.name = name
	return nil
}

// SetCIF rejects a blank tax id.
func (c *Client) SetCIF(cif string) error {
	if strings.TrimSpace(cif) == "" {
		return common.ErrInvalidCredentials
	}
	c.cif = cif
	return nil
}

// SetAddress requires a non-nil address.
func (c *Client) SetAddress(a Address) error {
	if a == nil {
		return common.ErrInvalidCredentials
	}
	c.address = a
	return nil
}

// SetUserID requires a positive owner id.
func (c *Client) SetUserID(id int64) error {
	if !validOwnerID(id) {
		return common.ErrInvalidCredentials
	}
	c.userID = id
	return nil
}

// ClientData is the JSON projection of a Client.
type ClientData struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	CIF      string  `json:"cif"`
	Address  Address `json:"address"`
	UserID   int64   `json:"user_id"`
	Archived bool    `json:"archived"`
}

// PublicData returns the client as exposed to its owner.
func (c *Client) PublicData() ClientData {
	return ClientData{
		ID:       c.id,
		Name:     c.name,
		CIF:      c.cif,
		Address:  c.address,
		UserID:   c.userID,
		Archived: c.archived,
	}
}
