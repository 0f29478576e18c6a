package models

import (
	"time"

	"github.com/dmitrijs2005/deliverynotes/internal/common"
)

// DeliveryNote records work or material delivered on a project.
type DeliveryNote struct {
	id           int64
	userID       int64
	clientID     int64
	projectID    int64
	signed       bool
	signatureURL *string
	pdfURL       *string
	createdAt    time.Time
}

// DeliveryNoteParams carries persisted or requested note state into NewDeliveryNote.
type DeliveryNoteParams struct {
	ID           int64
	UserID       int64
	ClientID     int64
	ProjectID    int64
	Signed       bool
	SignatureURL *string
	PDFURL       *string
	CreatedAt    time.Time
}

// NewDeliveryNote builds a note, requiring positive owner, client and project ids.
func NewDeliveryNote(p DeliveryNoteParams) (*DeliveryNote, error) {
	n := &DeliveryNote{
		id:           p.ID,
		signed:       p.Signed,
		signatureURL: p.SignatureURL,
		pdfURL:       p.PDFURL,
		createdAt:    p.CreatedAt,
	}
	if err := n.SetUserID(p.UserID); err != nil {
		return nil, err
	}
	if err := n.SetClientID(p.ClientID); err != nil {
		return nil, err
	}
	if err := n.SetProjectID(p.ProjectID); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *DeliveryNote) ID() int64             { return n.id }
func (n *DeliveryNote) UserID() int64         { return n.userID }
func (n *DeliveryNote) ClientID() int64       { return n.clientID }
func (n *DeliveryNote) ProjectID() int64      { return n.projectID }
func (n *DeliveryNote) IsSigned() bool        { return n.signed }
func (n *DeliveryNote) SignatureURL() *string { return n.signatureURL }
func (n *DeliveryNote) PDFURL() *string       { return n.pdfURL }
func (n *DeliveryNote) CreatedAt() time.Time  { return n.createdAt }
func (n *DeliveryNote) SetID(id int64)        { n.id = id }
func (n *DeliveryNote) SetPDFURL(u *string)   { n.pdfURL = u }

// Sign stores the signature location and marks the note as signed.
func (n *DeliveryNote) Sign(url string) {
	n.signatureURL = &url
	n.signed = true
}

func (n *DeliveryNote) SetUserID(id int64) error {
	if !validOwnerID(id) {
		return common.ErrInvalidCredentials.WithMessage("Invalid userId")
	}
	n.userID = id
	return nil
}

func (n *DeliveryNote) SetClientID(id int64) error {
	if !validOwnerID(id) {
		return common.ErrInvalidCredentials.WithMessage("Invalid clientId")
	}
	n.clientID = id
	return nil
}

func (n *DeliveryNote) SetProjectID(id int64) error {
	if !validOwnerID(id) {
		return common.ErrInvalidCredentials.WithMessage("Invalid projectId")
	}
	n.projectID = id
	return nil
}

// DeliveryNoteData is the JSON projection of a DeliveryNote.
type DeliveryNoteData struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	ClientID     int64     `json:"clientId"`
	ProjectID    int64     `json:"projectId"`
	Signed       bool      `json:"signed"`
	SignatureURL *string   `json:"signatureUrl"`
	PDFURL       *string   `json:"pdfUrl"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicData returns the note header without its entries.
func (n *DeliveryNote) PublicData() DeliveryNoteData {
	return DeliveryNoteData{
		ID:           n.id,
		UserID:       n.userID,
		ClientID:     n.clientID,
		ProjectID:    n.projectID,
		Signed:       n.signed,
		SignatureURL: n.signatureURL,
		PDFURL:       n.pdfURL,
		CreatedAt:    n.createdAt,
	}
}

// NoteAuthor is the slice of the owning contact shown on a note.
type NoteAuthor struct {
	ID    int64   `json:"id"`
	Name  *string `json:"name"`
	Email string  `json:"email"`
	Role  Role    `json:"role"`
}

// NoteAggregate is everything needed to display or render one note.
type NoteAggregate struct {
	Note         *DeliveryNote
	Author       NoteAuthor
	Project      *Project
	Client       *Client
	Entries      []*Entry
	SignatureURL *string
}

// NoteAggregateData is the JSON form of a NoteAggregate.
type NoteAggregateData struct {
	Note         DeliveryNoteData `json:"note"`
	User         NoteAuthor       `json:"user"`
	Project      ProjectData      `json:"project"`
	Client       ClientData       `json:"client"`
	Entries      []EntryData      `json:"entries"`
	SignatureURL *string          `json:"signatureUrl"`
}

// PublicData flattens the aggregate; entries keep their stored order.
func (a *NoteAggregate) PublicData() NoteAggregateData {
	entries := make([]EntryData, 0, len(a.Entries))
	for _, e := range a.Entries {
		entries = append(entries, e.PublicData())
	}
	return NoteAggregateData{
		Note:         a.Note.PublicData(),
		User:         a.Author,
		Project:      a.Project.PublicData(),
		Client:       a.Client.PublicData(),
		Entries:      entries,
		SignatureURL: a.SignatureURL,
	}
}
