package models

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/deliverynotes/internal/common"
)

// EntryType tells hours entries from material entries.
type EntryType string

const (
	EntryHours    EntryType = "hours"
	EntryMaterial EntryType = "material"
)

// WorkdateLayout is the format used when a workdate is rendered.
const WorkdateLayout = "2006-01-02"

var workdateLayouts = []string{
	WorkdateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseWorkdate accepts a calendar date or a full timestamp.
func ParseWorkdate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range workdateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, common.ErrInvalidCredentials.WithMessage("Workdate must be a valid date")
}

// Entry is one line of a delivery note. Fields not relevant to the entry
// type are left nil; they are not cross-checked against the type.
type Entry struct {
	id             int64
	deliveryNoteID int64
	entryType      EntryType
	person         *string
	hours          *float64
	material       *string
	quantity       *float64
	description    string
	workdate       time.Time
}

// EntryParams carries the fields NewEntry validates. Optional fields may be nil.
type EntryParams struct {
	ID             int64
	DeliveryNoteID int64
	Type           EntryType
	Person         *string
	Hours          *float64
	Material       *string
	Quantity       *float64
	Description    string
	Workdate       string
}

// NewEntry builds an entry of a note. Type, description and workdate are required.
func NewEntry(p EntryParams) (*Entry, error) {
	e := &Entry{
		id:       p.ID,
		person:   p.Person,
		hours:    p.Hours,
		material: p.Material,
		quantity: p.Quantity,
	}
	if err := e.SetDeliveryNoteID(p.DeliveryNoteID); err != nil {
		return nil, err
	}
	if err := e.SetType(p.Type); err != nil {
		return nil, err
	}
	if err := e.SetDescription(p.Description); err != nil {
		return nil, err
	}
	if err := e.SetWorkdate(p.Workdate); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Entry) ID() int64             { return e.id }
func (e *Entry) DeliveryNoteID() int64 { return e.deliveryNoteID }
func (e *Entry) Type() EntryType       { return e.entryType }
func (e *Entry) Person() *string       { return e.person }
func (e *Entry) Hours() *float64       { return e.hours }
func (e *Entry) Material() *string     { return e.material }
func (e *Entry) Quantity() *float64    { return e.quantity }
func (e *Entry) Description() string   { return e.description }
func (e *Entry) Workdate() time.Time   { return e.workdate }
func (e *Entry) SetID(id int64)        { e.id = id }

func (e *Entry) SetDeliveryNoteID(id int64) error {
	if !validOwnerID(id) {
		return common.ErrInvalidCredentials.WithMessage("Invalid deliveryNoteId")
	}
	e.deliveryNoteID = id
	return nil
}

func (e *Entry) SetType(t EntryType) error {
	if t != EntryHours && t != EntryMaterial {
		return common.ErrInvalidCredentials.WithMessage("Type must be 'hours' or 'material'")
	}
	e.entryType = t
	return nil
}

func (e *Entry) SetDescription(d string) error {
	if strings.TrimSpace(d) == "" {
		return common.ErrInvalidCredentials.WithMessage("Description is required and must be a string")
	}
	e.description = d
	return nil
}

// SetWorkdate parses s with ParseWorkdate.
func (e *Entry) SetWorkdate(s string) error {
	t, err := ParseWorkdate(s)
	if err != nil {
		return err
	}
	e.workdate = t
	return nil
}

// EntryData is the JSON projection of an Entry.
type EntryData struct {
	ID             int64     `json:"id"`
	DeliveryNoteID int64     `json:"deliveryNoteId"`
	Type           EntryType `json:"type"`
	Person         *string   `json:"person"`
	Hours          *float64  `json:"hours"`
	Material       *string   `json:"material"`
	Quantity       *float64  `json:"quantity"`
	Description    string    `json:"description"`
	Workdate       string    `json:"workdate"`
}

// PublicData returns the entry as exposed to its owner.
func (e *Entry) PublicData() EntryData {
	return EntryData{
		ID:             e.id,
		DeliveryNoteID: e.deliveryNoteID,
		Type:           e.entryType,
		Person:         e.person,
		Hours:          e.hours,
		Material:       e.material,
		Quantity:       e.quantity,
		Description:    e.description,
		Workdate:       e.workdate.Format(WorkdateLayout),
	}
}
