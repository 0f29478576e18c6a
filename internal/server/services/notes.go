package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/deliverynotes/internal/common"
	"github.com/dmitrijs2005/deliverynotes/internal/dbx"
	"github.com/dmitrijs2005/deliverynotes/internal/logging"
	"github.com/dmitrijs2005/deliverynotes/internal/server/auth"
	"github.com/dmitrijs2005/deliverynotes/internal/server/models"
	"github.com/dmitrijs2005/deliverynotes/internal/server/repositories/repomanager"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const (
	MsgNoteCreated = "Note created successfully"
	MsgNoteSigned  = "Delivery note signed"
)

// NoteInput is the payload of a composite note creation. Entries is kept raw
// so that a non-array value can be rejected before anything is stored.
type NoteInput struct {
	ClientID  int64           `json:"clientId"`
	ProjectID int64           `json:"projectId"`
	Entries   json.RawMessage `json:"entries"`
}

type EntryInput struct {
	Type        string   `json:"type"`
	Person      *string  `json:"person"`
	Hours       *float64 `json:"hours"`
	Material    *string  `json:"material"`
	Quantity    *float64 `json:"quantity"`
	Description string   `json:"description"`
	Workdate    string   `json:"workdate"`
}

// NoteEntries pairs a note with its entries in insertion order.
type NoteEntries struct {
	Note    *models.DeliveryNote
	Entries []*models.Entry
}

type NoteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	files       FileStore
	renderer    PDFRenderer
	logger      logging.Logger
}

func NewNoteService(db *sql.DB, m repomanager.RepositoryManager, files FileStore, renderer PDFRenderer,
	logger logging.Logger) *NoteService {
	return &NoteService{
		db:          db,
		repomanager: m,
		files:       files,
		renderer:    renderer,
		logger:      logger.With("module", "notes"),
	}
}

func decodeEntries(raw json.RawMessage) ([]EntryInput, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, common.ErrInvalidNoteFormat.WithMessage("Entries must be an array")
	}
	var entries []EntryInput
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, common.ErrInvalidNoteFormat
	}
	return entries, nil
}

// orNull maps a missing or zero value to nil.
func orNull[T comparable](v *T) *T {
	return lo.EmptyableToPtr(lo.FromPtr(v))
}

// Create stores a note and its entries in one transaction; entries keep the input order.
func (s *NoteService) Create(ctx context.Context, p auth.Principal, in NoteInput) (*NoteEntries, error) {
	inputs, err := decodeEntries(in.Entries)
	if err != nil {
		return nil, err
	}

	note, err := models.NewDeliveryNote(models.DeliveryNoteParams{
		UserID:    p.ID,
		ClientID:  in.ClientID,
		ProjectID: in.ProjectID,
	})
	if err != nil {
		return nil, err
	}

	result := &NoteEntries{Entries: make([]*models.Entry, 0, len(inputs))}
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Notes(tx)

		saved, err := repo.CreateNote(ctx, note)
		if err != nil {
			return err
		}
		result.Note = saved

		for _, ei := range inputs {
			entry, err := models.NewEntry(models.EntryParams{
				DeliveryNoteID: saved.ID(),
				Type:           models.EntryType(ei.Type),
				Person:         orNull(ei.Person),
				Hours:          orNull(ei.Hours),
				Material:       orNull(ei.Material),
				Quantity:       orNull(ei.Quantity),
				Description:    ei.Description,
				Workdate:       ei.Workdate,
			})
			if err != nil {
				return err
			}
			entry, err = repo.CreateEntry(ctx, entry)
			if err != nil {
				return err
			}
			result.Entries = append(result.Entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "note created", "user_id", p.ID, "note_id", result.Note.ID(), "entries", len(result.Entries))
	return result, nil
}

// List returns every note of the caller together with its entries.
func (s *NoteService) List(ctx context.Context, p auth.Principal) ([]NoteEntries, error) {
	repo := s.repomanager.Notes(s.db)

	notes, err := repo.ListByUser(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, common.ErrNoteNotFound.WithMessage("No notes found for this user")
	}

	result := make([]NoteEntries, 0, len(notes))
	for _, n := range notes {
		entries, err := repo.ListEntries(ctx, n.ID())
		if err != nil {
			return nil, err
		}
		result = append(result, NoteEntries{Note: n, Entries: entries})
	}
	return result, nil
}

// Get assembles the aggregate view of one note owned by the caller. The
// author, project, client and entries are loaded concurrently.
func (s *NoteService) Get(ctx context.Context, p auth.Principal, id int64) (*models.NoteAggregate, error) {
	note, err := s.repomanager.Notes(s.db).GetByID(ctx, id, p.ID)
	if err != nil {
		return nil, err
	}

	agg := &models.NoteAggregate{Note: note, SignatureURL: note.SignatureURL()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.repomanager.Contacts(s.db).GetByID(gctx, note.UserID())
		if err != nil {
			return err
		}
		agg.Author = models.NoteAuthor{ID: c.ID(), Name: c.Name(), Email: c.Email(), Role: c.Role()}
		return nil
	})
	g.Go(func() error {
		pr, err := s.repomanager.Projects(s.db).Get(gctx, note.ProjectID())
		agg.Project = pr
		return err
	})
	g.Go(func() error {
		c, err := s.repomanager.Clients(s.db).Get(gctx, note.ClientID())
		agg.Client = c
		return err
	})
	g.Go(func() error {
		entries, err := s.repomanager.Notes(s.db).ListEntries(gctx, note.ID())
		agg.Entries = entries
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return agg, nil
}

// PDFKey is the object key of a note's PDF. Regenerating a note replaces it.
func PDFKey(noteID int64) string {
	return fmt.Sprintf("notes/delivery_note_%d.pdf", noteID)
}

// GeneratePDF renders the note, uploads the document and stores its URL on the note.
func (s *NoteService) GeneratePDF(ctx context.Context, p auth.Principal, id int64) (string, error) {
	agg, err := s.Get(ctx, p, id)
	if err != nil {
		return "", err
	}

	doc, err := s.renderer.Render(ctx, agg)
	if err != nil {
		return "", fmt.Errorf("render note %d: %w", id, err)
	}

	url, err := s.files.UploadNamed(ctx, PDFKey(id), doc)
	if err != nil {
		return "", err
	}
	if err := s.repomanager.Notes(s.db).SetPDFURL(ctx, id, p.ID, url); err != nil {
		return "", err
	}
	s.logger.Info(ctx, "pdf generated", "user_id", p.ID, "note_id", id, "url", url)
	return url, nil
}

// UploadSignature stores the signature image at path and marks the note signed.
func (s *NoteService) UploadSignature(ctx context.Context, p auth.Principal, id int64, path string) (string, error) {
	repo := s.repomanager.Notes(s.db)

	if _, err := repo.GetByID(ctx, id, p.ID); err != nil {
		return "", err
	}
	url, err := s.files.UploadFile(ctx, path)
	if err != nil {
		return "", err
	}
	if err := repo.Sign(ctx, id, p.ID, url); err != nil {
		return "", err
	}
	s.logger.Info(ctx, "note signed", "user_id", p.ID, "note_id", id, "url", url)
	return url, nil
}

// Delete removes an unsigned note and its entries.
func (s *NoteService) Delete(ctx context.Context, p auth.Principal, id int64) (string, error) {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Notes(tx)

		signed, err := repo.IsSigned(ctx, id, p.ID)
		if err != nil {
			return err
		}
		if signed {
			return common.ErrSignedNote
		}
		if err := repo.DeleteEntries(ctx, id); err != nil {
			return err
		}
		return repo.Delete(ctx, id, p.ID)
	})
	if err != nil {
		return "", err
	}
	s.logger.Info(ctx, "note deleted", "user_id", p.ID, "note_id", id)
	return fmt.Sprintf("Note %d deleted successfully", id), nil
}
