package httpapi

import (
	"github.com/dmitrijs2005/deliverynotes/internal/server/models"
	"github.com/dmitrijs2005/deliverynotes/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type noteResponse struct {
	Note    models.DeliveryNoteData `json:"note"`
	Entries []models.EntryData      `json:"entries"`
	Message string                  `json:"message,omitempty"`
}

type urlResponse struct {
	URL     string `json:"url"`
	Message string `json:"message,omitempty"`
}

func noteData(n services.NoteEntries, _ int) noteResponse {
	return noteResponse{
		Note:    n.Note.PublicData(),
		Entries: lo.Map(n.Entries, func(e *models.Entry, _ int) models.EntryData { return e.PublicData() }),
	}
}

func (h *handlers) createNote(c *fiber.Ctx) error {
	var in services.NoteInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	created, err := h.notes.Create(c.UserContext(), principal(c), in)
	if err != nil {
		return err
	}

	res := noteData(*created, 0)
	res.Message = services.MsgNoteCreated
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *handlers) listNotes(c *fiber.Ctx) error {
	list, err := h.notes.List(c.UserContext(), principal(c))
	if err != nil {
		return err
	}
	return c.JSON(lo.Map(list, noteData))
}

func (h *handlers) getNote(c *fiber.Ctx) error {
	id, err := pathID(c, "noteId")
	if err != nil {
		return err
	}

	agg, err := h.notes.Get(c.UserContext(), principal(c), id)
	if err != nil {
		return err
	}
	return c.JSON(agg.PublicData())
}

func (h *handlers) notePDF(c *fiber.Ctx) error {
	id, err := pathID(c, "noteId")
	if err != nil {
		return err
	}

	url, err := h.notes.GeneratePDF(c.UserContext(), principal(c), id)
	if err != nil {
		return err
	}
	return c.JSON(urlResponse{URL: url})
}

func (h *handlers) signNote(c *fiber.Ctx) error {
	id, err := pathID(c, "noteId")
	if err != nil {
		return err
	}
	path, err := h.spool(c)
	if err != nil {
		return err
	}
	defer h.discard(c, path)

	url, err := h.notes.UploadSignature(c.UserContext(), principal(c), id, path)
	if err != nil {
		return err
	}
	return c.JSON(urlResponse{URL: url, Message: services.MsgNoteSigned})
}

func (h *handlers) deleteNote(c *fiber.Ctx) error {
	id, err := pathID(c, "noteId")
	if err != nil {
		return err
	}

	msg, err := h.notes.Delete(c.UserContext(), principal(c), id)
	if err != nil {
		return err
	}
	return c.JSON(messageResponse{Message: msg})
}
