// Package pdf renders a delivery note into a single PDF document.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/deliverynotes/internal/logging"
	"github.com/dmitrijs2005/deliverynotes/internal/netx"
	"github.com/dmitrijs2005/deliverynotes/internal/server/models"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-pdf/fpdf"
	"github.com/samber/lo"
)

const (
	DateLayout           = models.WorkdateLayout
	SignatureUnavailable = "Unable to load signature image"

	signatureHeight = 35.0
	lineHeight      = 6.0
)

var imageTypes = map[string]string{
	"image/png":  "PNG",
	"image/jpeg": "JPG",
	"image/gif":  "GIF",
}

type Renderer struct {
	client   *http.Client
	logger   logging.Logger
	fetch    func(ctx context.Context, client *http.Client, url string) ([]byte, string, error)
	now      func() time.Time
	compress bool
}

// NewRenderer builds a Renderer that downloads signature images with client.
func NewRenderer(client *http.Client, logger logging.Logger) *Renderer {
	return &Renderer{
		client:   client,
		logger:   logger.With("module", "pdf"),
		fetch:    netx.Fetch,
		now:      time.Now,
		compress: true,
	}
}

type document struct {
	*fpdf.Fpdf
	tr func(string) string
}

func (d *document) line(format string, args ...any) {
	d.MultiCell(0, lineHeight, d.tr(fmt.Sprintf(format, args...)), "", "L", false)
}

func (d *document) heading(text string) {
	d.SetFont("Helvetica", "U", 12)
	d.line("%s", text)
	d.SetFont("Helvetica", "", 12)
}

// Render lays out the note header, every entry and, when the note is signed,
// the signature image. A signature that cannot be fetched or decoded is
// replaced by a text line; it never fails the render.
func (r *Renderer) Render(ctx context.Context, agg *models.NoteAggregate) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	doc := &document{Fpdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	doc.AddPage()
	doc.SetFont("Helvetica", "B", 20)
	doc.CellFormat(0, 10, doc.tr("Delivery Note"), "", 1, "C", false, 0, "")
	doc.Ln(lineHeight)

	date := agg.Note.CreatedAt()
	if date.IsZero() {
		date = r.now()
	}

	doc.SetFont("Helvetica", "", 12)
	doc.line("User: %s (%s)", lo.FromPtr(agg.Author.Name), agg.Author.Email)
	doc.line("Client: %s - CIF: %s", agg.Client.Name(), agg.Client.CIF())
	doc.line("Project: %s - Email: %s", agg.Project.Name(), agg.Project.Email())
	doc.line("Date: %s", date.Format(DateLayout))
	doc.Ln(lineHeight)

	doc.heading("Entries:")
	for i, e := range agg.Entries {
		doc.Ln(lineHeight / 2)
		doc.line("Entry %d:", i+1)
		doc.line("  Type: %s", e.Type())
		if e.Type() == models.EntryHours {
			doc.line("  Person: %s, Hours: %s", lo.FromPtr(e.Person()), number(e.Hours()))
		} else {
			doc.line("  Material: %s, Quantity: %s", lo.FromPtr(e.Material()), number(e.Quantity()))
		}
		doc.line("  Description: %s", e.Description())
		doc.line("  Workdate: %s", e.Workdate().Format(DateLayout))
	}

	if url := lo.FromPtr(agg.SignatureURL); url != "" {
		doc.Ln(lineHeight)
		doc.heading("Signed:")
		if err := r.signature(ctx, doc, url); err != nil {
			r.logger.Error(ctx, "error loading signature", "url", url, "error", err)
			doc.ClearError()
			doc.line("%s", SignatureUnavailable)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) signature(ctx context.Context, doc *document, url string) error {
	data, _, err := r.fetch(ctx, r.client, url)
	if err != nil {
		return err
	}

	kind := mimetype.Detect(data).String()
	imageType, ok := imageTypes[kind]
	if !ok {
		return fmt.Errorf("unsupported signature type %s", kind)
	}

	opts := fpdf.ImageOptions{ImageType: imageType, ReadDpi: true}
	doc.RegisterImageOptionsReader(url, opts, bytes.NewReader(data))
	if err := doc.Error(); err != nil {
		return err
	}
	doc.ImageOptions(url, -1, 0, 0, signatureHeight, true, opts, 0, "")
	return doc.Error()
}

func number(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
