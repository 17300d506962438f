package pdf

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"github.com/gompdf/claimpacket/internal/layout"
	"github.com/gompdf/claimpacket/internal/pagination"
)

// Renderer handles rendering to PDF
type Renderer struct {
	// Fonts selects the regular/bold faces; zero value means core Helvetica
	Fonts Fonts
	// Logger receives debug output; nil disables it
	Logger *slog.Logger
}

// RenderOptions contains options for rendering
type RenderOptions struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
	Producer string
	// CreationDate is stamped into the document info; zero means the Unix epoch
	// so identical input produces identical bytes
	CreationDate time.Time
}

// NewRenderer creates a new PDF renderer
func NewRenderer(fonts Fonts, logger *slog.Logger) *Renderer {
	return &Renderer{Fonts: fonts, Logger: logger}
}

// Render serialises pages, in order, to w
func (r *Renderer) Render(pages []*pagination.Page, w io.Writer, options RenderOptions) error {
	if len(pages) == 0 {
		return fmt.Errorf("no pages to render")
	}

	first := pages[0]
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: first.Width, Ht: first.Height},
	})

	created := options.CreationDate
	if created.IsZero() {
		created = time.Unix(0, 0).UTC()
	}
	pdf.SetCreationDate(created)
	pdf.SetModificationDate(created)
	pdf.SetCatalogSort(true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetTitle(options.Title, true)
	pdf.SetAuthor(options.Author, true)
	pdf.SetSubject(options.Subject, true)
	pdf.SetKeywords(options.Keywords, true)
	pdf.SetCreator(options.Creator, true)
	pdf.SetProducer(options.Producer, true)

	face := r.Fonts.register(pdf)

	for i, page := range pages {
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: page.Width, Ht: page.Height})
		r.debug("rendering page", "page", i+1, "boxes", len(page.Boxes))

		for _, box := range page.Boxes {
			r.renderBox(pdf, face, page, box)
		}
		if pdf.Err() {
			return fmt.Errorf("failed to render page %d: %w", i+1, pdf.Error())
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to copy PDF to output: %w", err)
	}
	return nil
}

// renderBox renders a box to the PDF
func (r *Renderer) renderBox(pdf *fpdf.Fpdf, face *fontFace, page *pagination.Page, box layout.Box) {
	switch b := box.(type) {
	case *layout.TextBox:
		r.renderText(pdf, face, page, b)
	case *layout.ImageBox:
		r.renderImage(pdf, page, b)
	default:
		r.debug("unknown box type", "type", fmt.Sprintf("%T", box))
	}
}

// renderText renders text to the PDF. Box coordinates are bottom-up while
// fpdf measures from the top edge.
func (r *Renderer) renderText(pdf *fpdf.Fpdf, face *fontFace, page *pagination.Page, box *layout.TextBox) {
	if box.Text == "" {
		return
	}
	style := ""
	if box.Bold {
		style = "B"
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont(face.family, style, box.Size)
	pdf.Text(box.X, page.Height-box.Y, face.translate(box.Text))
}

// renderImage embeds the image data and draws it with its top edge at box.Y
func (r *Renderer) renderImage(pdf *fpdf.Fpdf, page *pagination.Page, box *layout.ImageBox) {
	opts := fpdf.ImageOptions{ImageType: box.Type, ReadDpi: false}
	if info := pdf.GetImageInfo(box.Name); info == nil {
		pdf.RegisterImageOptionsReader(box.Name, opts, bytes.NewReader(box.Data))
	}
	pdf.ImageOptions(box.Name, box.X, page.Height-box.Y, box.Width, box.Height, false, opts, 0, "")
}

func (r *Renderer) debug(msg string, args ...any) {
	if r.Logger != nil {
		r.Logger.Debug(msg, args...)
	}
}
