package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gompdf/claimpacket/internal/imaging"
	"github.com/gompdf/claimpacket/internal/pagination"
	"github.com/gompdf/claimpacket/internal/render/pdf"
	"github.com/gompdf/claimpacket/pkg/claim"
)

// ContentType is the media type of every generated packet
const ContentType = "application/pdf"

// Generator is the main API for producing claim packets
type Generator struct {
	options Options
	fetcher claim.Fetcher
}

// Packet is a generated document ready to be streamed to the caller
type Packet struct {
	Data        []byte
	ContentType string
	Filename    string
	Report      *Report
}

// EntryResult is the outcome of one image evidence entry
type EntryResult struct {
	// Index is the position of the entry among the claim's image evidence
	Index      int
	EvidenceID string
	Path       string
	Placed     bool
	// Err is set when the entry was skipped
	Err error

	// Page is the 1-based page an image was placed on
	Page   int
	Width  float64
	Height float64
}

// Report summarises one generation
type Report struct {
	ClaimID string
	Pages   int
	Items   int
	Entries []EntryResult
}

// Placed returns the entries that made it into the document, in order
func (r *Report) Placed() []EntryResult {
	var out []EntryResult
	for _, e := range r.Entries {
		if e.Placed {
			out = append(out, e)
		}
	}
	return out
}

// Skipped returns the entries that were left out
func (r *Report) Skipped() []EntryResult {
	var out []EntryResult
	for _, e := range r.Entries {
		if !e.Placed {
			out = append(out, e)
		}
	}
	return out
}

// New creates a new generator with default options
func New(fetcher claim.Fetcher) *Generator {
	return NewWithOptions(fetcher, DefaultOptions())
}

// NewWithOptions creates a new generator with the specified options
func NewWithOptions(fetcher claim.Fetcher, options Options) *Generator {
	return &Generator{
		options: options,
		fetcher: fetcher,
	}
}

// WithOption applies an option to the generator
func (g *Generator) WithOption(option Option) *Generator {
	option(&g.options)
	return g
}

// Options returns a copy of the effective options
func (g *Generator) Options() Options {
	return g.options
}

// Generate builds the packet for claimID on behalf of ownerID. It fails with
// claim.ErrUnauthorized or claim.ErrNotFound before any layout happens;
// evidence failures only drop the affected entry.
func (g *Generator) Generate(ctx context.Context, claimID, ownerID string) (*Packet, error) {
	if ownerID == "" {
		return nil, claim.ErrUnauthorized
	}
	snap, err := claim.FetchSnapshot(ctx, g.fetcher, claimID, ownerID)
	if err != nil {
		return nil, err
	}
	return g.Render(ctx, snap)
}

// GenerateTo builds the packet and writes the document to w
func (g *Generator) GenerateTo(ctx context.Context, claimID, ownerID string, w io.Writer) (*Report, error) {
	packet, err := g.Generate(ctx, claimID, ownerID)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(packet.Data); err != nil {
		return nil, fmt.Errorf("failed to write packet: %w", err)
	}
	return packet.Report, nil
}

// Render lays out and serialises an already fetched snapshot
func (g *Generator) Render(ctx context.Context, snap *claim.Snapshot) (*Packet, error) {
	start := time.Now()
	pages, report, err := g.layout(ctx, snap)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	renderer := pdf.NewRenderer(g.fonts(), g.logger())
	if err := renderer.Render(pages, &buf, g.renderOptions(snap.Claim)); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.logger().Info("claim packet generated",
		"claim_id", snap.Claim.ID,
		"pages", report.Pages,
		"items", report.Items,
		"images_placed", len(report.Placed()),
		"images_skipped", len(report.Skipped()),
		"bytes", buf.Len(),
		"duration", time.Since(start),
	)

	return &Packet{
		Data:        buf.Bytes(),
		ContentType: ContentType,
		Filename:    Filename(snap.Claim.ID),
		Report:      report,
	}, nil
}

// layout runs the whole page flow for snap and returns the finished pages
func (g *Generator) layout(ctx context.Context, snap *claim.Snapshot) ([]*pagination.Page, *Report, error) {
	a, err := g.newAssembler()
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	images := imageEvidence(snap.Evidence)
	pf := startPrefetch(ctx, g.options.PrefetchWindow, images, g.load)

	report := &Report{ClaimID: snap.Claim.ID, Items: len(snap.Items)}

	a.claimDetails(snap.Claim)
	a.inventory(snap.Areas, snap.Items)
	if err := a.appendix(ctx, snap.Claim, images, pf, report); err != nil {
		return nil, nil, err
	}

	pages := a.ctrl.Finish()
	report.Pages = len(pages)
	return pages, report, nil
}

// load fetches and decodes one evidence entry, retrying failed fetches
func (g *Generator) load(ctx context.Context, ev claim.Evidence) (*imaging.Image, error) {
	var (
		data []byte
		err  error
	)
	delay := g.options.RetryDelay
	for attempt := 0; attempt <= g.options.FetchRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			delay *= 2
		}
		data, err = g.fetcher.FetchResource(ctx, ev.Path)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		g.logger().Debug("evidence fetch failed", "evidence_id", ev.ID, "attempt", attempt+1, "error", err)
	}
	if err != nil {
		if !errors.Is(err, claim.ErrResourceFetch) {
			err = fmt.Errorf("%w: %s: %v", claim.ErrResourceFetch, ev.Path, err)
		}
		return nil, err
	}

	decoder := &imaging.Decoder{
		MaxDimension: g.options.MaxImageDimension,
		MaxPixels:    g.options.MaxImagePixels,
	}
	return decoder.Decode(ev.MIMEType, data)
}

func (g *Generator) renderOptions(c claim.Claim) pdf.RenderOptions {
	title := g.options.Title
	if c.Title != "" {
		title = title + ": " + c.Title
	}
	subject := g.options.Subject
	if subject == "" {
		subject = "Claim " + c.ID
	}
	return pdf.RenderOptions{
		Title:        title,
		Author:       g.options.Author,
		Subject:      subject,
		Keywords:     g.options.Keywords,
		Creator:      "claimpacket",
		Producer:     "claimpacket",
		CreationDate: g.options.CreationDate,
	}
}

func (g *Generator) fonts() pdf.Fonts {
	return pdf.Fonts{Regular: g.options.FontRegular, Bold: g.options.FontBold}
}

func (g *Generator) logger() *slog.Logger {
	if g.options.Logger != nil {
		return g.options.Logger
	}
	return slog.Default()
}

// imageEvidence keeps the image entries, preserving order
func imageEvidence(evidence []claim.Evidence) []claim.Evidence {
	out := make([]claim.Evidence, 0, len(evidence))
	for _, ev := range evidence {
		if ev.IsImage() {
			out = append(out, ev)
		}
	}
	return out
}

// Filename is the download name for a claim's packet
func Filename(claimID string) string {
	var b strings.Builder
	for _, r := range claimID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return "claim-packet-" + b.String() + ".pdf"
}
