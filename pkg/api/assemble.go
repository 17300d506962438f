package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gompdf/claimpacket/internal/imaging"
	"github.com/gompdf/claimpacket/internal/layout"
	"github.com/gompdf/claimpacket/internal/pagination"
	"github.com/gompdf/claimpacket/internal/render/pdf"
	"github.com/gompdf/claimpacket/internal/text"
	"github.com/gompdf/claimpacket/pkg/claim"
)

const (
	inventoryHeader = "Area | Category | Description | Qty | Notes | Est. Cost"
	noNarrative     = "No narrative"
	noCaption       = "No caption"
	lossDateLayout  = "2006-01-02"
)

var (
	styleTitle     = text.Style{Size: 18, Bold: true}
	styleLabel     = text.Style{Size: 11, Bold: true}
	styleField     = text.Style{Size: 11}
	styleSection   = text.Style{Size: 14, Bold: true}
	styleHeaderRow = text.Style{Size: 10, Bold: true}
	styleRow       = text.Style{Size: 9}
	styleAppendix  = text.Style{Size: 16, Bold: true}
)

// assembler lays out one packet. It is created per request and never shared.
type assembler struct {
	opts    Options
	ctrl    *pagination.Controller
	writer  text.Writer
	measure *pdf.Measurer
	logger  *slog.Logger
}

func (g *Generator) newAssembler() (*assembler, error) {
	o := g.options
	ctrl := pagination.New(pagination.Options{
		PageWidth:    o.PageWidth,
		PageHeight:   o.PageHeight,
		MarginTop:    o.MarginTop,
		MarginRight:  o.MarginRight,
		MarginBottom: o.MarginBottom,
		MarginLeft:   o.MarginLeft,
	})
	a := &assembler{
		opts:   o,
		ctrl:   ctrl,
		writer: text.Writer{X: o.MarginLeft, LineGap: o.LineGap},
		logger: g.logger(),
	}
	if o.WrapMode == WrapMetrics {
		a.measure = pdf.NewMeasurer(g.fonts())
		if err := a.measure.Err(); err != nil {
			return nil, fmt.Errorf("failed to load font metrics: %w", err)
		}
	}
	return a, nil
}

// wrap breaks s for a column starting at x. Character mode ignores x.
func (a *assembler) wrap(s string, maxChars int, x float64, st text.Style) []string {
	s = text.Normalize(s)
	if a.measure == nil {
		return text.Wrap(s, maxChars)
	}
	width := a.opts.PageWidth - a.opts.MarginRight - x
	return text.WrapMeasured(s, width, a.measure.Func(st.Size, st.Bold))
}

func (a *assembler) line(s string, st text.Style) {
	a.writer.Write(a.ctrl, text.Normalize(s), st)
}

func (a *assembler) claimDetails(c claim.Claim) {
	a.line(a.opts.Title, styleTitle)
	a.line("Title: "+c.Title, styleLabel)
	a.line("Loss Date: "+formatDate(c.LossDate), styleField)
	a.line("Cause: "+c.LossCause, styleField)
	a.line("Location: "+c.Location, styleField)
	a.line("Narrative:", styleLabel)

	narrative := c.Narrative
	if strings.TrimSpace(narrative) == "" {
		narrative = noNarrative
	}
	a.writer.WriteLines(a.ctrl, a.wrap(narrative, a.opts.NarrativeWrap, a.opts.MarginLeft, styleField), styleField)
}

func (a *assembler) inventory(areas claim.AreaLookup, items []claim.DamageItem) {
	a.ctrl.Advance(a.opts.SectionGap)
	a.line("Damage Inventory", styleSection)
	a.line(inventoryHeader, styleHeaderRow)

	for _, item := range items {
		row := inventoryRow(areas, item, a.opts.NotesLimit)
		a.writer.WriteLines(a.ctrl, a.wrap(row, a.opts.RowWrap, a.opts.MarginLeft, styleRow), styleRow)
	}
}

func inventoryRow(areas claim.AreaLookup, item claim.DamageItem, notesLimit int) string {
	qty := strings.TrimSpace(text.Quantity(item.Quantity) + " " + item.Unit)
	return strings.Join([]string{
		areas.Name(item.AreaID),
		item.Category,
		item.Description,
		qty,
		text.Truncate(item.ConditionNotes, notesLimit),
		text.Money(item.Cost()),
	}, " | ")
}

// appendix places every image evidence entry in list order. Entries that
// fail to fetch or decode are skipped and reported; only cancellation of
// ctx aborts.
func (a *assembler) appendix(ctx context.Context, c claim.Claim, evidence []claim.Evidence, pf *prefetcher, report *Report) error {
	a.ctrl.NewPage()
	a.line("Photo Appendix", styleAppendix)

	for i, ev := range evidence {
		img, err := pf.next(ctx, i)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		result := EntryResult{Index: i, EvidenceID: ev.ID, Path: ev.Path}
		if err != nil {
			result.Err = err
			report.Entries = append(report.Entries, result)
			a.logger.Warn("evidence skipped",
				"claim_id", c.ID,
				"evidence_id", ev.ID,
				"index", i,
				"path", ev.Path,
				"reason", skipReason(err),
				"error", err,
			)
			continue
		}

		a.placeImage(i, ev, img, &result)
		report.Entries = append(report.Entries, result)
	}
	return nil
}

func (a *assembler) placeImage(i int, ev claim.Evidence, img *imaging.Image, result *EntryResult) {
	o := a.opts
	w, h := layout.Fit(float64(img.Width), float64(img.Height), o.ImageWidth)
	block := layout.BlockHeight(h, o.CaptionGap, o.MinRowHeight)

	a.ctrl.EnsureSpace(block)
	top := a.ctrl.Cursor()
	a.ctrl.Place(&layout.ImageBox{
		X:      o.MarginLeft,
		Y:      top,
		Width:  w,
		Height: h,
		Name:   fmt.Sprintf("evidence-%d", i),
		Type:   img.Type,
		Data:   img.Data,
	})

	caption := ev.Caption
	if strings.TrimSpace(caption) == "" {
		caption = noCaption
	}
	captionStyle := text.Style{Size: o.CaptionSize}
	floor := top - block
	if b := a.ctrl.Bottom(); floor < b {
		floor = b
	}
	for n, line := range a.wrap(caption, o.CaptionWrap, o.CaptionX, captionStyle) {
		y := top - o.CaptionOffset - float64(n)*o.CaptionLineHeight
		if y < floor {
			break
		}
		a.ctrl.Place(&layout.TextBox{X: o.CaptionX, Y: y, Size: o.CaptionSize, Text: line})
	}

	a.ctrl.Advance(block)

	result.Placed = true
	result.Page = a.ctrl.PageCount()
	result.Width = w
	result.Height = h
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, claim.ErrDecode):
		return "decode"
	case errors.Is(err, claim.ErrResourceFetch):
		return "fetch"
	default:
		return "unknown"
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(lossDateLayout)
}
