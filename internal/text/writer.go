// Package text implements the line wrapping and vertical text flow used by
// the claim packet layout.
package text

import "github.com/gompdf/claimpacket/internal/layout"

// Style describes how a single line is set
type Style struct {
	Size float64
	Bold bool
}

// Placer is the page/cursor owner a Writer delegates to
type Placer interface {
	EnsureSpace(height float64)
	Cursor() float64
	Place(box layout.Box)
	Advance(dy float64)
}

// Writer sets single lines at a fixed left edge
type Writer struct {
	X       float64
	LineGap float64
}

// LineHeight is the vertical space one line of st consumes
func (w Writer) LineHeight(st Style) float64 {
	return st.Size + w.LineGap
}

// Write places line at the current cursor and moves the cursor down
func (w Writer) Write(p Placer, line string, st Style) {
	h := w.LineHeight(st)
	p.EnsureSpace(h)
	p.Place(&layout.TextBox{
		X:    w.X,
		Y:    p.Cursor(),
		Size: st.Size,
		Bold: st.Bold,
		Text: line,
	})
	p.Advance(h)
}

// WriteLines writes every line with the same style
func (w Writer) WriteLines(p Placer, lines []string, st Style) {
	for _, line := range lines {
		w.Write(p, line, st)
	}
}
