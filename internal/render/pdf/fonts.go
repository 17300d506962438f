// Package pdf serialises laid-out pages into a PDF document with fpdf.
package pdf

import (
	"sync"

	"codeberg.org/go-pdf/fpdf"
)

const (
	coreFamily = "Helvetica"
	utf8Family = "PacketSans"
)

// Fonts names an optional TrueType pair. When both paths are empty the
// built-in Helvetica and Helvetica-Bold faces are used and text is encoded
// as cp1252.
type Fonts struct {
	Regular string
	Bold    string
}

// UTF8 reports whether a TrueType pair is configured
func (f Fonts) UTF8() bool {
	return f.Regular != "" && f.Bold != ""
}

type fontFace struct {
	family    string
	translate func(string) string
}

func (f Fonts) register(pdf *fpdf.Fpdf) *fontFace {
	if f.UTF8() {
		pdf.AddUTF8Font(utf8Family, "", f.Regular)
		pdf.AddUTF8Font(utf8Family, "B", f.Bold)
		return &fontFace{family: utf8Family, translate: func(s string) string { return s }}
	}
	return &fontFace{family: coreFamily, translate: pdf.UnicodeTranslatorFromDescriptor("")}
}

// Measurer sizes text with the same font metrics the renderer uses. It is
// safe for concurrent use.
type Measurer struct {
	mu   sync.Mutex
	pdf  *fpdf.Fpdf
	face *fontFace
}

// NewMeasurer creates a measurer for fonts
func NewMeasurer(fonts Fonts) *Measurer {
	pdf := fpdf.New("P", "pt", "Letter", "")
	face := fonts.register(pdf)
	return &Measurer{pdf: pdf, face: face}
}

// Width returns the rendered width of text in points
func (m *Measurer) Width(text string, size float64, bold bool) float64 {
	if text == "" || size <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	style := ""
	if bold {
		style = "B"
	}
	m.pdf.SetFont(m.face.family, style, size)
	return m.pdf.GetStringWidth(m.face.translate(text))
}

// Func binds a size and weight, for use with text.WrapMeasured
func (m *Measurer) Func(size float64, bold bool) func(string) float64 {
	return func(s string) float64 { return m.Width(s, size, bold) }
}

// Err reports a font loading failure, if any
func (m *Measurer) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pdf.Error()
}
