package api

import (
	"log/slog"
	"time"
)

// Options represents configuration options for the claim packet generator
type Options struct {
	// Page dimensions
	PageWidth  float64
	PageHeight float64

	// Page margins. The cursor starts MarginTop below the top edge and a new
	// page begins when content would cross MarginBottom.
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64

	// Vertical rhythm
	LineGap    float64
	SectionGap float64

	// Wrapping
	WrapMode      WrapMode
	NarrativeWrap int
	RowWrap       int
	CaptionWrap   int
	NotesLimit    int

	// Image appendix geometry
	ImageWidth        float64
	CaptionX          float64
	CaptionOffset     float64
	CaptionSize       float64
	CaptionLineHeight float64
	CaptionGap        float64
	MinRowHeight      float64

	// Evidence pipeline
	PrefetchWindow    int
	FetchRetries      int
	RetryDelay        time.Duration
	MaxImageDimension int
	// MaxImagePixels skips evidence whose source width*height exceeds it
	MaxImagePixels int64

	// Fonts. Both empty selects the built-in Helvetica pair.
	FontRegular string
	FontBold    string

	// Document metadata
	Title        string
	Author       string
	Subject      string
	Keywords     string
	CreationDate time.Time

	// Logger receives skipped-evidence warnings and debug output
	Logger *slog.Logger
}

// Option is a function that modifies Options
type Option func(*Options)

// WrapMode selects how lines are broken
type WrapMode string

const (
	// WrapChars breaks on a fixed character count
	WrapChars WrapMode = "chars"
	// WrapMetrics breaks on measured glyph widths against the column width
	WrapMetrics WrapMode = "metrics"
)

// DefaultTitle is the heading written at the top of every packet
const DefaultTitle = "Claim Copilot - Claim Packet"

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		// US Letter, cursor starting at y=760
		PageWidth:    PageSizeLetterWidth,
		PageHeight:   PageSizeLetterHeight,
		MarginTop:    32,
		MarginRight:  40,
		MarginBottom: 60,
		MarginLeft:   40,

		LineGap:    8,
		SectionGap: 8,

		WrapMode:      WrapChars,
		NarrativeWrap: 95,
		RowWrap:       105,
		CaptionWrap:   60,
		NotesLimit:    28,

		ImageWidth:        160,
		CaptionX:          220,
		CaptionOffset:     20,
		CaptionSize:       10,
		CaptionLineHeight: 13,
		CaptionGap:        24,
		MinRowHeight:      180,

		PrefetchWindow:    4,
		FetchRetries:      2,
		RetryDelay:        200 * time.Millisecond,
		MaxImageDimension: 2400,
		MaxImagePixels:    40_000_000,

		Title: DefaultTitle,
	}
}

// WithPageSize sets the page size
func WithPageSize(width, height float64) Option {
	return func(o *Options) {
		o.PageWidth = width
		o.PageHeight = height
	}
}

// WithMargins sets the page margins
func WithMargins(top, right, bottom, left float64) Option {
	return func(o *Options) {
		o.MarginTop = top
		o.MarginRight = right
		o.MarginBottom = bottom
		o.MarginLeft = left
	}
}

// WithLineGap sets the gap added below every line
func WithLineGap(gap float64) Option {
	return func(o *Options) {
		o.LineGap = gap
	}
}

// WithWrapMode selects character-count or metric wrapping
func WithWrapMode(mode WrapMode) Option {
	return func(o *Options) {
		o.WrapMode = mode
	}
}

// WithPrefetchWindow sets how many evidence images may be fetched ahead of placement
func WithPrefetchWindow(n int) Option {
	return func(o *Options) {
		o.PrefetchWindow = n
	}
}

// WithFetchRetries sets how many extra attempts a failed evidence fetch gets
func WithFetchRetries(n int, delay time.Duration) Option {
	return func(o *Options) {
		o.FetchRetries = n
		o.RetryDelay = delay
	}
}

// WithMaxImageDimension caps the longest embedded image side in pixels
func WithMaxImageDimension(px int) Option {
	return func(o *Options) {
		o.MaxImageDimension = px
	}
}

// WithMaxImagePixels bounds the pixel count of a source image; larger
// evidence is skipped without being decoded
func WithMaxImagePixels(px int64) Option {
	return func(o *Options) {
		o.MaxImagePixels = px
	}
}

// WithFonts selects a TrueType regular/bold pair
func WithFonts(regular, bold string) Option {
	return func(o *Options) {
		o.FontRegular = regular
		o.FontBold = bold
	}
}

// WithTitle sets the heading written on page 1
func WithTitle(title string) Option {
	return func(o *Options) {
		o.Title = title
	}
}

// WithAuthor sets the document author
func WithAuthor(author string) Option {
	return func(o *Options) {
		o.Author = author
	}
}

// WithSubject sets the document subject
func WithSubject(subject string) Option {
	return func(o *Options) {
		o.Subject = subject
	}
}

// WithKeywords sets the document keywords
func WithKeywords(keywords string) Option {
	return func(o *Options) {
		o.Keywords = keywords
	}
}

// WithCreationDate stamps a fixed creation date into the document
func WithCreationDate(t time.Time) Option {
	return func(o *Options) {
		o.CreationDate = t
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// Standard page sizes in points (1/72 inch)
const (
	PageSizeA4Width  = 595.28
	PageSizeA4Height = 841.89

	PageSizeLetterWidth  = 612
	PageSizeLetterHeight = 792
	PageSizeLegalWidth   = 612
	PageSizeLegalHeight  = 1008
)

// WithPageSizeA4 sets the page size to A4
func WithPageSizeA4() Option {
	return WithPageSize(PageSizeA4Width, PageSizeA4Height)
}

// WithPageSizeLetter sets the page size to US Letter
func WithPageSizeLetter() Option {
	return WithPageSize(PageSizeLetterWidth, PageSizeLetterHeight)
}

// WithPageSizeLegal sets the page size to US Legal
func WithPageSizeLegal() Option {
	return WithPageSize(PageSizeLegalWidth, PageSizeLegalHeight)
}
