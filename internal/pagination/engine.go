// Package pagination tracks the current page and cursor while a claim
// packet is laid out, and decides when content forces a page break.
package pagination

// Options represents options for the pagination controller
type Options struct {
	PageWidth    float64
	PageHeight   float64
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64
}

// DefaultOptions is US Letter with the packet's fixed margins
func DefaultOptions() Options {
	return Options{
		PageWidth:    PageSizeLetter.Width,
		PageHeight:   PageSizeLetter.Height,
		MarginTop:    32,
		MarginRight:  40,
		MarginBottom: 60,
		MarginLeft:   40,
	}
}

// New creates a controller from flat options
func New(o Options) *Controller {
	return NewController(
		PageSize{
			Width:  o.PageWidth,
			Height: o.PageHeight,
			Name:   "Custom",
		},
		Margins{
			Top:    o.MarginTop,
			Right:  o.MarginRight,
			Bottom: o.MarginBottom,
			Left:   o.MarginLeft,
		},
	)
}
