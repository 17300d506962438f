package pagination

import (
	"github.com/gompdf/claimpacket/internal/layout"
)

// Page represents a single page in the document
type Page struct {
	Width  float64
	Height float64
	Boxes  []layout.Box
}

// PageSize represents standard page sizes
type PageSize struct {
	Width  float64
	Height float64
	Name   string
}

// Standard page sizes in points (1/72 inch)
var (
	PageSizeA4     = PageSize{Width: 595.28, Height: 841.89, Name: "A4"}
	PageSizeLetter = PageSize{Width: 612.00, Height: 792.00, Name: "Letter"}
	PageSizeLegal  = PageSize{Width: 612.00, Height: 1008.00, Name: "Legal"}
)

// Margins represents page margins, each measured inward from its own edge
type Margins struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Controller owns the page list and the vertical write cursor of one
// document. The cursor is measured from the bottom edge, so it decreases as
// content is written.
type Controller struct {
	size    PageSize
	margins Margins
	pages   []*Page
	y       float64
}

// NewController opens page 1 with the cursor at the top margin
func NewController(size PageSize, margins Margins) *Controller {
	c := &Controller{size: size, margins: margins}
	c.NewPage()
	return c
}

// NewPage starts a fresh page and resets the cursor
func (c *Controller) NewPage() {
	c.pages = append(c.pages, &Page{
		Width:  c.size.Width,
		Height: c.size.Height,
		Boxes:  make([]layout.Box, 0),
	})
	c.y = c.Top()
}

// Top is the cursor position at the start of every page
func (c *Controller) Top() float64 {
	return c.size.Height - c.margins.Top
}

// Bottom is the lowest position the cursor may reach
func (c *Controller) Bottom() float64 {
	return c.margins.Bottom
}

// UsableHeight is the vertical space between the margins
func (c *Controller) UsableHeight() float64 {
	return c.Top() - c.Bottom()
}

// Cursor returns the current write position
func (c *Controller) Cursor() float64 {
	return c.y
}

// Fresh reports whether nothing has been written on the current page yet
func (c *Controller) Fresh() bool {
	return c.y >= c.Top()
}

// EnsureSpace starts a new page when fewer than height points remain. A
// block taller than a whole page is placed on the current page if that page
// is still empty.
func (c *Controller) EnsureSpace(height float64) {
	if c.y-height < c.Bottom() && !c.Fresh() {
		c.NewPage()
	}
}

// Advance moves the cursor down by dy, stopping at the bottom margin
func (c *Controller) Advance(dy float64) {
	c.y -= dy
	if c.y < c.Bottom() {
		c.y = c.Bottom()
	}
}

// Place adds a box to the current page
func (c *Controller) Place(box layout.Box) {
	page := c.pages[len(c.pages)-1]
	page.Boxes = append(page.Boxes, box)
}

// PageCount returns the number of pages opened so far
func (c *Controller) PageCount() int {
	return len(c.pages)
}

// Finish returns the pages in creation order
func (c *Controller) Finish() []*Page {
	return c.pages
}
