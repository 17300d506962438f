package layout

// Box is one placed item on a page. Coordinates are PDF points with the
// origin at the bottom-left of the page.
type Box interface {
	GetX() float64
	GetY() float64
	GetWidth() float64
	GetHeight() float64
}

// TextBox is a single line of text; Y is the baseline
type TextBox struct {
	X    float64
	Y    float64
	Size float64
	Bold bool
	Text string
}

func (b *TextBox) GetX() float64      { return b.X }
func (b *TextBox) GetY() float64      { return b.Y }
func (b *TextBox) GetWidth() float64  { return 0 }
func (b *TextBox) GetHeight() float64 { return b.Size }
