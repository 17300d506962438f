package layout

// ImageBox is an embedded raster image. Y is the top edge.
type ImageBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64

	// Name is the key the image is registered under in the output document
	Name string
	// Type is the fpdf image type: "JPG", "PNG" or "GIF"
	Type string
	Data []byte
}

func (b *ImageBox) GetX() float64      { return b.X }
func (b *ImageBox) GetY() float64      { return b.Y }
func (b *ImageBox) GetWidth() float64  { return b.Width }
func (b *ImageBox) GetHeight() float64 { return b.Height }

// Fit scales a naturalWidth x naturalHeight image uniformly to targetWidth
func Fit(naturalWidth, naturalHeight, targetWidth float64) (float64, float64) {
	if naturalWidth <= 0 {
		return targetWidth, 0
	}
	return targetWidth, naturalHeight * (targetWidth / naturalWidth)
}

// BlockHeight is the vertical space reserved for one image block
func BlockHeight(scaledHeight, captionGap, minRowHeight float64) float64 {
	if h := scaledHeight + captionGap; h > minRowHeight {
		return h
	}
	return minRowHeight
}
