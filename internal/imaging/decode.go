// Package imaging decodes evidence bytes into images the PDF writer can
// embed. JPEG is passed through untouched where possible; every other
// supported format is transcoded to 8-bit PNG.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/gompdf/claimpacket/pkg/claim"
	"golang.org/x/image/draw"

	// Register a broad set of image decoders so image.Decode can handle many formats.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	_ "image/gif"
)

// Image types understood by the PDF writer
const (
	TypeJPG = "JPG"
	TypePNG = "PNG"
)

// DefaultMaxDimension bounds the longest side of an embedded image in pixels
const DefaultMaxDimension = 2400

// DefaultMaxPixels bounds the source pixel count a decode may allocate for
const DefaultMaxPixels = 40_000_000

// Image is a decoded, embeddable image
type Image struct {
	Type string
	Data []byte
	// Width and Height are the natural pixel dimensions of the source
	Width  int
	Height int
	// Format is the source format as reported by the decoder
	Format string
}

// Decoder turns raw evidence bytes into an Image
type Decoder struct {
	// MaxDimension caps the longest embedded side; 0 disables downscaling
	MaxDimension int
	// MaxPixels rejects sources whose width*height exceeds it before any
	// pixel data is decoded; 0 disables the check
	MaxPixels int64
}

// NewDecoder creates a decoder with the default size cap
func NewDecoder() *Decoder {
	return &Decoder{MaxDimension: DefaultMaxDimension, MaxPixels: DefaultMaxPixels}
}

// Decode validates data and returns an embeddable image. Errors wrap
// claim.ErrDecode.
func (d *Decoder) Decode(mimeType string, data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", claim.ErrDecode)
	}
	if isSVG(mimeType, data) {
		return d.decodeSVG(data)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", claim.ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", claim.ErrDecode, cfg.Width, cfg.Height)
	}
	if err := d.checkPixels(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", claim.ErrDecode, format, err)
	}

	out := &Image{Width: cfg.Width, Height: cfg.Height, Format: format}
	oversize := d.oversize(cfg.Width, cfg.Height)

	if format == "jpeg" && jpegEmbeddable(cfg.ColorModel) {
		if !oversize {
			out.Type = TypeJPG
			out.Data = data
			return out, nil
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, d.scale(img), &jpeg.Options{Quality: 85}); err != nil {
			return nil, fmt.Errorf("%w: re-encode jpeg: %v", claim.ErrDecode, err)
		}
		out.Type = TypeJPG
		out.Data = buf.Bytes()
		return out, nil
	}

	src := img
	if oversize {
		src = d.scale(img)
	}
	encoded, err := encodePNG(src)
	if err != nil {
		return nil, err
	}
	out.Type = TypePNG
	out.Data = encoded
	return out, nil
}

// checkPixels fails with claim.ErrDecode when a w x h source is over budget
func (d *Decoder) checkPixels(w, h int) error {
	if d.MaxPixels > 0 && int64(w)*int64(h) > d.MaxPixels {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", claim.ErrDecode, w, h, d.MaxPixels)
	}
	return nil
}

func (d *Decoder) oversize(w, h int) bool {
	return d.MaxDimension > 0 && (w > d.MaxDimension || h > d.MaxDimension)
}

// scale shrinks img so its longest side equals MaxDimension
func (d *Decoder) scale(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w >= h {
		h = h * d.MaxDimension / w
		w = d.MaxDimension
	} else {
		w = w * d.MaxDimension / h
		h = d.MaxDimension
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// encodePNG writes img as a non-interlaced 8-bit PNG
func encodePNG(img image.Image) ([]byte, error) {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("%w: encode png: %v", claim.ErrDecode, err)
	}
	return buf.Bytes(), nil
}

// jpegEmbeddable reports whether a JPEG's colour model can be embedded as DCT data
func jpegEmbeddable(m color.Model) bool {
	switch m {
	case color.YCbCrModel, color.GrayModel, color.CMYKModel:
		return true
	}
	return false
}

func isSVG(mimeType string, data []byte) bool {
	if strings.Contains(strings.ToLower(mimeType), "svg") {
		return true
	}
	head := bytes.TrimSpace(data)
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.HasPrefix(head, []byte("<svg")) ||
		(bytes.HasPrefix(head, []byte("<?xml")) && bytes.Contains(head, []byte("<svg")))
}
