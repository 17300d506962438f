package imaging

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/gompdf/claimpacket/pkg/claim"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// svgRasterWidth is the pixel width SVG evidence is rasterised at
const svgRasterWidth = 960

func (d *Decoder) decodeSVG(data []byte) (*Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: svg: %v", claim.ErrDecode, err)
	}
	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		return nil, fmt.Errorf("%w: svg has no view box", claim.ErrDecode)
	}

	w := svgRasterWidth
	h := int(math.Round(vh * float64(w) / vw))
	if h < 1 {
		h = 1
	}
	if err := d.checkPixels(w, h); err != nil {
		return nil, err
	}
	icon.SetTarget(0, 0, float64(w), float64(h))
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)

	encoded, err := encodePNG(rgba)
	if err != nil {
		return nil, err
	}
	return &Image{
		Type:   TypePNG,
		Data:   encoded,
		Width:  int(math.Round(vw)),
		Height: int(math.Round(vh)),
		Format: "svg",
	}, nil
}
