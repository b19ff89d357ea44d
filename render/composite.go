package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"furniquote/quote"
)

// ErrProductImage means the product photo could not be loaded or decoded.
// Callers treat it as "no image" for that item only.
var ErrProductImage = errors.New("product image unavailable")

// Decode reads any registered image format, including WebP.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func fillSquare(img image.Image, size int) *image.NRGBA {
	return imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)
}

// Compose draws the composite for a decoded product image. swatches maps an
// annotation id to its decoded swatch; a missing entry falls back to the
// material type colour.
func Compose(product image.Image, annotations []quote.Annotation, swatches map[string]image.Image) (*image.NRGBA, Layout, error) {
	b := product.Bounds()
	l := Plan(b.Dx(), b.Dy(), annotations)

	f, err := newFaces()
	if err != nil {
		return nil, l, err
	}

	canvas := imaging.New(l.Width, l.Height, color.White)

	if l.Image.W >= 1 && l.Image.H >= 1 {
		w := int(math.Round(l.Image.W))
		h := int(math.Round(l.Image.H))
		scaled := imaging.Resize(product, w, h, imaging.Lanczos)
		at := image.Pt(int(math.Round(l.Image.X)), int(math.Round(l.Image.Y)))
		draw.Draw(canvas, scaled.Bounds().Add(at), scaled, image.Point{}, draw.Over)
	}

	for _, r := range l.Rows {
		drawLeader(canvas, r)
		drawSwatch(canvas, r, swatches[r.Annotation.ID])
		drawLabel(canvas, f, r)
	}
	return canvas, l, nil
}

// Composite is the byte-level entry point: product image bytes plus
// annotations in, PNG bytes out. Undecodable swatch bytes fall back to the
// type colour. With no annotations the product image is re-encoded as is.
func Composite(product []byte, annotations []quote.Annotation, swatches map[string][]byte) ([]byte, error) {
	img, err := Decode(product)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProductImage, err)
	}
	if len(annotations) == 0 {
		return EncodePNG(img)
	}

	decoded := make(map[string]image.Image, len(swatches))
	for id, data := range swatches {
		if s, err := Decode(data); err == nil {
			decoded[id] = s
		}
	}

	canvas, _, err := Compose(img, annotations, decoded)
	if err != nil {
		return nil, err
	}
	return EncodePNG(canvas)
}
