package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"furniquote/quote"
)

var (
	leaderColor      = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xFF}
	swatchFrameColor = color.RGBA{R: 0xCC, G: 0xCC, B: 0xCC, A: 0xFF}
	codeColor        = color.RGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xFF}
	nameColor        = color.RGBA{R: 0x1A, G: 0x1A, B: 0x1A, A: 0xFF}
)

const (
	circleSegments = 64
	curveSegments  = 32
)

func newRasterizer(dst draw.Image) *vector.Rasterizer {
	b := dst.Bounds()
	return vector.NewRasterizer(b.Dx(), b.Dy())
}

func fill(dst draw.Image, z *vector.Rasterizer, c color.Color) {
	z.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
}

// circlePath adds a closed polygon approximating a circle. reverse flips the
// winding so an inner circle punches a hole under the non-zero rule.
func circlePath(z *vector.Rasterizer, cx, cy, r float64, reverse bool) {
	for i := 0; i <= circleSegments; i++ {
		t := 2 * math.Pi * float64(i) / circleSegments
		if reverse {
			t = -t
		}
		x := float32(cx + r*math.Cos(t))
		y := float32(cy + r*math.Sin(t))
		if i == 0 {
			z.MoveTo(x, y)
			continue
		}
		z.LineTo(x, y)
	}
	z.ClosePath()
}

func fillCircle(dst draw.Image, cx, cy, r float64, c color.Color) {
	z := newRasterizer(dst)
	circlePath(z, cx, cy, r, false)
	fill(dst, z, c)
}

func strokeCircle(dst draw.Image, cx, cy, r, width float64, c color.Color) {
	z := newRasterizer(dst)
	circlePath(z, cx, cy, r+width/2, false)
	circlePath(z, cx, cy, r-width/2, true)
	fill(dst, z, c)
}

// segmentPath adds the quad covering a straight segment of the given width.
func segmentPath(z *vector.Rasterizer, a, b quote.Point, width float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	nx, ny := -dy/length*width/2, dx/length*width/2
	z.MoveTo(float32(a.X+nx), float32(a.Y+ny))
	z.LineTo(float32(b.X+nx), float32(b.Y+ny))
	z.LineTo(float32(b.X-nx), float32(b.Y-ny))
	z.LineTo(float32(a.X-nx), float32(a.Y-ny))
	z.ClosePath()
}

// strokePolyline strokes connected segments in one pass so overlapping
// joints do not darken.
func strokePolyline(dst draw.Image, pts []quote.Point, width float64, c color.Color) {
	if len(pts) < 2 {
		return
	}
	z := newRasterizer(dst)
	for i := 1; i < len(pts); i++ {
		segmentPath(z, pts[i-1], pts[i], width)
	}
	fill(dst, z, c)
}

// leaderPoints flattens the leader: a quadratic curve from the source point
// to the bend with its control point level with the source, then a straight
// run to the target.
func leaderPoints(r Row) []quote.Point {
	p0 := r.Source
	ctrl := quote.Point{X: r.Bend.X, Y: r.Source.Y}
	p2 := r.Bend
	pts := make([]quote.Point, 0, curveSegments+2)
	for i := 0; i <= curveSegments; i++ {
		t := float64(i) / curveSegments
		u := 1 - t
		pts = append(pts, quote.Point{
			X: u*u*p0.X + 2*u*t*ctrl.X + t*t*p2.X,
			Y: u*u*p0.Y + 2*u*t*ctrl.Y + t*t*p2.Y,
		})
	}
	return append(pts, r.Target)
}

func strokeRect(dst draw.Image, r Rect, width float64, c color.Color) {
	tl := quote.Point{X: r.X, Y: r.Y}
	tr := quote.Point{X: r.X + r.W, Y: r.Y}
	br := quote.Point{X: r.X + r.W, Y: r.Y + r.H}
	bl := quote.Point{X: r.X, Y: r.Y + r.H}
	strokePolyline(dst, []quote.Point{tl, tr, br, bl, tl}, width, c)
}

// circleMask is an alpha mask of a filled circle of radius r centred in a
// 2r x 2r square.
func circleMask(r int) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, 2*r, 2*r))
	z := vector.NewRasterizer(2*r, 2*r)
	circlePath(z, float64(r), float64(r), float64(r), false)
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}

// drawSwatch paints the swatch image clipped to a circle, or the material
// type colour when no image is available, then its ring and frame.
func drawSwatch(dst draw.Image, r Row, swatch image.Image) {
	cx, cy := r.SwatchCenter.X, r.SwatchCenter.Y
	strokeRect(dst, r.SwatchFrame, 1, swatchFrameColor)

	if swatch != nil {
		size := 2 * swatchRadius
		tile := fillSquare(swatch, size)
		origin := image.Pt(int(math.Round(cx))-swatchRadius, int(math.Round(cy))-swatchRadius)
		target := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(size, size))}
		draw.DrawMask(dst, target, tile, image.Point{}, circleMask(swatchRadius), image.Point{}, draw.Over)
	} else {
		fillCircle(dst, cx, cy, swatchRadius, quote.TypeColor(r.Annotation.Material.Type))
	}

	strokeCircle(dst, cx, cy, ringRadius, 1, leaderColor)
}

func drawLeader(dst draw.Image, r Row) {
	strokePolyline(dst, leaderPoints(r), leaderWidth, leaderColor)
	fillCircle(dst, r.Source.X, r.Source.Y, dotRadius, leaderColor)
}
