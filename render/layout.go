// Package render composes a product photo and its annotations into a single
// PNG with leader lines running to a legend of material swatches.
package render

import (
	"math"
	"sort"

	"furniquote/quote"
)

// Composite geometry, in pixels.
const (
	SwatchSize       = 70
	LabelWidth       = 130
	RightPanelWidth  = LabelWidth + SwatchSize + 40
	ProductAreaWidth = 300
	MinHeight        = 350
	RowHeight        = SwatchSize + 15
	Margin           = 40
	ImageScale       = 0.9

	rowPadding   = 10
	swatchRadius = 33
	ringRadius   = 34
	dotRadius    = 4
	leaderWidth  = 1.5
	bendInset    = 20
	legendGap    = 20
	labelGap     = 10
	lineHeight   = 13
	codeOffset   = 16
)

// Rect is a float rectangle on the composite.
type Rect struct {
	X, Y, W, H float64
}

// Row is one legend entry and the leader line feeding it.
type Row struct {
	Annotation quote.Annotation
	// Source is the annotated point on the drawn product image.
	Source quote.Point
	// Bend is where the curve meets the legend row before the straight run.
	Bend quote.Point
	// Target is where the leader meets the swatch frame.
	Target       quote.Point
	SwatchCenter quote.Point
	SwatchFrame  Rect
	LabelX       float64
	Y            float64
}

// Layout is the full geometry of a composite.
type Layout struct {
	Width  int
	Height int
	Image  Rect
	Rows   []Row
}

// CanvasHeight grows with the annotation count so legend rows never overlap.
func CanvasHeight(n int) int {
	return max(MinHeight, n*RowHeight+Margin)
}

// SortAnnotations orders annotations top to bottom. Ties fall back to x and
// then id so the order is stable across runs.
func SortAnnotations(annotations []quote.Annotation) []quote.Annotation {
	sorted := append([]quote.Annotation(nil), annotations...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.ID < b.ID
	})
	return sorted
}

// Plan computes the composite geometry for a product image of imgW x imgH
// pixels. It does not draw anything.
func Plan(imgW, imgH int, annotations []quote.Annotation) Layout {
	n := len(annotations)
	height := CanvasHeight(n)
	l := Layout{
		Width:  ProductAreaWidth + RightPanelWidth,
		Height: height,
		Image:  fitImage(imgW, imgH, float64(height)),
	}
	if n == 0 {
		return l
	}

	h := float64(height)
	spacing := math.Max(SwatchSize+rowPadding, (h-Margin)/float64(n))
	startY := (h - float64(n-1)*spacing) / 2
	rightX := float64(ProductAreaWidth + legendGap)
	bendX := float64(ProductAreaWidth - bendInset)

	for i, a := range SortAnnotations(annotations) {
		y := startY + float64(i)*spacing
		l.Rows = append(l.Rows, Row{
			Annotation: a,
			Source: quote.Point{
				X: l.Image.X + a.X/100*l.Image.W,
				Y: l.Image.Y + a.Y/100*l.Image.H,
			},
			Bend:         quote.Point{X: bendX, Y: y},
			Target:       quote.Point{X: rightX, Y: y},
			SwatchCenter: quote.Point{X: rightX + SwatchSize/2, Y: y},
			SwatchFrame:  Rect{X: rightX, Y: y - SwatchSize/2, W: SwatchSize, H: SwatchSize},
			LabelX:       rightX + SwatchSize + labelGap,
			Y:            y,
		})
	}
	return l
}

func fitImage(w, h int, areaH float64) Rect {
	if w <= 0 || h <= 0 {
		return Rect{}
	}
	scale := math.Min(ProductAreaWidth/float64(w), areaH/float64(h)) * ImageScale
	dw := float64(w) * scale
	dh := float64(h) * scale
	return Rect{
		X: (ProductAreaWidth - dw) / 2,
		Y: (areaH - dh) / 2,
		W: dw,
		H: dh,
	}
}
