// Package templates renders the server-side fragments swapped in by HTMX.
package templates

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"math"

	"github.com/a-h/templ"
	svg "github.com/ajstarks/svgo"

	"furniquote/quote"
)

// canvasSize is the side of the square view box. Annotation percentages
// map onto it as x*10, y*10.
const canvasSize = 1000

const (
	markerRadius   = 18
	selectedRadius = 26
	pendingRadius  = 14
)

// MarkerCanvasData is what the marker canvas draws: the product image with
// one marker per annotation, the selection ring and the pending point.
type MarkerCanvasData struct {
	ImageURL    string
	Annotations []quote.Annotation
	SelectedID  string
	Pending     *quote.Point
}

// CanvasDataFromState copies the visible parts of a workbench canvas.
func CanvasDataFromState(imageURL string, c quote.Canvas) MarkerCanvasData {
	return MarkerCanvasData{
		ImageURL:    imageURL,
		Annotations: c.Annotations,
		SelectedID:  c.SelectedID,
		Pending:     c.Pending,
	}
}

func canvasCoord(percent float64) int {
	if math.IsNaN(percent) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, percent)) * canvasSize / 100))
}

func attr(name, value string) string {
	return fmt.Sprintf(`%s="%s"`, name, html.EscapeString(value))
}

// WriteMarkerCanvas writes the canvas as a standalone SVG document.
func WriteMarkerCanvas(w io.Writer, data MarkerCanvasData) {
	s := svg.New(w)
	s.Start(canvasSize, canvasSize,
		fmt.Sprintf(`viewBox="0 0 %d %d"`, canvasSize, canvasSize),
		`class="marker-canvas"`, `preserveAspectRatio="xMidYMid meet"`)

	if data.ImageURL != "" {
		s.Image(0, 0, canvasSize, canvasSize, html.EscapeString(data.ImageURL),
			`preserveAspectRatio="none"`)
	} else {
		s.Rect(0, 0, canvasSize, canvasSize, "fill:#F3F3F3")
	}

	for i, a := range data.Annotations {
		x, y := canvasCoord(a.X), canvasCoord(a.Y)
		s.Group(attr("class", "marker"), attr("data-id", a.ID))
		s.Title(fmt.Sprintf("%s: %s", a.PartName, a.Material.Name))
		if a.ID == data.SelectedID {
			s.Circle(x, y, selectedRadius, "fill:none;stroke:#222222;stroke-width:4")
		}
		s.Circle(x, y, markerRadius,
			attr("fill", quote.TypeColorHex(a.Material.Type)),
			`stroke="#FFFFFF"`, `stroke-width="3"`)
		s.Text(x, y+6, fmt.Sprint(i+1),
			"text-anchor:middle;font-size:16px;font-family:sans-serif;fill:#FFFFFF")
		s.Gend()
	}

	if p := data.Pending; p != nil {
		s.Circle(canvasCoord(p.X), canvasCoord(p.Y), pendingRadius,
			`class="pending"`, "fill:none;stroke:#222222;stroke-width:3;stroke-dasharray:6 4")
	}
	s.End()
}

// MarkerCanvas is the inline variant used inside HTML fragments; the XML
// prolog is dropped.
func MarkerCanvas(data MarkerCanvasData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		WriteMarkerCanvas(&buf, data)
		out := buf.Bytes()
		if i := bytes.Index(out, []byte("<svg")); i > 0 {
			out = out[i:]
		}
		_, err := w.Write(out)
		return err
	})
}
