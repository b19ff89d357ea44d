package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	nameSize = 11
	codeSize = 9
)

type faces struct {
	name font.Face
	code font.Face
}

var (
	fontsOnce sync.Once
	boldFont  *opentype.Font
	plainFont *opentype.Font
	fontsErr  error
)

func parseFonts() error {
	fontsOnce.Do(func() {
		if boldFont, fontsErr = opentype.Parse(gobold.TTF); fontsErr != nil {
			fontsErr = fmt.Errorf("parse bold font: %w", fontsErr)
			return
		}
		if plainFont, fontsErr = opentype.Parse(goregular.TTF); fontsErr != nil {
			fontsErr = fmt.Errorf("parse regular font: %w", fontsErr)
		}
	})
	return fontsErr
}

// newFaces builds the label faces for one composite. A face holds glyph
// rasterizer state and must not be shared between goroutines.
func newFaces() (faces, error) {
	if err := parseFonts(); err != nil {
		return faces{}, err
	}
	name, err := opentype.NewFace(boldFont, &opentype.FaceOptions{Size: nameSize, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return faces{}, fmt.Errorf("name face: %w", err)
	}
	code, err := opentype.NewFace(plainFont, &opentype.FaceOptions{Size: codeSize, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return faces{}, fmt.Errorf("code face: %w", err)
	}
	return faces{name: name, code: code}, nil
}

// wrapName uppercases a material name and splits it into two lines at the
// middle word when it does not fit the label column.
func wrapName(face font.Face, name string) []string {
	upper := strings.ToUpper(strings.TrimSpace(name))
	limit := fixed.I(LabelWidth - labelGap)
	if font.MeasureString(face, upper) <= limit {
		return []string{upper}
	}
	words := strings.Fields(upper)
	if len(words) < 2 {
		return []string{upper}
	}
	mid := (len(words) + 1) / 2
	return []string{
		strings.Join(words[:mid], " "),
		strings.Join(words[mid:], " "),
	}
}

func drawText(dst draw.Image, face font.Face, c color.Color, x, y float64, s string) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(int(math.Round(x)), int(math.Round(y))),
	}
	d.DrawString(s)
}

// drawLabel writes the material name lines centred on the row and the code
// underneath in smaller, muted text.
func drawLabel(dst draw.Image, f faces, r Row) {
	lines := wrapName(f.name, r.Annotation.Material.Name)
	y := r.Y - 2 - float64(len(lines)-1)*lineHeight/2
	for i, line := range lines {
		drawText(dst, f.name, nameColor, r.LabelX, y+float64(i)*lineHeight, line)
	}
	if code := r.Annotation.Material.Code; code != "" {
		drawText(dst, f.code, codeColor, r.LabelX, y+float64(len(lines)-1)*lineHeight+codeOffset, code)
	}
}
