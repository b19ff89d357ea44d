package quote

import (
	"fmt"
	"image/color"
)

var typeColors = map[MaterialType]color.RGBA{
	Fabric:  {R: 0x8B, G: 0x73, B: 0x55, A: 0xFF},
	Leather: {R: 0x65, G: 0x43, B: 0x21, A: 0xFF},
	Wood:    {R: 0xDE, G: 0xB8, B: 0x87, A: 0xFF},
	Metal:   {R: 0xC0, G: 0xC0, B: 0xC0, A: 0xFF},
	Glass:   {R: 0xE8, G: 0xE8, B: 0xE8, A: 0xFF},
	Stone:   {R: 0x80, G: 0x80, B: 0x80, A: 0xFF},
}

var defaultTypeColor = color.RGBA{R: 0xD3, G: 0xD3, B: 0xD3, A: 0xFF}

// TypeColor is the solid colour shown for a material without a usable swatch
// image. The interactive canvas and the exported composite both use it.
func TypeColor(t MaterialType) color.RGBA {
	if c, ok := typeColors[t]; ok {
		return c
	}
	return defaultTypeColor
}

// TypeColorHex returns TypeColor as "#RRGGBB".
func TypeColorHex(t MaterialType) string {
	c := TypeColor(t)
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
