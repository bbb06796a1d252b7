package lighting

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor parses "#rrggbb", "#rgb" or "0xrrggbb" into linear-ish 0-1 RGB.
// Values are used as given, without sRGB decoding.
func ParseColor(s string) ([3]float32, error) {
	hex := strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(strings.ToLower(hex), "0x"); ok {
		hex = "#" + rest
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return [3]float32{}, fmt.Errorf("parsing color %q: %w", s, err)
	}
	return [3]float32{float32(c.R), float32(c.G), float32(c.B)}, nil
}

// ColorHex formats an RGB triple as "#rrggbb".
func ColorHex(c [3]float32) string {
	return colorful.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2])}.Clamped().Hex()
}
