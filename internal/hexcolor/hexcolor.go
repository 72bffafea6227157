// Package hexcolor parses web hex color strings ("#rgb" and "#rrggbb") into
// opaque colors for the strip background.
package hexcolor

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidColor is returned for any string that is not "#" followed by
// exactly three or six hex digits.
var ErrInvalidColor = errors.New("invalid color")

// Parse parses a "#rgb" or "#rrggbb" color string into an opaque color.NRGBA.
// Shorthand digits are duplicated, so "#abc" equals "#aabbcc".
func Parse(s string) (color.NRGBA, error) {
	digits, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.NRGBA{}, fmt.Errorf("%w %q: must start with #", ErrInvalidColor, s)
	}
	if len(digits) != 3 && len(digits) != 6 {
		return color.NRGBA{}, fmt.Errorf("%w %q: must be 3 or 6 hex digits", ErrInvalidColor, s)
	}
	// colorful.Hex scans with %x, which would accept a sign.
	if !isHex(digits) {
		return color.NRGBA{}, fmt.Errorf("%w %q: non-hex digit", ErrInvalidColor, s)
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w %q: %w", ErrInvalidColor, s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// MustParse is like [Parse] but panics on error. Intended for defaults.
func MustParse(s string) color.NRGBA {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Format renders c as a lowercase "#rrggbb" string, ignoring alpha.
func Format(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
