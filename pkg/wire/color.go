package wire

import (
	"fmt"
	"strconv"
)

// Color is an opaque color token from the wire: "#RGB", "#RRGGBB",
// "#RRGGBBAA", or a named color. It is validated structurally, never
// resolved; the render surface decides what a name means.
type Color string

// Valid reports whether the token is structurally acceptable. Hex forms must
// be 3, 6 or 8 hex digits; anything else non-empty is assumed to be a named
// color, matching the reference validator.
func (c Color) Valid() bool {
	if c == "" {
		return false
	}
	if c[0] != '#' {
		return true
	}
	digits := c[1:]
	switch len(digits) {
	case 3, 6, 8:
	default:
		return false
	}
	for i := 0; i < len(digits); i++ {
		if !isHexDigit(digits[i]) {
			return false
		}
	}
	return true
}

func isHexDigit(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'a' && b <= 'f' || b >= 'A' && b <= 'F'
}

// Lighten blends a hex color towards white by factor (0.0 to 1.0). Named
// colors and malformed hex come back unchanged. The ring widget uses this to
// derive the extra-arc shades from the inner arc color (30% and 50%).
func (c Color) Lighten(factor float64) Color {
	if len(c) == 0 || c[0] != '#' {
		return c
	}
	digits := string(c[1:])
	if len(digits) == 3 {
		digits = string([]byte{
			digits[0], digits[0],
			digits[1], digits[1],
			digits[2], digits[2],
		})
	}
	if len(digits) < 6 {
		return c
	}
	r, err1 := strconv.ParseUint(digits[0:2], 16, 8)
	g, err2 := strconv.ParseUint(digits[2:4], 16, 8)
	b, err3 := strconv.ParseUint(digits[4:6], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return c
	}
	lift := func(v uint64) uint64 {
		f := float64(v) + float64(255-v)*factor
		if f < 0 {
			return 0
		}
		if f > 255 {
			return 255
		}
		return uint64(f)
	}
	return Color(fmt.Sprintf("#%02x%02x%02x", lift(r), lift(g), lift(b)))
}
