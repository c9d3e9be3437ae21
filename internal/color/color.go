// Package color implements the channel arithmetic, HSL adjustments and WCAG
// luminance math used by the generators and the accessibility validator.
//
// Lighten and darken operate per channel on 8-bit RGB. Hue shifts and
// desaturation go through HSL.
package color

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBA is an 8-bit color. HasAlpha records whether the source carried an alpha channel.
type RGBA struct {
	R, G, B, A uint8
	HasAlpha   bool
}

// Parse reads #RGB, #RRGGBB or #RRGGBBAA notation.
func Parse(value string) (RGBA, error) {
	s := strings.TrimSpace(value)
	if !strings.HasPrefix(s, "#") {
		return RGBA{}, fmt.Errorf("color %q: missing # prefix", value)
	}
	s = s[1:]

	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6, 8:
	default:
		return RGBA{}, fmt.Errorf("color %q: expected 3, 6 or 8 hex digits", value)
	}

	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGBA{}, fmt.Errorf("color %q: %w", value, err)
	}

	if len(s) == 8 {
		return RGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n), HasAlpha: true}, nil
	}
	return RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xFF}, nil
}

// Valid reports whether value parses as a hex color.
func Valid(value string) bool {
	_, err := Parse(value)
	return err == nil
}

// Hex renders the color as uppercase #RRGGBB, or #RRGGBBAA when it carries alpha.
func (c RGBA) Hex() string {
	if c.HasAlpha {
		return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
	}
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c RGBA) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(col colorful.Color, src RGBA) RGBA {
	r, g, b := col.Clamped().RGB255()
	return RGBA{R: r, G: g, B: b, A: src.A, HasAlpha: src.HasAlpha}
}

// channelDelta scales an amount in [0,1] to an 8-bit step: round(2.55 * amount * 100).
func channelDelta(amount float64) int {
	return int(math.Round(2.55 * amount * 100))
}

func clampChannel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func shiftChannels(value string, delta int) (string, error) {
	c, err := Parse(value)
	if err != nil {
		return "", err
	}
	c.R = clampChannel(int(c.R) + delta)
	c.G = clampChannel(int(c.G) + delta)
	c.B = clampChannel(int(c.B) + delta)
	return c.Hex(), nil
}

// Lighten adds round(255*amount) to every channel, clamping at 255.
func Lighten(value string, amount float64) (string, error) {
	return shiftChannels(value, channelDelta(amount))
}

// Darken subtracts round(255*amount) from every channel, clamping at 0.
func Darken(value string, amount float64) (string, error) {
	return shiftChannels(value, -channelDelta(amount))
}

// Desaturate multiplies HSL saturation by (1 - amount).
func Desaturate(value string, amount float64) (string, error) {
	c, err := Parse(value)
	if err != nil {
		return "", err
	}
	h, s, l := c.colorful().Hsl()
	s *= 1 - amount
	return fromColorful(colorful.Hsl(h, math.Max(0, math.Min(1, s)), l), c).Hex(), nil
}

// ShiftHue rotates the HSL hue by degrees, wrapping into [0,360).
func ShiftHue(value string, degrees float64) (string, error) {
	c, err := Parse(value)
	if err != nil {
		return "", err
	}
	h, s, l := c.colorful().Hsl()
	h = math.Mod(h+degrees, 360)
	if h < 0 {
		h += 360
	}
	return fromColorful(colorful.Hsl(h, s, l), c).Hex(), nil
}

// AddOpacity appends (or replaces) an alpha channel of round(alpha*255).
func AddOpacity(value string, alpha float64) (string, error) {
	c, err := Parse(value)
	if err != nil {
		return "", err
	}
	alpha = math.Max(0, math.Min(1, alpha))
	c.A = uint8(math.Round(alpha * 255))
	c.HasAlpha = true
	return c.Hex(), nil
}

func linearize(channel uint8) float64 {
	c := float64(channel) / 255
	if c <= 0.03928 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// Luminance returns the WCAG relative luminance in [0,1]. Alpha is ignored.
func Luminance(value string) (float64, error) {
	c, err := Parse(value)
	if err != nil {
		return 0, err
	}
	return 0.2126*linearize(c.R) + 0.7152*linearize(c.G) + 0.0722*linearize(c.B), nil
}

// ContrastRatio computes (lighter+0.05)/(darker+0.05). It is symmetric in its arguments.
func ContrastRatio(a, b string) (float64, error) {
	la, err := Luminance(a)
	if err != nil {
		return 0, err
	}
	lb, err := Luminance(b)
	if err != nil {
		return 0, err
	}
	lighter, darker := math.Max(la, lb), math.Min(la, lb)
	return (lighter + 0.05) / (darker + 0.05), nil
}
