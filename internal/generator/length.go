package generator

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// pxPerRem converts rem/em values when a px quantity must be expressed in the base unit.
const pxPerRem = 16.0

var lengthUnits = []string{"rem", "px", "em"}

// Length is a numeric CSS length.
type Length struct {
	Value float64
	Unit  string
}

// ParseLength reads values such as "16px", "1.5rem" or "0.75em".
func ParseLength(raw string) (Length, error) {
	s := strings.TrimSpace(raw)
	for _, unit := range lengthUnits {
		if !strings.HasSuffix(s, unit) {
			continue
		}
		n, err := strconv.ParseFloat(strings.TrimSuffix(s, unit), 64)
		if err != nil {
			return Length{}, fmt.Errorf("length %q: %w", raw, err)
		}
		if n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
			return Length{}, fmt.Errorf("length %q: must be a finite non-negative number", raw)
		}
		return Length{Value: n, Unit: unit}, nil
	}
	return Length{}, fmt.Errorf("length %q: expected px, rem or em unit", raw)
}

// Scale multiplies the length.
func (l Length) Scale(factor float64) Length {
	return Length{Value: l.Value * factor, Unit: l.Unit}
}

// Pixels returns the value expressed in px.
func (l Length) Pixels() float64 {
	if l.Unit == "px" {
		return l.Value
	}
	return l.Value * pxPerRem
}

// FromPixels converts a px quantity into l's unit.
func (l Length) FromPixels(px float64) float64 {
	if l.Unit == "px" {
		return px
	}
	return px / pxPerRem
}

// String rounds to two decimals and trims trailing zeros: 25px, 31.25px.
func (l Length) String() string {
	return formatNumber(l.Value) + l.Unit
}

// format renders l, rejecting values that overflowed while scaling.
func (l Length) format() (string, error) {
	if math.IsNaN(l.Value) || math.IsInf(l.Value, 0) {
		return "", fmt.Errorf("scaled length is not finite")
	}
	return l.String(), nil
}

func formatNumber(v float64) string {
	rounded := math.Round(v*100) / 100
	if math.IsInf(rounded, 0) && !math.IsInf(v, 0) {
		// Too large to carry a fractional part.
		rounded = v
	}
	if rounded == 0 {
		rounded = 0
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
