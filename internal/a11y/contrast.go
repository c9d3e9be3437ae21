// Package a11y checks foreground/background token pairs against WCAG contrast
// thresholds and proposes corrections for the ones that fall short.
package a11y

import (
	"github.com/alexisbeaulieu97/tokenflow/internal/color"
)

// Level is the WCAG conformance level reached by a contrast ratio.
type Level string

const (
	LevelFail    Level = "FAIL"
	LevelAALarge Level = "AA_LARGE"
	LevelAA      Level = "AA"
	LevelAAA     Level = "AAA"
)

const (
	MinContrastLarge  = 3.0
	MinContrastNormal = 4.5
	MinContrastAAA    = 7.0
)

const (
	White = "#FFFFFF"
	Black = "#000000"
)

// ContrastRatio is the WCAG ratio between two hex colors.
func ContrastRatio(foreground, background string) (float64, error) {
	return color.ContrastRatio(foreground, background)
}

// LevelFor maps a ratio onto its conformance level.
func LevelFor(ratio float64) Level {
	switch {
	case ratio >= MinContrastAAA:
		return LevelAAA
	case ratio >= MinContrastNormal:
		return LevelAA
	case ratio >= MinContrastLarge:
		return LevelAALarge
	default:
		return LevelFail
	}
}

// FindAccessibleTextColor picks white when it meets minRatio against background,
// then black, and otherwise whichever of the two contrasts more.
func FindAccessibleTextColor(background string, minRatio float64) (string, error) {
	onWhite, err := color.ContrastRatio(White, background)
	if err != nil {
		return "", err
	}
	if onWhite >= minRatio {
		return White, nil
	}

	onBlack, err := color.ContrastRatio(Black, background)
	if err != nil {
		return "", err
	}
	if onBlack >= minRatio || onBlack > onWhite {
		return Black, nil
	}
	return White, nil
}
