package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/tokenflow/internal/a11y"
	"github.com/alexisbeaulieu97/tokenflow/internal/color"
)

// Swatch renders a color value as a block of that color followed by its name.
// Values that are not opaque colors render as plain text.
func Swatch(name, value string) string {
	parsed, err := color.Parse(value)
	if err != nil {
		return fmt.Sprintf("%9s %s", mutedStyle.Render(value), name)
	}
	parsed.HasAlpha = false
	hex := parsed.Hex()
	text, err := a11y.FindAccessibleTextColor(hex, a11y.MinContrastNormal)
	if err != nil {
		text = a11y.Black
	}
	block := lipgloss.NewStyle().
		Background(lipgloss.Color(hex)).
		Foreground(lipgloss.Color(text)).
		Padding(0, 1).
		Render(hex)
	return fmt.Sprintf("%s %s", block, name)
}

// LevelBadge renders a WCAG level with its pass/fail styling.
func LevelBadge(level a11y.Level) string {
	switch level {
	case a11y.LevelAAA, a11y.LevelAA:
		return successStyle.Render(string(level))
	case a11y.LevelAALarge:
		return warningStyle.Render(string(level))
	default:
		return failureStyle.Render(string(level))
	}
}

// RenderReport lists every checked pair with its ratio and level.
func RenderReport(report a11y.Report) string {
	var lines []string
	for _, pair := range report.Pairs {
		icon := successStyle.Render("✓")
		if !pair.Passed {
			icon = failureStyle.Render("✗")
		}
		lines = append(lines, fmt.Sprintf(" %s %s on %s  %.2f:1 %s (need %.1f:1)",
			icon, pair.Foreground, pair.Background, pair.Ratio, LevelBadge(pair.Level), pair.Required))
	}
	for _, c := range report.Corrections {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("   suggest %s: %s -> %s (%.2f:1)", c.Token, c.Original, c.Suggested, c.Ratio)))
	}
	if len(lines) == 0 {
		return mutedStyle.Render(" no color pairs to check")
	}
	return strings.Join(lines, "\n")
}
