// Package diff compares token values and rendered stylesheets.
package diff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	maxDiffLines    = 10000
	truncateMessage = "... (diff truncated, exceeds 10,000 lines) ..."
)

// Kind classifies a value change.
type Kind string

const (
	Added    Kind = "added"
	Removed  Kind = "removed"
	Modified Kind = "modified"
)

// Change is one token whose value differs between two states.
type Change struct {
	Name   string `json:"name"`
	Kind   Kind   `json:"kind"`
	Before string `json:"before,omitempty"`
	After  string `json:"after,omitempty"`
}

func (c Change) String() string {
	switch c.Kind {
	case Added:
		return fmt.Sprintf("+ %s: %s", c.Name, c.After)
	case Removed:
		return fmt.Sprintf("- %s: %s", c.Name, c.Before)
	default:
		return fmt.Sprintf("~ %s: %s -> %s", c.Name, c.Before, c.After)
	}
}

// Values reports every name whose value differs between before and after,
// sorted by name.
func Values(before, after map[string]string) []Change {
	var changes []Change
	for name, old := range before {
		current, ok := after[name]
		switch {
		case !ok:
			changes = append(changes, Change{Name: name, Kind: Removed, Before: old})
		case current != old:
			changes = append(changes, Change{Name: name, Kind: Modified, Before: old, After: current})
		}
	}
	for name, current := range after {
		if _, ok := before[name]; !ok {
			changes = append(changes, Change{Name: name, Kind: Added, After: current})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Name < changes[j].Name })
	return changes
}

// Unified renders a line-oriented unified diff of two texts. It returns an
// empty string when they are identical and truncates very long output.
func Unified(before, after, beforeLabel, afterLabel string) string {
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var buf strings.Builder
	fmt.Fprintf(&buf, "--- %s\n", beforeLabel)
	fmt.Fprintf(&buf, "+++ %s\n", afterLabel)
	fmt.Fprintf(&buf, "@@ -1,%d +1,%d @@\n", countLines(before), countLines(after))

	written := 3
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range splitLines(d.Text) {
			if written >= maxDiffLines {
				buf.WriteString(truncateMessage)
				buf.WriteString("\n")
				return buf.String()
			}
			buf.WriteString(prefix)
			buf.WriteString(line)
			buf.WriteString("\n")
			written++
		}
	}
	return buf.String()
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

func countLines(text string) int {
	return len(splitLines(text))
}
