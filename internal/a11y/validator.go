package a11y

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexisbeaulieu97/tokenflow/internal/color"
)

// Resolved is a token whose value has already been resolved to a literal.
type Resolved struct {
	Name  string
	Value string
	// MinContrast and ContrastAgainst declare an explicit pairing requirement.
	MinContrast     float64
	ContrastAgainst string
}

// PairResult captures the outcome of checking a single foreground/background pair.
type PairResult struct {
	Foreground      string
	Background      string
	ForegroundValue string
	BackgroundValue string
	Ratio           float64
	Required        float64
	Level           Level
	Passed          bool
}

// Correction is a suggested replacement for a failing foreground token.
// Corrections are never applied here.
type Correction struct {
	Token     string
	Original  string
	Suggested string
	Ratio     float64
}

// Report is the outcome of ValidateTokenSet.
type Report struct {
	AllValid    bool
	Pairs       []PairResult
	Violations  []PairResult
	Corrections []Correction
}

// Message renders a violation for logs and CLI output.
func (p PairResult) Message() string {
	return fmt.Sprintf("%s on %s: %.2f:1 (%s), need %.1f:1", p.Foreground, p.Background, p.Ratio, p.Level, p.Required)
}

type role int

const (
	roleNone role = iota
	roleText
	roleBackground
)

// classify splits a token name into its scope and pairing role. Only the last
// segment decides the role: color-text, button-text, color-background, card-surface.
func classify(name string) (scope string, r role) {
	idx := strings.LastIndex(name, "-")
	if idx <= 0 {
		return "", roleNone
	}
	scope, last := name[:idx], name[idx+1:]
	switch last {
	case "text":
		return scope, roleText
	case "background", "surface":
		return scope, roleBackground
	default:
		return scope, roleNone
	}
}

// Pairing selects which text and background tokens are checked against each other.
type Pairing string

const (
	// PairAll checks every text-role token against every background-role token.
	PairAll Pairing = "all"
	// PairScoped only pairs tokens sharing a name scope: button-text with
	// button-background, color-text with color-background and color-surface.
	PairScoped Pairing = "scoped"
)

// ParsePairing maps a configuration value onto a Pairing. Empty means PairAll.
func ParsePairing(value string) (Pairing, error) {
	switch Pairing(value) {
	case "", PairAll:
		return PairAll, nil
	case PairScoped:
		return PairScoped, nil
	default:
		return "", fmt.Errorf("unknown contrast pairing %q (want %s or %s)", value, PairAll, PairScoped)
	}
}

type validateOptions struct {
	pairing Pairing
}

// ValidateOption configures ValidateTokenSet.
type ValidateOption func(*validateOptions)

// WithPairing overrides the default PairAll pairing.
func WithPairing(p Pairing) ValidateOption {
	return func(o *validateOptions) {
		if p != "" {
			o.pairing = p
		}
	}
}

// requiredContrast lowers the threshold for large or heading text.
func requiredContrast(name string) float64 {
	for _, segment := range strings.Split(name, "-") {
		if segment == "large" || segment == "heading" {
			return MinContrastLarge
		}
	}
	return MinContrastNormal
}

// ValidateTokenSet pairs every text token with every background token, plus
// any explicitly declared pairs, and checks each pair's contrast. WithPairing
// narrows the role pairs to a shared scope. Tokens whose values are not colors
// are skipped.
func ValidateTokenSet(tokens []Resolved, opts ...ValidateOption) Report {
	o := validateOptions{pairing: PairAll}
	for _, opt := range opts {
		opt(&o)
	}

	byName := make(map[string]Resolved, len(tokens))
	backgrounds := make(map[string][]string)
	var allBackgrounds []string
	var texts []Resolved

	for _, tok := range tokens {
		if !color.Valid(tok.Value) {
			continue
		}
		byName[tok.Name] = tok
		scope, r := classify(tok.Name)
		switch r {
		case roleText:
			texts = append(texts, tok)
		case roleBackground:
			backgrounds[scope] = append(backgrounds[scope], tok.Name)
			allBackgrounds = append(allBackgrounds, tok.Name)
		}
	}

	type pairKey struct{ fg, bg string }
	required := make(map[pairKey]float64)
	var order []pairKey

	add := func(fg, bg string, min float64) {
		key := pairKey{fg, bg}
		if _, seen := required[key]; !seen {
			order = append(order, key)
		}
		required[key] = min
	}

	for _, text := range texts {
		candidates := allBackgrounds
		if o.pairing == PairScoped {
			scope, _ := classify(text.Name)
			candidates = backgrounds[scope]
		}
		for _, bg := range candidates {
			add(text.Name, bg, requiredContrast(text.Name))
		}
	}
	for _, tok := range byName {
		if tok.ContrastAgainst == "" || tok.MinContrast <= 0 {
			continue
		}
		if _, ok := byName[tok.ContrastAgainst]; ok {
			add(tok.Name, tok.ContrastAgainst, tok.MinContrast)
		}
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].fg != order[j].fg {
			return order[i].fg < order[j].fg
		}
		return order[i].bg < order[j].bg
	})

	report := Report{AllValid: true}
	worst := make(map[string]PairResult)

	for _, key := range order {
		fg, bg := byName[key.fg], byName[key.bg]
		ratio, err := color.ContrastRatio(fg.Value, bg.Value)
		if err != nil {
			continue
		}
		result := PairResult{
			Foreground:      fg.Name,
			Background:      bg.Name,
			ForegroundValue: fg.Value,
			BackgroundValue: bg.Value,
			Ratio:           ratio,
			Required:        required[key],
			Level:           LevelFor(ratio),
			Passed:          ratio >= required[key],
		}
		report.Pairs = append(report.Pairs, result)
		if result.Passed {
			continue
		}
		report.AllValid = false
		report.Violations = append(report.Violations, result)
		if prev, ok := worst[fg.Name]; !ok || result.Ratio < prev.Ratio {
			worst[fg.Name] = result
		}
	}

	for _, violation := range report.Violations {
		result, ok := worst[violation.Foreground]
		if !ok {
			continue
		}
		delete(worst, violation.Foreground)

		suggested, err := FindAccessibleTextColor(result.BackgroundValue, result.Required)
		if err != nil {
			continue
		}
		ratio, _ := color.ContrastRatio(suggested, result.BackgroundValue)
		report.Corrections = append(report.Corrections, Correction{
			Token:     result.Foreground,
			Original:  result.ForegroundValue,
			Suggested: suggested,
			Ratio:     ratio,
		})
	}

	return report
}
