// Package generator maps a small set of base inputs onto the derived design
// tokens of each domain. Generators are pure: the same BaseInputs always yield
// the same TokenSet.
package generator

import (
	"fmt"
	"sort"

	"github.com/alexisbeaulieu97/tokenflow/internal/logger"
)

// Kind tags the generation strategy of a domain.
type Kind int

const (
	KindColor Kind = iota
	KindSpacing
	KindTypography
	KindComponent
)

var kindNames = map[Kind]string{
	KindColor:      "color",
	KindSpacing:    "spacing",
	KindTypography: "typography",
	KindComponent:  "component",
}

// Kinds lists every built-in kind in generation order.
func Kinds() []Kind {
	return []Kind{KindColor, KindSpacing, KindTypography, KindComponent}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves a domain name to its Kind.
func ParseKind(name string) (Kind, bool) {
	for kind, candidate := range kindNames {
		if candidate == name {
			return kind, true
		}
	}
	return 0, false
}

// Definition describes one token a generator wants registered.
type Definition struct {
	Name        string
	Value       string
	Domain      string
	DependsOn   []string
	GeneratorID string
	Description string
	// MinContrast, when set, is the contrast this token must keep against ContrastAgainst.
	MinContrast     float64
	ContrastAgainst string
}

// TokenSet is an ordered list of definitions; upstream tokens always precede their dependents.
type TokenSet []Definition

// Names returns the token names in set order.
func (s TokenSet) Names() []string {
	names := make([]string, len(s))
	for i, def := range s {
		names[i] = def.Name
	}
	return names
}

// Lookup finds a definition by name.
func (s TokenSet) Lookup(name string) (Definition, bool) {
	for _, def := range s {
		if def.Name == name {
			return def, true
		}
	}
	return Definition{}, false
}

// Values flattens the set into name -> value.
func (s TokenSet) Values() map[string]string {
	out := make(map[string]string, len(s))
	for _, def := range s {
		out[def.Name] = def.Value
	}
	return out
}

// SpacingInput is the base spacing value and scale name.
type SpacingInput struct {
	Base  string
	Scale string
}

// TypographyInput is the base font size and pairing name.
type TypographyInput struct {
	Base    string
	Pairing string
}

// BaseInputs is the palette bundle supplied by the outer UI layer.
type BaseInputs struct {
	Colors     map[string]string
	Spacing    SpacingInput
	Typography TypographyInput
}

// Generator is the contract every domain generator implements.
//
// Generate never leaves the caller without tokens: malformed inputs produce the
// generator's documented fallback set together with a non-nil error describing
// why the fallback was used.
type Generator interface {
	Kind() Kind
	Generate(base BaseInputs) (TokenSet, error)
}

// New returns the generator for kind.
func New(kind Kind, log *logger.Logger) (Generator, error) {
	switch kind {
	case KindColor:
		return &ColorGenerator{log: log}, nil
	case KindSpacing:
		return &SpacingGenerator{log: log}, nil
	case KindTypography:
		return &TypographyGenerator{log: log}, nil
	case KindComponent:
		return &ComponentGenerator{log: log}, nil
	default:
		return nil, fmt.Errorf("no generator for %s", kind)
	}
}

// GenerateAll runs every built-in generator and concatenates the results.
// Errors from individual generators are collected; their fallback sets are still included.
func GenerateAll(base BaseInputs, log *logger.Logger) (TokenSet, []error) {
	var (
		out  TokenSet
		errs []error
	)
	for _, kind := range Kinds() {
		gen, err := New(kind, log)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		set, err := gen.Generate(base)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s generator: %w", kind, err))
		}
		out = append(out, set...)
	}
	return out, errs
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
