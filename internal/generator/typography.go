package generator

import (
	"fmt"
	"strconv"

	"github.com/alexisbeaulieu97/tokenflow/internal/logger"
)

// TypePairing couples a modular ratio with heading and body font stacks.
type TypePairing struct {
	Name    string
	Ratio   float64
	Heading string
	Body    string
}

var typePairings = []TypePairing{
	{Name: "modern", Ratio: 1.25, Heading: "'Inter', sans-serif", Body: "'Inter', sans-serif"},
	{Name: "classic", Ratio: 1.333, Heading: "'Playfair Display', serif", Body: "'Source Sans Pro', sans-serif"},
	{Name: "editorial", Ratio: 1.414, Heading: "'Merriweather', serif", Body: "'Open Sans', sans-serif"},
	{Name: "technical", Ratio: 1.2, Heading: "'IBM Plex Sans', sans-serif", Body: "'IBM Plex Mono', monospace"},
}

// Pairings returns the supported pairing names.
func Pairings() []string {
	names := make([]string, len(typePairings))
	for i, p := range typePairings {
		names[i] = p.Name
	}
	return names
}

// LookupPairing finds a pairing by name.
func LookupPairing(name string) (TypePairing, bool) {
	for _, p := range typePairings {
		if p.Name == name {
			return p, true
		}
	}
	return TypePairing{}, false
}

// typeSteps maps each size step to its exponent of the ratio.
var typeSteps = []struct {
	name     string
	exponent int
}{
	{"xs", -2}, {"sm", -1}, {"base", 0}, {"lg", 1}, {"xl", 2}, {"2xl", 3}, {"3xl", 4}, {"4xl", 5},
}

var headingSteps = []string{"4xl", "3xl", "2xl", "xl", "lg", "base"}

var typeConstants = []struct {
	name  string
	value string
	desc  string
}{
	{"typography-line-height-heading", "1.2", "heading line height"},
	{"typography-line-height-body", "1.6", "body line height"},
	{"typography-weight-regular", "400", "regular weight"},
	{"typography-weight-medium", "500", "medium weight"},
	{"typography-weight-bold", "700", "bold weight"},
}

// TypographyGenerator builds a modular type scale and font pairing tokens.
type TypographyGenerator struct {
	log *logger.Logger
}

func (g *TypographyGenerator) Kind() Kind { return KindTypography }

func (g *TypographyGenerator) Generate(base BaseInputs) (TokenSet, error) {
	length, pairing, err := parseTypographyInput(base.Typography)
	if err != nil {
		g.log.WithField("generator", "typography").Warn("using default typography: " + err.Error())
		length, _ = ParseLength(DefaultTypographyBase)
		pairing, _ = LookupPairing(DefaultPairing)
	}

	set, buildErr := buildTypographySet(length, pairing)
	if buildErr != nil && err == nil {
		g.log.WithField("generator", "typography").Warn("using default typography: " + buildErr.Error())
		length, _ = ParseLength(DefaultTypographyBase)
		pairing, _ = LookupPairing(DefaultPairing)
		set, err = buildTypographySet(length, pairing)
		if err != nil {
			return nil, err
		}
		return set, buildErr
	}
	if buildErr != nil {
		return nil, buildErr
	}
	return set, err
}

func parseTypographyInput(in TypographyInput) (Length, TypePairing, error) {
	baseRaw := in.Base
	if baseRaw == "" {
		baseRaw = DefaultTypographyBase
	}
	pairingName := in.Pairing
	if pairingName == "" {
		pairingName = DefaultPairing
	}

	length, err := ParseLength(baseRaw)
	if err != nil {
		return Length{}, TypePairing{}, err
	}
	if length.Value == 0 {
		return Length{}, TypePairing{}, fmt.Errorf("typography base %q must be positive", baseRaw)
	}
	pairing, ok := LookupPairing(pairingName)
	if !ok {
		return Length{}, TypePairing{}, fmt.Errorf("unknown type pairing %q", pairingName)
	}
	return length, pairing, nil
}

func buildTypographySet(length Length, pairing TypePairing) (TokenSet, error) {
	var catalog Catalog
	baseValue := length.String()
	domain := KindTypography.String()
	ratio := strconv.FormatFloat(pairing.Ratio, 'f', -1, 64)

	set := TokenSet{{
		Name:        "typography-base",
		Value:       baseValue,
		Domain:      domain,
		Description: "base font size (" + pairing.Name + ")",
	}}

	for _, step := range typeSteps {
		id := fmt.Sprintf("typography.step:%s:%d", ratio, step.exponent)
		value, err := catalog.Derive(id, baseValue)
		if err != nil {
			return nil, fmt.Errorf("typography-size-%s: %w", step.name, err)
		}
		set = append(set, Definition{
			Name:        "typography-size-" + step.name,
			Value:       value,
			Domain:      domain,
			DependsOn:   []string{"typography-base"},
			GeneratorID: id,
			Description: "font size " + step.name,
		})
	}

	for i, step := range headingSteps {
		target := "typography-size-" + step
		set = append(set, Definition{
			Name:        fmt.Sprintf("typography-h%d", i+1),
			Value:       Ref(target),
			Domain:      domain,
			DependsOn:   []string{target},
			Description: fmt.Sprintf("heading level %d size", i+1),
		})
	}

	set = append(set,
		Definition{Name: "typography-font-heading", Value: pairing.Heading, Domain: domain, Description: "heading font family"},
		Definition{Name: "typography-font-body", Value: pairing.Body, Domain: domain, Description: "body font family"},
	)
	for _, c := range typeConstants {
		set = append(set, Definition{Name: c.name, Value: c.value, Domain: domain, Description: c.desc})
	}
	return set, nil
}
