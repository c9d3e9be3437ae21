package generator

import (
	"fmt"
	"math"

	"github.com/alexisbeaulieu97/tokenflow/internal/logger"
)

// SpacingSteps are the named steps of every spacing scale, smallest first.
var SpacingSteps = []string{"3xs", "2xs", "xs", "sm", "md", "lg", "xl", "2xl", "3xl", "4xl"}

// Breakpoints lists the responsive variants generated for each step.
var Breakpoints = []string{"mobile", "tablet", "desktop"}

var breakpointFactors = map[string]float64{
	"mobile":  0.75,
	"tablet":  0.875,
	"desktop": 1,
}

func breakpointFactor(name string) (float64, bool) {
	f, ok := breakpointFactors[name]
	return f, ok
}

// MinTouchTargetPx is the smallest interactive size that does not trigger a warning.
const MinTouchTargetPx = 44

var (
	geometricMultipliers  = []float64{0.125, 0.25, 0.5, 0.75, 1}
	arithmeticMultipliers = []float64{0.25, 0.5, 0.625, 0.75, 1, 2, 3, 4, 5, 6}
)

type spacingScale struct {
	name        string
	ratio       float64
	incrementPx float64
}

func (s spacingScale) geometric() bool { return s.ratio > 0 }

var spacingScales = []spacingScale{
	{name: "geometric-minor", ratio: 1.2},
	{name: "geometric-major", ratio: 1.25},
	{name: "geometric-fourth", ratio: 1.333},
	{name: "geometric-golden", ratio: 1.618},
	{name: "arithmetic-tight", incrementPx: 4},
	{name: "arithmetic-regular", incrementPx: 8},
	{name: "arithmetic-loose", incrementPx: 12},
}

// SpacingScales returns the supported scale names.
func SpacingScales() []string {
	names := make([]string, len(spacingScales))
	for i, s := range spacingScales {
		names[i] = s.name
	}
	return names
}

func lookupScale(name string) (spacingScale, bool) {
	for _, s := range spacingScales {
		if s.name == name {
			return s, true
		}
	}
	return spacingScale{}, false
}

func (s spacingScale) multiplier(index int) float64 {
	if !s.geometric() {
		return arithmeticMultipliers[index]
	}
	if index < len(geometricMultipliers) {
		return geometricMultipliers[index]
	}
	return math.Pow(s.ratio, float64(index-len(geometricMultipliers)+1))
}

func (s spacingScale) step(base Length, step string) (Length, error) {
	index := -1
	for i, candidate := range SpacingSteps {
		if candidate == step {
			index = i
			break
		}
	}
	if index < 0 {
		return Length{}, fmt.Errorf("unknown spacing step %q", step)
	}

	m := s.multiplier(index)
	if s.geometric() {
		return base.Scale(m), nil
	}
	increment := base.FromPixels(s.incrementPx)
	return Length{Value: math.Max(0, base.Value+increment*(m-1)), Unit: base.Unit}, nil
}

var spacingAliases = []struct {
	name string
	step string
}{
	{name: "spacing-button-padding-y", step: "sm"},
	{name: "spacing-input-padding-x", step: "md"},
	{name: "spacing-input-padding-y", step: "xs"},
	{name: "spacing-card-padding", step: "lg"},
	{name: "spacing-section-gap", step: "2xl"},
	{name: "spacing-stack-gap", step: "md"},
	{name: "spacing-inline-gap", step: "sm"},
}

// Button padding is base×2 horizontally and base vertically, so
// height = 2×base + base and width = 2×(base×2) + base.
var spacingComponents = []struct {
	name   string
	factor float64
	desc   string
}{
	{name: "spacing-button-padding-x", factor: 2, desc: "button horizontal padding"},
	{name: "spacing-button-height", factor: 3, desc: "button height"},
	{name: "spacing-button-width", factor: 5, desc: "button minimum width"},
}

// SpacingGenerator produces a modular spacing scale from a base length.
type SpacingGenerator struct {
	log *logger.Logger
}

func (g *SpacingGenerator) Kind() Kind { return KindSpacing }

func (g *SpacingGenerator) Generate(base BaseInputs) (TokenSet, error) {
	length, scale, err := parseSpacingInput(base.Spacing)
	if err != nil {
		g.log.WithField("generator", "spacing").Warn("using default spacing: " + err.Error())
		length, _ = ParseLength(DefaultSpacingBase)
		scale, _ = lookupScale(DefaultSpacingScale)
	}

	set, buildErr := g.build(length, scale)
	if buildErr != nil && err == nil {
		g.log.WithField("generator", "spacing").Warn("using default spacing: " + buildErr.Error())
		length, _ = ParseLength(DefaultSpacingBase)
		scale, _ = lookupScale(DefaultSpacingScale)
		set, err = g.build(length, scale)
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

func parseSpacingInput(in SpacingInput) (Length, spacingScale, error) {
	baseRaw := in.Base
	if baseRaw == "" {
		baseRaw = DefaultSpacingBase
	}
	scaleName := in.Scale
	if scaleName == "" {
		scaleName = DefaultSpacingScale
	}

	length, err := ParseLength(baseRaw)
	if err != nil {
		return Length{}, spacingScale{}, err
	}
	if length.Value == 0 {
		return Length{}, spacingScale{}, fmt.Errorf("spacing base %q must be positive", baseRaw)
	}
	scale, ok := lookupScale(scaleName)
	if !ok {
		return Length{}, spacingScale{}, fmt.Errorf("unknown spacing scale %q", scaleName)
	}
	return length, scale, nil
}

func (g *SpacingGenerator) build(length Length, scale spacingScale) (TokenSet, error) {
	var catalog Catalog
	baseValue := length.String()
	domain := KindSpacing.String()

	set := TokenSet{{
		Name:        "spacing-base",
		Value:       baseValue,
		Domain:      domain,
		Description: "spacing base unit (" + scale.name + ")",
	}}

	derived := func(name, id, desc string) error {
		value, err := catalog.Derive(id, baseValue)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		set = append(set, Definition{Name: name, Value: value, Domain: domain, DependsOn: []string{"spacing-base"}, GeneratorID: id, Description: desc})
		return nil
	}

	for _, step := range SpacingSteps {
		id := fmt.Sprintf("spacing.step:%s:%s", scale.name, step)
		if err := derived("spacing-"+step, id, "spacing step "+step); err != nil {
			return nil, err
		}
	}
	for _, step := range SpacingSteps {
		for _, bp := range Breakpoints {
			id := fmt.Sprintf("spacing.step:%s:%s:%s", scale.name, step, bp)
			if err := derived("spacing-"+step+"-"+bp, id, "spacing step "+step+" at "+bp); err != nil {
				return nil, err
			}
		}
	}

	for _, alias := range spacingAliases {
		target := "spacing-" + alias.step
		set = append(set, Definition{
			Name:        alias.name,
			Value:       Ref(target),
			Domain:      domain,
			DependsOn:   []string{target},
			Description: "alias of " + target,
		})
	}

	for _, component := range spacingComponents {
		id := fmt.Sprintf("spacing.multiply:%g", component.factor)
		if err := derived(component.name, id, component.desc); err != nil {
			return nil, err
		}
	}
	set = append(set, Definition{
		Name:        "spacing-touch-target",
		Value:       fmt.Sprintf("%dpx", MinTouchTargetPx),
		Domain:      domain,
		Description: "minimum interactive size",
	})

	g.checkTouchTargets(length)
	return set, nil
}

func (g *SpacingGenerator) checkTouchTargets(base Length) {
	for _, component := range spacingComponents[1:] {
		px := base.Scale(component.factor).Pixels()
		if px < MinTouchTargetPx {
			g.log.WithFields(map[string]any{
				"token":   component.name,
				"px":      px,
				"minimum": MinTouchTargetPx,
				"base":    base.String(),
			}).Warn("computed size is below the minimum touch target")
		}
	}
}
