package generator

import (
	"fmt"
	"strings"

	"github.com/alexisbeaulieu97/tokenflow/internal/color"
	"github.com/alexisbeaulieu97/tokenflow/internal/logger"
)

type colorVariant struct {
	suffix string
	id     string
	desc   string
}

// colorVariants are derived for every role, in this order.
var colorVariants = []colorVariant{
	{suffix: "light", id: "color.lighten:0.15", desc: "lighter tint"},
	{suffix: "dark", id: "color.darken:0.15", desc: "darker shade"},
	{suffix: "hover", id: "color.darken:0.08", desc: "hover state"},
	{suffix: "focus", id: "color.lighten:0.05", desc: "focus state"},
	{suffix: "elevated", id: "color.lighten:0.03", desc: "elevated surface"},
	{suffix: "overlay", id: "color.opacity:0.95", desc: "translucent overlay"},
	{suffix: "alt", id: "color.hue:5", desc: "hue-shifted alternate"},
	{suffix: "disabled", id: "color.desaturate:0.5", desc: "disabled state"},
}

// ColorVariantSuffixes returns the variant suffixes in generation order.
func ColorVariantSuffixes() []string {
	out := make([]string, len(colorVariants))
	for i, v := range colorVariants {
		out[i] = v.suffix
	}
	return out
}

// ColorGenerator expands semantic role colors into role tokens plus state variants.
type ColorGenerator struct {
	log *logger.Logger
}

func (g *ColorGenerator) Kind() Kind { return KindColor }

func (g *ColorGenerator) Generate(base BaseInputs) (TokenSet, error) {
	colors, err := g.resolveRoles(base.Colors)
	if err != nil {
		g.log.WithField("generator", "color").Warn("using safe palette: " + err.Error())
		set, _ := buildColorSet(SafePalette)
		return set, err
	}
	return buildColorSet(colors)
}

func (g *ColorGenerator) resolveRoles(input map[string]string) (map[string]string, error) {
	var missing, invalid []string
	for _, role := range RequiredRoles {
		if strings.TrimSpace(input[role]) == "" {
			missing = append(missing, role)
		}
	}
	for _, role := range sortedKeys(input) {
		if _, known := SafePalette[role]; !known {
			g.log.WithField("role", role).Warn("ignoring unknown color role")
			continue
		}
		if value := strings.TrimSpace(input[role]); value != "" && !color.Valid(value) {
			invalid = append(invalid, role)
		}
	}

	switch {
	case len(missing) > 0:
		return nil, fmt.Errorf("missing required color roles: %s", strings.Join(missing, ", "))
	case len(invalid) > 0:
		return nil, fmt.Errorf("invalid hex color for roles: %s", strings.Join(invalid, ", "))
	}

	resolved := make(map[string]string, len(Roles))
	for _, role := range Roles {
		value := strings.TrimSpace(input[role])
		if value == "" {
			value = SafePalette[role]
		}
		parsed, _ := color.Parse(value)
		resolved[role] = parsed.Hex()
	}
	return resolved, nil
}

func buildColorSet(colors map[string]string) (TokenSet, error) {
	var catalog Catalog
	set := make(TokenSet, 0, len(Roles)*(len(colorVariants)+1))

	for _, role := range Roles {
		baseName := "color-" + role
		baseValue := colors[role]
		set = append(set, Definition{
			Name:        baseName,
			Value:       baseValue,
			Domain:      KindColor.String(),
			Description: role + " role color",
		})

		for _, variant := range colorVariants {
			value, err := catalog.Derive(variant.id, baseValue)
			if err != nil {
				return nil, fmt.Errorf("%s-%s: %w", baseName, variant.suffix, err)
			}
			set = append(set, Definition{
				Name:        baseName + "-" + variant.suffix,
				Value:       value,
				Domain:      KindColor.String(),
				DependsOn:   []string{baseName},
				GeneratorID: variant.id,
				Description: role + " " + variant.desc,
			})
		}
	}
	return set, nil
}
