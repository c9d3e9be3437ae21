package generator

import (
	"fmt"

	"github.com/alexisbeaulieu97/tokenflow/internal/a11y"
	"github.com/alexisbeaulieu97/tokenflow/internal/logger"
)

// RefPrefix marks a token value as a reference to another token.
const RefPrefix = "ref:"

// Ref builds a reference value pointing at name.
func Ref(name string) string {
	return RefPrefix + name
}

type componentAlias struct {
	name   string
	target string
	desc   string
}

var componentAliases = []componentAlias{
	{name: "button-background", target: "color-primary", desc: "button fill"},
	{name: "button-hover", target: "color-primary-hover", desc: "button fill on hover"},
	{name: "link-color", target: "color-primary", desc: "link text"},
	{name: "link-hover", target: "color-primary-dark", desc: "link text on hover"},
	{name: "input-border", target: "color-border", desc: "input outline"},
	{name: "input-focus", target: "color-primary-focus", desc: "input outline on focus"},
	{name: "card-background", target: "color-surface", desc: "card fill"},
	{name: "card-border", target: "color-border", desc: "card outline"},
}

// ComponentGenerator binds component tokens to the color domain. It expects the
// color tokens to be registered first.
type ComponentGenerator struct {
	log *logger.Logger
}

func (g *ComponentGenerator) Kind() Kind { return KindComponent }

func (g *ComponentGenerator) Generate(base BaseInputs) (TokenSet, error) {
	colors := &ColorGenerator{log: g.log}
	roles, rolesErr := colors.resolveRoles(base.Colors)
	if rolesErr != nil {
		roles = SafePalette
	}

	textID := fmt.Sprintf("component.text-on:%g", a11y.MinContrastNormal)
	buttonText, err := Catalog{}.Derive(textID, roles["primary"])
	if err != nil {
		return nil, err
	}

	set := TokenSet{{
		Name:            "button-text",
		Value:           buttonText,
		Domain:          KindComponent.String(),
		DependsOn:       []string{"color-primary"},
		GeneratorID:     textID,
		Description:     "button label, contrast-checked against the primary color",
		MinContrast:     a11y.MinContrastNormal,
		ContrastAgainst: "button-background",
	}}

	for _, alias := range componentAliases {
		set = append(set, Definition{
			Name:        alias.name,
			Value:       Ref(alias.target),
			Domain:      KindComponent.String(),
			DependsOn:   []string{alias.target},
			Description: alias.desc,
		})
	}

	return set, rolesErr
}
