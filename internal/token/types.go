package token

import (
	"regexp"
	"time"

	"github.com/alexisbeaulieu97/tokenflow/internal/generator"
)

// ReferencePrefix marks a value that points at another token.
const ReferencePrefix = generator.RefPrefix

// MaxIndirection bounds how many ref: hops Resolve follows.
const MaxIndirection = 16

// DefaultStylePrefix is prepended to every style key.
const DefaultStylePrefix = "tf"

var namePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidName reports whether name follows the lowercase kebab-case convention.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// Relationships lists the edges of a token by name.
type Relationships struct {
	DependsOn []string `json:"dependsOn"`
	Generates []string `json:"generates"`
	Affects   []string `json:"affects"`
}

// ConstraintMinContrast requires a minimum contrast against another token.
const ConstraintMinContrast = "min-contrast"

// Constraint is a declarative requirement checked by validators.
type Constraint struct {
	Kind    string  `json:"kind"`
	Against string  `json:"against,omitempty"`
	Min     float64 `json:"min,omitempty"`
}

// Metadata carries bookkeeping for a token.
type Metadata struct {
	Description   string    `json:"description,omitempty"`
	GeneratorID   string    `json:"generatorId,omitempty"`
	RegisteredAt  time.Time `json:"registeredAt"`
	LastModified  time.Time `json:"lastModified"`
	OriginalValue string    `json:"originalValue,omitempty"`
}

// Token is a named design value. Values prefixed with ReferencePrefix are
// resolved through the registry.
type Token struct {
	Name          string
	Value         string
	Domain        string
	StyleKey      string
	Relationships Relationships
	Constraints   []Constraint
	Metadata      Metadata
}

// IsReference reports whether the token value points at another token.
func (t Token) IsReference() bool {
	return len(t.Value) > len(ReferencePrefix) && t.Value[:len(ReferencePrefix)] == ReferencePrefix
}

// MinContrast returns the first min-contrast constraint, if any.
func (t Token) MinContrast() (Constraint, bool) {
	for _, c := range t.Constraints {
		if c.Kind == ConstraintMinContrast {
			return c, true
		}
	}
	return Constraint{}, false
}

// Config is a registration request.
type Config struct {
	Value     string
	Domain    string
	DependsOn []string
	// Generates names existing tokens this token regenerates.
	Generates   []string
	Affects     []string
	GeneratorID string
	Description string
	Constraints []Constraint
	// OriginalValue records the value before an automatic correction.
	OriginalValue string
}

// ConfigFromDefinition converts a generator definition into a registration request.
func ConfigFromDefinition(def generator.Definition) Config {
	cfg := Config{
		Value:       def.Value,
		Domain:      def.Domain,
		DependsOn:   append([]string(nil), def.DependsOn...),
		GeneratorID: def.GeneratorID,
		Description: def.Description,
	}
	if def.MinContrast > 0 && def.ContrastAgainst != "" {
		cfg.Constraints = []Constraint{{Kind: ConstraintMinContrast, Against: def.ContrastAgainst, Min: def.MinContrast}}
	}
	return cfg
}

// Change is one style update produced by Update.
type Change struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	StyleKey string `json:"styleKey"`
	Domain   string `json:"domain"`
}

// Domain groups tokens that share a generation strategy.
type Domain struct {
	Name   string
	Kind   generator.Kind
	Tokens []string
}
