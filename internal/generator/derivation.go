package generator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alexisbeaulieu97/tokenflow/internal/a11y"
	"github.com/alexisbeaulieu97/tokenflow/internal/color"
)

// DerivationID names the function that recomputes a dependent token from its
// base value. The string form is "<kind>.<op>[:arg...]", for example
// "color.lighten:0.15" or "spacing.step:geometric-major:lg:mobile".
type DerivationID struct {
	Kind Kind
	Op   string
	Args []string
}

// ParseDerivationID reads the string form of a DerivationID.
func ParseDerivationID(raw string) (DerivationID, error) {
	head, rest, _ := strings.Cut(raw, ":")
	kindName, op, ok := strings.Cut(head, ".")
	if !ok || op == "" {
		return DerivationID{}, fmt.Errorf("derivation id %q: expected <kind>.<op>", raw)
	}
	kind, ok := ParseKind(kindName)
	if !ok {
		return DerivationID{}, fmt.Errorf("derivation id %q: unknown kind %q", raw, kindName)
	}
	id := DerivationID{Kind: kind, Op: op}
	if rest != "" {
		id.Args = strings.Split(rest, ":")
	}
	return id, nil
}

func (d DerivationID) String() string {
	s := d.Kind.String() + "." + d.Op
	if len(d.Args) > 0 {
		s += ":" + strings.Join(d.Args, ":")
	}
	return s
}

func (d DerivationID) floatArg(i int) (float64, error) {
	if i >= len(d.Args) {
		return 0, fmt.Errorf("%s: missing argument %d", d, i)
	}
	v, err := strconv.ParseFloat(d.Args[i], 64)
	if err != nil {
		return 0, fmt.Errorf("%s: argument %d: %w", d, i, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: argument %d is not finite", d, i)
	}
	return v, nil
}

// Catalog evaluates derivation ids against a new base value.
type Catalog struct{}

// Derive recomputes a dependent value from base using the function named by id.
func (Catalog) Derive(id, base string) (string, error) {
	parsed, err := ParseDerivationID(id)
	if err != nil {
		return "", err
	}

	switch parsed.Kind {
	case KindColor:
		return deriveColor(parsed, base)
	case KindComponent:
		return deriveComponent(parsed, base)
	case KindSpacing:
		return deriveSpacing(parsed, base)
	case KindTypography:
		return deriveTypography(parsed, base)
	default:
		return "", fmt.Errorf("%s: unsupported kind", parsed)
	}
}

func deriveColor(id DerivationID, base string) (string, error) {
	amount, err := id.floatArg(0)
	if err != nil {
		return "", err
	}
	switch id.Op {
	case "lighten":
		return color.Lighten(base, amount)
	case "darken":
		return color.Darken(base, amount)
	case "desaturate":
		return color.Desaturate(base, amount)
	case "hue":
		return color.ShiftHue(base, amount)
	case "opacity":
		return color.AddOpacity(base, amount)
	default:
		return "", fmt.Errorf("%s: unknown color operation", id)
	}
}

func deriveComponent(id DerivationID, base string) (string, error) {
	switch id.Op {
	case "text-on":
		minRatio, err := id.floatArg(0)
		if err != nil {
			return "", err
		}
		return a11y.FindAccessibleTextColor(base, minRatio)
	default:
		return "", fmt.Errorf("%s: unknown component operation", id)
	}
}

func deriveSpacing(id DerivationID, base string) (string, error) {
	length, err := ParseLength(base)
	if err != nil {
		return "", err
	}

	switch id.Op {
	case "multiply":
		factor, err := id.floatArg(0)
		if err != nil {
			return "", err
		}
		return length.Scale(factor).format()
	case "step":
		if len(id.Args) < 2 {
			return "", fmt.Errorf("%s: expected scale and step", id)
		}
		scale, ok := lookupScale(id.Args[0])
		if !ok {
			return "", fmt.Errorf("%s: unknown scale %q", id, id.Args[0])
		}
		value, err := scale.step(length, id.Args[1])
		if err != nil {
			return "", fmt.Errorf("%s: %w", id, err)
		}
		if len(id.Args) > 2 {
			factor, ok := breakpointFactor(id.Args[2])
			if !ok {
				return "", fmt.Errorf("%s: unknown breakpoint %q", id, id.Args[2])
			}
			value = value.Scale(factor)
		}
		return value.format()
	default:
		return "", fmt.Errorf("%s: unknown spacing operation", id)
	}
}

func deriveTypography(id DerivationID, base string) (string, error) {
	length, err := ParseLength(base)
	if err != nil {
		return "", err
	}

	switch id.Op {
	case "step":
		ratio, err := id.floatArg(0)
		if err != nil {
			return "", err
		}
		exponent, err := id.floatArg(1)
		if err != nil {
			return "", err
		}
		if ratio <= 0 {
			return "", fmt.Errorf("%s: ratio must be positive", id)
		}
		return length.Scale(math.Pow(ratio, exponent)).format()
	default:
		return "", fmt.Errorf("%s: unknown typography operation", id)
	}
}
