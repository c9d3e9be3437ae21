package generator

// Roles lists the semantic color roles in generation order.
var Roles = []string{"primary", "secondary", "accent", "surface", "background", "text", "border", "success", "warning", "error"}

// RequiredRoles must be supplied by the caller; the rest default to SafePalette.
var RequiredRoles = []string{"primary", "secondary", "accent"}

// SafePalette is the accessible palette used when color inputs are unusable.
var SafePalette = map[string]string{
	"primary":    "#1B365D",
	"secondary":  "#4A5568",
	"accent":     "#C53030",
	"surface":    "#F7FAFC",
	"background": "#FFFFFF",
	"text":       "#1A202C",
	"border":     "#CBD5E0",
	"success":    "#2F855A",
	"warning":    "#B7791F",
	"error":      "#C53030",
}

const (
	DefaultSpacingBase    = "16px"
	DefaultSpacingScale   = "geometric-major"
	DefaultTypographyBase = "16px"
	DefaultPairing        = "modern"
)

// DefaultInputs is the complete fallback palette.
func DefaultInputs() BaseInputs {
	colors := make(map[string]string, len(SafePalette))
	for role, value := range SafePalette {
		colors[role] = value
	}
	return BaseInputs{
		Colors:     colors,
		Spacing:    SpacingInput{Base: DefaultSpacingBase, Scale: DefaultSpacingScale},
		Typography: TypographyInput{Base: DefaultTypographyBase, Pairing: DefaultPairing},
	}
}
