package config

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/alexisbeaulieu97/tokenflow/internal/generator"
	tferrors "github.com/alexisbeaulieu97/tokenflow/pkg/errors"
)

// ValidateConfig performs schema and cross-field validation on the configuration.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return tferrors.NewValidationError("config", "configuration is nil", nil)
	}

	if err := validatorInstance().Struct(cfg); err != nil {
		return convertValidationError(err)
	}

	if len(cfg.Palette.Colors) > 0 {
		var missing []string
		for _, role := range generator.RequiredRoles {
			if _, ok := cfg.Palette.Colors[role]; !ok {
				missing = append(missing, role)
			}
		}
		if len(missing) > 0 {
			return tferrors.NewValidationError("palette.colors", fmt.Sprintf("missing required roles: %s", strings.Join(missing, ", ")), nil)
		}
	}
	return nil
}

// convertValidationError normalizes validator errors into tokenflow validation errors.
func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return tferrors.NewValidationError(field, msg, err)
	}

	return tferrors.NewValidationError("config", err.Error(), err)
}

func yamlishFieldName(fe validator.FieldError) string {
	parts := strings.Split(fe.StructNamespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, part := range parts {
		name, index := part, ""
		if at := strings.IndexByte(part, '['); at >= 0 {
			name, index = part[:at], part[at:]
		}
		parts[i] = snakeCase(name) + strings.ToLower(index)
	}
	return strings.Join(parts, ".")
}

// snakeCase maps a Go field name onto its configuration key: ContrastPairing
// becomes contrast_pairing, FrameIntervalMS becomes frame_interval_ms.
func snakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
