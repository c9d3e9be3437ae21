package config

import (
	"regexp"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/alexisbeaulieu97/tokenflow/internal/generator"
	"github.com/alexisbeaulieu97/tokenflow/internal/token"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	semverPattern = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
	prefixPattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)
)

// validatorInstance configures and returns the shared validator instance used across the config package.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("css_length", func(fl validator.FieldLevel) bool {
			l, err := generator.ParseLength(fl.Field().String())
			return err == nil && l.Value > 0
		})

		_ = v.RegisterValidation("spacing_scale", func(fl validator.FieldLevel) bool {
			return slices.Contains(generator.SpacingScales(), fl.Field().String())
		})

		_ = v.RegisterValidation("type_pairing", func(fl validator.FieldLevel) bool {
			_, ok := generator.LookupPairing(fl.Field().String())
			return ok
		})

		_ = v.RegisterValidation("token_prefix", func(fl validator.FieldLevel) bool {
			return prefixPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("token_name", func(fl validator.FieldLevel) bool {
			return token.ValidName(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// GetValidator returns the configured validator for use outside the config package.
func GetValidator() *validator.Validate {
	return validatorInstance()
}
