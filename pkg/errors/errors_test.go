package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseErrorWrapsUnderlying(t *testing.T) {
	t.Parallel()

	underlying := fmt.Errorf("unexpected token")
	err := NewParseError("tokenflow.yaml", 12, underlying)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "tokenflow.yaml", parseErr.Path)
	require.Equal(t, 12, parseErr.Line)
	require.True(t, stdErrors.Is(err, underlying))
	require.Contains(t, err.Error(), "tokenflow.yaml:12")
}

func TestValidationErrorIncludesField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("palette.colors.primary", "failed validation for tag 'hexcolor'", nil)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "palette.colors.primary", validationErr.Field)
	require.Contains(t, err.Error(), "hexcolor")
}

func TestTokenConfigErrorIncludesToken(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("value is required")
	err := NewTokenConfigError("color-primary", "missing value", underlying)

	var cfgErr *TokenConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "color-primary", cfgErr.Token)
	require.True(t, stdErrors.Is(err, underlying))
	require.Contains(t, err.Error(), "[color-primary]")
}

func TestCycleErrorRendersPath(t *testing.T) {
	t.Parallel()

	path := []string{"a", "b", "a"}
	err := NewCycleError("a", path)
	path[0] = "mutated"

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	require.Equal(t, []string{"a", "b", "a"}, cycleErr.Path)
	require.Contains(t, err.Error(), "a -> b -> a")
}

func TestGenerationErrorWrapsCause(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("not a color")
	err := NewGenerationError("color-primary-light", "color.lighten:0.15", underlying)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	require.Equal(t, "color.lighten:0.15", genErr.GeneratorID)
	require.True(t, stdErrors.Is(err, underlying))
}

func TestTokenNotFoundError(t *testing.T) {
	t.Parallel()

	err := NewTokenNotFoundError("missing")
	var nf *TokenNotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, "token not found: missing", err.Error())
}

func TestNilErrorsRenderEmpty(t *testing.T) {
	t.Parallel()

	var parseErr *ParseError
	var cycleErr *CycleError
	var genErr *GenerationError
	require.Empty(t, parseErr.Error())
	require.Empty(t, cycleErr.Error())
	require.Empty(t, genErr.Error())
	require.Nil(t, genErr.Unwrap())
}
