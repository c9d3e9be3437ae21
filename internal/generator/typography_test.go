package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/tokenflow/internal/logger"
)

func TestTypographyModernScale(t *testing.T) {
	t.Parallel()

	set := generate(t, KindTypography, BaseInputs{Typography: TypographyInput{Base: "16px", Pairing: "modern"}})

	want := map[string]string{
		"typography-size-xs":   "10.24px",
		"typography-size-sm":   "12.8px",
		"typography-size-base": "16px",
		"typography-size-lg":   "20px",
		"typography-size-xl":   "25px",
		"typography-size-2xl":  "31.25px",
		"typography-size-4xl":  "48.83px",
	}
	for name, expected := range want {
		assert.Equal(t, expected, value(t, set, name), name)
	}

	assert.Equal(t, "ref:typography-size-4xl", value(t, set, "typography-h1"))
	assert.Equal(t, "ref:typography-size-base", value(t, set, "typography-h6"))
	assert.Equal(t, "1.6", value(t, set, "typography-line-height-body"))

	def, ok := set.Lookup("typography-size-sm")
	require.True(t, ok)
	assert.Equal(t, "typography.step:1.25:-1", def.GeneratorID)
	assert.Equal(t, []string{"typography-base"}, def.DependsOn)
}

func TestTypographyPairings(t *testing.T) {
	t.Parallel()

	set := generate(t, KindTypography, BaseInputs{Typography: TypographyInput{Base: "1rem", Pairing: "technical"}})
	assert.Equal(t, "'IBM Plex Mono', monospace", value(t, set, "typography-font-body"))
	assert.Equal(t, "1.2rem", value(t, set, "typography-size-lg"))

	assert.ElementsMatch(t, []string{"modern", "classic", "editorial", "technical"}, Pairings())
}

func TestTypographyFallback(t *testing.T) {
	t.Parallel()

	gen, err := New(KindTypography, logger.Discard())
	require.NoError(t, err)

	for _, base := range []string{"big", "1e308px"} {
		set, err := gen.Generate(BaseInputs{Typography: TypographyInput{Base: base, Pairing: "modern"}})
		require.Error(t, err, base)
		assert.Equal(t, "16px", value(t, set, "typography-base"))
		assert.Equal(t, "20px", value(t, set, "typography-size-lg"))
	}
}
