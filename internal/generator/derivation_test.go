package generator

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDerivationID(t *testing.T) {
	t.Parallel()

	id, err := ParseDerivationID("spacing.step:geometric-major:lg:mobile")
	require.NoError(t, err)
	assert.Equal(t, KindSpacing, id.Kind)
	assert.Equal(t, "step", id.Op)
	assert.Equal(t, []string{"geometric-major", "lg", "mobile"}, id.Args)
	assert.Equal(t, "spacing.step:geometric-major:lg:mobile", id.String())

	for _, bad := range []string{"", "color", "motion.ease:1", "color.:1"} {
		_, err := ParseDerivationID(bad)
		assert.Error(t, err, bad)
	}
}

func TestCatalogDerive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   string
		base string
		want string
	}{
		{id: "color.lighten:0.15", base: "#1B365D", want: "#415C83"},
		{id: "color.darken:0.15", base: "#1B365D", want: "#001037"},
		{id: "color.hue:120", base: "#FF0000", want: "#00FF00"},
		{id: "color.desaturate:1", base: "#FF0000", want: "#808080"},
		{id: "color.opacity:0.95", base: "#1B365D", want: "#1B365DF2"},
		{id: "component.text-on:4.5", base: "#FFFFFF", want: "#000000"},
		{id: "spacing.multiply:2", base: "12px", want: "24px"},
		{id: "spacing.step:geometric-major:xl", base: "16px", want: "25px"},
		{id: "spacing.step:geometric-major:lg:mobile", base: "16px", want: "15px"},
		{id: "typography.step:1.25:2", base: "16px", want: "25px"},
	}

	var catalog Catalog
	for _, tt := range tests {
		got, err := catalog.Derive(tt.id, tt.base)
		require.NoError(t, err, tt.id)
		assert.Equal(t, tt.want, got, tt.id)
	}
}

func TestCatalogDeriveErrors(t *testing.T) {
	t.Parallel()

	var catalog Catalog
	for _, tt := range []struct{ id, base string }{
		{id: "color.lighten:0.15", base: "navy"},
		{id: "color.blend:0.5", base: "#000000"},
		{id: "color.lighten", base: "#000000"},
		{id: "spacing.step:geometric-major:huge", base: "16px"},
		{id: "spacing.step:geometric-major:lg:watch", base: "16px"},
		{id: "spacing.multiply:2", base: "wide"},
		{id: "typography.step:0:1", base: "16px"},
		{id: "spacing.multiply:5", base: "1e308px"},
		{id: "spacing.step:geometric-golden:4xl", base: "1e308px"},
		{id: "typography.step:1.25:6", base: "1e308px"},
	} {
		_, err := catalog.Derive(tt.id, tt.base)
		assert.Error(t, err, tt.id)
	}
}

func TestLengthStringStaysFiniteForLargeValues(t *testing.T) {
	t.Parallel()

	out := Length{Value: 1e307, Unit: "px"}.String()
	assert.NotContains(t, out, "Inf")
	assert.True(t, strings.HasSuffix(out, "px"))

	_, err := Length{Value: math.Inf(1), Unit: "px"}.format()
	assert.Error(t, err)
}
