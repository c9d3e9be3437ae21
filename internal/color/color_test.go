package color

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    RGBA
		wantErr bool
	}{
		{name: "six digits", input: "#1B365D", want: RGBA{R: 0x1B, G: 0x36, B: 0x5D, A: 0xFF}},
		{name: "lowercase", input: "#ffffff", want: RGBA{R: 255, G: 255, B: 255, A: 255}},
		{name: "short form", input: "#0f8", want: RGBA{R: 0x00, G: 0xFF, B: 0x88, A: 0xFF}},
		{name: "with alpha", input: "#11223380", want: RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x80, HasAlpha: true}},
		{name: "missing hash", input: "1B365D", wantErr: true},
		{name: "bad digits", input: "#12345G", wantErr: true},
		{name: "wrong length", input: "#1234", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLightenAndDarkenFormula(t *testing.T) {
	t.Parallel()

	// round(2.55 * 0.15 * 100) = 38
	light, err := Lighten("#1B365D", 0.15)
	require.NoError(t, err)
	assert.Equal(t, "#415C83", light)

	dark, err := Darken("#1B365D", 0.15)
	require.NoError(t, err)
	assert.Equal(t, "#001037", dark)

	clamped, err := Lighten("#F0F0F0", 0.5)
	require.NoError(t, err)
	assert.Equal(t, "#FFFFFF", clamped)
}

func TestLightenIsMonotonicPerChannel(t *testing.T) {
	t.Parallel()

	samples := []string{"#000000", "#FFFFFF", "#1B365D", "#C53030", "#7F7F7F", "#00FF88", "#FAFAFA", "#030303"}
	amounts := []float64{0.03, 0.05, 0.08, 0.15, 0.5}

	for _, sample := range samples {
		base, err := Parse(sample)
		require.NoError(t, err)
		baseLum, err := Luminance(sample)
		require.NoError(t, err)

		for _, amount := range amounts {
			lightHex, err := Lighten(sample, amount)
			require.NoError(t, err)
			darkHex, err := Darken(sample, amount)
			require.NoError(t, err)

			light, _ := Parse(lightHex)
			dark, _ := Parse(darkHex)

			for _, pair := range [][3]uint8{{base.R, light.R, dark.R}, {base.G, light.G, dark.G}, {base.B, light.B, dark.B}} {
				b, l, d := pair[0], pair[1], pair[2]
				assert.True(t, l > b || l == 255, "lighten %s by %v", sample, amount)
				assert.True(t, d < b || d == 0, "darken %s by %v", sample, amount)
			}

			lightLum, _ := Luminance(lightHex)
			darkLum, _ := Luminance(darkHex)
			assert.GreaterOrEqual(t, lightLum, baseLum)
			assert.LessOrEqual(t, darkLum, baseLum)
		}
	}
}

func TestDesaturate(t *testing.T) {
	t.Parallel()

	grey, err := Desaturate("#FF0000", 1)
	require.NoError(t, err)
	assert.Equal(t, "#808080", grey)

	same, err := Desaturate("#808080", 0.5)
	require.NoError(t, err)
	assert.Equal(t, "#808080", same)

	half, err := Desaturate("#FF0000", 0.5)
	require.NoError(t, err)
	assert.Equal(t, "#BF4040", half)
}

func TestShiftHue(t *testing.T) {
	t.Parallel()

	green, err := ShiftHue("#FF0000", 120)
	require.NoError(t, err)
	assert.Equal(t, "#00FF00", green)

	wrapped, err := ShiftHue("#FF0000", 360)
	require.NoError(t, err)
	assert.Equal(t, "#FF0000", wrapped)

	backwards, err := ShiftHue("#FF0000", -120)
	require.NoError(t, err)
	assert.Equal(t, "#0000FF", backwards)
}

func TestAddOpacity(t *testing.T) {
	t.Parallel()

	got, err := AddOpacity("#1B365D", 0.95)
	require.NoError(t, err)
	assert.Equal(t, "#1B365DF2", got)

	replaced, err := AddOpacity("#1B365D00", 1)
	require.NoError(t, err)
	assert.Equal(t, "#1B365DFF", replaced)
}

func TestContrastRatio(t *testing.T) {
	t.Parallel()

	bw, err := ContrastRatio("#000000", "#FFFFFF")
	require.NoError(t, err)
	assert.Equal(t, 21.0, math.Round(bw*10)/10)

	aa, err := ContrastRatio("#767676", "#FFFFFF")
	require.NoError(t, err)
	assert.InDelta(t, 4.5, aa, 0.05)

	same, err := ContrastRatio("#1B365D", "#1B365D")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, same, 1e-9)

	_, err = ContrastRatio("nope", "#FFFFFF")
	require.Error(t, err)
}

func TestContrastRatioIsSymmetric(t *testing.T) {
	t.Parallel()

	colors := []string{"#000000", "#FFFFFF", "#1B365D", "#767676", "#C53030", "#F7FAFC", "#2F855A", "#B7791F"}
	for _, a := range colors {
		for _, b := range colors {
			ab, err := ContrastRatio(a, b)
			require.NoError(t, err)
			ba, err := ContrastRatio(b, a)
			require.NoError(t, err)
			assert.Equal(t, ab, ba, "%s vs %s", a, b)
		}
	}
}
