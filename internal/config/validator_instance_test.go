package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tferrors "github.com/alexisbeaulieu97/tokenflow/pkg/errors"
)

func TestGetValidatorIsSingleton(t *testing.T) {
	assert.Same(t, GetValidator(), GetValidator())
}

func TestCustomTags(t *testing.T) {
	t.Parallel()

	v := GetValidator()
	cases := []struct {
		tag   string
		value string
		ok    bool
	}{
		{"css_length", "16px", true},
		{"css_length", "1.5rem", true},
		{"css_length", "0px", false},
		{"css_length", "12pt", false},
		{"spacing_scale", "geometric-golden", true},
		{"spacing_scale", "golden", false},
		{"type_pairing", "technical", true},
		{"type_pairing", "comic", false},
		{"token_prefix", "tf", true},
		{"token_prefix", "acme-ds", true},
		{"token_prefix", "-tf", false},
		{"token_prefix", "9tf", false},
		{"token_name", "color-primary", true},
		{"token_name", "Color_Primary", false},
		{"hexcolor", "#1B365D", true},
		{"hexcolor", "1B365D", false},
	}

	for _, tc := range cases {
		err := v.Var(tc.value, tc.tag)
		if tc.ok {
			assert.NoError(t, err, "%s=%q", tc.tag, tc.value)
		} else {
			assert.Error(t, err, "%s=%q", tc.tag, tc.value)
		}
	}
}

func TestValidateConfigColors(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Palette.Colors["primary"] = "blue"
	var verr *tferrors.ValidationError
	require.ErrorAs(t, ValidateConfig(cfg), &verr)
	assert.Equal(t, "palette.colors[primary]", verr.Field)

	cfg = Default()
	delete(cfg.Palette.Colors, "accent")
	require.ErrorAs(t, ValidateConfig(cfg), &verr)
	assert.Equal(t, "palette.colors", verr.Field)
	assert.Contains(t, verr.Message, "accent")

	require.Error(t, ValidateConfig(nil))
}

func TestSnakeCase(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Version":         "version",
		"ContrastPairing": "contrast_pairing",
		"FrameIntervalMS": "frame_interval_ms",
		"UpdateBurst":     "update_burst",
	}
	for in, want := range cases {
		assert.Equal(t, want, snakeCase(in), in)
	}
}
