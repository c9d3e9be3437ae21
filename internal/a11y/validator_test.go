package a11y

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ratio float64
		want  Level
	}{
		{ratio: 21, want: LevelAAA},
		{ratio: 7, want: LevelAAA},
		{ratio: 5, want: LevelAA},
		{ratio: 4.5, want: LevelAA},
		{ratio: 3.5, want: LevelAALarge},
		{ratio: 3, want: LevelAALarge},
		{ratio: 2.99, want: LevelFail},
		{ratio: 1, want: LevelFail},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(tt.ratio), "ratio %v", tt.ratio)
	}
}

func TestFindAccessibleTextColor(t *testing.T) {
	t.Parallel()

	onNavy, err := FindAccessibleTextColor("#1B365D", MinContrastNormal)
	require.NoError(t, err)
	assert.Equal(t, White, onNavy)

	onWhite, err := FindAccessibleTextColor("#FFFFFF", MinContrastNormal)
	require.NoError(t, err)
	assert.Equal(t, Black, onWhite)

	// Neither reaches 7:1 on mid grey; black contrasts more.
	onGrey, err := FindAccessibleTextColor("#777777", MinContrastAAA)
	require.NoError(t, err)
	assert.Equal(t, Black, onGrey)

	_, err = FindAccessibleTextColor("grey", MinContrastNormal)
	require.Error(t, err)
}

func TestFindAccessibleTextColorMeetsThresholdWhenPossible(t *testing.T) {
	t.Parallel()

	backgrounds := []string{"#000000", "#FFFFFF", "#1B365D", "#C53030", "#F7FAFC", "#2F855A", "#B7791F", "#4A5568"}
	for _, bg := range backgrounds {
		text, err := FindAccessibleTextColor(bg, MinContrastNormal)
		require.NoError(t, err)

		ratio, err := ContrastRatio(text, bg)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, ratio, MinContrastNormal, "text %s on %s", text, bg)
	}
}

func TestValidateTokenSetChecksEveryTextAgainstEveryBackground(t *testing.T) {
	t.Parallel()

	// #777777 on white is roughly 4.48:1.
	report := ValidateTokenSet([]Resolved{
		{Name: "color-text", Value: "#777777"},
		{Name: "card-background", Value: "#FFFFFF"},
	})
	require.False(t, report.AllValid)
	require.Len(t, report.Pairs, 1)
	assert.Equal(t, "card-background", report.Violations[0].Background)

	report = ValidateTokenSet([]Resolved{
		{Name: "color-text", Value: "#1A202C"},
		{Name: "color-background", Value: "#FFFFFF"},
		{Name: "button-text", Value: "#FFFFFF"},
		{Name: "button-background", Value: "#1B365D"},
	})
	require.Len(t, report.Pairs, 4)
	require.Len(t, report.Violations, 2)
	assert.Equal(t, "button-text", report.Violations[0].Foreground)
	assert.Equal(t, "color-background", report.Violations[0].Background)
	assert.Equal(t, "color-text", report.Violations[1].Foreground)
	assert.Equal(t, "button-background", report.Violations[1].Background)
}

func TestParsePairing(t *testing.T) {
	t.Parallel()

	for value, want := range map[string]Pairing{"": PairAll, "all": PairAll, "scoped": PairScoped} {
		got, err := ParsePairing(value)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParsePairing("nearby")
	require.Error(t, err)
}

func TestValidateTokenSetScopedPairing(t *testing.T) {
	t.Parallel()

	report := ValidateTokenSet([]Resolved{
		{Name: "color-text", Value: "#1A202C"},
		{Name: "color-background", Value: "#FFFFFF"},
		{Name: "color-surface", Value: "#F7FAFC"},
		{Name: "button-text", Value: "#FFFFFF"},
		{Name: "button-background", Value: "#1B365D"},
		{Name: "spacing-md", Value: "16px"},
	}, WithPairing(PairScoped))

	assert.True(t, report.AllValid)
	assert.Empty(t, report.Violations)
	assert.Empty(t, report.Corrections)
	require.Len(t, report.Pairs, 3)

	assert.Equal(t, "button-text", report.Pairs[0].Foreground)
	assert.Equal(t, "button-background", report.Pairs[0].Background)
	assert.Equal(t, "color-text", report.Pairs[1].Foreground)
	assert.Equal(t, "color-background", report.Pairs[1].Background)
	assert.Equal(t, "color-surface", report.Pairs[2].Background)
}

func TestValidateTokenSetReportsViolationAndCorrection(t *testing.T) {
	t.Parallel()

	report := ValidateTokenSet([]Resolved{
		{Name: "color-text", Value: "#EEEEEE"},
		{Name: "color-background", Value: "#FFFFFF"},
	})

	require.False(t, report.AllValid)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, LevelFail, report.Violations[0].Level)
	assert.Equal(t, MinContrastNormal, report.Violations[0].Required)
	assert.Contains(t, report.Violations[0].Message(), "color-text on color-background")

	require.Len(t, report.Corrections, 1)
	assert.Equal(t, "color-text", report.Corrections[0].Token)
	assert.Equal(t, "#EEEEEE", report.Corrections[0].Original)
	assert.Equal(t, Black, report.Corrections[0].Suggested)
	assert.GreaterOrEqual(t, report.Corrections[0].Ratio, MinContrastNormal)
}

func TestValidateTokenSetLargeTextThreshold(t *testing.T) {
	t.Parallel()

	// #949494 on white is roughly 3.03:1.
	report := ValidateTokenSet([]Resolved{
		{Name: "hero-heading-text", Value: "#949494"},
		{Name: "hero-heading-background", Value: "#FFFFFF"},
		{Name: "hero-text", Value: "#949494"},
		{Name: "hero-background", Value: "#FFFFFF"},
	})

	require.Len(t, report.Pairs, 4)
	require.Len(t, report.Violations, 2)
	for _, v := range report.Violations {
		assert.Equal(t, "hero-text", v.Foreground)
	}
	require.Len(t, report.Corrections, 1)

	for _, pair := range report.Pairs {
		if pair.Foreground == "hero-heading-text" {
			assert.True(t, pair.Passed)
			assert.Equal(t, MinContrastLarge, pair.Required)
		}
	}
}

func TestValidateTokenSetExplicitConstraint(t *testing.T) {
	t.Parallel()

	report := ValidateTokenSet([]Resolved{
		{Name: "badge-label", Value: "#949494", MinContrast: MinContrastNormal, ContrastAgainst: "badge-fill"},
		{Name: "badge-fill", Value: "#FFFFFF"},
	})

	require.Len(t, report.Violations, 1)
	assert.Equal(t, "badge-label", report.Violations[0].Foreground)
	assert.Equal(t, "badge-fill", report.Violations[0].Background)
}

func TestValidateTokenSetSkipsNonColors(t *testing.T) {
	t.Parallel()

	report := ValidateTokenSet([]Resolved{
		{Name: "body-text", Value: "16px"},
		{Name: "body-background", Value: "#FFFFFF"},
	})

	assert.True(t, report.AllValid)
	assert.Empty(t, report.Pairs)
}
