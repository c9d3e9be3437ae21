package generator

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/tokenflow/internal/logger"
)

func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()

	buf := &bytes.Buffer{}
	log, err := logger.New(logger.Options{Level: "debug", Writer: buf})
	require.NoError(t, err)
	return log, buf
}

func generate(t *testing.T, kind Kind, base BaseInputs) TokenSet {
	t.Helper()

	gen, err := New(kind, logger.Discard())
	require.NoError(t, err)
	require.Equal(t, kind, gen.Kind())

	set, err := gen.Generate(base)
	require.NoError(t, err)
	return set
}

func value(t *testing.T, set TokenSet, name string) string {
	t.Helper()

	def, ok := set.Lookup(name)
	require.True(t, ok, "missing token %s", name)
	return def.Value
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for _, kind := range Kinds() {
		parsed, ok := ParseKind(kind.String())
		require.True(t, ok)
		assert.Equal(t, kind, parsed)
	}

	_, ok := ParseKind("motion")
	assert.False(t, ok)
}

func TestNewRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	_, err := New(Kind(42), nil)
	require.Error(t, err)
}

func TestGenerateAllUpstreamFirst(t *testing.T) {
	t.Parallel()

	set, errs := GenerateAll(DefaultInputs(), logger.Discard())
	require.Empty(t, errs)

	seen := make(map[string]bool, len(set))
	for _, def := range set {
		require.False(t, seen[def.Name], "duplicate token %s", def.Name)
		for _, dep := range def.DependsOn {
			assert.True(t, seen[dep], "%s registered before its dependency %s", def.Name, dep)
		}
		seen[def.Name] = true
	}
}

func TestGenerateAllCollectsFallbackErrors(t *testing.T) {
	t.Parallel()

	base := DefaultInputs()
	base.Colors = map[string]string{"primary": "#1B365D"}
	base.Typography.Pairing = "baroque"

	set, errs := GenerateAll(base, logger.Discard())
	// color and component both fall back on the missing roles; typography falls back on the pairing.
	require.Len(t, errs, 3)
	assert.Equal(t, "#1B365D", value(t, set, "color-primary"))
	assert.Equal(t, "'Inter', sans-serif", value(t, set, "typography-font-body"))
}
