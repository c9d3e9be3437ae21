package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/tokenflow/internal/logger"
	"github.com/alexisbeaulieu97/tokenflow/internal/token"
)

func sampleDocument(t *testing.T) token.Document {
	t.Helper()

	reg := token.NewRegistry(token.Options{Logger: logger.Discard()})
	require.NoError(t, reg.Register("color-primary", token.Config{Value: "#1B365D", Domain: "color"}))
	require.NoError(t, reg.Register("button-background", token.Config{
		Value: "ref:color-primary", Domain: "component", DependsOn: []string{"color-primary"},
	}))
	return reg.Export()
}

func TestSnapshotStoreSaveLoadList(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "snapshots")
	s, err := NewSnapshotStore(dir)
	require.NoError(t, err)

	doc := sampleDocument(t)
	require.NoError(t, s.Save("brand-a", doc))
	require.NoError(t, s.Save("brand-b", doc))

	_, err = os.Stat(filepath.Join(dir, "brand-a.json.tmp"))
	assert.True(t, os.IsNotExist(err))

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"brand-a", "brand-b"}, names)

	loaded, err := s.Load("brand-a")
	require.NoError(t, err)
	assert.Equal(t, doc.Metadata.TotalTokens, loaded.Metadata.TotalTokens)

	reg := token.NewRegistry(token.Options{Logger: logger.Discard()})
	require.NoError(t, reg.Import(loaded))
	value, ok := reg.Resolve("button-background")
	require.True(t, ok)
	assert.Equal(t, "#1B365D", value)

	require.NoError(t, s.Delete("brand-b"))
	names, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"brand-a"}, names)
}

func TestSnapshotStoreErrors(t *testing.T) {
	t.Parallel()

	s, err := NewSnapshotStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Load("missing")
	require.ErrorIs(t, err, ErrSnapshotNotFound)
	require.ErrorIs(t, s.Delete("missing"), ErrSnapshotNotFound)

	for _, bad := range []string{"", "../escape", ".hidden", `a\b`} {
		assert.Error(t, s.Save(bad, token.Document{}), bad)
	}
}

func TestReadDocumentRejectsGarbage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tokens": [["only-name"]]}`), 0o644))

	_, err := ReadDocument(path)
	require.Error(t, err)
}
