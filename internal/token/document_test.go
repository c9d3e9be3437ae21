package token

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tferrors "github.com/alexisbeaulieu97/tokenflow/pkg/errors"
)

func TestExportImportRoundTrip(t *testing.T) {
	t.Parallel()

	source := newPaletteRegistry(t)
	_, err := source.Update("color-primary", "#2B6CB0")
	require.NoError(t, err)

	doc := source.Export()
	assert.Equal(t, DocumentVersion, doc.Metadata.Version)
	assert.Equal(t, source.Len(), doc.Metadata.TotalTokens)
	assert.Equal(t, fixedNow, doc.Metadata.ExportedAt)

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var decoded Document
	require.NoError(t, json.Unmarshal(data, &decoded))

	target := newTestRegistry(t, Options{})
	require.NoError(t, target.Import(decoded))

	assert.Equal(t, source.Export(), target.Export())

	value, ok := target.Resolve("button-background")
	require.True(t, ok)
	assert.Equal(t, "#2B6CB0", value)

	changes, err := target.Update("color-primary", "#1B365D")
	require.NoError(t, err)
	assert.Greater(t, len(changes), 1)
}

func TestDocumentUsesPairLists(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t, Options{})
	require.NoError(t, reg.Register("color-primary", Config{Value: "#1B365D", Domain: "color"}))

	data, err := json.Marshal(reg.Export())
	require.NoError(t, err)

	var raw struct {
		Tokens   [][]json.RawMessage `json:"tokens"`
		Metadata map[string]any      `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw.Tokens, 1)
	require.Len(t, raw.Tokens[0], 2)
	assert.JSONEq(t, `"color-primary"`, string(raw.Tokens[0][0]))
	assert.Contains(t, raw.Metadata, "exportedAt")
	assert.Contains(t, raw.Metadata, "totalTokens")
}

func TestEntryRejectsMalformedPairs(t *testing.T) {
	t.Parallel()

	var entry Entry[DomainRecord]
	require.Error(t, json.Unmarshal([]byte(`["color"]`), &entry))
	require.Error(t, json.Unmarshal([]byte(`{"name":"color"}`), &entry))
	require.NoError(t, json.Unmarshal([]byte(`["color",{"kind":"color","tokens":[]}]`), &entry))
	assert.Equal(t, "color", entry.Name)
}

func TestImportIsAtomic(t *testing.T) {
	t.Parallel()

	valid := func() Document {
		reg := newTestRegistry(t, Options{})
		require.NoError(t, reg.Register("color-primary", Config{Value: "#1B365D", Domain: "color"}))
		require.NoError(t, reg.Register("color-primary-dark", Config{
			Value: "#001037", Domain: "color", DependsOn: []string{"color-primary"}, GeneratorID: "color.darken:0.15",
		}))
		return reg.Export()
	}

	tests := []struct {
		name    string
		mutate  func(doc *Document)
		isCycle bool
	}{
		{name: "asymmetric edge", mutate: func(doc *Document) {
			doc.Relationships[0].Value.Generates = nil
		}},
		{name: "dangling dependency", mutate: func(doc *Document) {
			doc.Relationships[1].Value.DependsOn = []string{"color-ghost"}
		}},
		{name: "empty value", mutate: func(doc *Document) {
			doc.Tokens[0].Value.Value = ""
		}},
		{name: "duplicate token", mutate: func(doc *Document) {
			doc.Tokens = append(doc.Tokens, doc.Tokens[0])
		}},
		{name: "unknown domain kind", mutate: func(doc *Document) {
			doc.Domains[0].Value.Kind = "sound"
		}},
		{name: "cycle", isCycle: true, mutate: func(doc *Document) {
			doc.Relationships[0].Value.DependsOn = []string{"color-primary-dark"}
			doc.Relationships[1].Value.Generates = []string{"color-primary"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newTestRegistry(t, Options{})
			require.NoError(t, reg.Register("spacing-base", Config{Value: "16px", Domain: "spacing"}))
			before := reg.Export()

			doc := valid()
			tt.mutate(&doc)

			err := reg.Import(doc)
			require.Error(t, err)
			if tt.isCycle {
				var cycleErr *tferrors.CycleError
				assert.ErrorAs(t, err, &cycleErr)
			}
			assert.Equal(t, before, reg.Export())
		})
	}
}

func TestResolveDocumentLeavesRegistryAlone(t *testing.T) {
	t.Parallel()

	source := newPaletteRegistry(t)
	doc := source.Export()

	live := newPaletteRegistry(t)
	_, err := live.Update("color-primary", "#2B6CB0")
	require.NoError(t, err)
	before := live.ResolveAll()

	values, err := live.ResolveDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, source.ResolveAll(), values)
	assert.Equal(t, before, live.ResolveAll())

	doc.Tokens[0].Value.Value = ""
	_, err = live.ResolveDocument(doc)
	require.Error(t, err)
}
