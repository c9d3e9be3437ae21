package token

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexisbeaulieu97/tokenflow/internal/generator"
	tferrors "github.com/alexisbeaulieu97/tokenflow/pkg/errors"
)

// DocumentVersion is written into every exported document.
const DocumentVersion = "1.0"

// Entry is a [name, value] pair. Documents serialize maps as ordered pair lists.
type Entry[T any] struct {
	Name  string
	Value T
}

func (e Entry[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Name, e.Value})
}

func (e *Entry[T]) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("expected [name, value] pair, got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &e.Name); err != nil {
		return fmt.Errorf("pair name: %w", err)
	}
	if err := json.Unmarshal(raw[1], &e.Value); err != nil {
		return fmt.Errorf("pair %q: %w", e.Name, err)
	}
	return nil
}

// TokenRecord is the serialized form of a token.
type TokenRecord struct {
	Value       string       `json:"value"`
	Domain      string       `json:"domain"`
	StyleKey    string       `json:"styleKey"`
	Constraints []Constraint `json:"constraints,omitempty"`
	Metadata    Metadata     `json:"metadata"`
}

// DomainRecord is the serialized form of a domain.
type DomainRecord struct {
	Kind   string   `json:"kind"`
	Tokens []string `json:"tokens"`
}

// DocumentMetadata describes an export.
type DocumentMetadata struct {
	ExportedAt  time.Time `json:"exportedAt"`
	Version     string    `json:"version"`
	TotalTokens int       `json:"totalTokens"`
}

// Document is a complete, self-contained registry snapshot.
type Document struct {
	Tokens        []Entry[TokenRecord]   `json:"tokens"`
	Domains       []Entry[DomainRecord]  `json:"domains"`
	Relationships []Entry[Relationships] `json:"relationships"`
	Metadata      DocumentMetadata       `json:"metadata"`
}

// Export snapshots tokens, domains and relationships, each sorted by name.
func (r *Registry) Export() Document {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tokens))
	for name := range r.tokens {
		names = append(names, name)
	}
	sort.Strings(names)

	doc := Document{
		Tokens:        make([]Entry[TokenRecord], 0, len(names)),
		Relationships: make([]Entry[Relationships], 0, len(names)),
		Metadata: DocumentMetadata{
			ExportedAt:  r.now().UTC(),
			Version:     DocumentVersion,
			TotalTokens: len(names),
		},
	}

	for _, name := range names {
		tok := r.snapshot(r.tokens[name])
		doc.Tokens = append(doc.Tokens, Entry[TokenRecord]{Name: name, Value: TokenRecord{
			Value:       tok.Value,
			Domain:      tok.Domain,
			StyleKey:    tok.StyleKey,
			Constraints: tok.Constraints,
			Metadata:    tok.Metadata,
		}})
		doc.Relationships = append(doc.Relationships, Entry[Relationships]{Name: name, Value: tok.Relationships})
	}

	domainNames := make([]string, 0, len(r.domains))
	for name := range r.domains {
		domainNames = append(domainNames, name)
	}
	sort.Strings(domainNames)
	for _, name := range domainNames {
		d := r.domains[name]
		tokens := append([]string{}, d.Tokens...)
		sort.Strings(tokens)
		doc.Domains = append(doc.Domains, Entry[DomainRecord]{Name: name, Value: DomainRecord{Kind: d.Kind.String(), Tokens: tokens}})
	}
	return doc
}

// Import replaces the registry contents with doc. The whole document is
// validated first; on any error the registry is left untouched.
func (r *Registry) Import(doc Document) error {
	state, err := r.buildState(doc)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens = state.tokens
	r.graph = state.graph
	r.domainCache = make(map[string][]Token)
	for name, d := range state.domains {
		r.domains[name] = d
	}
	r.rebuildDomainMembers()
	r.log.WithField("tokens", len(state.tokens)).Info("registry imported")
	return nil
}

type importState struct {
	tokens  map[string]*Token
	domains map[string]*Domain
	graph   *graph
}

func importError(message string, args ...any) error {
	return tferrors.NewValidationError("import", fmt.Sprintf(message, args...), nil)
}

func (r *Registry) buildState(doc Document) (*importState, error) {
	state := &importState{
		tokens:  make(map[string]*Token, len(doc.Tokens)),
		domains: make(map[string]*Domain, len(doc.Domains)),
		graph:   newGraph(),
	}

	for _, entry := range doc.Domains {
		if strings.TrimSpace(entry.Name) == "" {
			return nil, importError("domain with empty name")
		}
		if _, dup := state.domains[entry.Name]; dup {
			return nil, importError("duplicate domain %q", entry.Name)
		}
		kind, ok := generator.ParseKind(entry.Value.Kind)
		if !ok {
			return nil, importError("domain %q has unknown kind %q", entry.Name, entry.Value.Kind)
		}
		state.domains[entry.Name] = &Domain{Name: entry.Name, Kind: kind}
	}

	for _, entry := range doc.Tokens {
		name, rec := entry.Name, entry.Value
		switch {
		case strings.TrimSpace(name) == "":
			return nil, importError("token with empty name")
		case strings.TrimSpace(rec.Value) == "":
			return nil, importError("token %q has no value", name)
		case strings.TrimSpace(rec.Domain) == "":
			return nil, importError("token %q has no domain", name)
		}
		if _, dup := state.tokens[name]; dup {
			return nil, importError("duplicate token %q", name)
		}
		if _, known := state.domains[rec.Domain]; !known {
			if _, registered := r.domainKind(rec.Domain); !registered {
				r.log.WithFields(map[string]any{"token": name, "domain": rec.Domain}).Warn("importing token in unknown domain")
			}
		}

		state.tokens[name] = &Token{
			Name:        name,
			Value:       rec.Value,
			Domain:      rec.Domain,
			StyleKey:    r.StyleKey(name),
			Constraints: append([]Constraint(nil), rec.Constraints...),
			Metadata:    rec.Metadata,
		}
		state.graph.addNode(name)
	}

	declared := make(map[string]Relationships, len(doc.Relationships))
	for _, entry := range doc.Relationships {
		tok, ok := state.tokens[entry.Name]
		if !ok {
			return nil, importError("relationships for unknown token %q", entry.Name)
		}
		if _, dup := declared[entry.Name]; dup {
			return nil, importError("duplicate relationships for %q", entry.Name)
		}
		declared[entry.Name] = entry.Value
		tok.Relationships.Affects = uniqueSorted(entry.Value.Affects)

		for _, dep := range entry.Value.DependsOn {
			if _, ok := state.tokens[dep]; !ok {
				return nil, importError("token %q depends on missing token %q", entry.Name, dep)
			}
			state.graph.addEdge(dep, entry.Name)
		}
		for _, out := range entry.Value.Generates {
			if _, ok := state.tokens[out]; !ok {
				return nil, importError("token %q generates missing token %q", entry.Name, out)
			}
		}
	}

	for name, rel := range declared {
		for _, out := range rel.Generates {
			if !contains(declared[out].DependsOn, name) {
				return nil, importError("asymmetric edge: %q generates %q but %q does not depend on it", name, out, out)
			}
		}
		for _, dep := range rel.DependsOn {
			if !contains(declared[dep].Generates, name) {
				return nil, importError("asymmetric edge: %q depends on %q but %q does not generate it", name, dep, dep)
			}
		}
	}

	for name, tok := range state.tokens {
		if tok.Metadata.GeneratorID != "" && len(state.graph.dependencies(name)) != 1 {
			return nil, importError("generated token %q needs exactly one base dependency", name)
		}
	}

	if cycle := state.graph.detectCycle(); cycle != nil {
		return nil, tferrors.NewCycleError(cycle[0], cycle)
	}

	for _, entry := range doc.Domains {
		for _, member := range entry.Value.Tokens {
			tok, ok := state.tokens[member]
			if !ok || tok.Domain != entry.Name {
				return nil, importError("domain %q lists token %q that does not belong to it", entry.Name, member)
			}
		}
	}

	return state, nil
}

// rebuildDomainMembers recomputes every domain's token list from the token table.
func (r *Registry) rebuildDomainMembers() {
	names := make([]string, 0, len(r.tokens))
	for name := range r.tokens {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, d := range r.domains {
		d.Tokens = nil
	}
	for _, name := range names {
		if d, ok := r.domains[r.tokens[name].Domain]; ok {
			d.Tokens = append(d.Tokens, name)
		}
	}
}

func (r *Registry) domainKind(name string) (generator.Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.domains[name]
	if !ok {
		return 0, false
	}
	return d.Kind, true
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}

// ResolveDocument validates doc and resolves its values in a scratch
// registry. r itself is not modified.
func (r *Registry) ResolveDocument(doc Document) (map[string]string, error) {
	scratch := NewRegistry(Options{
		StylePrefix:  r.prefix,
		CascadeDepth: r.depth,
		Deriver:      r.deriver,
		Now:          r.now,
	})
	if err := scratch.Import(doc); err != nil {
		return nil, err
	}
	return scratch.ResolveAll(), nil
}
