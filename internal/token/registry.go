// Package token holds the design-token registry: the token table, the
// generates/dependsOn relationship graph and reference resolution.
package token

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alexisbeaulieu97/tokenflow/internal/generator"
	"github.com/alexisbeaulieu97/tokenflow/internal/logger"
	tferrors "github.com/alexisbeaulieu97/tokenflow/pkg/errors"
)

// Deriver recomputes a dependent value from its base. generator.Catalog is the default.
type Deriver interface {
	Derive(id, base string) (string, error)
}

// Options tunes a Registry.
type Options struct {
	StylePrefix string
	// CascadeDepth is how many generates hops Update follows. Zero means one.
	CascadeDepth int
	Deriver      Deriver
	Logger       *logger.Logger
	Now          func() time.Time
}

// Registry owns every token and the relationship graph between them.
type Registry struct {
	mu          sync.RWMutex
	tokens      map[string]*Token
	domains     map[string]*Domain
	graph       *graph
	domainCache map[string][]Token

	prefix  string
	depth   int
	deriver Deriver
	log     *logger.Logger
	now     func() time.Time
}

// NewRegistry returns an empty registry with the four built-in domains.
func NewRegistry(opts Options) *Registry {
	if opts.StylePrefix == "" {
		opts.StylePrefix = DefaultStylePrefix
	}
	if opts.CascadeDepth <= 0 {
		opts.CascadeDepth = 1
	}
	if opts.Deriver == nil {
		opts.Deriver = generator.Catalog{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	r := &Registry{
		tokens:      make(map[string]*Token),
		domains:     make(map[string]*Domain),
		graph:       newGraph(),
		domainCache: make(map[string][]Token),
		prefix:      opts.StylePrefix,
		depth:       opts.CascadeDepth,
		deriver:     opts.Deriver,
		log:         opts.Logger.WithField("component", "registry"),
		now:         opts.Now,
	}
	for _, kind := range generator.Kinds() {
		r.domains[kind.String()] = &Domain{Name: kind.String(), Kind: kind}
	}
	return r
}

// StyleKey maps a token name onto its style-surface key.
func (r *Registry) StyleKey(name string) string {
	return r.prefix + "-" + name
}

// RegisterDomain adds a domain. Registering an existing name is a no-op.
func (r *Registry) RegisterDomain(name string, kind generator.Kind) error {
	if strings.TrimSpace(name) == "" {
		return tferrors.NewValidationError("domain", "name is required", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.domains[name]; !exists {
		r.domains[name] = &Domain{Name: name, Kind: kind}
	}
	return nil
}

// Domains lists registered domains sorted by name.
func (r *Registry) Domains() []Domain {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Domain, 0, len(r.domains))
	for _, d := range r.domains {
		out = append(out, Domain{Name: d.Name, Kind: d.Kind, Tokens: append([]string(nil), d.Tokens...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Register adds or replaces a token. Rejected requests leave the registry untouched.
func (r *Registry) Register(name string, cfg Config) error {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return tferrors.NewTokenConfigError("", "name is required", nil)
	case strings.TrimSpace(cfg.Value) == "":
		return tferrors.NewTokenConfigError(name, "value is required", nil)
	case strings.TrimSpace(cfg.Domain) == "":
		return tferrors.NewTokenConfigError(name, "domain is required", nil)
	case cfg.GeneratorID != "" && len(cfg.DependsOn) != 1:
		return tferrors.NewTokenConfigError(name, "a generated token needs exactly one base dependency", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, replacing := r.tokens[name]
	if replacing && existing.Domain != cfg.Domain {
		return tferrors.NewTokenConfigError(name, fmt.Sprintf("already registered in domain %q", existing.Domain), nil)
	}

	for _, dep := range cfg.DependsOn {
		if dep == name {
			return tferrors.NewCycleError(name, []string{name, name})
		}
		if _, ok := r.tokens[dep]; !ok {
			return tferrors.NewTokenConfigError(name, fmt.Sprintf("unknown dependency %q", dep), nil)
		}
		if path := r.graph.pathTo(name, dep); path != nil {
			return tferrors.NewCycleError(name, append(path, name))
		}
	}
	for _, target := range cfg.Generates {
		if target == name {
			return tferrors.NewCycleError(name, []string{name, name})
		}
		if _, ok := r.tokens[target]; !ok {
			return tferrors.NewTokenConfigError(name, fmt.Sprintf("unknown generated token %q", target), nil)
		}
		// Incoming edges of name are replaced by cfg.DependsOn, so a cycle
		// through the new edge must run from target back to one of them.
		for _, dep := range cfg.DependsOn {
			if dep == target {
				return tferrors.NewCycleError(name, []string{name, target, name})
			}
			if path := r.graph.pathTo(target, dep); path != nil {
				return tferrors.NewCycleError(name, append(append([]string{name}, path...), name))
			}
		}
	}

	log := r.log.WithFields(map[string]any{"token": name, "domain": cfg.Domain})
	if _, known := r.domains[cfg.Domain]; !known {
		log.Warn("registering token in unknown domain")
	}
	if !ValidName(name) {
		log.Warn("token name does not follow lowercase kebab-case")
	}

	now := r.now()
	tok := &Token{
		Name:        name,
		Value:       cfg.Value,
		Domain:      cfg.Domain,
		StyleKey:    r.StyleKey(name),
		Constraints: append([]Constraint(nil), cfg.Constraints...),
		Metadata: Metadata{
			Description:   cfg.Description,
			GeneratorID:   cfg.GeneratorID,
			RegisteredAt:  now,
			LastModified:  now,
			OriginalValue: cfg.OriginalValue,
		},
	}
	tok.Relationships.Affects = uniqueSorted(cfg.Affects)
	if replacing {
		tok.Metadata.RegisteredAt = existing.Metadata.RegisteredAt
		r.graph.clearDependencies(name)
	} else if d, ok := r.domains[cfg.Domain]; ok {
		d.Tokens = append(d.Tokens, name)
	}

	r.graph.addNode(name)
	for _, dep := range cfg.DependsOn {
		r.graph.addEdge(dep, name)
	}
	for _, target := range cfg.Generates {
		r.graph.addEdge(name, target)
		delete(r.domainCache, r.tokens[target].Domain)
	}
	r.tokens[name] = tok
	delete(r.domainCache, cfg.Domain)

	log.Debug("token registered")
	return nil
}

// RegisterSet registers every definition in order and joins the failures.
func (r *Registry) RegisterSet(set generator.TokenSet) error {
	var errs []error
	for _, def := range set {
		if err := r.Register(def.Name, ConfigFromDefinition(def)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Get returns a copy of the named token with its current relationships.
func (r *Registry) Get(name string) (Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tok, ok := r.tokens[name]
	if !ok {
		return Token{}, false
	}
	return r.snapshot(tok), true
}

// Names lists every token name sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tokens))
	for name := range r.tokens {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len is the number of registered tokens.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}

// Resolve follows ref: chains to a literal value. Missing targets, loops and
// chains longer than MaxIndirection resolve to ("", false).
func (r *Registry) Resolve(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolveLocked(name)
}

func (r *Registry) resolveLocked(name string) (string, bool) {
	current := name
	for hops := 0; hops <= MaxIndirection; hops++ {
		tok, ok := r.tokens[current]
		if !ok {
			if current != name {
				r.log.WithFields(map[string]any{"token": name, "target": current}).Warn("reference target not found")
			}
			return "", false
		}
		if !tok.IsReference() {
			return tok.Value, true
		}
		current = strings.TrimPrefix(tok.Value, ReferencePrefix)
	}

	r.log.WithFields(map[string]any{"token": name, "max_depth": MaxIndirection}).Warn("indirection cycle or chain too deep")
	return "", false
}

// ResolveAll returns every token that resolves, keyed by name.
func (r *Registry) ResolveAll() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.tokens))
	for name := range r.tokens {
		if value, ok := r.resolveLocked(name); ok {
			out[name] = value
		}
	}
	return out
}

// TokensByDomain returns the tokens of a domain. Results are memoized until the
// domain changes.
func (r *Registry) TokensByDomain(domain string) []Token {
	r.mu.Lock()
	defer r.mu.Unlock()

	cached, ok := r.domainCache[domain]
	if !ok {
		for _, tok := range r.tokens {
			if tok.Domain == domain {
				cached = append(cached, r.snapshot(tok))
			}
		}
		r.domainCache[domain] = cached
	}
	return append([]Token(nil), cached...)
}

// Update sets a base value and regenerates its dependents. The first change is
// the base; regenerated dependents follow sorted by name.
func (r *Registry) Update(name, value string) ([]Change, error) {
	if strings.TrimSpace(value) == "" {
		return nil, tferrors.NewTokenConfigError(name, "value is required", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	base, ok := r.tokens[name]
	if !ok {
		return nil, tferrors.NewTokenNotFoundError(name)
	}
	if err := r.checkReferenceLocked(name, value); err != nil {
		return nil, err
	}
	return r.updateLocked(base, value), nil
}

// Correct replaces a value proposed by the accessibility validator and
// cascades like Update. The pre-correction value is kept in
// Metadata.OriginalValue; repeated corrections keep the first original.
func (r *Registry) Correct(name, value string) ([]Change, error) {
	if strings.TrimSpace(value) == "" {
		return nil, tferrors.NewTokenConfigError(name, "value is required", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	base, ok := r.tokens[name]
	if !ok {
		return nil, tferrors.NewTokenNotFoundError(name)
	}
	if err := r.checkReferenceLocked(name, value); err != nil {
		return nil, err
	}
	if base.Metadata.OriginalValue == "" {
		base.Metadata.OriginalValue = base.Value
	}
	return r.updateLocked(base, value), nil
}

// checkReferenceLocked rejects a ref: value whose target is unknown or whose
// chain or generates path leads back to name.
func (r *Registry) checkReferenceLocked(name, value string) error {
	target := referenceTarget(value)
	if target == "" {
		return nil
	}
	if target == name {
		return tferrors.NewCycleError(name, []string{name, name})
	}
	if _, ok := r.tokens[target]; !ok {
		return tferrors.NewTokenConfigError(name, fmt.Sprintf("unknown reference target %q", target), nil)
	}
	if path := r.graph.pathTo(name, target); path != nil {
		return tferrors.NewCycleError(name, append(path, name))
	}

	chain := []string{name, target}
	current := r.tokens[target]
	for hops := 0; hops < MaxIndirection && current != nil && current.IsReference(); hops++ {
		next := referenceTarget(current.Value)
		chain = append(chain, next)
		if next == name {
			return tferrors.NewCycleError(name, chain)
		}
		current = r.tokens[next]
	}
	return nil
}

// rewireLocked moves the incoming edge of a token that becomes, or stops
// being, a reference. An alias takes over from its generator.
func (r *Registry) rewireLocked(tok *Token, value string) bool {
	oldTarget, newTarget := referenceTarget(tok.Value), referenceTarget(value)
	switch {
	case newTarget != "" && newTarget != oldTarget:
		r.graph.clearDependencies(tok.Name)
		r.graph.addEdge(newTarget, tok.Name)
		tok.Metadata.GeneratorID = ""
		return true
	case newTarget == "" && oldTarget != "" && tok.Metadata.GeneratorID == "":
		r.graph.removeEdge(oldTarget, tok.Name)
		return true
	}
	return false
}

func (r *Registry) updateLocked(base *Token, value string) []Change {
	name := base.Name
	now := r.now()
	if r.rewireLocked(base, value) {
		r.domainCache = make(map[string][]Token)
	}
	base.Value = value
	base.Metadata.LastModified = now
	touched := map[string]bool{base.Domain: true}

	var regenerated []*Token
	seen := map[string]bool{name: true}
	frontier := []string{name}

	for hop := 0; hop < r.depth && len(frontier) > 0; hop++ {
		var next []string
		for _, upstream := range frontier {
			upstreamValue, ok := r.resolveLocked(upstream)
			if !ok {
				continue
			}
			for _, depName := range r.graph.dependents(upstream) {
				if seen[depName] {
					continue
				}
				dep := r.tokens[depName]
				if dep == nil || dep.Metadata.GeneratorID == "" {
					continue
				}
				seen[depName] = true

				derived, err := r.deriver.Derive(dep.Metadata.GeneratorID, upstreamValue)
				if err != nil {
					genErr := tferrors.NewGenerationError(depName, dep.Metadata.GeneratorID, err)
					r.log.WithFields(map[string]any{"token": depName, "base": upstream}).Error(genErr, "derivation failed, keeping previous value")
					continue
				}
				dep.Value = derived
				dep.Metadata.LastModified = now
				touched[dep.Domain] = true
				regenerated = append(regenerated, dep)
				next = append(next, depName)
			}
		}
		frontier = next
	}

	sort.Slice(regenerated, func(i, j int) bool { return regenerated[i].Name < regenerated[j].Name })

	changes := make([]Change, 0, len(regenerated)+1)
	changes = append(changes, r.change(base))
	for _, dep := range regenerated {
		changes = append(changes, r.change(dep))
	}
	for domain := range touched {
		delete(r.domainCache, domain)
	}
	return changes
}

// Referrers returns the resolved values of every reference token whose chain
// passes through one of names, sorted by name. Reference tokens are never
// regenerated, so callers use this to refresh them after an Update.
func (r *Registry) Referrers(names ...string) []Change {
	r.mu.RLock()
	defer r.mu.RUnlock()

	changed := make(map[string]bool, len(names))
	for _, name := range names {
		changed[name] = true
	}

	var out []Change
	for _, tok := range r.tokens {
		if !tok.IsReference() || changed[tok.Name] || !r.refersToLocked(tok, changed) {
			continue
		}
		value, ok := r.resolveLocked(tok.Name)
		if !ok {
			continue
		}
		out = append(out, Change{Name: tok.Name, Value: value, StyleKey: tok.StyleKey, Domain: tok.Domain})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) refersToLocked(tok *Token, targets map[string]bool) bool {
	current := tok
	for hops := 0; hops <= MaxIndirection && current != nil && current.IsReference(); hops++ {
		next := strings.TrimPrefix(current.Value, ReferencePrefix)
		if targets[next] {
			return true
		}
		current = r.tokens[next]
	}
	return false
}

// Reset clears tokens, relationships and caches. Domains survive with empty token lists.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens = make(map[string]*Token)
	r.graph = newGraph()
	r.domainCache = make(map[string][]Token)
	for _, d := range r.domains {
		d.Tokens = nil
	}
}

// change reports tok with its resolved value; an unresolvable reference keeps its raw value.
func (r *Registry) change(tok *Token) Change {
	value := tok.Value
	if resolved, ok := r.resolveLocked(tok.Name); ok {
		value = resolved
	}
	return Change{Name: tok.Name, Value: value, StyleKey: tok.StyleKey, Domain: tok.Domain}
}

// referenceTarget returns the token a ref: value points at, or "" for literals.
func referenceTarget(value string) string {
	if !(Token{Value: value}).IsReference() {
		return ""
	}
	return strings.TrimPrefix(value, ReferencePrefix)
}

func (r *Registry) snapshot(tok *Token) Token {
	out := *tok
	out.Constraints = append([]Constraint(nil), tok.Constraints...)
	out.Relationships = Relationships{
		DependsOn: r.graph.dependencies(tok.Name),
		Generates: r.graph.dependents(tok.Name),
		Affects:   append([]string(nil), tok.Relationships.Affects...),
	}
	return out
}

func uniqueSorted(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			set[item] = struct{}{}
		}
	}
	return sortedSet(set)
}
