// Package bridge is the change bridge: it feeds token edits through the
// registry cascade, the accessibility check and the preview engine, then
// relays the applied batch to other rendering contexts.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alexisbeaulieu97/tokenflow/internal/a11y"
	"github.com/alexisbeaulieu97/tokenflow/internal/generator"
	"github.com/alexisbeaulieu97/tokenflow/internal/logger"
	"github.com/alexisbeaulieu97/tokenflow/internal/ports"
	"github.com/alexisbeaulieu97/tokenflow/internal/preview"
	"github.com/alexisbeaulieu97/tokenflow/internal/relay"
	"github.com/alexisbeaulieu97/tokenflow/internal/token"
	"github.com/alexisbeaulieu97/tokenflow/pkg/diff"
)

// Options wires optional collaborators into a Service.
type Options struct {
	// AutoCorrect applies the validator's suggested text colors.
	AutoCorrect bool
	// Pairing selects the contrast pairs Validate checks; empty means a11y.PairAll.
	Pairing a11y.Pairing
	Relay   *relay.Relay
	Events  ports.EventPublisher
	Metrics ports.MetricsCollector
	Logger  *logger.Logger
}

// Service coordinates one registry and one preview engine.
type Service struct {
	registry    *token.Registry
	engine      *preview.Engine
	relay       *relay.Relay
	events      ports.EventPublisher
	metrics     ports.MetricsCollector
	log         *logger.Logger
	autoCorrect bool
	pairing     a11y.Pairing

	// mu orders registry writes with their submission to the engine.
	mu sync.Mutex
}

// New builds a Service.
func New(registry *token.Registry, engine *preview.Engine, opts Options) *Service {
	metrics := opts.Metrics
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	return &Service{
		registry:    registry,
		engine:      engine,
		relay:       opts.Relay,
		events:      opts.Events,
		metrics:     metrics,
		log:         opts.Logger.WithField("component", "bridge"),
		autoCorrect: opts.AutoCorrect,
		pairing:     opts.Pairing,
	}
}

func (s *Service) Registry() *token.Registry { return s.registry }

func (s *Service) Engine() *preview.Engine { return s.engine }

// Run drives the preview engine's frame loop until ctx is done. While it runs,
// changes are applied on the next frame; otherwise they are flushed inline.
func (s *Service) Run(ctx context.Context) error {
	return s.engine.Run(ctx)
}

// NotifyTokenChange updates one token and pushes the resulting changes to the
// surface. It returns every change that was applied.
func (s *Service) NotifyTokenChange(ctx context.Context, name, value string) ([]token.Change, error) {
	ctx = ensureCorrelation(ctx)
	log := s.log.WithFields(map[string]any{
		"token":          name,
		"correlation_id": ports.GetCorrelationID(ctx),
	})

	s.mu.Lock()
	changes, err := s.registry.Update(name, value)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	changes = s.withReferrers(changes)

	if touchesColor(changes) {
		report := s.Validate(ctx)
		if !report.AllValid && s.autoCorrect {
			corrected, err := s.applyCorrections(report.Corrections)
			if err != nil {
				log.Error(err, "applying contrast corrections")
			}
			changes = mergeChanges(changes, corrected)
		}
	}
	wait := s.engine.Submit(changes)
	s.mu.Unlock()

	result, err := wait(ctx)
	if err != nil {
		return changes, err
	}
	log.WithFields(map[string]any{
		"applied":     result.AppliedCount,
		"duration_ms": float64(result.Duration.Microseconds()) / 1000,
	}).Debug("token change applied")

	for _, c := range changes {
		s.metrics.IncCounter(ctx, ports.MetricTokenUpdates, map[string]string{"domain": c.Domain})
	}
	s.publish(ctx, ports.NewEvent(ports.EventTokenUpdated, map[string]interface{}{
		"token":   name,
		"value":   value,
		"changes": len(changes),
	}))

	s.relayChanges(ctx, changes)
	return changes, nil
}

// Validate runs the contrast check over the whole registry, reporting every
// violation as an event and a metric.
func (s *Service) Validate(ctx context.Context) a11y.Report {
	report := a11y.ValidateTokenSet(s.Resolved(), a11y.WithPairing(s.pairing))
	for _, v := range report.Violations {
		s.metrics.IncCounter(ctx, ports.MetricA11yViolations, map[string]string{"level": string(v.Level)})
		s.log.WithFields(map[string]any{
			"foreground": v.Foreground,
			"background": v.Background,
			"ratio":      v.Ratio,
		}).Warn(v.Message())
		s.publish(ctx, ports.NewEvent(ports.EventA11yViolation, map[string]interface{}{
			"foreground": v.Foreground,
			"background": v.Background,
			"ratio":      v.Ratio,
			"required":   v.Required,
			"level":      string(v.Level),
		}))
	}
	return report
}

// Resolved lists every resolvable token with its contrast constraint.
func (s *Service) Resolved() []a11y.Resolved {
	values := s.registry.ResolveAll()
	out := make([]a11y.Resolved, 0, len(values))
	for _, name := range s.registry.Names() {
		value, ok := values[name]
		if !ok {
			continue
		}
		res := a11y.Resolved{Name: name, Value: value}
		if tok, ok := s.registry.Get(name); ok {
			for _, c := range tok.Constraints {
				if c.Kind == token.ConstraintMinContrast {
					res.MinContrast = c.Min
					res.ContrastAgainst = c.Against
				}
			}
		}
		out = append(out, res)
	}
	return out
}

// LoadPalette replaces the registry with the tokens generated from base and
// writes every resolved token to the surface. Generator fallbacks are
// reported in the returned error but the palette is still loaded.
func (s *Service) LoadPalette(ctx context.Context, base generator.BaseInputs) error {
	set, genErrs := generator.GenerateAll(base, s.log)

	applied, err := s.replaceAll(ctx, func() error {
		s.registry.Reset()
		if err := s.registry.RegisterSet(set); err != nil {
			return fmt.Errorf("register palette: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.publish(ctx, ports.NewEvent(ports.EventPaletteLoaded, map[string]interface{}{
		"tokens":    applied,
		"fallbacks": len(genErrs),
	}))
	s.log.WithFields(map[string]any{"tokens": applied, "fallbacks": len(genErrs)}).Info("palette loaded")
	return errors.Join(genErrs...)
}

// Import replaces the registry with doc and rewrites the surface. A rejected
// document leaves both untouched.
func (s *Service) Import(ctx context.Context, doc token.Document) error {
	applied, err := s.replaceAll(ctx, func() error {
		return s.registry.Import(doc)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, ports.NewEvent(ports.EventPaletteLoaded, map[string]interface{}{"tokens": applied, "source": "import"}))
	return nil
}

// replaceAll runs load against the registry, then clears the surface and
// writes every resolvable token to it.
func (s *Service) replaceAll(ctx context.Context, load func() error) (int, error) {
	s.mu.Lock()
	if err := load(); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	s.engine.Clear()
	changes := s.resolvedChanges()
	wait := s.engine.Submit(changes)
	s.mu.Unlock()

	if _, err := wait(ctx); err != nil {
		return 0, err
	}
	return len(changes), nil
}

func (s *Service) resolvedChanges() []token.Change {
	values := s.registry.ResolveAll()
	changes := make([]token.Change, 0, len(values))
	for _, name := range s.registry.Names() {
		value, ok := values[name]
		if !ok {
			continue
		}
		tok, _ := s.registry.Get(name)
		changes = append(changes, token.Change{Name: name, Value: value, StyleKey: tok.StyleKey, Domain: tok.Domain})
	}
	return changes
}

// Comparison describes how the live registry differs from a document.
type Comparison struct {
	Changes []diff.Change `json:"changes"`
	Unified string        `json:"unified,omitempty"`
}

// Compare resolves doc without loading it and diffs its values and
// stylesheet against the live registry. label names doc in the unified diff.
func (s *Service) Compare(doc token.Document, label string) (Comparison, error) {
	before, err := s.registry.ResolveDocument(doc)
	if err != nil {
		return Comparison{}, err
	}
	after := s.registry.ResolveAll()

	return Comparison{
		Changes: diff.Values(before, after),
		Unified: diff.Unified(s.stylesheet(before), s.stylesheet(after), label, "live"),
	}, nil
}

func (s *Service) stylesheet(values map[string]string) string {
	props := make(map[string]string, len(values))
	for name, value := range values {
		props[s.registry.StyleKey(name)] = value
	}
	return preview.RenderProperties(props)
}

// EnterPreviewMode snapshots the surface.
func (s *Service) EnterPreviewMode(ctx context.Context) bool {
	return s.engine.EnterPreviewMode(ctx)
}

// ExitPreviewMode drops pending changes and restores the snapshot.
func (s *Service) ExitPreviewMode(ctx context.Context) bool {
	return s.engine.ExitPreviewMode(ctx)
}

func (s *Service) withReferrers(changes []token.Change) []token.Change {
	names := make([]string, len(changes))
	for i, c := range changes {
		names[i] = c.Name
	}
	return append(changes, s.registry.Referrers(names...)...)
}

func (s *Service) applyCorrections(corrections []a11y.Correction) ([]token.Change, error) {
	var out []token.Change
	var errs []error
	for _, c := range corrections {
		changes, err := s.registry.Correct(c.Token, c.Suggested)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s.log.WithFields(map[string]any{
			"token":     c.Token,
			"original":  c.Original,
			"corrected": c.Suggested,
			"ratio":     c.Ratio,
		}).Info("contrast corrected")
		out = append(out, s.withReferrers(changes)...)
	}
	return out, errors.Join(errs...)
}

func (s *Service) relayChanges(ctx context.Context, changes []token.Change) {
	if s.relay == nil || len(changes) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		id, err := s.relay.Send(ctx, changes)
		switch {
		case err == nil, errors.Is(err, relay.ErrNoSubscribers):
		default:
			s.log.WithFields(map[string]any{
				"envelope_id":    id,
				"correlation_id": ports.GetCorrelationID(ctx),
			}).Error(err, "relay failed")
		}
	}()
}

func (s *Service) publish(ctx context.Context, event ports.DomainEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.WithField("event_type", event.EventType()).Error(err, "publish failed")
	}
}

func ensureCorrelation(ctx context.Context) context.Context {
	if ports.GetCorrelationID(ctx) != "" {
		return ctx
	}
	return ports.WithCorrelationID(ctx, ports.GenerateCorrelationID())
}

func touchesColor(changes []token.Change) bool {
	for _, c := range changes {
		if c.Domain == generator.KindColor.String() || c.Domain == generator.KindComponent.String() {
			return true
		}
	}
	return false
}

// mergeChanges appends extra, replacing earlier entries for the same token.
func mergeChanges(changes, extra []token.Change) []token.Change {
	index := make(map[string]int, len(changes))
	for i, c := range changes {
		index[c.Name] = i
	}
	for _, c := range extra {
		if i, ok := index[c.Name]; ok {
			changes[i] = c
			continue
		}
		index[c.Name] = len(changes)
		changes = append(changes, c)
	}
	return changes
}
