// Package preview batches token changes and applies them to a style surface
// once per frame, with a snapshot/restore preview mode.
package preview

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/alexisbeaulieu97/tokenflow/internal/color"
	"github.com/alexisbeaulieu97/tokenflow/internal/generator"
	"github.com/alexisbeaulieu97/tokenflow/internal/logger"
	"github.com/alexisbeaulieu97/tokenflow/internal/ports"
	"github.com/alexisbeaulieu97/tokenflow/internal/token"
)

const (
	DefaultFrameInterval = 16 * time.Millisecond
	DefaultBudget        = 100 * time.Millisecond
)

// ErrBatchCancelled is returned to ApplyBatch callers whose changes were dropped by ExitPreviewMode.
var ErrBatchCancelled = errors.New("preview batch cancelled")

// ErrEngineStopped is returned to waiters still pending when Run exits.
var ErrEngineStopped = errors.New("preview engine stopped")

// derivedStates are synthesized for color changes that arrive without them.
var derivedStates = []struct {
	suffix string
	id     string
}{
	{suffix: "hover", id: "color.darken:0.08"},
	{suffix: "focus", id: "color.lighten:0.05"},
	{suffix: "light", id: "color.lighten:0.15"},
	{suffix: "dark", id: "color.darken:0.15"},
}

// BatchResult reports one flush.
type BatchResult struct {
	Duration     time.Duration
	AppliedCount int
	Domains      []string
}

type waiter chan flushOutcome

func (w waiter) wait(ctx context.Context) (BatchResult, error) {
	select {
	case out := <-w:
		return out.result, out.err
	case <-ctx.Done():
		return BatchResult{}, ctx.Err()
	}
}

type flushOutcome struct {
	result BatchResult
	err    error
}

// Engine owns the pending batch and is the only writer to its surface.
type Engine struct {
	surface ports.StyleSurface
	log     *logger.Logger
	metrics ports.MetricsCollector
	events  ports.EventPublisher
	catalog generator.Catalog

	interval time.Duration
	budget   time.Duration
	now      func() time.Time

	mu         sync.Mutex
	pending    []token.Change
	positions  map[string]int
	waiters    []waiter
	previewing bool
	running    bool
	snapshot   map[string]string
	batches    int
	overruns   int

	flushMu sync.Mutex
	samples *sampleRing
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger injects a logger.
func WithLogger(log *logger.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithMetrics injects a metrics collector.
func WithMetrics(metrics ports.MetricsCollector) Option {
	return func(e *Engine) {
		if metrics != nil {
			e.metrics = metrics
		}
	}
}

// WithEvents injects an event publisher.
func WithEvents(events ports.EventPublisher) Option {
	return func(e *Engine) {
		e.events = events
	}
}

// WithFrameInterval overrides the flush tick used by Run.
func WithFrameInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithBudget overrides the per-batch time budget.
func WithBudget(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.budget = d
		}
	}
}

// WithSampleCapacity overrides the performance history size.
func WithSampleCapacity(n int) Option {
	return func(e *Engine) {
		e.samples = newSampleRing(n)
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine builds an engine writing to surface.
func NewEngine(surface ports.StyleSurface, opts ...Option) *Engine {
	e := &Engine{
		surface:   surface,
		metrics:   ports.NoopMetrics{},
		interval:  DefaultFrameInterval,
		budget:    DefaultBudget,
		now:       time.Now,
		positions: make(map[string]int),
		samples:   newSampleRing(DefaultSampleCapacity),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithField("component", "preview")
	return e
}

// Surface returns the surface the engine writes to.
func (e *Engine) Surface() ports.StyleSurface {
	return e.surface
}

func changeKey(c token.Change) string {
	if c.StyleKey != "" {
		return c.StyleKey
	}
	return c.Name
}

// Enqueue adds changes to the pending batch. A later change to the same style
// key replaces the earlier value but keeps its position.
func (e *Engine) Enqueue(changes ...token.Change) {
	e.mu.Lock()
	e.enqueueLocked(changes)
	pending := len(e.pending)
	e.mu.Unlock()

	e.metrics.SetGauge(context.Background(), ports.MetricPendingChanges, float64(pending), nil)
}

func (e *Engine) enqueueLocked(changes []token.Change) {
	for _, c := range changes {
		key := changeKey(c)
		if idx, ok := e.positions[key]; ok {
			e.pending[idx] = c
			continue
		}
		e.positions[key] = len(e.pending)
		e.pending = append(e.pending, c)
	}
}

// Pending returns a copy of the pending batch.
func (e *Engine) Pending() []token.Change {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]token.Change(nil), e.pending...)
}

// ApplyBatch enqueues changes and waits for the flush that applies them.
func (e *Engine) ApplyBatch(ctx context.Context, changes []token.Change) (BatchResult, error) {
	w := make(waiter, 1)

	e.mu.Lock()
	e.enqueueLocked(changes)
	e.waiters = append(e.waiters, w)
	e.mu.Unlock()

	return w.wait(ctx)
}

// Submit enqueues changes and returns the wait for the flush that applies
// them. While Run is active that is the next frame; otherwise wait flushes
// inline. Changes submitted in order reach the surface in that order.
func (e *Engine) Submit(changes []token.Change) func(context.Context) (BatchResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.enqueueLocked(changes)
	if !e.running {
		return e.Flush
	}
	w := make(waiter, 1)
	e.waiters = append(e.waiters, w)
	return w.wait
}

// Running reports whether Run is driving the frame loop.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Run drains the pending batch on every tick until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.mu.Lock()
	e.running = true
	e.mu.Unlock()

	for {
		select {
		case <-ticker.C:
			if _, err := e.Flush(ctx); err != nil && !errors.Is(err, context.Canceled) {
				e.log.Error(err, "flush failed")
			}
		case <-ctx.Done():
			e.mu.Lock()
			e.running = false
			waiters := e.waiters
			e.waiters = nil
			e.mu.Unlock()
			notify(waiters, flushOutcome{err: ErrEngineStopped})
			return ctx.Err()
		}
	}
}

// Flush applies the pending batch now. Concurrent flushes are serialized.
func (e *Engine) Flush(ctx context.Context) (BatchResult, error) {
	e.flushMu.Lock()
	defer e.flushMu.Unlock()

	if err := ctx.Err(); err != nil {
		return BatchResult{}, err
	}

	e.mu.Lock()
	batch := e.pending
	waiters := e.waiters
	e.pending = nil
	e.positions = make(map[string]int)
	e.waiters = nil
	e.mu.Unlock()

	if len(batch) == 0 {
		notify(waiters, flushOutcome{})
		return BatchResult{}, nil
	}

	result := e.apply(ctx, batch)
	notify(waiters, flushOutcome{result: result})
	return result, nil
}

func notify(waiters []waiter, out flushOutcome) {
	for _, w := range waiters {
		w <- out
	}
}

func (e *Engine) apply(ctx context.Context, batch []token.Change) BatchResult {
	inBatch := make(map[string]bool, len(batch))
	var domains []string
	groups := make(map[string][]token.Change)
	for _, c := range batch {
		inBatch[changeKey(c)] = true
		if _, seen := groups[c.Domain]; !seen {
			domains = append(domains, c.Domain)
		}
		groups[c.Domain] = append(groups[c.Domain], c)
	}

	result := BatchResult{Domains: domains}
	for _, domain := range domains {
		start := time.Now()
		applied := 0
		for _, c := range groups[domain] {
			e.surface.SetProperty(changeKey(c), c.Value)
			applied++
			if domain == generator.KindColor.String() {
				applied += e.synthesizeStates(c, inBatch)
			}
		}
		elapsed := time.Since(start)

		e.samples.add(PerformanceSample{Domain: domain, Duration: elapsed, Changes: applied, Timestamp: e.now()})
		labels := map[string]string{"domain": domain}
		e.metrics.ObserveHistogram(ctx, ports.MetricDomainApplyDuration, elapsed.Seconds(), labels)
		e.metrics.AddCounter(ctx, ports.MetricAppliedChanges, float64(applied), labels)

		result.Duration += elapsed
		result.AppliedCount += applied
	}

	e.metrics.IncCounter(ctx, ports.MetricBatchesTotal, nil)
	e.metrics.ObserveHistogram(ctx, ports.MetricBatchDuration, result.Duration.Seconds(), nil)
	e.metrics.SetGauge(ctx, ports.MetricPendingChanges, 0, nil)

	e.mu.Lock()
	e.batches++
	over := result.Duration > e.budget
	if over {
		e.overruns++
	}
	e.mu.Unlock()

	if over {
		e.metrics.IncCounter(ctx, ports.MetricBudgetOverruns, nil)
		e.log.WithFields(map[string]any{
			"duration_ms": float64(result.Duration.Microseconds()) / 1000,
			"budget_ms":   e.budget.Milliseconds(),
			"applied":     result.AppliedCount,
		}).Warn("batch exceeded frame budget")
	}

	e.publish(ctx, ports.NewEvent(ports.EventBatchApplied, map[string]interface{}{
		"applied":     result.AppliedCount,
		"domains":     strings.Join(domains, ","),
		"duration_ms": float64(result.Duration.Microseconds()) / 1000,
	}))
	return result
}

// synthesizeStates writes hover/focus/light/dark keys for a base color change
// unless the batch already carries them.
func (e *Engine) synthesizeStates(c token.Change, inBatch map[string]bool) int {
	if !color.Valid(c.Value) || isVariant(c.Name) {
		return 0
	}

	written := 0
	base := changeKey(c)
	for _, state := range derivedStates {
		key := base + "-" + state.suffix
		if inBatch[key] {
			continue
		}
		value, err := e.catalog.Derive(state.id, c.Value)
		if err != nil {
			e.log.WithFields(map[string]any{"token": c.Name, "generator_id": state.id}).Error(err, "derived state failed")
			continue
		}
		e.surface.SetProperty(key, value)
		written++
	}
	return written
}

func isVariant(name string) bool {
	for _, suffix := range generator.ColorVariantSuffixes() {
		if strings.HasSuffix(name, "-"+suffix) {
			return true
		}
	}
	return false
}

// EnterPreviewMode snapshots the surface. It reports false when preview mode
// was already active; the first snapshot is kept.
func (e *Engine) EnterPreviewMode(ctx context.Context) bool {
	e.flushMu.Lock()
	e.mu.Lock()
	if e.previewing {
		e.mu.Unlock()
		e.flushMu.Unlock()
		return false
	}
	e.previewing = true
	e.snapshot = e.surface.Snapshot()
	size := len(e.snapshot)
	e.mu.Unlock()
	e.flushMu.Unlock()

	e.publish(ctx, ports.NewEvent(ports.EventPreviewEntered, map[string]interface{}{"properties": size}))
	return true
}

// ExitPreviewMode drops the pending batch and restores the snapshot. It
// reports false when preview mode was not active.
func (e *Engine) ExitPreviewMode(ctx context.Context) bool {
	e.flushMu.Lock()
	e.mu.Lock()
	if !e.previewing {
		e.mu.Unlock()
		e.flushMu.Unlock()
		return false
	}
	dropped := len(e.pending)
	waiters := e.waiters
	e.pending = nil
	e.positions = make(map[string]int)
	e.waiters = nil
	snapshot := e.snapshot
	e.snapshot = nil
	e.previewing = false
	e.surface.Restore(snapshot)
	e.mu.Unlock()
	e.flushMu.Unlock()

	notify(waiters, flushOutcome{err: ErrBatchCancelled})
	e.publish(ctx, ports.NewEvent(ports.EventPreviewExited, map[string]interface{}{"dropped": dropped}))
	return true
}

// Clear empties the surface and drops the pending batch. Waiters are left
// in place and receive the next flush.
func (e *Engine) Clear() {
	e.flushMu.Lock()
	e.mu.Lock()
	e.pending = nil
	e.positions = make(map[string]int)
	e.surface.Restore(map[string]string{})
	e.mu.Unlock()
	e.flushMu.Unlock()
}

// Previewing reports whether preview mode is active.
func (e *Engine) Previewing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.previewing
}

// Samples returns the retained performance samples, oldest first.
func (e *Engine) Samples() []PerformanceSample {
	return e.samples.snapshot()
}

// Stats summarizes the retained samples.
func (e *Engine) Stats() Stats {
	stats := summarize(e.samples.snapshot())
	e.mu.Lock()
	stats.Batches = e.batches
	stats.BudgetOverruns = e.overruns
	e.mu.Unlock()
	return stats
}

// Budget is the per-batch time budget.
func (e *Engine) Budget() time.Duration {
	return e.budget
}

func (e *Engine) publish(ctx context.Context, event ports.DomainEvent) {
	if e.events == nil {
		return
	}
	if err := e.events.Publish(ctx, event); err != nil {
		e.log.WithField("event_type", event.EventType()).Error(err, "publish failed")
	}
}
