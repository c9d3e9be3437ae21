package preview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/tokenflow/internal/generator"
	"github.com/alexisbeaulieu97/tokenflow/internal/logger"
	"github.com/alexisbeaulieu97/tokenflow/internal/ports"
	"github.com/alexisbeaulieu97/tokenflow/internal/token"
)

type recordedEvents struct {
	mu     sync.Mutex
	events []ports.DomainEvent
}

func (r *recordedEvents) Publish(_ context.Context, event ports.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordedEvents) Subscribe(string, ports.EventHandler) (ports.Subscription, error) {
	return nil, errors.New("not supported")
}

func (r *recordedEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *MemorySurface) {
	t.Helper()
	surface := NewMemorySurface()
	opts = append([]Option{WithLogger(logger.Discard())}, opts...)
	return NewEngine(surface, opts...), surface
}

func colorChange(name, value string) token.Change {
	return token.Change{Name: name, Value: value, StyleKey: "tf-" + name, Domain: "color"}
}

func spacingChange(name, value string) token.Change {
	return token.Change{Name: name, Value: value, StyleKey: "tf-" + name, Domain: "spacing"}
}

func TestEnqueueKeepsLastValueInFirstSeenOrder(t *testing.T) {
	engine, _ := newTestEngine(t)

	engine.Enqueue(colorChange("color-primary", "#111111"), spacingChange("spacing-base", "16px"))
	engine.Enqueue(colorChange("color-primary", "#222222"))

	pending := engine.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, "color-primary", pending[0].Name)
	assert.Equal(t, "#222222", pending[0].Value)
	assert.Equal(t, "spacing-base", pending[1].Name)
}

func TestFlushGroupsByDomainAndSynthesizesStates(t *testing.T) {
	events := &recordedEvents{}
	engine, surface := newTestEngine(t, WithEvents(events))

	engine.Enqueue(
		spacingChange("spacing-base", "20px"),
		colorChange("color-primary", "#3366CC"),
		colorChange("color-primary-hover", "#000000"),
	)

	result, err := engine.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"spacing", "color"}, result.Domains)
	// spacing-base, color-primary, hover from the batch, plus focus/light/dark.
	assert.Equal(t, 6, result.AppliedCount)

	v, _ := surface.Property("tf-color-primary-hover")
	assert.Equal(t, "#000000", v, "explicit state in the batch wins")

	want, err := generator.Catalog{}.Derive("color.lighten:0.05", "#3366CC")
	require.NoError(t, err)
	v, ok := surface.Property("tf-color-primary-focus")
	require.True(t, ok)
	assert.Equal(t, want, v)

	for _, suffix := range []string{"light", "dark"} {
		_, ok := surface.Property("tf-color-primary-" + suffix)
		assert.True(t, ok, suffix)
	}
	_, ok = surface.Property("tf-color-primary-hover-focus")
	assert.False(t, ok, "variants are not expanded again")

	samples := engine.Samples()
	require.Len(t, samples, 2)
	assert.Equal(t, "spacing", samples[0].Domain)
	assert.Equal(t, 1, samples[0].Changes)
	assert.Equal(t, "color", samples[1].Domain)
	assert.Equal(t, 5, samples[1].Changes)

	assert.Empty(t, engine.Pending())
	assert.Equal(t, []string{ports.EventBatchApplied}, events.types())
	assert.Equal(t, 1, engine.Stats().Batches)
}

func TestFlushEmptyBatchIsNoop(t *testing.T) {
	engine, surface := newTestEngine(t)

	result, err := engine.Flush(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.AppliedCount)
	assert.Zero(t, surface.Len())
	assert.Empty(t, engine.Samples())
}

func TestApplyBatchWaitsForRunLoop(t *testing.T) {
	engine, surface := newTestEngine(t, WithFrameInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()

	applyCtx, applyCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer applyCancel()
	result, err := engine.ApplyBatch(applyCtx, []token.Change{spacingChange("spacing-md", "16px")})
	require.NoError(t, err)
	assert.Equal(t, 1, result.AppliedCount)

	v, _ := surface.Property("tf-spacing-md")
	assert.Equal(t, "16px", v)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("run loop did not stop")
	}
}

func TestSubmitFlushesInlineWhenNotRunning(t *testing.T) {
	engine, surface := newTestEngine(t, WithFrameInterval(5*time.Millisecond))
	assert.False(t, engine.Running())

	wait := engine.Submit([]token.Change{spacingChange("spacing-md", "16px")})
	result, err := wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.AppliedCount)
	v, _ := surface.Property("tf-spacing-md")
	assert.Equal(t, "16px", v)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()
	require.Eventually(t, engine.Running, time.Second, time.Millisecond)

	applyCtx, applyCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer applyCancel()
	_, err = engine.Submit([]token.Change{spacingChange("spacing-md", "24px")})(applyCtx)
	require.NoError(t, err)
	v, _ = surface.Property("tf-spacing-md")
	assert.Equal(t, "24px", v)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("run loop did not stop")
	}
	assert.False(t, engine.Running())

	// Submissions after the loop stops must not wait for a frame that never comes.
	_, err = engine.Submit([]token.Change{spacingChange("spacing-md", "32px")})(applyCtx)
	require.NoError(t, err)
	v, _ = surface.Property("tf-spacing-md")
	assert.Equal(t, "32px", v)
}

func TestExitPreviewModeCancelsPendingAndRestores(t *testing.T) {
	events := &recordedEvents{}
	engine, surface := newTestEngine(t, WithEvents(events))
	surface.SetProperty("tf-color-primary", "#3366CC")

	ctx := context.Background()
	require.True(t, engine.EnterPreviewMode(ctx))
	assert.True(t, engine.Previewing())

	engine.Enqueue(colorChange("color-primary", "#FF0000"))
	_, err := engine.Flush(ctx)
	require.NoError(t, err)
	v, _ := surface.Property("tf-color-primary")
	assert.Equal(t, "#FF0000", v)

	errs := make(chan error, 1)
	go func() {
		_, err := engine.ApplyBatch(ctx, []token.Change{colorChange("color-secondary", "#00FF00")})
		errs <- err
	}()
	require.Eventually(t, func() bool { return len(engine.Pending()) == 1 }, time.Second, 5*time.Millisecond)

	require.True(t, engine.ExitPreviewMode(ctx))
	select {
	case err := <-errs:
		assert.ErrorIs(t, err, ErrBatchCancelled)
	case <-time.After(time.Second):
		t.Fatal("pending batch was not cancelled")
	}

	assert.Equal(t, map[string]string{"tf-color-primary": "#3366CC"}, surface.Snapshot())
	assert.False(t, engine.Previewing())
	assert.False(t, engine.ExitPreviewMode(ctx))
	assert.Equal(t, []string{ports.EventPreviewEntered, ports.EventBatchApplied, ports.EventPreviewExited}, events.types())
}

func TestEnterPreviewModeTwiceKeepsFirstSnapshot(t *testing.T) {
	engine, surface := newTestEngine(t)
	surface.SetProperty("tf-spacing-base", "16px")

	ctx := context.Background()
	require.True(t, engine.EnterPreviewMode(ctx))
	surface.SetProperty("tf-spacing-base", "24px")
	assert.False(t, engine.EnterPreviewMode(ctx))

	require.True(t, engine.ExitPreviewMode(ctx))
	v, _ := surface.Property("tf-spacing-base")
	assert.Equal(t, "16px", v)
}

func TestSampleRingEvictsOldest(t *testing.T) {
	ring := newSampleRing(3)
	for i := 1; i <= 5; i++ {
		ring.add(PerformanceSample{Changes: i, Duration: time.Duration(i) * time.Millisecond})
	}

	samples := ring.snapshot()
	require.Len(t, samples, 3)
	assert.Equal(t, 3, samples[0].Changes)
	assert.Equal(t, 5, samples[2].Changes)

	stats := summarize(samples)
	assert.Equal(t, 4*time.Millisecond, stats.Mean)
	assert.Equal(t, 5*time.Millisecond, stats.Max)
}

func TestBudgetOverrunIsCounted(t *testing.T) {
	engine, _ := newTestEngine(t, WithBudget(time.Nanosecond))
	engine.Enqueue(colorChange("color-primary", "#3366CC"))

	_, err := engine.Flush(context.Background())
	require.NoError(t, err)
	// Applying five properties cannot finish within a nanosecond.
	assert.Equal(t, 1, engine.Stats().BudgetOverruns)
}

func TestClearEmptiesSurfaceAndPending(t *testing.T) {
	t.Parallel()

	engine, surface := newTestEngine(t)
	engine.Enqueue(spacingChange("spacing-md", "16px"))
	_, err := engine.Flush(context.Background())
	require.NoError(t, err)
	engine.Enqueue(spacingChange("spacing-lg", "24px"))

	engine.Clear()

	assert.Zero(t, surface.Len())
	assert.Empty(t, engine.Pending())
}
