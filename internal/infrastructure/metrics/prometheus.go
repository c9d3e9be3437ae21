package metrics

import (
	"context"
	"net/http"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alexisbeaulieu97/tokenflow/internal/logger"
	"github.com/alexisbeaulieu97/tokenflow/internal/ports"
)

type metricKind int

const (
	kindCounter metricKind = iota
	kindGauge
	kindHistogram
)

type definition struct {
	name   string
	help   string
	kind   metricKind
	labels []string
}

var definitions = []definition{
	{name: ports.MetricBatchesTotal, help: "Total number of batches flushed to the style surface", kind: kindCounter},
	{name: ports.MetricBudgetOverruns, help: "Batches whose total apply time exceeded the frame budget", kind: kindCounter},
	{name: ports.MetricAppliedChanges, help: "Style keys written to the surface", kind: kindCounter, labels: []string{"domain"}},
	{name: ports.MetricTokenUpdates, help: "Token updates cascaded through the registry", kind: kindCounter, labels: []string{"domain"}},
	{name: ports.MetricA11yViolations, help: "Contrast pairs that failed validation", kind: kindCounter, labels: []string{"level"}},
	{name: ports.MetricRelayDeliveries, help: "Relay envelopes by outcome", kind: kindCounter, labels: []string{"status"}},
	{name: ports.MetricPendingChanges, help: "Changes waiting for the next flush", kind: kindGauge},
	{name: ports.MetricBatchDuration, help: "Total time to apply a batch in seconds", kind: kindHistogram},
	{name: ports.MetricDomainApplyDuration, help: "Time to apply one domain group in seconds", kind: kindHistogram, labels: []string{"domain"}},
}

// frameBuckets span sub-frame to several-frame durations.
var frameBuckets = []float64{0.001, 0.004, 0.008, 0.016, 0.033, 0.05, 0.1, 0.25, 0.5, 1}

// Collector adapts ports.MetricsCollector onto a private Prometheus registry.
type Collector struct {
	registry   *prometheus.Registry
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
	log        *logger.Logger
}

// NewCollector registers every standard metric on a fresh registry.
func NewCollector(log *logger.Logger) *Collector {
	c := &Collector{
		registry:   prometheus.NewRegistry(),
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		log:        log.WithField("component", "metrics"),
	}

	for _, def := range definitions {
		switch def.kind {
		case kindCounter:
			vec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: def.name, Help: def.help}, def.labels)
			c.registry.MustRegister(vec)
			c.counters[def.name] = vec
		case kindGauge:
			vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: def.name, Help: def.help}, def.labels)
			c.registry.MustRegister(vec)
			c.gauges[def.name] = vec
		case kindHistogram:
			vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: def.name, Help: def.help, Buckets: frameBuckets}, def.labels)
			c.registry.MustRegister(vec)
			c.histograms[def.name] = vec
		}
	}
	return c
}

// IncCounter increments a counter by one.
func (c *Collector) IncCounter(ctx context.Context, name string, labels map[string]string) {
	c.AddCounter(ctx, name, 1, labels)
}

// AddCounter increments a counter by value.
func (c *Collector) AddCounter(_ context.Context, name string, value float64, labels map[string]string) {
	vec, ok := c.counters[name]
	if !ok {
		c.unknown(name)
		return
	}
	counter, err := vec.GetMetricWith(prometheus.Labels(labels))
	if err != nil {
		c.log.WithField("metric", name).Error(err, "counter labels rejected")
		return
	}
	counter.Add(value)
}

// SetGauge sets a gauge.
func (c *Collector) SetGauge(_ context.Context, name string, value float64, labels map[string]string) {
	vec, ok := c.gauges[name]
	if !ok {
		c.unknown(name)
		return
	}
	gauge, err := vec.GetMetricWith(prometheus.Labels(labels))
	if err != nil {
		c.log.WithField("metric", name).Error(err, "gauge labels rejected")
		return
	}
	gauge.Set(value)
}

// ObserveHistogram records one observation.
func (c *Collector) ObserveHistogram(_ context.Context, name string, value float64, labels map[string]string) {
	vec, ok := c.histograms[name]
	if !ok {
		c.unknown(name)
		return
	}
	observer, err := vec.GetMetricWith(prometheus.Labels(labels))
	if err != nil {
		c.log.WithField("metric", name).Error(err, "histogram labels rejected")
		return
	}
	observer.Observe(value)
}

func (c *Collector) unknown(name string) {
	c.log.WithField("metric", name).Debug("ignoring unknown metric")
}

// Registry exposes the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Names lists the registered metric names, sorted.
func Names() []string {
	names := make([]string, len(definitions))
	for i, def := range definitions {
		names[i] = def.name
	}
	sort.Strings(names)
	return names
}
