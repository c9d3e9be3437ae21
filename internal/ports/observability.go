package ports

import "context"

// Standard metric names.
const (
	MetricBatchesTotal        = "tokenflow_batches_total"
	MetricBatchDuration       = "tokenflow_batch_duration_seconds"
	MetricDomainApplyDuration = "tokenflow_domain_apply_duration_seconds"
	MetricBudgetOverruns      = "tokenflow_budget_overruns_total"
	MetricAppliedChanges      = "tokenflow_applied_changes_total"
	MetricTokenUpdates        = "tokenflow_token_updates_total"
	MetricA11yViolations      = "tokenflow_a11y_violations_total"
	MetricRelayDeliveries     = "tokenflow_relay_deliveries_total"
	MetricPendingChanges      = "tokenflow_pending_changes"
)

// MetricsCollector records quantitative observability signals. Adapters may
// back onto Prometheus or any other sink. Label sets per metric:
//   - tokenflow_batches_total, tokenflow_budget_overruns_total: none
//   - tokenflow_domain_apply_duration_seconds{domain}
//   - tokenflow_applied_changes_total{domain}
//   - tokenflow_token_updates_total{domain}
//   - tokenflow_a11y_violations_total{level}
//   - tokenflow_relay_deliveries_total{status="acked|timeout|error"}
type MetricsCollector interface {
	IncCounter(ctx context.Context, name string, labels map[string]string)
	AddCounter(ctx context.Context, name string, value float64, labels map[string]string)
	SetGauge(ctx context.Context, name string, value float64, labels map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, labels map[string]string)
}

// NoopMetrics discards every observation.
type NoopMetrics struct{}

func (NoopMetrics) IncCounter(context.Context, string, map[string]string) {}

func (NoopMetrics) AddCounter(context.Context, string, float64, map[string]string) {}

func (NoopMetrics) SetGauge(context.Context, string, float64, map[string]string) {}

func (NoopMetrics) ObserveHistogram(context.Context, string, float64, map[string]string) {}
