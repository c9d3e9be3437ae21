package preview

import (
	"sync"
	"time"
)

// DefaultSampleCapacity bounds the performance history.
const DefaultSampleCapacity = 100

// PerformanceSample is the time spent applying one domain group of a batch.
type PerformanceSample struct {
	Domain    string        `json:"domain"`
	Duration  time.Duration `json:"duration"`
	Changes   int           `json:"changes"`
	Timestamp time.Time     `json:"timestamp"`
}

// sampleRing keeps the most recent samples; the oldest is evicted when full.
type sampleRing struct {
	mu      sync.Mutex
	limit   int
	samples []PerformanceSample
}

func newSampleRing(limit int) *sampleRing {
	if limit <= 0 {
		limit = DefaultSampleCapacity
	}
	return &sampleRing{
		limit:   limit,
		samples: make([]PerformanceSample, 0, limit),
	}
}

func (r *sampleRing) add(sample PerformanceSample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.samples) == r.limit {
		copy(r.samples, r.samples[1:])
		r.samples[len(r.samples)-1] = sample
		return
	}
	r.samples = append(r.samples, sample)
}

func (r *sampleRing) snapshot() []PerformanceSample {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]PerformanceSample, len(r.samples))
	copy(out, r.samples)
	return out
}

// Stats summarizes the retained samples and the batch counters.
type Stats struct {
	Samples        int           `json:"samples"`
	Mean           time.Duration `json:"mean"`
	Max            time.Duration `json:"max"`
	Batches        int           `json:"batches"`
	BudgetOverruns int           `json:"budgetOverruns"`
}

func summarize(samples []PerformanceSample) Stats {
	stats := Stats{Samples: len(samples)}
	if len(samples) == 0 {
		return stats
	}
	var total time.Duration
	for _, s := range samples {
		total += s.Duration
		if s.Duration > stats.Max {
			stats.Max = s.Duration
		}
	}
	stats.Mean = total / time.Duration(len(samples))
	return stats
}
