package observers

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/harunnryd/bargein/pkg/metrics"
)

// LatencySummary aggregates decision latency for one decision/path pair.
type LatencySummary struct {
	Decision string
	Path     string
	Count    int64
	TotalMS  float64
	MaxMS    float64
}

func (s LatencySummary) AvgMS() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.TotalMS / float64(s.Count)
}

// DecisionLatencyObserver keeps running latency totals per decision and path.
// Decisions made without an open episode carry no latency and are skipped.
type DecisionLatencyObserver struct {
	mu      sync.Mutex
	summary map[string]*LatencySummary
	log     *slog.Logger
}

func NewDecisionLatencyObserver(log *slog.Logger) *DecisionLatencyObserver {
	if log == nil {
		log = slog.Default()
	}
	return &DecisionLatencyObserver{
		summary: make(map[string]*LatencySummary),
		log:     log,
	}
}

func (o *DecisionLatencyObserver) RecordEvent(ev metrics.MetricsEvent) {
	if ev.Name != metrics.EventDecision || ev.Value < 0 {
		return
	}
	decision := ev.Tag(metrics.TagDecision)
	path := ev.Tag(metrics.TagPath)
	key := decision + "/" + path

	o.mu.Lock()
	s := o.summary[key]
	if s == nil {
		s = &LatencySummary{Decision: decision, Path: path}
		o.summary[key] = s
	}
	s.Count++
	s.TotalMS += ev.Value
	if ev.Value > s.MaxMS {
		s.MaxMS = ev.Value
	}
	o.mu.Unlock()
}

// Snapshot returns the summaries sorted by decision then path.
func (o *DecisionLatencyObserver) Snapshot() []LatencySummary {
	o.mu.Lock()
	out := make([]LatencySummary, 0, len(o.summary))
	for _, s := range o.summary {
		out = append(out, *s)
	}
	o.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Decision != out[j].Decision {
			return out[i].Decision < out[j].Decision
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// Flush logs the current summaries.
func (o *DecisionLatencyObserver) Flush() error {
	for _, s := range o.Snapshot() {
		o.log.Info("decision_latency",
			"decision", s.Decision,
			"path", s.Path,
			"count", s.Count,
			"avg_ms", s.AvgMS(),
			"max_ms", s.MaxMS,
		)
	}
	return nil
}
