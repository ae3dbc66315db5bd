package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusObserver turns interrupt events into Prometheus series.
type PrometheusObserver struct {
	episodes  *prometheus.CounterVec
	decisions *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	panics    prometheus.Counter
	emitErrs  *prometheus.CounterVec
}

// NewPrometheusObserver registers its collectors on reg
// (prometheus.DefaultRegisterer when nil).
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &PrometheusObserver{
		episodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interrupt_episodes_total",
			Help:      "Interrupt episodes by lifecycle event (start, replaced, cancel, late_final)",
		}, []string{"event"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interrupt_decisions_total",
			Help:      "Interrupt decisions by decision, resolution path and trigger",
		}, []string{TagDecision, TagPath, TagTrigger}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "interrupt_decision_latency_ms",
			Help:      "Latency from VAD start to decision (ms)",
			Buckets:   prometheus.ExponentialBuckets(10, 1.6, 10),
		}, []string{TagPath}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interrupt_callback_panics_total",
			Help:      "Decision callbacks that panicked",
		}),
		emitErrs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turn_emit_errors_total",
			Help:      "Frames the turn gate failed to emit",
		}, []string{TagFrame}),
	}
	for _, c := range []prometheus.Collector{o.episodes, o.decisions, o.latency, o.panics, o.emitErrs} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *PrometheusObserver) RecordEvent(ev MetricsEvent) {
	switch ev.Name {
	case EventEpisodeStart:
		o.episodes.WithLabelValues("start").Inc()
	case EventEpisodeReplaced:
		o.episodes.WithLabelValues("replaced").Inc()
	case EventEpisodeCancel:
		o.episodes.WithLabelValues("cancel").Inc()
	case EventLateFinal:
		o.episodes.WithLabelValues("late_final").Inc()
	case EventDecision:
		path := ev.Tag(TagPath)
		o.decisions.WithLabelValues(ev.Tag(TagDecision), path, ev.Tag(TagTrigger)).Inc()
		if ev.Value >= 0 {
			o.latency.WithLabelValues(path).Observe(ev.Value)
		}
	case EventCallbackPanic:
		o.panics.Inc()
	case EventTurnEmitError:
		o.emitErrs.WithLabelValues(ev.Tag(TagFrame)).Inc()
	}
}
