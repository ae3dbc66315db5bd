package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/harunnryd/bargein/pkg/metrics"

// OTelObserver records interrupt events on an OpenTelemetry meter.
type OTelObserver struct {
	episodes  metric.Int64Counter
	decisions metric.Int64Counter
	latency   metric.Float64Histogram
	panics    metric.Int64Counter
	emitErrs  metric.Int64Counter
}

// NewOTelObserver creates instruments on meter, or on the global provider when meter is nil.
func NewOTelObserver(meter metric.Meter) (*OTelObserver, error) {
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}
	o := &OTelObserver{}
	var err error
	if o.episodes, err = meter.Int64Counter("interrupt.episodes",
		metric.WithDescription("Interrupt episodes by lifecycle event"),
		metric.WithUnit("{episode}")); err != nil {
		return nil, err
	}
	if o.decisions, err = meter.Int64Counter("interrupt.decisions",
		metric.WithDescription("Interrupt decisions by decision, path and trigger"),
		metric.WithUnit("{decision}")); err != nil {
		return nil, err
	}
	if o.latency, err = meter.Float64Histogram("interrupt.decision.latency",
		metric.WithDescription("Latency from VAD start to decision"),
		metric.WithUnit("ms")); err != nil {
		return nil, err
	}
	if o.panics, err = meter.Int64Counter("interrupt.callback.panics",
		metric.WithDescription("Decision callbacks that panicked"),
		metric.WithUnit("{panic}")); err != nil {
		return nil, err
	}
	if o.emitErrs, err = meter.Int64Counter("turn.emit.errors",
		metric.WithDescription("Frames the turn gate failed to emit"),
		metric.WithUnit("{frame}")); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *OTelObserver) RecordEvent(ev MetricsEvent) {
	ctx := context.Background()
	switch ev.Name {
	case EventEpisodeStart:
		o.episodes.Add(ctx, 1, metric.WithAttributes(attribute.String("event", "start")))
	case EventEpisodeReplaced:
		o.episodes.Add(ctx, 1, metric.WithAttributes(attribute.String("event", "replaced")))
	case EventEpisodeCancel:
		o.episodes.Add(ctx, 1, metric.WithAttributes(attribute.String("event", "cancel")))
	case EventLateFinal:
		o.episodes.Add(ctx, 1, metric.WithAttributes(attribute.String("event", "late_final")))
	case EventDecision:
		path := attribute.String(TagPath, ev.Tag(TagPath))
		o.decisions.Add(ctx, 1, metric.WithAttributes(
			attribute.String(TagDecision, ev.Tag(TagDecision)),
			path,
			attribute.String(TagTrigger, ev.Tag(TagTrigger)),
		))
		if ev.Value >= 0 {
			o.latency.Record(ctx, ev.Value, metric.WithAttributes(path))
		}
	case EventCallbackPanic:
		o.panics.Add(ctx, 1)
	case EventTurnEmitError:
		o.emitErrs.Add(ctx, 1, metric.WithAttributes(attribute.String(TagFrame, ev.Tag(TagFrame))))
	}
}
