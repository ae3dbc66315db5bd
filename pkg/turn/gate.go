package turn

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/harunnryd/bargein/pkg/errorsx"
	"github.com/harunnryd/bargein/pkg/frames"
	"github.com/harunnryd/bargein/pkg/interrupt"
	"github.com/harunnryd/bargein/pkg/logging"
	"github.com/harunnryd/bargein/pkg/metrics"
	"golang.org/x/time/rate"
)

// Emit failures usually repeat for every frame of a dead transport; the log is
// limited to this rate while counters and events still see each failure.
const (
	emitErrorLogEvery = time.Second
	emitErrorLogBurst = 3
)

type GateOptions struct {
	StreamID string
	// Filter configures the decision engine. Its OnDecision, if set, runs after
	// the gate has emitted frames for the decision.
	Filter   interrupt.Config
	Logger   *slog.Logger
	Observer metrics.Observer
}

// Stats counts decisions seen by a gate.
type Stats struct {
	Pass       int64
	Ignore     int64
	Interrupt  int64
	EmitErrors int64
}

// Gate sits between speech events and the agent's output pipeline. Interrupt
// decisions become start_interruption, flush and cancel frames; pass-through
// transcripts become text frames; fillers are swallowed.
type Gate struct {
	filter   *interrupt.Filter
	emit     InterruptEmitter
	streamID string
	pts      *frames.PTSGen
	log      *slog.Logger
	obs      metrics.Observer
	next     interrupt.DecisionFunc
	errLog   *rate.Limiter

	pass       atomic.Int64
	ignore     atomic.Int64
	interrupts atomic.Int64
	emitErrs   atomic.Int64
}

func NewGate(emitter InterruptEmitter, opts GateOptions) (*Gate, error) {
	obs := opts.Observer
	if obs == nil {
		obs = metrics.NoopObserver{}
	}
	g := &Gate{
		emit:     emitter,
		streamID: opts.StreamID,
		pts:      frames.NewPTSGen(),
		log:      logging.NewComponentLogger(opts.Logger, "turn"),
		obs:      obs,
		next:     opts.Filter.OnDecision,
		errLog:   rate.NewLimiter(rate.Every(emitErrorLogEvery), emitErrorLogBurst),
	}
	cfg := opts.Filter
	cfg.OnDecision = g.onDecision
	if cfg.Logger == nil {
		cfg.Logger = opts.Logger
	}
	if cfg.Observer == nil {
		cfg.Observer = obs
	}
	filter, err := interrupt.New(cfg)
	if err != nil {
		return nil, err
	}
	g.filter = filter
	return g, nil
}

func (g *Gate) Filter() *interrupt.Filter { return g.filter }

func (g *Gate) OnAgentSpeechStart() { g.filter.SetSpeaking(true) }

func (g *Gate) OnAgentSpeechEnd() { g.filter.SetSpeaking(false) }

func (g *Gate) OnUserSpeechStart() error { return g.filter.OnVADStart() }

func (g *Gate) OnInterim(text string) { g.filter.OnSTTPartial(text) }

func (g *Gate) OnFinal(text string) interrupt.Decision { return g.filter.OnSTTFinal(text) }

func (g *Gate) OnSpeechCancel() { g.filter.OnVADCancel() }

func (g *Gate) Close() { g.filter.Close() }

func (g *Gate) Stats() Stats {
	return Stats{
		Pass:       g.pass.Load(),
		Ignore:     g.ignore.Load(),
		Interrupt:  g.interrupts.Load(),
		EmitErrors: g.emitErrs.Load(),
	}
}

func (g *Gate) onDecision(d interrupt.Decision, reason, text string) {
	switch d {
	case interrupt.DecisionInterrupt:
		g.interrupts.Add(1)
		g.emitInterrupt(reason)
	case interrupt.DecisionPass:
		g.pass.Add(1)
		if text != "" {
			meta := map[string]string{
				frames.MetaSource:   "turn",
				frames.MetaDecision: d.String(),
				frames.MetaReason:   reason,
			}
			g.send(frames.NewTextFrame(g.streamID, g.pts.Next(g.streamID), text, meta))
		}
	case interrupt.DecisionIgnore:
		g.ignore.Add(1)
		g.log.Debug("turn_filler_ignored", "reason", reason)
	}
	if g.next != nil {
		g.next(d, reason, text)
	}
}

func (g *Gate) emitInterrupt(reason string) {
	meta := map[string]string{
		frames.MetaSource: "turn",
		frames.MetaReason: reason,
	}
	g.send(NewInterruptFrame(g.streamID, g.pts.Next(g.streamID), meta))
	g.send(NewFlushFrame(g.streamID, g.pts.Next(g.streamID), meta))
	g.send(NewCancelFrame(g.streamID, g.pts.Next(g.streamID), meta))
}

func (g *Gate) send(f frames.Frame) {
	if g.emit == nil {
		return
	}
	if err := g.emit.Emit(f); err != nil {
		err = errorsx.Wrap(err, errorsx.ReasonTransportSend)
		total := g.emitErrs.Add(1)
		if g.errLog.Allow() {
			g.log.Warn("turn_emit_failed",
				"frame", frameLabel(f),
				"error", err,
				"reason_code", string(errorsx.Reason(err)),
				"total", total,
			)
		}
		g.obs.RecordEvent(metrics.MetricsEvent{
			Name:  metrics.EventTurnEmitError,
			Time:  time.Now(),
			Value: 1,
			Tags:  map[string]string{metrics.TagFrame: frameLabel(f)},
		})
	}
}

func frameLabel(f frames.Frame) string {
	if cf, ok := f.(frames.ControlFrame); ok {
		return string(cf.Code())
	}
	return string(f.Kind())
}
