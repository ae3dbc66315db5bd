package bargein

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/harunnryd/bargein/pkg/errorsx"
	"github.com/harunnryd/bargein/pkg/interrupt"
	"github.com/harunnryd/bargein/pkg/logging"
	"github.com/harunnryd/bargein/pkg/metrics"
	"github.com/harunnryd/bargein/pkg/observers"
	"github.com/harunnryd/bargein/pkg/redact"
	"github.com/harunnryd/bargein/pkg/runner"
	"github.com/harunnryd/bargein/pkg/turn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/metric"
)

// Result is one decision as delivered to the engine's callback.
type Result struct {
	Decision interrupt.Decision
	Reason   string
	Text     string
	At       time.Time
}

type Options struct {
	Config   Config
	Emitter  turn.InterruptEmitter
	StreamID string
	// OnDecision runs after the gate has emitted frames for a decision.
	OnDecision interrupt.DecisionFunc
	// Registry receives the Prometheus collectors; a private registry is created when nil.
	Registry *prometheus.Registry
	// Meter receives OpenTelemetry instruments; the global meter provider is used when nil.
	Meter metric.Meter
	// LogOutput defaults to stdout; EventsOutput overrides metrics.events_path.
	LogOutput    io.Writer
	EventsOutput io.Writer
	Scheduler    interrupt.Scheduler
}

// Engine wires the interrupt gate to logging, metrics and an optional /metrics endpoint.
type Engine struct {
	cfg      Config
	log      *slog.Logger
	gate     *turn.Gate
	asyncObs *metrics.AsyncObserver
	latency  *observers.DecisionLatencyObserver
	registry *prometheus.Registry
	events   io.Closer
	results  chan Result
	next     interrupt.DecisionFunc

	mu     sync.Mutex
	server *http.Server
}

func New(opts Options) (*Engine, error) {
	cfg := opts.Config
	redact.SetEnabled(cfg.Privacy.RedactPII)
	base := logging.InitLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, opts.LogOutput)

	e := &Engine{
		cfg:      cfg,
		log:      logging.NewComponentLogger(base, "bargein"),
		registry: opts.Registry,
		results:  make(chan Result, 64),
		next:     opts.OnDecision,
	}
	if e.registry == nil {
		e.registry = prometheus.NewRegistry()
	}

	namespace := cfg.Metrics.Namespace
	if namespace == "" {
		namespace = "bargein"
	}
	prom, err := metrics.NewPrometheusObserver(namespace, e.registry)
	if err != nil {
		return nil, errorsx.Wrapf(err, errorsx.ReasonConfigInvalid, "register metrics")
	}
	otelObs, err := metrics.NewOTelObserver(opts.Meter)
	if err != nil {
		return nil, errorsx.Wrapf(err, errorsx.ReasonConfigInvalid, "create otel instruments")
	}
	e.latency = observers.NewDecisionLatencyObserver(e.log)
	chain := []metrics.Observer{observers.NewLoggerObserver(base), e.latency, prom, otelObs}

	eventsOut := opts.EventsOutput
	if eventsOut == nil && cfg.Metrics.EventsPath != "" {
		f, err := os.OpenFile(cfg.Metrics.EventsPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, errorsx.Wrapf(err, errorsx.ReasonConfigInvalid, "open events file")
		}
		e.events = f
		eventsOut = f
	}
	if eventsOut != nil {
		chain = append(chain, metrics.NewJSONLObserver(eventsOut))
	}
	e.asyncObs = metrics.NewAsyncObserver(observers.NewMultiObserver(chain...), cfg.Metrics.AsyncBuffer)

	filterCfg := cfg.Interrupt.FilterConfig()
	filterCfg.OnDecision = e.onDecision
	filterCfg.Scheduler = opts.Scheduler
	gate, err := turn.NewGate(opts.Emitter, turn.GateOptions{
		StreamID: opts.StreamID,
		Filter:   filterCfg,
		Logger:   base,
		Observer: e.asyncObs,
	})
	if err != nil {
		e.closeOutputs()
		return nil, err
	}
	e.gate = gate

	e.log.Info("bargein_init",
		"environment", cfg.Environment,
		"validation_window_ms", gate.Filter().Window().Milliseconds(),
		"redact_pii", cfg.Privacy.RedactPII,
		"metrics_addr", cfg.Metrics.Addr,
	)
	return e, nil
}

func (e *Engine) Gate() *turn.Gate { return e.gate }

func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) Logger() *slog.Logger { return e.log }

func (e *Engine) Registry() *prometheus.Registry { return e.registry }

// Results streams decisions; it drops results when nobody reads.
func (e *Engine) Results() <-chan Result { return e.results }

func (e *Engine) LatencySummary() []observers.LatencySummary { return e.latency.Snapshot() }

func (e *Engine) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

func (e *Engine) onDecision(d interrupt.Decision, reason, text string) {
	select {
	case e.results <- Result{Decision: d, Reason: reason, Text: text, At: time.Now()}:
	default:
		e.log.Warn("bargein_result_dropped", "decision", d.String(), "reason", reason)
	}
	if e.next != nil {
		e.next(d, reason, text)
	}
}

// Drain stops the gate, flushes observers and closes outputs.
func (e *Engine) Drain() error {
	e.gate.Close()
	err := e.shutdownServer()
	e.asyncObs.Close()
	stats := e.gate.Stats()
	e.log.Info("bargein_drained",
		"pass", stats.Pass,
		"ignore", stats.Ignore,
		"interrupt", stats.Interrupt,
		"emit_errors", stats.EmitErrors,
		"dropped_events", e.asyncObs.Dropped(),
	)
	if cerr := e.closeOutputs(); err == nil {
		err = cerr
	}
	return err
}

func (e *Engine) closeOutputs() error {
	if e.events == nil {
		return nil
	}
	err := e.events.Close()
	e.events = nil
	return err
}

// Runner serves /metrics on metrics.addr until the context passed to Run ends,
// then drains the engine.
func (e *Engine) Runner() *runner.LifecycleRunner {
	return runner.NewLifecycleRunner(e, runner.Hooks{
		OnStart: e.startServer,
		OnStop:  func() { e.log.Info("bargein_stopped") },
	}, 5*time.Second)
}

func (e *Engine) startServer() error {
	addr := e.cfg.Metrics.Addr
	if addr == "" {
		return nil
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errorsx.Wrap(fmt.Errorf("listen %s: %w", addr, err), errorsx.ReasonMetricsServe)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.MetricsHandler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	e.mu.Lock()
	e.server = srv
	e.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.log.Error("metrics_serve_failed", "error", err, "reason_code", string(errorsx.ReasonMetricsServe))
		}
	}()
	e.log.Info("metrics_listening", "addr", ln.Addr().String())
	return nil
}

func (e *Engine) shutdownServer() error {
	e.mu.Lock()
	srv := e.server
	e.server = nil
	e.mu.Unlock()
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
