package observers

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/harunnryd/bargein/pkg/metrics"
)

func decisionEvent(decision, path string, ms float64) metrics.MetricsEvent {
	return metrics.MetricsEvent{
		Name:  metrics.EventDecision,
		Value: ms,
		Tags:  map[string]string{metrics.TagDecision: decision, metrics.TagPath: path},
	}
}

func TestDecisionLatencyObserverAggregates(t *testing.T) {
	var buf bytes.Buffer
	obs := NewDecisionLatencyObserver(slog.New(slog.NewTextHandler(&buf, nil)))
	obs.RecordEvent(decisionEvent("IGNORE", "final", 100))
	obs.RecordEvent(decisionEvent("IGNORE", "final", 50))
	obs.RecordEvent(decisionEvent("INTERRUPT", "timeout", 210))
	obs.RecordEvent(decisionEvent("PASS", "final", -1))
	obs.RecordEvent(metrics.MetricsEvent{Name: metrics.EventEpisodeStart, Value: 5})

	snap := obs.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 summaries, got %+v", snap)
	}
	if snap[0].Decision != "IGNORE" || snap[0].Count != 2 || snap[0].AvgMS() != 75 || snap[0].MaxMS != 100 {
		t.Fatalf("unexpected IGNORE summary %+v", snap[0])
	}
	if snap[1].Path != "timeout" || snap[1].MaxMS != 210 {
		t.Fatalf("unexpected INTERRUPT summary %+v", snap[1])
	}

	if err := obs.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if !strings.Contains(buf.String(), "decision_latency") {
		t.Fatalf("expected summary log, got %q", buf.String())
	}
}

func TestMultiObserverFansOutAndFlushes(t *testing.T) {
	mem := metrics.NewMemoryObserver()
	lat := NewDecisionLatencyObserver(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	multi := NewMultiObserver(mem, nil, lat)

	multi.RecordEvent(decisionEvent("INTERRUPT", "final", 20))
	if mem.Count(metrics.EventDecision) != 1 {
		t.Fatalf("memory observer missed the event")
	}
	if len(lat.Snapshot()) != 1 {
		t.Fatalf("latency observer missed the event")
	}
	if err := multi.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func TestLoggerObserverWritesDebug(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	NewLoggerObserver(log).RecordEvent(decisionEvent("PASS", "final", 3))
	out := buf.String()
	if !strings.Contains(out, "name=interrupt_decision") || !strings.Contains(out, "decision=PASS") {
		t.Fatalf("unexpected log %q", out)
	}
}
