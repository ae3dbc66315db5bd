package configutil

import (
	"errors"
	"strings"
	"testing"
	"time"
)

type scenarioSettings struct {
	Name         string        `mapstructure:"name"`
	Speaking     bool          `mapstructure:"speaking"`
	Partials     []string      `mapstructure:"partials"`
	FinalDelayMS int           `mapstructure:"final_delay_ms"`
	Wait         time.Duration `mapstructure:"wait"`
}

func TestDecodeSettingsNormalizesKeys(t *testing.T) {
	var out scenarioSettings
	err := DecodeSettings(map[string]any{
		"Name":           "filler",
		"speaking":       "true",
		"partials":       []any{"ye", "yeah"},
		"final-delay-ms": "100",
		"wait":           "350ms",
	}, &out)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Name != "filler" || !out.Speaking || out.FinalDelayMS != 100 {
		t.Fatalf("unexpected decode %+v", out)
	}
	if len(out.Partials) != 2 || out.Partials[1] != "yeah" {
		t.Fatalf("unexpected partials %v", out.Partials)
	}
	if out.Wait != 350*time.Millisecond {
		t.Fatalf("expected 350ms, got %s", out.Wait)
	}
}

func TestValidateSettings(t *testing.T) {
	schema := Schema{Required: []string{"name", "speaking"}, Optional: []string{"final"}}
	if err := ValidateSettings(map[string]any{"Name": "x", "speaking": true}, schema); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	err := ValidateSettings(map[string]any{"name": " ", "extra": 1}, schema)
	if err == nil {
		t.Fatalf("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "missing: name, speaking") || !strings.Contains(msg, "unknown: extra") {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestValueHelpers(t *testing.T) {
	if got := MillisValue(0, time.Second); got != time.Second {
		t.Fatalf("expected fallback, got %s", got)
	}
	if got := MillisValue(250, time.Second); got != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %s", got)
	}
	fallback := []string{"stop"}
	if got := StringsValue(nil, fallback); len(got) != 1 || got[0] != "stop" {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := StringsValue([]string{" wait ", ""}, fallback); len(got) != 1 || got[0] != "wait" {
		t.Fatalf("expected trimmed entries, got %v", got)
	}
	if err := RequireString(" ", "metrics.addr"); err == nil {
		t.Fatalf("expected required error")
	}
}

func TestValidateSettingsLists(t *testing.T) {
	schema := Schema{Required: []string{"name"}, Optional: []string{"partials"}, Lists: []string{"partials"}}
	if err := ValidateSettings(map[string]any{"name": "x", "partials": []any{"sto", "stop"}}, schema); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	err := ValidateSettings(map[string]any{"name": "x", "partials": "stop"}, schema)
	var serr *SchemaError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *SchemaError, got %T", err)
	}
	if len(serr.NotList) != 1 || serr.NotList[0] != "partials" || len(serr.Missing) != 0 {
		t.Fatalf("unexpected schema error %+v", serr)
	}
}
