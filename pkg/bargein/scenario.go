package bargein

import (
	"context"
	"fmt"
	"time"

	"github.com/harunnryd/bargein/pkg/configutil"
	"github.com/harunnryd/bargein/pkg/errorsx"
	"github.com/harunnryd/bargein/pkg/interrupt"
	"github.com/spf13/viper"
)

// Scenario scripts one episode: agent state, partial transcripts and an optional final.
type Scenario struct {
	Name         string   `mapstructure:"name"`
	Speaking     bool     `mapstructure:"speaking"`
	Partials     []string `mapstructure:"partials"`
	PartialGapMS int      `mapstructure:"partial_gap_ms"`
	// Final nil means no final transcript; the episode resolves on timeout.
	Final        *string `mapstructure:"final"`
	FinalDelayMS int     `mapstructure:"final_delay_ms"`
}

var scenarioSchema = configutil.Schema{
	Required: []string{"name", "speaking"},
	Optional: []string{"partials", "partial_gap_ms", "final", "final_delay_ms"},
	Lists:    []string{"partials"},
}

func strPtr(s string) *string { return &s }

// DefaultScenarios mirror the reference walkthrough: fillers, commands and timeouts.
func DefaultScenarios() []Scenario {
	return []Scenario{
		{Name: "filler while speaking", Speaking: true, Final: strPtr("okay"), FinalDelayMS: 100},
		{Name: "affirmation while silent", Speaking: false, Final: strPtr("yeah"), FinalDelayMS: 100},
		{Name: "interrupt while speaking", Speaking: true, Final: strPtr("no stop"), FinalDelayMS: 100},
		{Name: "mixed while speaking", Speaking: true, Final: strPtr("yeah wait a second"), FinalDelayMS: 100},
		{Name: "filler partials then timeout", Speaking: true, Partials: []string{"ye", "yeah"}},
		{Name: "command partials then timeout", Speaking: true, Partials: []string{"sto", "stop"}},
	}
}

// LoadScenarios reads a "scenarios" list from a config file.
func LoadScenarios(path string) ([]Scenario, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errorsx.Wrap(fmt.Errorf("read scenarios: %w", err), errorsx.ReasonConfigLoad)
	}
	raw, ok := v.Get("scenarios").([]any)
	if !ok || len(raw) == 0 {
		return nil, errorsx.Wrap(fmt.Errorf("%s: no scenarios", path), errorsx.ReasonConfigInvalid)
	}
	out := make([]Scenario, 0, len(raw))
	for i, item := range raw {
		settings, ok := item.(map[string]any)
		if !ok {
			return nil, errorsx.Wrap(fmt.Errorf("scenario %d: expected a mapping", i), errorsx.ReasonConfigInvalid)
		}
		if err := configutil.ValidateSettings(settings, scenarioSchema); err != nil {
			return nil, errorsx.Wrap(fmt.Errorf("scenario %d: %w", i, err), errorsx.ReasonConfigInvalid)
		}
		var sc Scenario
		if err := configutil.DecodeSettings(settings, &sc); err != nil {
			return nil, errorsx.Wrap(fmt.Errorf("scenario %d: %w", i, err), errorsx.ReasonConfigInvalid)
		}
		out = append(out, sc)
	}
	return out, nil
}

// ScenarioResult is the decision an episode resolved to.
type ScenarioResult struct {
	Scenario Scenario
	Result   Result
	Returned *interrupt.Decision
	Elapsed  time.Duration
}

// RunScenario drives the engine's gate through sc and waits for its decision.
// Returned is set when the decision came back synchronously from the final transcript.
func (e *Engine) RunScenario(ctx context.Context, sc Scenario) (ScenarioResult, error) {
	e.drainResults()
	gate := e.gate
	if sc.Speaking {
		gate.OnAgentSpeechStart()
	} else {
		gate.OnAgentSpeechEnd()
	}

	start := time.Now()
	if err := gate.OnUserSpeechStart(); err != nil {
		return ScenarioResult{}, err
	}
	gap := configutil.MillisValue(sc.PartialGapMS, 50*time.Millisecond)
	for _, p := range sc.Partials {
		if err := sleepCtx(ctx, gap); err != nil {
			gate.OnSpeechCancel()
			return ScenarioResult{}, err
		}
		gate.OnInterim(p)
	}

	res := ScenarioResult{Scenario: sc}
	if sc.Final != nil {
		if err := sleepCtx(ctx, time.Duration(sc.FinalDelayMS)*time.Millisecond); err != nil {
			gate.OnSpeechCancel()
			return ScenarioResult{}, err
		}
		d := gate.OnFinal(*sc.Final)
		res.Returned = &d
	}

	wait := gate.Filter().Window() + time.Second
	select {
	case r := <-e.results:
		res.Result = r
		res.Elapsed = r.At.Sub(start)
	case <-time.After(wait):
		return res, fmt.Errorf("scenario %q: no decision within %s", sc.Name, wait)
	case <-ctx.Done():
		gate.OnSpeechCancel()
		return res, ctx.Err()
	}
	return res, nil
}

func (e *Engine) drainResults() {
	for {
		select {
		case <-e.results:
		default:
			return
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
