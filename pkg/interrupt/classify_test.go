package interrupt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func defaultSets(t require.TestingT) (WordSet, WordSet) {
	ignore, err := NewWordSet(DefaultIgnoreWords)
	require.NoError(t, err)
	command, err := NewCommandSet(DefaultCommandWords)
	require.NoError(t, err)
	return ignore, command
}

func TestClassifyTable(t *testing.T) {
	ignore, command := defaultSets(t)
	tests := []struct {
		text     string
		speaking bool
		path     Path
		want     Decision
		reason   string
	}{
		{text: "okay", speaking: true, path: PathFinal, want: DecisionIgnore, reason: "filler_only"},
		{text: "yeah", speaking: false, path: PathFinal, want: DecisionPass, reason: "agent_silent"},
		{text: "no stop", speaking: true, path: PathFinal, want: DecisionInterrupt, reason: "command_word:no"},
		{text: "yeah wait a second", speaking: true, path: PathFinal, want: DecisionInterrupt, reason: "command_word:wait"},
		{text: "stop", speaking: false, path: PathFinal, want: DecisionInterrupt, reason: "command_word:stop"},
		{text: "tell me about pricing", speaking: true, path: PathFinal, want: DecisionInterrupt, reason: "unclear_input"},
		{text: "tell me about pricing", speaking: false, path: PathFinal, want: DecisionPass, reason: "agent_silent"},
		{text: "", speaking: true, path: PathFinal, want: DecisionIgnore, reason: "empty_transcription"},
		{text: "   ", speaking: false, path: PathFinal, want: DecisionPass, reason: "empty_transcription"},
		{text: "", speaking: true, path: PathTimeout, want: DecisionIgnore, reason: "timeout_empty_partial"},
		{text: "uh-huh", speaking: true, path: PathTimeout, want: DecisionIgnore, reason: "timeout_filler_only"},
		{text: "stop", speaking: true, path: PathTimeout, want: DecisionInterrupt, reason: "timeout_command_word:stop"},
		{text: "ye", speaking: true, path: PathTimeout, want: DecisionInterrupt, reason: "timeout_unclear_input"},
		{text: "got it, okay", speaking: true, path: PathFinal, want: DecisionIgnore, reason: "filler_only"},
		{text: "i", speaking: true, path: PathFinal, want: DecisionInterrupt, reason: "unclear_input"},
		{text: "see it", speaking: true, path: PathFinal, want: DecisionInterrupt, reason: "unclear_input"},
	}
	for _, tt := range tests {
		t.Run(string(tt.path)+"/"+tt.text, func(t *testing.T) {
			out := Classify(Tokenize(tt.text), ignore, command, tt.speaking, tt.path)
			assert.Equal(t, tt.want, out.Decision)
			assert.Equal(t, tt.reason, out.Reason)
		})
	}
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "PASS", DecisionPass.String())
	assert.Equal(t, "IGNORE", DecisionIgnore.String())
	assert.Equal(t, "INTERRUPT", DecisionInterrupt.String())
	assert.Equal(t, "UNKNOWN", Decision(42).String())
}

var (
	fillers  = []string{"yeah", "ok", "okay", "hmm", "uh", "huh", "right", "mhm"}
	commands = []string{"stop", "wait", "no", "cancel", "pause", "hold", "help"}
	others   = []string{"tell", "me", "about", "the", "price", "please", "second", "a"}
)

func TestProperty_FillerOnlyWhileSpeakingIgnored(t *testing.T) {
	ignore, command := defaultSets(t)
	rapid.Check(t, func(rt *rapid.T) {
		tokens := rapid.SliceOfN(rapid.SampledFrom(fillers), 1, 8).Draw(rt, "tokens")
		out := Classify(tokens, ignore, command, true, PathFinal)
		assert.Equal(rt, DecisionIgnore, out.Decision)
	})
}

func TestProperty_CommandAlwaysInterrupts(t *testing.T) {
	ignore, command := defaultSets(t)
	rapid.Check(t, func(rt *rapid.T) {
		pool := append(append([]string{}, fillers...), others...)
		tokens := rapid.SliceOfN(rapid.SampledFrom(pool), 0, 6).Draw(rt, "tokens")
		cmd := rapid.SampledFrom(commands).Draw(rt, "command")
		at := rapid.IntRange(0, len(tokens)).Draw(rt, "at")
		tokens = append(tokens[:at], append([]string{cmd}, tokens[at:]...)...)
		speaking := rapid.Bool().Draw(rt, "speaking")
		path := rapid.SampledFrom([]Path{PathFinal, PathTimeout}).Draw(rt, "path")

		out := Classify(tokens, ignore, command, speaking, path)
		assert.Equal(rt, DecisionInterrupt, out.Decision)
		assert.Equal(rt, TriggerCommand, out.Trigger)
	})
}

func TestProperty_SilentWithoutCommandPasses(t *testing.T) {
	ignore, command := defaultSets(t)
	rapid.Check(t, func(rt *rapid.T) {
		pool := append(append([]string{}, fillers...), others...)
		tokens := rapid.SliceOfN(rapid.SampledFrom(pool), 0, 8).Draw(rt, "tokens")
		out := Classify(tokens, ignore, command, false, PathFinal)
		assert.Equal(rt, DecisionPass, out.Decision)
	})
}

func TestProperty_PathsAgreeOnDecision(t *testing.T) {
	ignore, command := defaultSets(t)
	rapid.Check(t, func(rt *rapid.T) {
		pool := append(append(append([]string{}, fillers...), others...), commands...)
		text := strings.Join(rapid.SliceOfN(rapid.SampledFrom(pool), 0, 6).Draw(rt, "words"), " ")
		speaking := rapid.Bool().Draw(rt, "speaking")

		final := Classify(Tokenize(text), ignore, command, speaking, PathFinal)
		timeout := Classify(Tokenize(text), ignore, command, speaking, PathTimeout)
		assert.Equal(rt, final.Decision, timeout.Decision)
		assert.Equal(rt, final.Trigger, timeout.Trigger)
		if final.Trigger != TriggerEmpty {
			assert.Equal(rt, "timeout_"+final.Reason, timeout.Reason)
		}
	})
}

func TestProperty_PassOnlyWhenSilent(t *testing.T) {
	ignore, command := defaultSets(t)
	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.String().Draw(rt, "text")
		out := Classify(Tokenize(text), ignore, command, true, PathFinal)
		assert.NotEqual(rt, DecisionPass, out.Decision)
	})
}
