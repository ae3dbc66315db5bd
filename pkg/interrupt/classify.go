package interrupt

// Outcome is a classified transcript.
type Outcome struct {
	Decision Decision
	Reason   string
	Trigger  Trigger
}

// Classify applies the word-priority rules to tokens.
// Command words win over everything, an empty or filler-only utterance is ignored
// while speaking, anything else interrupts while speaking, and silence passes.
func Classify(tokens []string, ignore, command WordSet, speaking bool, path Path) Outcome {
	if len(tokens) == 0 {
		reason := "empty_transcription"
		if path == PathTimeout {
			reason = "timeout_empty_partial"
		}
		return Outcome{Decision: speakingOr(speaking, DecisionIgnore), Reason: reason, Trigger: TriggerEmpty}
	}

	for _, tok := range tokens {
		if command.Contains(tok) {
			return Outcome{
				Decision: DecisionInterrupt,
				Reason:   reasonFor(path, "command_word:"+tok),
				Trigger:  TriggerCommand,
			}
		}
	}

	if !speaking {
		return Outcome{Decision: DecisionPass, Reason: reasonFor(path, "agent_silent"), Trigger: TriggerSilent}
	}

	if !ignore.Covers(tokens) {
		return Outcome{Decision: DecisionInterrupt, Reason: reasonFor(path, "unclear_input"), Trigger: TriggerUnclear}
	}
	return Outcome{Decision: DecisionIgnore, Reason: reasonFor(path, "filler_only"), Trigger: TriggerFiller}
}

func speakingOr(speaking bool, d Decision) Decision {
	if speaking {
		return d
	}
	return DecisionPass
}

func reasonFor(path Path, base string) string {
	if path == PathTimeout {
		return "timeout_" + base
	}
	return base
}
