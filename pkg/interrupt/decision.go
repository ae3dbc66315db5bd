package interrupt

// Decision is the outcome of one episode.
type Decision int

const (
	// DecisionPass forwards the utterance as normal input; only when the agent is silent.
	DecisionPass Decision = iota
	// DecisionIgnore drops a filler heard while the agent is speaking.
	DecisionIgnore
	// DecisionInterrupt asks the agent to stop speaking.
	DecisionInterrupt
)

func (d Decision) String() string {
	switch d {
	case DecisionPass:
		return "PASS"
	case DecisionIgnore:
		return "IGNORE"
	case DecisionInterrupt:
		return "INTERRUPT"
	default:
		return "UNKNOWN"
	}
}

// Path identifies how an episode was resolved.
type Path string

const (
	PathFinal   Path = "final"
	PathTimeout Path = "timeout"
)

// Trigger is a low-cardinality label for what drove a decision.
type Trigger string

const (
	TriggerEmpty   Trigger = "empty"
	TriggerCommand Trigger = "command"
	TriggerFiller  Trigger = "filler"
	TriggerUnclear Trigger = "unclear"
	TriggerSilent  Trigger = "silent"
)

// DecisionFunc receives every decision with its reason and the transcript it was made from.
type DecisionFunc func(decision Decision, reason, text string)
