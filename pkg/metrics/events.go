package metrics

// Event names emitted by the interrupt engine and the turn gate.
const (
	EventEpisodeStart    = "interrupt_episode_start"
	EventEpisodeReplaced = "interrupt_episode_replaced"
	EventEpisodeCancel   = "interrupt_episode_cancel"
	EventDecision        = "interrupt_decision"
	EventCallbackPanic   = "interrupt_callback_panic"
	EventLateFinal       = "interrupt_late_final"
	EventTurnEmitError   = "turn_emit_error"
)

// Tag keys.
const (
	TagEpisodeID = "episode_id"
	TagDecision  = "decision"
	TagPath      = "path"
	TagTrigger   = "trigger"
	TagReason    = "reason"
	TagFrame     = "frame"
)
