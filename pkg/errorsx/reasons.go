package errorsx

// ReasonCode is a short machine-readable error reason.
type ReasonCode string

const (
	ReasonUnknown ReasonCode = "unknown"

	ReasonConfigInvalid ReasonCode = "config_invalid"
	ReasonConfigLoad    ReasonCode = "config_load"

	ReasonTimerArm      ReasonCode = "timer_arm"
	ReasonCallbackPanic ReasonCode = "callback_panic"

	ReasonTransportSend ReasonCode = "transport_send"
	ReasonMetricsServe  ReasonCode = "metrics_serve"
)
