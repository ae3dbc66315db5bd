// Package interrupt decides whether user speech heard while the agent talks is a
// filler, a command to stop, or (when the agent is silent) ordinary input.
//
// A Filter tracks at most one episode at a time. An episode opens on a VAD start,
// collects partial transcripts, and resolves exactly once: on the final transcript or
// when the validation window elapses, whichever comes first.
package interrupt

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harunnryd/bargein/pkg/errorsx"
	"github.com/harunnryd/bargein/pkg/logging"
	"github.com/harunnryd/bargein/pkg/metrics"
	"github.com/harunnryd/bargein/pkg/redact"
)

const (
	DefaultValidationWindow = 200 * time.Millisecond
	MinValidationWindow     = 50 * time.Millisecond
)

var ErrTimerUnavailable = errors.New("validation timer could not be armed")

type Config struct {
	// IgnoreWords and CommandWords fall back to the defaults when nil.
	// An empty non-nil slice means an empty set.
	IgnoreWords  []string
	CommandWords []string

	// ValidationWindow defaults to 200ms and is never below MinValidationWindow.
	ValidationWindow time.Duration

	OnDecision DecisionFunc

	Logger    *slog.Logger
	Observer  metrics.Observer
	Scheduler Scheduler
}

type Filter struct {
	mu        sync.Mutex
	speaking  bool
	pending   bool
	buffer    string
	gen       uint64
	timer     Timer
	episodeID string
	startedAt time.Time

	// timedOut holds the decision of an episode the timer resolved, so the
	// final transcript for that utterance does not decide a second time.
	timedOut   bool
	timeoutDec Decision
	timeoutID  string

	ignore     WordSet
	command    WordSet
	window     time.Duration
	onDecision DecisionFunc
	sched      Scheduler
	log        *slog.Logger
	obs        metrics.Observer
	now        func() time.Time
}

// episode is what a resolution needs after the lock is released.
type episode struct {
	id        string
	startedAt time.Time
	speaking  bool
}

func New(cfg Config) (*Filter, error) {
	ignoreWords := cfg.IgnoreWords
	if ignoreWords == nil {
		ignoreWords = DefaultIgnoreWords
	}
	commandWords := cfg.CommandWords
	if commandWords == nil {
		commandWords = DefaultCommandWords
	}
	ignore, err := NewWordSet(ignoreWords)
	if err != nil {
		return nil, errorsx.Wrapf(err, errorsx.ReasonConfigInvalid, "ignore words")
	}
	command, err := NewCommandSet(commandWords)
	if err != nil {
		return nil, errorsx.Wrapf(err, errorsx.ReasonConfigInvalid, "command words")
	}

	window := cfg.ValidationWindow
	if window == 0 {
		window = DefaultValidationWindow
	}
	if window < MinValidationWindow {
		window = MinValidationWindow
	}

	sched := cfg.Scheduler
	if sched == nil {
		sched = wallClock{}
	}
	obs := cfg.Observer
	if obs == nil {
		obs = metrics.NoopObserver{}
	}

	return &Filter{
		ignore:     ignore,
		command:    command,
		window:     window,
		onDecision: cfg.OnDecision,
		sched:      sched,
		log:        logging.NewComponentLogger(cfg.Logger, "interrupt"),
		obs:        obs,
		now:        time.Now,
	}, nil
}

func (f *Filter) Window() time.Duration { return f.window }

func (f *Filter) SetSpeaking(speaking bool) {
	f.mu.Lock()
	f.speaking = speaking
	f.mu.Unlock()
}

func (f *Filter) Speaking() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.speaking
}

func (f *Filter) Pending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

// OnVADStart opens a new episode and arms the validation timer.
// A pending episode is discarded without a decision.
func (f *Filter) OnVADStart() error {
	f.mu.Lock()
	replacedID := ""
	if f.pending {
		replacedID = f.episodeID
	}
	f.clearLocked()

	gen := f.gen
	timer := f.sched.AfterFunc(f.window, func() { f.onTimeout(gen) })
	if timer == nil {
		f.mu.Unlock()
		f.logReplaced(replacedID, "")
		f.log.Error("interrupt_timer_unavailable", "window_ms", f.window.Milliseconds())
		return errorsx.Wrap(ErrTimerUnavailable, errorsx.ReasonTimerArm)
	}
	f.timer = timer
	f.pending = true
	f.startedAt = f.now()
	f.episodeID = uuid.NewString()
	id := f.episodeID
	f.mu.Unlock()

	f.logReplaced(replacedID, id)
	f.log.Debug("interrupt_episode_start", "episode_id", id, "window_ms", f.window.Milliseconds())
	f.record(metrics.EventEpisodeStart, id, 0)
	return nil
}

// OnSTTPartial overwrites the buffered transcript. Empty text is ignored.
func (f *Filter) OnSTTPartial(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	f.mu.Lock()
	f.buffer = text
	f.mu.Unlock()
}

// OnSTTFinal resolves the current episode from text and returns the decision.
// It works without a prior OnVADStart. A final for an episode the timer already
// resolved returns that decision without invoking the callback again.
func (f *Filter) OnSTTFinal(text string) Decision {
	text = strings.TrimSpace(text)
	f.mu.Lock()
	if f.timedOut && !f.pending {
		d, id := f.timeoutDec, f.timeoutID
		f.mu.Unlock()
		f.log.Debug("interrupt_late_final", "episode_id", id, "decision", d.String(), "text", redact.Transcript(text))
		f.record(metrics.EventLateFinal, id, 0)
		return d
	}
	ep := f.resolveLocked()
	out := Classify(Tokenize(text), f.ignore, f.command, ep.speaking, PathFinal)
	f.mu.Unlock()

	f.emit(ep, out, text, PathFinal)
	return out.Decision
}

// OnVADCancel drops the pending episode without a decision.
func (f *Filter) OnVADCancel() {
	f.mu.Lock()
	id := ""
	if f.pending {
		id = f.episodeID
	}
	f.clearLocked()
	f.mu.Unlock()

	if id != "" {
		f.log.Debug("interrupt_episode_cancel", "episode_id", id)
		f.record(metrics.EventEpisodeCancel, id, 0)
	}
}

// Close disarms the timer and discards any pending episode.
func (f *Filter) Close() {
	f.mu.Lock()
	f.clearLocked()
	f.mu.Unlock()
}

func (f *Filter) onTimeout(gen uint64) {
	f.mu.Lock()
	if !f.pending || f.gen != gen {
		f.mu.Unlock()
		return
	}
	text := f.buffer
	f.timer = nil
	ep := f.resolveLocked()
	out := Classify(Tokenize(text), f.ignore, f.command, ep.speaking, PathTimeout)
	f.timedOut = true
	f.timeoutDec = out.Decision
	f.timeoutID = ep.id
	f.mu.Unlock()

	f.emit(ep, out, text, PathTimeout)
}

// clearLocked disarms the timer and resets the episode. Bumping gen makes a timer
// that already fired and is waiting on the lock a no-op.
func (f *Filter) clearLocked() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.gen++
	f.timedOut = false
	f.timeoutID = ""
	f.pending = false
	f.buffer = ""
	f.episodeID = ""
	f.startedAt = time.Time{}
}

func (f *Filter) logReplaced(replacedID, byID string) {
	if replacedID == "" {
		return
	}
	f.log.Debug("interrupt_episode_replaced", "episode_id", replacedID, "by", byID)
	f.record(metrics.EventEpisodeReplaced, replacedID, 0)
}

func (f *Filter) resolveLocked() episode {
	ep := episode{speaking: f.speaking}
	if f.pending {
		ep.id = f.episodeID
		ep.startedAt = f.startedAt
	}
	f.clearLocked()
	return ep
}

func (f *Filter) emit(ep episode, out Outcome, text string, path Path) {
	latency := -1.0
	if !ep.startedAt.IsZero() {
		latency = float64(f.now().Sub(ep.startedAt).Milliseconds())
	}
	f.log.Info("interrupt_decision",
		"episode_id", ep.id,
		"decision", out.Decision.String(),
		"reason", out.Reason,
		"path", string(path),
		"speaking", ep.speaking,
		"latency_ms", latency,
		"text", redact.Transcript(text),
	)
	f.obs.RecordEvent(metrics.MetricsEvent{
		Name:  metrics.EventDecision,
		Time:  f.now(),
		Value: latency,
		Tags: map[string]string{
			metrics.TagEpisodeID: ep.id,
			metrics.TagDecision:  out.Decision.String(),
			metrics.TagPath:      string(path),
			metrics.TagTrigger:   string(out.Trigger),
		},
		Fields: map[string]any{metrics.TagReason: out.Reason},
	})
	f.dispatch(ep, out, text)
}

// dispatch runs the callback with panics contained; state is already cleared.
func (f *Filter) dispatch(ep episode, out Outcome, text string) {
	if f.onDecision == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			err := errorsx.Wrap(fmt.Errorf("decision callback panic: %v", r), errorsx.ReasonCallbackPanic)
			f.log.Error("interrupt_callback_panic",
				"episode_id", ep.id,
				"decision", out.Decision.String(),
				"error", err,
				"reason_code", string(errorsx.Reason(err)),
			)
			f.record(metrics.EventCallbackPanic, ep.id, 0)
		}
	}()
	f.onDecision(out.Decision, out.Reason, text)
}

func (f *Filter) record(name, episodeID string, value float64) {
	f.obs.RecordEvent(metrics.MetricsEvent{
		Name:  name,
		Time:  f.now(),
		Value: value,
		Tags:  map[string]string{metrics.TagEpisodeID: episodeID},
	})
}
