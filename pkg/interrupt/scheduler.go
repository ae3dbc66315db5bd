package interrupt

import "time"

// Timer is a scheduled callback that can be disarmed.
type Timer interface {
	Stop() bool
}

// Scheduler arms one-shot timers. A nil Timer means the timer could not be armed.
// fn must run on its own goroutine, never inside AfterFunc.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(d time.Duration, fn func()) Timer

func (f SchedulerFunc) AfterFunc(d time.Duration, fn func()) Timer { return f(d, fn) }

type wallClock struct{}

func (wallClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
