package ports

import "time"

// Timer is a cancellable pending callback.
type Timer interface {
	// Stop cancels the callback. It reports false if the callback already ran or was stopped.
	Stop() bool
}

// Scheduler is the engine's only source of time.
// Callbacks must run on the same goroutine that drives the engine; the
// manual scheduler does this by construction and the realtime scheduler in
// pkg/runner posts them back into its event loop.
type Scheduler interface {
	// Now returns the current time on the scheduler's clock.
	Now() time.Time

	// AfterFunc schedules fn to run once d has elapsed on the scheduler's clock.
	AfterFunc(d time.Duration, fn func()) Timer
}
