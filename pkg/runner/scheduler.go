package runner

import (
	"time"

	"github.com/aretw0/keyframe/pkg/ports"
)

// loopScheduler is a wall-clock ports.Scheduler whose callbacks are posted
// to the runner loop instead of running on timer goroutines.
type loopScheduler struct {
	calls chan func()
	done  <-chan struct{}
}

func newLoopScheduler(done <-chan struct{}) *loopScheduler {
	return &loopScheduler{calls: make(chan func()), done: done}
}

func (s *loopScheduler) Now() time.Time {
	return time.Now()
}

func (s *loopScheduler) AfterFunc(d time.Duration, fn func()) ports.Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		select {
		case s.calls <- func() {
			if t.stopped {
				return
			}
			t.fired = true
			fn()
		}:
		case <-s.done:
		}
	})
	return t
}

// loopTimer state is only touched on the loop goroutine.
type loopTimer struct {
	timer   *time.Timer
	stopped bool
	fired   bool
}

func (t *loopTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.timer.Stop()
	return true
}
