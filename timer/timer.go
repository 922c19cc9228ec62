// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package timer implements the two timer primitives the node and hub
// state machines are built on: a one-shot resettable WatchdogTimer and a
// cancellable PeriodicTimer.
package timer

import (
	"sync"
	"time"
)

// WatchdogTimer is a one-shot timer with reset.
//
// It is armed by Start(d, cb); if it is not Reset or Cancel'd within d, cb
// fires once on its own goroutine. Reset postpones the deadline to
// now+d. Cancel disarms the timer; no further fire can occur until Start
// is called again. A Reset or Cancel issued after the callback has begun
// executing has no effect on that invocation — this mirrors time.Timer's
// own race between Stop/Reset and a fire already in progress.
type WatchdogTimer struct {
	mu sync.Mutex
	t  *time.Timer
}

// Start arms the watchdog. If it is already armed, Start rearms it with
// the new duration and callback, as if Cancel had been called first.
func (w *WatchdogTimer) Start(d time.Duration, cb func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.t != nil {
		w.t.Stop()
	}
	w.t = time.AfterFunc(d, cb)
}

// Reset postpones the deadline to now+d, reusing the callback passed to
// the most recent Start. Reset on an unarmed (never started, or
// cancelled) watchdog is a no-op.
func (w *WatchdogTimer) Reset(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.t == nil {
		return
	}
	w.t.Reset(d)
}

// Cancel disarms the watchdog. A subsequent fire cannot occur unless
// Start is called again. Cancel is idempotent.
func (w *WatchdogTimer) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.t == nil {
		return
	}
	w.t.Stop()
	w.t = nil
}

// PeriodicTimer fires a callback every d until Cancel'd. The first fire
// is d after construction.
type PeriodicTimer struct {
	cancelOnce sync.Once
	doneC      chan struct{}
}

// StartPeriodic constructs and starts a PeriodicTimer that calls cb every
// d, on its own goroutine, until Cancel is called.
func StartPeriodic(d time.Duration, cb func()) *PeriodicTimer {
	pt := &PeriodicTimer{doneC: make(chan struct{})}

	go func() {
		t := time.NewTicker(d)
		defer t.Stop()

		for {
			select {
			case <-pt.doneC:
				return
			case <-t.C:
				// A tick and a Cancel can be ready together; select picks
				// between them at random, so re-check for cancellation.
				select {
				case <-pt.doneC:
					return
				default:
				}
				cb()
			}
		}
	}()

	return pt
}

// Cancel stops the periodic timer. Cancellation is idempotent and
// prevents any further callback; a callback already in progress runs to
// completion.
func (pt *PeriodicTimer) Cancel() {
	pt.cancelOnce.Do(func() { close(pt.doneC) })
}
