package timerctl

import "time"

// DisplayTicker drives a 1 Hz cosmetic clock for a user's session. It only
// reads elapsed time; it never writes session or persisted state.
type DisplayTicker struct {
	stop chan struct{}
	done chan struct{}
}

// StartDisplayTicker invokes fn with the current elapsed seconds once per
// interval until Stop is called. A non-positive interval defaults to one
// second.
func (c *Controller) StartDisplayTicker(userID string, interval time.Duration, fn func(elapsedSeconds int)) *DisplayTicker {
	if interval <= 0 {
		interval = time.Second
	}

	t := &DisplayTicker{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn(c.Elapsed(userID))
			case <-t.stop:
				return
			}
		}
	}()

	return t
}

// Stop halts the ticker and waits for the last callback to return.
func (t *DisplayTicker) Stop() {
	close(t.stop)
	<-t.done
}
