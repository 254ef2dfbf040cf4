package wire

import (
	"time"
)

// Stop refuses new submissions and waits up to timeout for queued and running tasks to finish.
// When the timeout elapses the task context is cancelled and Stop waits for the workers to exit,
// returning ErrDrainTimeout. A non-positive timeout waits indefinitely. Later calls return the
// first result.
func (w *Wire) Stop(timeout time.Duration) error {
	w.stopOnce.Do(func() {
		w.closeLock.Lock()
		w.closed = true
		w.closeLock.Unlock()

		w.notifyStop()

		done := make(chan struct{})
		go func() {
			w.pool.StopAndWait()
			close(done)
		}()

		var expired <-chan time.Time
		if timeout > 0 {
			timer := time.NewTimer(timeout)
			defer timer.Stop()
			expired = timer.C
		}

		select {
		case <-done:
		case <-expired:
			w.notifyForceCancel(timeout)
			w.cancel()
			<-done
			w.stopErr = ErrDrainTimeout
		}
		w.cancel()
	})
	return w.stopErr
}

// IsClosed reports whether Stop has been called.
func (w *Wire) IsClosed() bool {
	w.closeLock.RLock()
	defer w.closeLock.RUnlock()
	return w.closed
}
