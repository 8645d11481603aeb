package reactive

import "sync"

// Go has no native microtask queue, so the scheduler approximates one
// with a single dispatcher goroutine draining a FIFO channel — the same
// shape as the teacher's session event loop (a buffered channel plus one
// consuming goroutine guaranteeing in-order, off-the-caller's-stack
// execution). flushJobs always runs on this goroutine, never on the
// caller's, which is what lets queueFlush return immediately the way a
// real microtask scheduling call would.
var (
	microtaskCh   = make(chan func(), 1024)
	microtaskOnce sync.Once
)

func ensureMicrotaskLoop() {
	microtaskOnce.Do(func() {
		go func() {
			for fn := range microtaskCh {
				fn()
			}
		}()
	})
}

func scheduleMicrotask(fn func()) {
	ensureMicrotaskLoop()
	microtaskCh <- fn
}
