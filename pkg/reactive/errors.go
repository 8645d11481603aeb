package reactive

import (
	"errors"
	"fmt"
	"log"
)

// ErrRecursionLimitExceeded is reported when a single job re-enqueues
// itself more times than RecursionLimit permits within one flush. The
// job is skipped for the remainder of that flush.
//
// Applications should handle this by treating it as a feedback-loop bug:
// a job that writes the very state it reads, without a terminating
// condition or allowRecurse guard.
var ErrRecursionLimitExceeded = errors.New("reactive: job exceeded recursion limit in a single flush")

// ErrInvalidWatchSource is reported when Watch is given a nil source
// function. A source that panics is reported with the recovered panic
// value under KindWatchGetter instead.
//
// Applications should handle this by fixing the source; the watch binds
// a no-op getter and continues rather than panicking the caller.
var ErrInvalidWatchSource = errors.New("reactive: invalid watch source")

// RecursionLimit bounds how many times the scheduler will run the same
// job within a single flush before reporting ErrRecursionLimitExceeded
// and skipping it. 100 matches the default used across the reactivity
// implementations this package is modeled on.
var RecursionLimit = 100

// ErrorKind classifies where an unhandled error originated, mirroring
// the error-kind groupings a central dispatcher needs to annotate
// errors with enough context for a caller to decide how to react.
type ErrorKind int

const (
	KindScheduler ErrorKind = iota
	KindComponentUpdate
	KindWatchGetter
	KindWatchCallback
	KindWatchCleanup
	KindRecursionLimit
)

func (k ErrorKind) String() string {
	switch k {
	case KindScheduler:
		return "scheduler"
	case KindComponentUpdate:
		return "component-update"
	case KindWatchGetter:
		return "watch-getter"
	case KindWatchCallback:
		return "watch-callback"
	case KindWatchCleanup:
		return "watch-cleanup"
	case KindRecursionLimit:
		return "recursion-limit"
	default:
		return "unknown"
	}
}

// ErrorHandler receives an error captured from user code (a job, a watch
// getter/callback/cleanup, or the recursion guard), the kind describing
// where it came from, and the owner instance when one was attached to
// the job (the Job.Owner field, or WithWatchOwner for a watch).
type ErrorHandler func(err error, kind ErrorKind, owner any)

// OnUnhandledError is invoked for every error captured from user code.
// It never aborts the flush — the default handler only logs. Replace it
// to route errors into an application's own reporting path.
var OnUnhandledError ErrorHandler = defaultErrorHandler

func defaultErrorHandler(err error, kind ErrorKind, owner any) {
	if owner != nil {
		log.Printf("reactive: unhandled %s error (owner=%v): %v", kind, owner, err)
		return
	}
	log.Printf("reactive: unhandled %s error: %v", kind, err)
}

func dispatchError(err error, kind ErrorKind, owner any) {
	if OnUnhandledError != nil {
		OnUnhandledError(err, kind, owner)
	}
}

func asError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}

// DebugMode gates the warning emitted when code writes to a read-only
// Computed. Mirrors a dev/prod toggle: in production the write is simply
// dropped, no handler call, no allocation.
var DebugMode = false

// errConcurrentMutator backs the debug-mode single-mutator assertion in
// tracking.go. It is informational, not fatal: coreMu already keeps the
// graph correct under concurrent callers, this just flags that the
// single-executor-per-app assumption from the design notes is being
// violated.
var errConcurrentMutator = errors.New("reactive: graph entered from more than one goroutine while DebugMode is on")

// errReadOnlyComputedWrite backs the DebugMode warning emitted by
// Computed.Set when no setter was supplied.
var errReadOnlyComputedWrite = errors.New("reactive: write to a read-only computed")
