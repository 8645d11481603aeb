// Package reactive implements the dependency graph, reactive effect,
// computed value, tick scheduler, and watch facade that together drive
// fine-grained recomputation of derived values when mutable state changes.
//
// The package is deliberately independent of any rendering or storage
// domain: reactive proxies, signals, or whatever external layer owns the
// mutable state are expected to call Track on every observable read and
// Trigger on every observable write. Everything downstream of that —
// dependency bookkeeping, dirty propagation, computed caching, and job
// ordering across a tick — lives here.
//
// The engine assumes a single logical mutator, mirroring the single
// executor per app model described in the design notes; concurrent Go
// callers are still safe because every exported entry point serializes
// through one package-level mutex, but two goroutines driving the same
// graph will interleave, not parallelize.
package reactive
