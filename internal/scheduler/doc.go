// Package scheduler provides the host's single control thread: an event loop
// on which every callback of the editor runs, one at a time, to completion.
//
// # Why a Loop
//
// Node instances are mutated by user edits, by extension timers and by
// button callbacks. Running all of them on one goroutine means no node is
// ever reconciled concurrently with itself or with a host edit, so the code
// that touches nodes needs no locks and no re-entrancy guards.
//
// # Timers
//
// AfterFunc and Every schedule callbacks onto the loop. Cancelling a Handle
// from the loop goroutine guarantees the callback does not run afterwards,
// even if its timer already expired and the callback is queued: the cancel
// flag is checked on the loop right before the callback runs.
//
// # Implementations
//
//   - Loop: wall-clock timers, used by the application.
//   - Manual: virtual time advanced explicitly, used by tests.
package scheduler
