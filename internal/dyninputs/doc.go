// Package dyninputs keeps the input connectors of multi-switch nodes in step
// with their `inputcount` counter widget.
//
// A multi-switch node exposes a user-adjustable number of numbered inputs
// (`model_1 .. model_N`). The Extension looks every node type up in the
// registry when the host registers it; for matching types it installs a
// Synchronizer on each new node instance. The Synchronizer converges the
// node so that exactly the slots `prefix_1 .. prefix_target` exist:
//
//   - equal count: widget-only slots are promoted to connectors;
//   - too many: the highest-numbered slots are removed first;
//   - too few: the missing slots are appended.
//
// Existing connectors are never rebuilt, so their links survive a change of
// count. The counter widget has no change notification, so the Synchronizer
// polls it on the host scheduler and reconciles when the value changes, and
// also on demand through an "Update inputs" button.
package dyninputs
