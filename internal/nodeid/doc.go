// internal/nodeid/doc.go

/*
Package nodeid centralizes the two kinds of identifiers the dynamic input
extension works with.

Node type identifiers may be namespaced with `/` (e.g. `rvtools/RvSwitch_Multi_Any`);
only the final segment is significant for matching.

Slot names are the numbered connector/widget names of a multi-switch node,
in the canonical format `prefix_N` with N >= 1 (e.g. `model_3`).
*/
package nodeid
