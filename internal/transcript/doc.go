// Package transcript owns the segment model: timestamp normalization of
// heterogeneous provider stamps, slot clamping, and the mutable store the
// orchestrator and UI share during a run.
package transcript
