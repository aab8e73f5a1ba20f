// Package synthesis turns translated segment text into audio buffers via a
// prioritized provider chain with per-attempt failure isolation and an
// advisory content-addressed clip cache. A segment whose every provider
// fails becomes explicit silence, never an aborted run.
package synthesis
