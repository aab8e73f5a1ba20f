// Package assembly mixes per-segment synthesized clips into a single dub
// track, applying speed correction and fixed-position placement so the
// result lines up with the original dialogue timing.
package assembly
