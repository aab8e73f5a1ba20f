// Package alignment computes per-segment speed correction and placement so
// variable-length synthesized speech fits the fixed time slots of the
// original dialogue.
package alignment
