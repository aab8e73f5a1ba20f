// Package pipeline drives a dubbing run end to end: audio extraction,
// transcription, translation, an optional human approval checkpoint,
// per-segment speech synthesis, and final assembly. One run is active at
// a time; every stage and progress change fans out through a state hub.
package pipeline
