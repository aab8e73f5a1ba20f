// Package gemini wraps the Gemini generateContent REST API for the three
// calls the pipeline makes: timed transcription of an audio buffer,
// isochrony-aware translation, and per-line speech synthesis. Responses are
// decoded tolerantly because the model occasionally wraps JSON in markdown
// fences or returns a bare object instead of an array.
package gemini
