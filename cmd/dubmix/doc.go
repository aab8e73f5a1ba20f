// Command dubmix dubs the dialogue track of a media file into another
// language: transcription and translation via Gemini, per-segment speech
// synthesis with provider fallback, and time-aligned assembly into a
// single MP3. Runs one-shot from the command line or as an HTTP service.
package main
