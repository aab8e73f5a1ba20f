// Package server exposes the dubbing pipeline over HTTP: media upload,
// run control, transcript review and editing, final audio download, and
// a websocket that pushes pipeline state changes.
package server
