// Package mediaengine wraps ffmpeg and ffprobe behind a byte-buffer-in,
// byte-buffer-out interface: callers hand over named buffers and a filter
// graph, the engine returns the rendered output buffer. The concrete
// implementation serializes jobs with a mutex and a workspace flock.
package mediaengine
