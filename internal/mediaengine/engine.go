package mediaengine

import "context"

// Input is a named byte buffer handed to the engine for one job.
type Input struct {
	Name string
	Data []byte
}

// Job describes one filter-graph execution: named input buffers, the graph
// itself, and the name of the single output buffer to read back.
type Job struct {
	Inputs      []Input
	FilterGraph string
	// OutputLabel is the graph's final pad, e.g. "[out]".
	OutputLabel string
	// OutputName is the output buffer name; its extension picks the codec.
	OutputName string
}

// Engine is the black-box media processor the pipeline drives. It accepts
// named byte buffers plus filter directives and returns one output buffer.
// Implementations are single-writer: callers may rely on the engine
// serializing overlapping calls.
type Engine interface {
	// Render executes one filter-graph job and returns the output buffer.
	Render(ctx context.Context, job Job) ([]byte, error)
	// Duration measures the playable length of an encoded audio buffer in
	// seconds. An undecodable buffer is an error.
	Duration(ctx context.Context, data []byte) (float64, error)
	// ExtractAudio demuxes and re-encodes the audio track of a source
	// media file into a stereo 44.1kHz MP3 buffer.
	ExtractAudio(ctx context.Context, sourcePath string) ([]byte, error)
}
