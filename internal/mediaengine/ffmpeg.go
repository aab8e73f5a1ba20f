package mediaengine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/gofrs/flock"
)

// FFmpeg drives the ffmpeg and ffprobe binaries against a scratch
// workspace. One job at a time: an in-process mutex serializes goroutines
// and a flock on the workspace serializes sibling processes.
type FFmpeg struct {
	ffmpegBinary  string
	ffprobeBinary string
	workspace     string

	mu   sync.Mutex
	lock *flock.Flock

	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewFFmpeg constructs an engine rooted at the given workspace directory.
func NewFFmpeg(ffmpegBinary, ffprobeBinary, workspace string) (*FFmpeg, error) {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(ffprobeBinary) == "" {
		ffprobeBinary = "ffprobe"
	}
	if strings.TrimSpace(workspace) == "" {
		workspace = filepath.Join(os.TempDir(), "dubmix-engine")
	}
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return nil, fmt.Errorf("engine workspace: %w", err)
	}
	return &FFmpeg{
		ffmpegBinary:  ffmpegBinary,
		ffprobeBinary: ffprobeBinary,
		workspace:     workspace,
		lock:          flock.New(filepath.Join(workspace, ".engine.lock")),
	}, nil
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *FFmpeg) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	e.commandRunner = runner
}

// Render writes the job's buffers into a scratch directory, executes the
// filter graph, and reads the output buffer back.
func (e *FFmpeg) Render(ctx context.Context, job Job) ([]byte, error) {
	if len(job.Inputs) == 0 {
		return nil, errors.New("engine render: no inputs")
	}
	if strings.TrimSpace(job.FilterGraph) == "" {
		return nil, errors.New("engine render: empty filter graph")
	}
	if strings.TrimSpace(job.OutputName) == "" {
		return nil, errors.New("engine render: output name required")
	}

	unlock, err := e.acquire()
	if err != nil {
		return nil, err
	}
	defer unlock()

	dir, err := os.MkdirTemp(e.workspace, "job-")
	if err != nil {
		return nil, fmt.Errorf("engine render: scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	args := []string{"-y", "-hide_banner", "-v", "error"}
	for _, input := range job.Inputs {
		path := filepath.Join(dir, filepath.Base(input.Name))
		if err := os.WriteFile(path, input.Data, 0o644); err != nil {
			return nil, fmt.Errorf("engine render: write input %s: %w", input.Name, err)
		}
		args = append(args, "-i", path)
	}
	args = append(args, "-filter_complex", job.FilterGraph)
	label := job.OutputLabel
	if label == "" {
		label = "[out]"
	}
	outputPath := filepath.Join(dir, filepath.Base(job.OutputName))
	args = append(args, "-map", label, outputPath)

	if err := e.run(ctx, e.ffmpegBinary, args...); err != nil {
		return nil, fmt.Errorf("engine render: %w", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("engine render: read output: %w", err)
	}
	return data, nil
}

// Duration probes an encoded buffer and returns its length in seconds.
func (e *FFmpeg) Duration(ctx context.Context, data []byte) (float64, error) {
	if len(data) == 0 {
		return 0, errors.New("engine duration: empty buffer")
	}

	file, err := os.CreateTemp(e.workspace, "probe-*.bin")
	if err != nil {
		return 0, fmt.Errorf("engine duration: temp file: %w", err)
	}
	path := file.Name()
	defer os.Remove(path)
	if _, err := file.Write(data); err != nil {
		file.Close()
		return 0, fmt.Errorf("engine duration: write: %w", err)
	}
	file.Close()

	cmd := exec.CommandContext(ctx, e.ffprobeBinary, "-v", "error", "-hide_banner", "-show_format", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("engine duration: %w: %s", err, strings.TrimSpace(string(output)))
	}

	var probed struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(output, &probed); err != nil {
		return 0, fmt.Errorf("engine duration: parse: %w", err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(probed.Format.Duration), 64)
	if err != nil || seconds <= 0 {
		return 0, fmt.Errorf("engine duration: undecodable buffer")
	}
	return seconds, nil
}

// ExtractAudio pulls the audio track out of a source file as stereo
// 44.1kHz MP3, the working format for the rest of the pipeline.
func (e *FFmpeg) ExtractAudio(ctx context.Context, sourcePath string) ([]byte, error) {
	if strings.TrimSpace(sourcePath) == "" {
		return nil, errors.New("engine extract: empty source path")
	}
	if _, err := os.Stat(sourcePath); err != nil {
		return nil, fmt.Errorf("engine extract: %w", err)
	}

	unlock, err := e.acquire()
	if err != nil {
		return nil, err
	}
	defer unlock()

	dir, err := os.MkdirTemp(e.workspace, "extract-")
	if err != nil {
		return nil, fmt.Errorf("engine extract: scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	outputPath := filepath.Join(dir, "audio.mp3")
	args := []string{
		"-y", "-hide_banner", "-v", "error",
		"-i", sourcePath,
		"-vn", "-ac", "2", "-ar", "44100", "-map", "a",
		outputPath,
	}
	if err := e.run(ctx, e.ffmpegBinary, args...); err != nil {
		return nil, fmt.Errorf("engine extract: %w", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("engine extract: read output: %w", err)
	}
	return data, nil
}

func (e *FFmpeg) acquire() (func(), error) {
	e.mu.Lock()
	if err := e.lock.Lock(); err != nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("engine lock: %w", err)
	}
	return func() {
		_ = e.lock.Unlock()
		e.mu.Unlock()
	}, nil
}

func (e *FFmpeg) run(ctx context.Context, name string, args ...string) error {
	if e.commandRunner != nil {
		return e.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
