package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"dubmix/internal/config"
	"dubmix/internal/pipeline"
	"dubmix/internal/transcript"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var manual bool
	var outputPath string

	cmd := &cobra.Command{
		Use:   "run <media-file>",
		Short: "Dub a media file end to end",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := buildLogger(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			orch, cleanup, err := buildOrchestrator(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			source, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve source path: %w", err)
			}
			if _, err := os.Stat(source); err != nil {
				return fmt.Errorf("source file: %w", err)
			}
			target := resolveOutputPath(cfg, source, outputPath)

			signalCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			mode := pipeline.ModeAuto
			if manual {
				mode = pipeline.ModeManual
			}

			states, unsubscribe := orch.Subscribe()
			defer unsubscribe()
			if _, err := orch.Start(signalCtx, source, mode); err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			for {
				select {
				case <-signalCtx.Done():
					orch.Reset()
					return signalCtx.Err()
				case state := <-states:
					if state.Log != "" {
						fmt.Fprintf(stdout, "[%3d%%] %s\n", state.Progress, state.Log)
					}
					switch state.Stage {
					case pipeline.StageWaitingForApproval:
						approved, err := reviewSegments(cmd, orch.Segments(), target)
						if err != nil {
							orch.Reset()
							return err
						}
						if err := orch.Resume(approved); err != nil {
							return err
						}
					case pipeline.StageError:
						return fmt.Errorf("dubbing failed: %s", state.Log)
					case pipeline.StageCompleted:
						audio := orch.FinalAudio()
						if err := os.WriteFile(target, audio, 0o644); err != nil {
							return fmt.Errorf("write output: %w", err)
						}
						printSummary(stdout, orch.Segments(), target, len(audio))
						return nil
					}
				}
			}
		},
	}

	cmd.Flags().BoolVar(&manual, "manual", false, "Pause for transcript review before synthesis")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output MP3 path")
	return cmd
}

func resolveOutputPath(cfg *config.Config, source, flagValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return filepath.Join(cfg.Paths.OutputDir, base+".dub.mp3")
}

// reviewSegments writes the transcript next to the output file, waits for
// the user to edit it, and reads the approved version back.
func reviewSegments(cmd *cobra.Command, segments []transcript.Segment, outputPath string) ([]transcript.Segment, error) {
	reviewPath := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".segments.json"
	data, err := json.MarshalIndent(segments, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode segments: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(reviewPath), 0o755); err != nil {
		return nil, fmt.Errorf("prepare review directory: %w", err)
	}
	if err := os.WriteFile(reviewPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("write review file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nTranscript written to %s\n", reviewPath)
	fmt.Fprintln(out, "Edit the text fields as needed, then press Enter to continue.")
	reader := bufio.NewReader(cmd.InOrStdin())
	if _, err := reader.ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("wait for approval: %w", err)
	}

	edited, err := os.ReadFile(reviewPath)
	if err != nil {
		return nil, fmt.Errorf("read review file: %w", err)
	}
	var approved []transcript.Segment
	if err := json.Unmarshal(edited, &approved); err != nil {
		return nil, fmt.Errorf("parse review file: %w", err)
	}
	return approved, nil
}

func printSummary(out io.Writer, segments []transcript.Segment, target string, bytes int) {
	rows := make([][]string, 0, len(segments))
	for _, s := range segments {
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.ID),
			fmt.Sprintf("%.2fs", s.StartTime),
			fmt.Sprintf("%.2fs", s.EndTime),
			s.Text,
		})
	}
	fmt.Fprintln(out, renderTable([]string{"#", "Start", "End", "Text"}, rows))
	fmt.Fprintf(out, "Dubbed %d segments (%d bytes) to %s\n", len(segments), bytes, target)
}
