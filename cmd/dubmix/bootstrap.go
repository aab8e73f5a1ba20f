package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"dubmix/internal/alignment"
	"dubmix/internal/assembly"
	"dubmix/internal/config"
	"dubmix/internal/language"
	"dubmix/internal/logging"
	"dubmix/internal/mediaengine"
	"dubmix/internal/pipeline"
	"dubmix/internal/services/gemini"
	"dubmix/internal/synthesis"
)

func buildLogger(cfg *config.Config, extraPaths ...string) (*slog.Logger, error) {
	paths := []string{"stderr"}
	if cfg.Paths.LogDir != "" {
		paths = append(paths, filepath.Join(cfg.Paths.LogDir, "dubmix.log"))
	}
	paths = append(paths, extraPaths...)
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: paths,
	})
}

// buildOrchestrator wires the full pipeline from configuration. The
// returned cleanup func releases the clip cache, if one was opened.
func buildOrchestrator(cfg *config.Config, logger *slog.Logger) (*pipeline.Orchestrator, func(), error) {
	cleanup := func() {}

	target, err := language.Resolve(cfg.Translation.TargetLanguage)
	if err != nil {
		return nil, cleanup, fmt.Errorf("resolve target language: %w", err)
	}

	engine, err := mediaengine.NewFFmpeg(cfg.Assembly.FFmpegBinary, cfg.Assembly.FFprobeBinary, cfg.Paths.WorkspaceDir)
	if err != nil {
		return nil, cleanup, fmt.Errorf("init media engine: %w", err)
	}

	client := gemini.NewClient(gemini.Config{
		APIKey:         cfg.Gemini.APIKey,
		BaseURL:        cfg.Gemini.BaseURL,
		Model:          cfg.Gemini.Model,
		TTSModel:       cfg.Gemini.TTSModel,
		Voice:          cfg.Gemini.Voice,
		TimeoutSeconds: cfg.Gemini.TimeoutSeconds,
	})

	providers := []synthesis.Provider{
		synthesis.NewGeminiProvider(client, target, cfg.Gemini.TTSModel, cfg.Gemini.Voice),
	}
	if cfg.OpenAI.APIKey != "" {
		providers = append(providers, synthesis.NewOpenAIProvider(synthesis.OpenAIConfig{
			APIKey:         cfg.OpenAI.APIKey,
			BaseURL:        cfg.OpenAI.BaseURL,
			Model:          cfg.OpenAI.Model,
			Voice:          cfg.OpenAI.Voice,
			TimeoutSeconds: cfg.OpenAI.TimeoutSeconds,
		}))
	}

	chain := synthesis.NewChain(logger, providers...)
	if cfg.Synthesis.CacheEnabled {
		cache, err := synthesis.OpenCache(cfg.Synthesis.CachePath)
		if err != nil {
			logger.Warn("clip cache unavailable", logging.Error(err))
		} else {
			chain = chain.WithCache(cache)
			cleanup = func() { _ = cache.Close() }
		}
	}

	planner := alignment.NewPlanner(cfg.Alignment.MinSlotSeconds, cfg.Alignment.MaxSpeedFactor)
	assembler := assembly.New(engine, planner, assembly.Options{
		TrimSilence:        cfg.Assembly.TrimSilence,
		SilenceThresholdDB: cfg.Assembly.SilenceThresholdDB,
	}, logger)

	orch := pipeline.New(pipeline.Deps{
		Engine:      engine,
		Transcriber: client,
		Translator:  client,
		Synthesizer: chain,
		Assembler:   assembler,
	}, pipeline.Options{
		Target:         target,
		MinSlotSeconds: cfg.Alignment.MinSlotSeconds,
		RateLimitDelay: time.Duration(cfg.Synthesis.RateLimitDelayMS) * time.Millisecond,
	}, logger)

	return orch, cleanup, nil
}
