package config

const (
	defaultWorkspaceDir       = "~/.local/share/dubmix/workspace"
	defaultOutputDir          = "~/.local/share/dubmix/output"
	defaultLogDir             = "~/.local/share/dubmix/logs"
	defaultAPIBind            = "127.0.0.1:7823"
	defaultGeminiBaseURL      = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel        = "gemini-2.5-flash"
	defaultGeminiTTSModel     = "gemini-2.5-flash-preview-tts"
	defaultGeminiVoice        = "Aoede"
	defaultGeminiTimeout      = 120
	defaultOpenAIBaseURL      = "https://api.openai.com/v1"
	defaultOpenAIModel        = "gpt-4o-mini-tts"
	defaultOpenAIVoice        = "alloy"
	defaultOpenAITimeout      = 60
	defaultTargetLanguage     = "pt-BR"
	defaultTranslationTimeout = 120
	defaultRateLimitDelayMS   = 100
	defaultCachePath          = "~/.local/share/dubmix/cache/clips.db"
	defaultMinSlotSeconds     = 0.5
	defaultMaxSpeedFactor     = 2.5
	defaultSilenceThreshold   = -50.0
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkspaceDir: defaultWorkspaceDir,
			OutputDir:    defaultOutputDir,
			LogDir:       defaultLogDir,
			APIBind:      defaultAPIBind,
		},
		Gemini: Gemini{
			BaseURL:        defaultGeminiBaseURL,
			Model:          defaultGeminiModel,
			TTSModel:       defaultGeminiTTSModel,
			Voice:          defaultGeminiVoice,
			TimeoutSeconds: defaultGeminiTimeout,
		},
		OpenAI: OpenAI{
			BaseURL:        defaultOpenAIBaseURL,
			Model:          defaultOpenAIModel,
			Voice:          defaultOpenAIVoice,
			TimeoutSeconds: defaultOpenAITimeout,
		},
		Translation: Translation{
			TargetLanguage: defaultTargetLanguage,
			TimeoutSeconds: defaultTranslationTimeout,
		},
		Synthesis: Synthesis{
			RateLimitDelayMS: defaultRateLimitDelayMS,
			CacheEnabled:     true,
			CachePath:        defaultCachePath,
		},
		Alignment: Alignment{
			MinSlotSeconds: defaultMinSlotSeconds,
			MaxSpeedFactor: defaultMaxSpeedFactor,
		},
		Assembly: Assembly{
			TrimSilence:        true,
			SilenceThresholdDB: defaultSilenceThreshold,
			FFmpegBinary:       "ffmpeg",
			FFprobeBinary:      "ffprobe",
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
