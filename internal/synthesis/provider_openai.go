package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAIConfig holds the settings for the fallback speech provider.
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Voice          string
	TimeoutSeconds int
}

// OpenAIProvider synthesizes speech via the OpenAI audio.speech endpoint.
type OpenAIProvider struct {
	cfg        OpenAIConfig
	httpClient *http.Client
	name       string
}

// NewOpenAIProvider builds the fallback provider. Callers should only
// register it when an API key is configured.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	timeout := 60 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	cfg.BaseURL = strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini-tts"
	}
	if cfg.Voice == "" {
		cfg.Voice = "alloy"
	}
	return &OpenAIProvider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		name:       fmt.Sprintf("openai/%s/%s", cfg.Model, cfg.Voice),
	}
}

// WithHTTPClient overrides the default HTTP client (for testing).
func (p *OpenAIProvider) WithHTTPClient(client *http.Client) *OpenAIProvider {
	if client != nil {
		p.httpClient = client
	}
	return p
}

func (p *OpenAIProvider) Name() string { return p.name }

func (p *OpenAIProvider) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if p.cfg.APIKey == "" {
		return nil, errors.New("openai synthesize: api key required")
	}

	payload := map[string]string{
		"model":           p.cfg.Model,
		"input":           text,
		"voice":           p.cfg.Voice,
		"response_format": "mp3",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("openai synthesize: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai synthesize: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai synthesize: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("openai synthesize: http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("openai synthesize: read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("openai synthesize: empty audio payload")
	}
	return audio, nil
}
