package synthesis

import (
	"context"
	"fmt"

	"dubmix/internal/language"
	"dubmix/internal/services/gemini"
)

// GeminiProvider adapts the Gemini TTS call to the provider interface.
type GeminiProvider struct {
	client *gemini.Client
	target language.Target
	name   string
}

// NewGeminiProvider wraps a configured Gemini client as the primary voice.
func NewGeminiProvider(client *gemini.Client, target language.Target, model, voice string) *GeminiProvider {
	return &GeminiProvider{
		client: client,
		target: target,
		name:   fmt.Sprintf("gemini/%s/%s", model, voice),
	}
}

func (p *GeminiProvider) Name() string { return p.name }

func (p *GeminiProvider) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return p.client.SynthesizeSpeech(ctx, text, p.target)
}
