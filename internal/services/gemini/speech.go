package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"dubmix/internal/language"
)

// SynthesizeSpeech renders one line of text as an encoded audio buffer
// using the configured TTS model and prebuilt voice.
func (c *Client) SynthesizeSpeech(ctx context.Context, text string, target language.Target) ([]byte, error) {
	if text == "" {
		return nil, errors.New("synthesize: empty text")
	}
	model := c.cfg.TTSModel
	if model == "" {
		model = c.cfg.Model
	}
	voice := c.cfg.Voice
	if voice == "" {
		voice = "Aoede"
	}

	prompt := fmt.Sprintf("Read the following text in %s with natural intonation: %q", target.Name, text)
	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: voiceConfig{
					PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: voice},
				},
			},
		},
	}

	response, err := c.generateContent(ctx, model, payload, "synthesize")
	if err != nil {
		return nil, err
	}

	data := firstInlineData(response)
	if data == nil {
		return nil, errors.New("synthesize: response carried no audio")
	}
	decoded, err := base64.StdEncoding.DecodeString(data.Data)
	if err != nil {
		return nil, fmt.Errorf("synthesize: decode audio: %w", err)
	}
	if len(decoded) == 0 {
		return nil, errors.New("synthesize: empty audio payload")
	}
	return decoded, nil
}
