package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dubmix/internal/language"
	"dubmix/internal/transcript"
)

type translationInput struct {
	ID               int     `json:"id"`
	Text             string  `json:"text"`
	AvailableSeconds float64 `json:"availableDurationSeconds"`
}

const translatePromptFormat = `Translate into %s respecting isochrony: each translation must be speakable within its availableDurationSeconds.
Input: array of %d objects.
Output: array of EXACTLY %d objects.

CRITICAL RULES:
1. DO NOT MERGE SENTENCES. Keep the 1-to-1 correspondence by ID.
2. Return only JSON: [{ "id": number, "text": "translation" }]

Data: %s`

// Translate requests an isochrony-aware translation of the segments into
// the target language. It returns the provider's rows as-is; the caller
// enforces the count contract and decides the fallback.
func (c *Client) Translate(ctx context.Context, segments []transcript.Segment, target language.Target) ([]transcript.Translation, error) {
	if len(segments) == 0 {
		return nil, errors.New("translate: no segments")
	}

	rows := make([]translationInput, 0, len(segments))
	for _, seg := range segments {
		rows = append(rows, translationInput{
			ID:               seg.ID,
			Text:             seg.Text,
			AvailableSeconds: seg.SlotSeconds(),
		})
	}
	encoded, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("translate: encode rows: %w", err)
	}

	prompt := fmt.Sprintf(translatePromptFormat, target.Name, len(segments), len(segments), encoded)
	payload := generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{ResponseMIMEType: "application/json"},
	}

	response, err := c.generateContent(ctx, c.cfg.Model, payload, "translate")
	if err != nil {
		return nil, err
	}

	text := firstText(response)
	if text == "" {
		return nil, errors.New("translate: response carried no text")
	}

	var translations []transcript.Translation
	if err := DecodeModelJSON(text, &translations); err != nil {
		var single transcript.Translation
		if err2 := DecodeModelJSON(text, &single); err2 != nil {
			return nil, fmt.Errorf("translate: parse payload: %w", err)
		}
		translations = []transcript.Translation{single}
	}
	return translations, nil
}
