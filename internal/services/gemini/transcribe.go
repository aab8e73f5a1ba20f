package gemini

import (
	"context"
	"encoding/base64"
	"errors"

	"dubmix/internal/services"
	"dubmix/internal/transcript"
)

const transcribePrompt = `Analyze the audio. Return STRICTLY VALID JSON with the transcription and timestamps.
Format: [{ "id": number, "start": "HH:MM:SS.mmm", "end": "HH:MM:SS.mmm", "text": "transcription" }]
RULES:
1. Output ONLY the raw JSON. No markdown.
2. Break the speech into short sentences whenever possible.`

// Transcribe sends an audio buffer for transcription and returns the
// provider's raw timed rows. Malformed payloads are an error: the caller
// treats them as stage-fatal.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType string) ([]transcript.RawSegment, error) {
	if len(audio) == 0 {
		return nil, errors.New("transcribe: empty audio buffer")
	}
	if mimeType == "" {
		mimeType = "audio/mp3"
	}

	payload := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: transcribePrompt},
				{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(audio)}},
			},
		}},
	}

	response, err := c.generateContent(ctx, c.cfg.Model, payload, "transcribe")
	if err != nil {
		return nil, err
	}

	text := firstText(response)
	if text == "" {
		return nil, services.Wrap(services.ErrExternalTool, "transcribe", "decode", "response carried no text", nil)
	}

	var rows []transcript.RawSegment
	if err := DecodeModelJSON(text, &rows); err != nil {
		// A single object instead of an array is a known provider mood.
		var single transcript.RawSegment
		if err2 := DecodeModelJSON(text, &single); err2 != nil {
			return nil, services.Wrap(services.ErrExternalTool, "transcribe", "decode", "parse payload", err)
		}
		rows = []transcript.RawSegment{single}
	}
	if len(rows) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "transcribe", "decode", "provider returned zero segments", nil)
	}
	return rows, nil
}
