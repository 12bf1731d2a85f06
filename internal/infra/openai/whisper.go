package openai

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"

	"voice-assistant/internal/domain"
)

// WhisperClient transcribes recorded WAV audio.
type WhisperClient struct {
	apiKey     KeyFunc
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewWhisperClient(apiKey KeyFunc, model string) *WhisperClient {
	return NewWhisperClientWithURL(apiKey, model, defaultBaseURL)
}

func NewWhisperClientWithURL(apiKey KeyFunc, model, baseURL string) *WhisperClient {
	if model == "" {
		model = goopenai.Whisper1
	}
	return &WhisperClient{
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: tracedHTTPClient(),
	}
}

func (c *WhisperClient) Transcribe(ctx context.Context, wav []byte, language string) (string, error) {
	key := c.apiKey()
	if key == "" {
		return "", ErrNoAPIKey
	}

	client := newClient(key, c.baseURL, c.httpClient)
	resp, err := client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    c.model,
		FilePath: "audio.wav",
		Reader:   bytes.NewReader(wav),
		Language: domain.PrimaryLanguage(language),
	})
	if err != nil {
		return "", fmt.Errorf("transcribing audio: %w", err)
	}
	return resp.Text, nil
}
