package openai

import (
	"context"
	"fmt"
	"io"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"

	"voice-assistant/internal/domain"
)

// SpeechSampleRate is the rate of the raw PCM the speech endpoint returns.
const SpeechSampleRate = 24000

// Voices lists the speech endpoint's voices. They are multilingual; the locale is
// reported as en-US so default selection finds them.
var Voices = []domain.Voice{
	{Name: string(goopenai.VoiceAlloy), Lang: "en-US"},
	{Name: string(goopenai.VoiceEcho), Lang: "en-US"},
	{Name: string(goopenai.VoiceFable), Lang: "en-US"},
	{Name: string(goopenai.VoiceOnyx), Lang: "en-US"},
	{Name: string(goopenai.VoiceNova), Lang: "en-US"},
	{Name: string(goopenai.VoiceShimmer), Lang: "en-US"},
}

// SpeechClient renders text to 16-bit mono PCM.
type SpeechClient struct {
	apiKey     KeyFunc
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewSpeechClient(apiKey KeyFunc, model string) *SpeechClient {
	return NewSpeechClientWithURL(apiKey, model, defaultBaseURL)
}

func NewSpeechClientWithURL(apiKey KeyFunc, model, baseURL string) *SpeechClient {
	if model == "" {
		model = string(goopenai.TTSModel1)
	}
	return &SpeechClient{
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: tracedHTTPClient(),
	}
}

// Synthesize returns a stream of little-endian PCM at SpeechSampleRate. The caller
// closes it.
func (c *SpeechClient) Synthesize(ctx context.Context, u domain.Utterance) (io.ReadCloser, error) {
	key := c.apiKey()
	if key == "" {
		return nil, ErrNoAPIKey
	}

	voice := goopenai.VoiceAlloy
	if !u.Voice.IsZero() {
		voice = goopenai.SpeechVoice(u.Voice.Name)
	}

	speed := u.Rate
	if speed < 0.25 {
		speed = 0.25
	} else if speed > 4 {
		speed = 4
	}

	client := newClient(key, c.baseURL, c.httpClient)
	resp, err := client.CreateSpeech(ctx, goopenai.CreateSpeechRequest{
		Model:          goopenai.SpeechModel(c.model),
		Input:          u.Text,
		Voice:          voice,
		ResponseFormat: goopenai.SpeechResponseFormatPcm,
		Speed:          speed,
	})
	if err != nil {
		return nil, fmt.Errorf("creating speech: %w", err)
	}
	return resp, nil
}
