package openai

import (
	"context"
	"fmt"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"

	"voice-assistant/internal/domain"
)

// ChatClient sends chat-completion requests. It has no request timeout; a call lasts
// until the endpoint answers or ctx is cancelled.
type ChatClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewChatClient() *ChatClient {
	return NewChatClientWithURL(defaultBaseURL)
}

func NewChatClientWithURL(baseURL string) *ChatClient {
	return &ChatClient{
		baseURL:    baseURL,
		httpClient: tracedHTTPClient(),
	}
}

func (c *ChatClient) Complete(ctx context.Context, apiKey string, req domain.ChatRequest) (string, error) {
	if apiKey == "" {
		return "", ErrNoAPIKey
	}

	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages))
	for _, turn := range req.Messages {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}

	client := newClient(apiKey, c.baseURL, c.httpClient)
	resp, err := client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("creating chat completion: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
