package openai

import (
	"errors"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultBaseURL = "https://api.openai.com/v1"

var (
	ErrEmptyCompletion = errors.New("chat completion returned no content")
	ErrNoAPIKey        = errors.New("openai api key not configured")
)

// KeyFunc returns the credential in effect at call time.
type KeyFunc func() string

// newClient builds a client for one request. The key can change between calls, so
// clients are not cached.
func newClient(apiKey, baseURL string, httpClient *http.Client) *goopenai.Client {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = httpClient
	return goopenai.NewClientWithConfig(cfg)
}

func tracedHTTPClient() *http.Client {
	return &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return "openai " + r.URL.Path
			}),
		),
	}
}
