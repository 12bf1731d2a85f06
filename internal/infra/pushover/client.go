package pushover

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"voice-assistant/internal/application"
	"voice-assistant/internal/infra"
)

const defaultURL = "https://api.pushover.net/1/messages.json"

type Client struct {
	token      string
	userKey    string
	title      string
	endpoint   string
	httpClient *http.Client
	backoff    infra.Backoff
}

func NewClient(token, userKey string) *Client {
	return NewClientWithURL(token, userKey, defaultURL)
}

func NewClientWithURL(token, userKey, endpoint string) *Client {
	return &Client{
		token:      token,
		userKey:    userKey,
		title:      "Voice Assistant",
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		backoff:    infra.DefaultBackoff(),
	}
}

func (c *Client) Enabled() bool {
	return c.token != "" && c.userKey != ""
}

// Notify sends message, retrying throttled and server-side failures.
func (c *Client) Notify(ctx context.Context, message string) error {
	if !c.Enabled() {
		return nil
	}

	data := url.Values{}
	data.Set("token", c.token)
	data.Set("user", c.userKey)
	data.Set("message", message)
	data.Set("title", c.title)
	body := data.Encode()

	return infra.Retry(ctx, c.backoff, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(body))
		if err != nil {
			return infra.Permanent(fmt.Errorf("creating request: %w", err))
		}

		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending notification: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("pushover error: %s", resp.Status)
			if infra.RetryableStatus(resp.StatusCode) {
				return err
			}
			return infra.Permanent(err)
		}
		return nil
	})
}

// ErrorPresenter forwards the errors shown to the user as push notifications. Every
// other presenter event is ignored.
type ErrorPresenter struct {
	application.NoopPresenter
	client *Client
	logger *slog.Logger
}

func NewErrorPresenter(client *Client, logger *slog.Logger) *ErrorPresenter {
	return &ErrorPresenter{client: client, logger: logger}
}

func (p *ErrorPresenter) ErrorRaised(message string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := p.client.Notify(ctx, message); err != nil {
			p.logger.Warn("sending push notification", "error", err)
		}
	}()
}
