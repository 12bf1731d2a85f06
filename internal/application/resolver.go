package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"voice-assistant/internal/domain"
)

var ErrNoChatClient = errors.New("no chat client configured")

// ChatCompleter sends one chat-completion request and returns the reply text.
type ChatCompleter interface {
	Complete(ctx context.Context, apiKey string, req domain.ChatRequest) (string, error)
}

type Resolver struct {
	chat        ChatCompleter
	credentials *Credentials
	settings    *Settings
	history     *History
	rules       []Rule
	logger      *slog.Logger
}

func NewResolver(
	chat ChatCompleter,
	credentials *Credentials,
	settings *Settings,
	history *History,
	logger *slog.Logger,
) *Resolver {
	return &Resolver{
		chat:        chat,
		credentials: credentials,
		settings:    settings,
		history:     history,
		rules:       DefaultRules,
		logger:      logger,
	}
}

// Answer is a resolved reply. Only answers from the chat endpoint are kept in the
// conversation history, and only once Record is called for them.
type Answer struct {
	Text string
	chat bool
}

// Resolve produces a reply for transcript. With a credential it asks the chat endpoint;
// without one it uses the canned rules. History is not touched.
func (r *Resolver) Resolve(ctx context.Context, transcript string) (Answer, error) {
	apiKey := r.credentials.APIKey()

	ctx, span := tracer.Start(ctx, "resolve reply")
	defer span.End()
	span.SetAttributes(
		attribute.Bool("credential_configured", apiKey != ""),
		attribute.Int("transcript_length", len(transcript)),
	)

	if apiKey == "" {
		return Answer{Text: MatchRule(r.rules, transcript, DefaultReply)}, nil
	}

	reply, err := r.complete(ctx, apiKey, transcript)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "chat completion failed")
		return Answer{}, err
	}
	return Answer{Text: reply, chat: true}, nil
}

func (r *Resolver) complete(ctx context.Context, apiKey, transcript string) (string, error) {
	if r.chat == nil {
		return "", fmt.Errorf("chat completion: %w", ErrNoChatClient)
	}

	opts := r.settings.Snapshot()
	prior := r.history.Turns()

	messages := make([]domain.Turn, 0, len(prior)+2)
	messages = append(messages, domain.Turn{Role: domain.RoleSystem, Content: opts.SystemPrompt})
	messages = append(messages, prior...)
	messages = append(messages, domain.Turn{Role: domain.RoleUser, Content: transcript})

	reply, err := r.chat.Complete(ctx, apiKey, domain.ChatRequest{
		Model:       opts.Model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

// Record appends the exchange to history when the answer came from the chat endpoint.
// Call it once the reply is actually delivered.
func (r *Resolver) Record(transcript string, a Answer) {
	if !a.chat {
		return
	}
	r.history.Append(
		domain.Turn{Role: domain.RoleUser, Content: transcript},
		domain.Turn{Role: domain.RoleAssistant, Content: a.Text},
	)
}

// Reply is Resolve with failures replaced by ApologyReply.
func (r *Resolver) Reply(ctx context.Context, transcript string) Answer {
	a, err := r.Resolve(ctx, transcript)
	if err != nil {
		r.logger.Error("resolving reply", "error", err)
		return Answer{Text: ApologyReply}
	}
	return a
}
