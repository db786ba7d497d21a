// Package openai implements the chat boundary on the official OpenAI SDK.
// Unlike the groq provider it returns a plain line without a structured
// emotion pick; the voice stage treats a missing emotion as neutral delivery.
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.opentelemetry.io/otel/attribute"

	"github.com/castwerk/booth-core/core/chat"
)

const defaultModel = "gpt-4o-mini"

type Client struct {
	client    openai.Client
	model     string
	maxTokens int64
}

type Option func(*Client)

// WithModel overrides the default completion model.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithMaxTokens caps the completion length. Commentary lines are short; the
// default cap keeps a rambling model from burning the turn deadline.
func WithMaxTokens(maxTokens int64) Option {
	return func(c *Client) { c.maxTokens = maxTokens }
}

func New(apiKey string, opts ...Option) *Client {
	client := &Client{
		client:    openai.NewClient(option.WithAPIKey(apiKey)),
		model:     defaultModel,
		maxTokens: 120,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

func (c *Client) Complete(ctx context.Context, request chat.Request) (*chat.Response, error) {
	ctx, span := tracer.Start(ctx, "openai chat completion")
	defer span.End()

	span.SetAttributes(attribute.String("request.model", c.model))
	span.SetAttributes(attribute.String("request.session_id", request.SessionID))

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(request.Instructions),
			openai.UserMessage(request.Prompt),
		},
		User: openai.String(request.SessionID),
	}
	if c.maxTokens > 0 {
		params.MaxTokens = openai.Int(c.maxTokens)
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		err = fmt.Errorf("error sending request: %w", err)
		span.RecordError(err)
		span.SetAttributes(attribute.String("error", err.Error()))
		return nil, err
	}
	if len(completion.Choices) == 0 {
		span.RecordError(chat.ErrNoChoices)
		return nil, chat.ErrNoChoices
	}

	line := strings.TrimSpace(completion.Choices[0].Message.Content)
	if line == "" {
		return nil, fmt.Errorf("empty completion content: %w", chat.ErrNoChoices)
	}

	return &chat.Response{Line: line}, nil
}
