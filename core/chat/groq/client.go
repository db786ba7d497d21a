// Package groq implements the chat boundary against Groq's OpenAI-compatible
// completions API, using a JSON-schema response format so the model returns a
// structured line+emotion payload instead of free text.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/invopop/jsonschema"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/castwerk/booth-core/core/chat"
)

const (
	apiURL       = "https://api.groq.com/openai/v1/chat/completions"
	defaultModel = "llama-3.3-70b-versatile"
)

type Client struct {
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
}

type Option func(*Client)

// WithModel overrides the default completion model.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithURL points the client at a different OpenAI-compatible endpoint.
func WithURL(url string) Option {
	return func(c *Client) { c.url = url }
}

func New(apiKey string, opts ...Option) *Client {
	client := &Client{
		apiKey:     apiKey,
		model:      defaultModel,
		url:        apiURL,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// structuredLine is the schema the model fills in.
type structuredLine struct {
	Line    string `json:"line" jsonschema:"description=One short commentary line."`
	Emotion string `json:"emotion" jsonschema:"description=One emotion label from the allowed set."`
}

func (c *Client) Complete(ctx context.Context, request chat.Request) (*chat.Response, error) {
	ctx, span := tracer.Start(ctx, "groq chat completion")
	defer span.End()

	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(structuredLine{})

	reqBody := completionRequestBody{
		Model:    c.model,
		Messages: toMessages(request.Instructions, request.Prompt),
		User:     request.SessionID,
		ResponseFormat: &chatResponseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchemaFormat{
				Name:   "structuredLine",
				Schema: *schema,
				Strict: true,
			},
		},
	}

	span.SetAttributes(attribute.String("request.model", c.model))
	span.SetAttributes(attribute.String("request.session_id", request.SessionID))

	requestBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		err = fmt.Errorf("error marshalling JSON: %w", err)
		span.RecordError(err)
		span.SetAttributes(attribute.String("error", err.Error()))
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		err = fmt.Errorf("error creating HTTP request: %w", err)
		span.RecordError(err)
		span.SetAttributes(attribute.String("error", err.Error()))
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("error sending request: %w", err)
		span.RecordError(err)
		span.SetAttributes(attribute.String("error", err.Error()))
		return nil, err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		if errorBody, err := io.ReadAll(resp.Body); err == nil {
			span.SetAttributes(attribute.String("response.error", string(errorBody)))
		}

		err := fmt.Errorf("non-OK HTTP status: %s", resp.Status)
		span.RecordError(err)
		span.SetAttributes(attribute.String("error", err.Error()))
		return nil, err
	}

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("error reading response body: %w", err)
		span.RecordError(err)
		span.SetAttributes(attribute.String("error", err.Error()))
		return nil, err
	}

	var responseBody completionResponseBody
	if err := json.Unmarshal(respBodyBytes, &responseBody); err != nil {
		err = fmt.Errorf("error unmarshalling response: %w", err)
		span.RecordError(err)
		span.SetAttributes(attribute.String("error", err.Error()))
		return nil, err
	}
	if len(responseBody.Choices) == 0 {
		span.RecordError(chat.ErrNoChoices)
		return nil, chat.ErrNoChoices
	}

	content := responseBody.Choices[0].Message.Content
	// Some models wrap the schema payload in a markdown fence despite the
	// response format.
	if split := strings.Split(content, "```"); len(split) > 1 {
		content = split[1]
	}

	var line structuredLine
	if err := json.Unmarshal([]byte(content), &line); err != nil {
		err = fmt.Errorf("error unmarshalling structured line: %w", err)
		span.RecordError(err)
		span.SetAttributes(attribute.String("error", err.Error()))
		return nil, err
	}
	if line.Line == "" {
		span.RecordError(chat.ErrNoChoices)
		return nil, fmt.Errorf("empty line in structured response: %w", chat.ErrNoChoices)
	}
	if len(request.Emotions) > 0 && !slices.Contains(request.Emotions, line.Emotion) {
		logger.DebugContext(ctx, "discarding emotion outside the allowed set", "emotion", line.Emotion)
		line.Emotion = ""
	}

	return &chat.Response{Line: strings.TrimSpace(line.Line), Emotion: line.Emotion}, nil
}

type completionRequestBody struct {
	Model          string              `json:"model"`
	Messages       []message           `json:"messages"`
	User           string              `json:"user,omitempty"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type chatResponseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *jsonSchemaFormat `json:"json_schema,omitempty"`
}

type jsonSchemaFormat struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Schema      jsonschema.Schema `json:"schema"`
	Strict      bool              `json:"strict"`
}

type completionResponseBody struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role,omitempty"`
			Content string `json:"content,omitempty"`
		} `json:"message"`
		FinishReason *string `json:"finish_reason,omitempty"`
	} `json:"choices"`
	Usage *struct {
		QueueTime        float64 `json:"queue_time"`
		PromptTokens     int     `json:"prompt_tokens"`
		CompletionTokens int     `json:"completion_tokens"`
		TotalTokens      int     `json:"total_tokens"`
	} `json:"usage,omitempty"`
}
