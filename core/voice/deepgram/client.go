// Package deepgram implements the voice boundary against Deepgram's Aura
// websocket synthesis API. Each Synthesize call opens a connection, speaks
// one line, collects the returned audio frames until the flush confirmation,
// and closes the connection.
package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"slices"
	"strconv"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"

	coreaudio "github.com/castwerk/booth-core/core/audio"
	"github.com/castwerk/booth-core/core/voice"
)

type Client struct {
	apiKey   string
	host     string
	encoding coreaudio.EncodingInfo
}

type Option func(*Client)

// WithAPIKey overrides the DEEPGRAM_API_KEY environment lookup.
func WithAPIKey(apiKey string) Option {
	return func(c *Client) { c.apiKey = apiKey }
}

// WithHost points the client at a different websocket host, scheme included
// (ws://127.0.0.1:9999 in tests).
func WithHost(host string) Option {
	return func(c *Client) { c.host = host }
}

// WithEncoding overrides the default output encoding.
func WithEncoding(encoding coreaudio.EncodingInfo) Option {
	return func(c *Client) { c.encoding = encoding }
}

func New(opts ...Option) (*Client, error) {
	client := &Client{
		host:     "wss://api.deepgram.com",
		encoding: coreaudio.DefaultEncodingInfo(),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.apiKey == "" {
		apiKey, ok := os.LookupEnv("DEEPGRAM_API_KEY")
		if !ok {
			return nil, fmt.Errorf("deepgram api key not found")
		}
		client.apiKey = apiKey
	}
	return client, nil
}

func (c *Client) Synthesize(ctx context.Context, request voice.Request) (*voice.Clip, error) {
	ctx, span := tracer.Start(ctx, "deepgram speech synthesis")
	defer span.End()

	voiceModel := deepgramVoice(request.Voice)
	if voiceModel == "" {
		voiceModel = defaultVoice
	}
	if !slices.Contains(GetAvailableVoices(), voiceModel) {
		err := fmt.Errorf("invalid voice %q", request.Voice)
		span.RecordError(err)
		return nil, err
	}

	encoding := request.Encoding
	if encoding.IsZero() {
		encoding = c.encoding
	}
	span.SetAttributes(
		attribute.String("request.voice", string(voiceModel)),
		attribute.String("request.encoding", encoding.Format.Name()),
		attribute.Int("request.sample_rate", encoding.SampleRate),
	)

	conn, err := c.connectWebsocket(ctx, voiceModel, encoding)
	if err != nil {
		err = fmt.Errorf("failed to open websocket: %w", err)
		span.RecordError(err)
		return nil, err
	}
	defer conn.Close()

	// Unblock the read loop if the caller gives up mid-synthesis.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-watchDone:
		}
	}()

	if err := conn.WriteJSON(speakMsg(request.Text)); err != nil {
		err = fmt.Errorf("failed to send websocket speak message: %w", err)
		span.RecordError(err)
		return nil, err
	}
	if err := conn.WriteJSON(flushMsg); err != nil {
		err = fmt.Errorf("failed to send websocket flush message: %w", err)
		span.RecordError(err)
		return nil, err
	}

	var clip []byte
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				span.RecordError(ctxErr)
				return nil, ctxErr
			}
			err = fmt.Errorf("websocket read failed: %w", err)
			span.RecordError(err)
			return nil, err
		}

		switch msgType {
		case websocket.BinaryMessage:
			clip = append(clip, msg...)
		case websocket.TextMessage:
			var parsedMsg websocketMessage
			if err := json.Unmarshal(msg, &parsedMsg); err != nil {
				logger.DebugContext(ctx, "failed to unmarshal deepgram message", "error", err)
				continue
			}

			switch parsedMsg.Type {
			case "Flushed":
				_ = conn.WriteJSON(closeMsg)
				span.SetAttributes(attribute.Int("response.audio_bytes", len(clip)))
				if len(clip) == 0 {
					span.RecordError(voice.ErrEmptyAudio)
					return nil, voice.ErrEmptyAudio
				}
				return &voice.Clip{Audio: clip, Encoding: encoding}, nil
			case "Metadata", "Warning":
				// Informational only.
			default:
			}
		}
	}
}

func (c *Client) connectWebsocket(ctx context.Context, voiceModel deepgramVoice, encodingInfo coreaudio.EncodingInfo) (*websocket.Conn, error) {
	urlValues := url.Values{}
	urlValues.Set("encoding", encodingInfo.Format.Name())
	urlValues.Set("sample_rate", strconv.Itoa(encodingInfo.SampleRate))
	urlValues.Set("model", string(voiceModel))
	urlValues.Set("container", "none")

	base, err := url.Parse(c.host)
	if err != nil {
		return nil, fmt.Errorf("invalid websocket host: %w", err)
	}
	base.Path = "/v1/speak"
	base.RawQuery = urlValues.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, base.String(),
		http.Header{"Authorization": {"token " + c.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

type websocketMessage struct {
	Type string `json:"type"`
}

var (
	speakMsg = func(text string) struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} {
		return struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{Type: "Speak", Text: text}
	}
	flushMsg = websocketMessage{Type: "Flush"}
	closeMsg = websocketMessage{Type: "Close"}
)
