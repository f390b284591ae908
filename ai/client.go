package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"dira-directory/backend/pkg/logger"
)

// Common errors
var (
	ErrMissingAPIKey = errors.New("ai: missing API key")
	ErrEmptyResponse = errors.New("ai: model returned an empty response")
)

// Client talks to an OpenAI-compatible chat-completions gateway over SSE.
// It is injected into the chat service rather than held as a singleton so
// tests can substitute a fake streamer.
type Client struct {
	config     Config
	httpClient *http.Client
	log        *logger.Logger

	requestCounter  metric.Int64Counter
	requestDuration metric.Float64Histogram
}

// NewClient creates a gateway client from the given config
func NewClient(config Config, log *logger.Logger) (*Client, error) {
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://openrouter.ai/api"
	}
	if config.Timeout <= 0 {
		config.Timeout = 120 * time.Second
	}

	meter := otel.Meter("dira-directory/ai")
	requestCounter, err := meter.Int64Counter("ai_gateway_requests_total",
		metric.WithDescription("Total chat-completion requests sent to the AI gateway"))
	if err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}
	requestDuration, err := meter.Float64Histogram("ai_gateway_request_duration_seconds",
		metric.WithDescription("Duration of AI gateway requests"))
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		log:        log,
		requestCounter:  requestCounter,
		requestDuration: requestDuration,
	}, nil
}

// Model returns the configured model identifier
func (c *Client) Model() string {
	return c.config.Model
}

// StreamChat sends the message history to the gateway with streaming enabled
// and invokes onDelta for every content fragment as it arrives. It returns
// the full concatenated response once the stream finishes.
func (c *Client) StreamChat(ctx context.Context, messages []Message, onDelta func(string)) (string, error) {
	start := time.Now()
	defer func() {
		c.requestDuration.Record(ctx, time.Since(start).Seconds())
	}()
	c.requestCounter.Add(ctx, 1)

	payload := chatCompletionRequest{
		Model:       c.config.Model,
		Messages:    messages,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
		Stream:      true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.decodeError(resp)
	}

	return c.readStream(ctx, resp.Body, onDelta)
}

// readStream consumes the SSE body, forwarding each content delta and
// accumulating the full response.
func (c *Client) readStream(ctx context.Context, body io.Reader, onDelta func(string)) (string, error) {
	var full strings.Builder

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return full.String(), ctx.Err()
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}

		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			break
		}

		var chunk chatCompletionChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Comment lines and keep-alives are not chunks
			c.log.Debug("skipping unparseable stream event", "data", data)
			continue
		}

		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			full.WriteString(choice.Delta.Content)
			if onDelta != nil {
				onDelta(choice.Delta.Content)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return full.String(), fmt.Errorf("error reading ai gateway stream: %w", err)
	}

	if full.Len() == 0 {
		return "", ErrEmptyResponse
	}

	return full.String(), nil
}

// decodeError turns a non-200 gateway response into an error
func (c *Client) decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 8*1024))

	var envelope apiError
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		return fmt.Errorf("ai gateway error (status %d): %s", resp.StatusCode, envelope.Error.Message)
	}

	return fmt.Errorf("ai gateway error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
}
