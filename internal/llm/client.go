// Package llm is a generative combination capability backed by an
// OpenAI-compatible Responses endpoint with structured output.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/genesis/internal/logger"
	"github.com/roach88/genesis/internal/resolver"
)

const responsesPath = "/v1/responses"

// Options configures a Client.
type Options struct {
	BaseURL    string
	APIKey     string
	Model      string
	MaxRetries int
	// Backoff is the first retry delay; it doubles per attempt.
	Backoff    time.Duration
	HTTPClient *http.Client
	Logger     *logger.Logger
}

// Client calls the Responses API. It implements resolver.Capability.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxRetries int
	backoff    time.Duration
	httpClient *http.Client
	log        *logger.Logger
}

var _ resolver.Capability = (*Client)(nil)

// NewClient validates opts and builds a client.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("llm: missing api key")
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, errors.New("llm: missing model")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	c := &Client{
		baseURL:    baseURL,
		apiKey:     opts.APIKey,
		model:      opts.Model,
		maxRetries: opts.MaxRetries,
		backoff:    opts.Backoff,
		httpClient: opts.HTTPClient,
		log:        opts.Logger,
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	}
	if c.backoff <= 0 {
		c.backoff = time.Second
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	return c, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responsesRequest struct {
	Model string    `json:"model"`
	Input []message `json:"input"`
	Text  struct {
		Format map[string]any `json:"format,omitempty"`
	} `json:"text"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type    string `json:"type"`
			Text    string `json:"text,omitempty"`
			Refusal string `json:"refusal,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Refusal string `json:"refusal,omitempty"`
}

// refusal returns the first refusal the model gave, if any.
func (r responsesResponse) refusal() string {
	if r.Refusal != "" {
		return r.Refusal
	}
	for _, item := range r.Output {
		for _, c := range item.Content {
			if c.Type == "refusal" && c.Refusal != "" {
				return c.Refusal
			}
		}
	}
	return ""
}

func extractOutputText(resp responsesResponse) string {
	var out strings.Builder
	for _, item := range resp.Output {
		if item.Type == "message" && item.Role == "assistant" {
			for _, c := range item.Content {
				if c.Type == "output_text" && c.Text != "" {
					out.WriteString(c.Text)
				}
			}
		}
	}
	return out.String()
}

// Combine asks the model about one pair and returns its JSON answer
// unvalidated; the resolver checks it against the schema.
func (c *Client) Combine(ctx context.Context, req resolver.Request) (json.RawMessage, error) {
	body := responsesRequest{
		Model: c.model,
		Input: []message{
			{Role: "system", Content: req.Preamble},
			{Role: "user", Content: req.UserPrompt()},
		},
	}
	body.Text.Format = map[string]any{
		"type":   "json_schema",
		"name":   req.SchemaName,
		"schema": req.Schema,
		"strict": true,
	}

	var resp responsesResponse
	if err := c.do(ctx, body, &resp); err != nil {
		return nil, err
	}
	if refusal := resp.refusal(); refusal != "" {
		return nil, fmt.Errorf("model refused: %s", refusal)
	}
	text := strings.TrimSpace(extractOutputText(resp))
	if text == "" {
		return nil, errors.New("no output_text found in response")
	}
	return json.RawMessage(text), nil
}

// HTTPError is a non-2xx answer from the endpoint.
type HTTPError struct {
	StatusCode int
	Body       string
	retryAfter time.Duration
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("llm http %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the status is worth retrying.
func (e *HTTPError) Retryable() bool {
	return e.StatusCode == http.StatusRequestTimeout ||
		e.StatusCode == http.StatusTooManyRequests ||
		(e.StatusCode >= 500 && e.StatusCode <= 599)
}

func (c *Client) do(ctx context.Context, body any, out any) error {
	backoff := c.backoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		raw, err := c.doOnce(ctx, body)
		if err == nil {
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("llm decode error: %w", uErr)
			}
			return nil
		}

		if !isRetryable(err) || attempt == c.maxRetries {
			return err
		}

		sleepFor := jitter(backoff)
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.retryAfter > 0 {
			sleepFor = httpErr.retryAfter
		}

		c.log.Warn("llm request retrying",
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		timer := time.NewTimer(sleepFor)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}

func (c *Client) doOnce(ctx context.Context, body any) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+responsesPath, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       string(raw),
			retryAfter: retryAfter(resp, 10*time.Second),
		}
	}
	return raw, nil
}

func isRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Retryable()
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

func retryAfter(resp *http.Response, limit time.Duration) time.Duration {
	ra := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if ra == "" {
		return 0
	}
	secs, err := strconv.Atoi(ra)
	if err != nil || secs <= 0 {
		return 0
	}
	d := time.Duration(secs) * time.Second
	if d > limit {
		d = limit
	}
	return d
}

func jitter(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	delta := float64(base) * 0.2
	low := float64(base) - delta
	return time.Duration(low + rand.Float64()*2*delta)
}
