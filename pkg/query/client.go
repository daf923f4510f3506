// Package query sends a single chat completion request and turns the
// response into one answer string.
package query

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/aish-cli/aish/pkg/models"
)

// Defaults for the xAI chat completions API.
const (
	DefaultEndpoint = "https://api.x.ai/v1/chat/completions"
	DefaultModel    = "grok-2-latest"
)

// CredentialFunc returns the bearer token for a request.
type CredentialFunc func() (string, error)

// Client talks to one chat completion endpoint.
type Client struct {
	endpoint   string
	model      string
	credential CredentialFunc
	httpClient *http.Client
	diag       io.Writer
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. The default has no timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithDiagnostics sets where error bodies from the endpoint are copied.
func WithDiagnostics(w io.Writer) Option {
	return func(c *Client) { c.diag = w }
}

// WithLogger sets the client logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for endpoint and model.
func New(endpoint, model string, credential CredentialFunc, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		model:      model,
		credential: credential,
		httpClient: &http.Client{},
		diag:       os.Stderr,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send asks the model to answer userQuery under systemPrompt and returns
// the concatenated content of every returned choice.
func (c *Client) Send(ctx context.Context, systemPrompt, userQuery string) (string, error) {
	apiKey, err := c.credential()
	if err != nil {
		return "", &Error{Kind: ErrCredential, Err: err}
	}

	payload, err := json.Marshal(models.ChatCompletionRequest{
		Model: c.model,
		Messages: []models.ChatMessage{
			{Role: models.RoleSystem, Content: systemPrompt},
			{Role: models.RoleUser, Content: userQuery},
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &Error{Kind: ErrTransport, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug().Str("endpoint", c.endpoint).Str("model", c.model).Msg("sending query")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{Kind: ErrTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Kind: ErrTransport, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug().Int("status", resp.StatusCode).Int("bytes", len(body)).Msg("query response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > 0 {
			_, _ = c.diag.Write(body)
			if body[len(body)-1] != '\n' {
				_, _ = io.WriteString(c.diag, "\n")
			}
		}
		return "", &Error{Kind: ErrTransport, StatusCode: resp.StatusCode}
	}

	answer, err := parseAnswer(body)
	if err != nil {
		return "", &Error{Kind: ErrMalformedResponse, Err: err}
	}
	if answer == "" {
		return "", &Error{Kind: ErrEmptyAnswer}
	}
	return answer, nil
}

// parseAnswer decodes a chat completion response and joins the content of
// every choice in order. Field names match exactly, absent or null fields
// are errors and unknown ones are ignored.
func parseAnswer(body []byte) (string, error) {
	if !utf8.Valid(body) {
		return "", errors.New("invalid UTF-8")
	}

	var resp map[string]json.RawMessage
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", err
	}
	rawChoices, err := field(resp, "choices")
	if err != nil {
		return "", err
	}
	var choices []map[string]json.RawMessage
	if err := json.Unmarshal(rawChoices, &choices); err != nil {
		return "", fmt.Errorf("field \"choices\": %w", err)
	}

	var b strings.Builder
	for i, choice := range choices {
		rawMessage, err := field(choice, "message")
		if err != nil {
			return "", fmt.Errorf("choice %d: %w", i, err)
		}
		var message map[string]json.RawMessage
		if err := json.Unmarshal(rawMessage, &message); err != nil {
			return "", fmt.Errorf("choice %d: field \"message\": %w", i, err)
		}
		rawContent, err := field(message, "content")
		if err != nil {
			return "", fmt.Errorf("choice %d: %w", i, err)
		}
		var content string
		if err := json.Unmarshal(rawContent, &content); err != nil {
			return "", fmt.Errorf("choice %d: field \"content\": %w", i, err)
		}
		b.WriteString(content)
	}
	return b.String(), nil
}

func field(obj map[string]json.RawMessage, name string) (json.RawMessage, error) {
	v, ok := obj[name]
	if !ok || string(v) == "null" {
		return nil, fmt.Errorf("missing field %q", name)
	}
	return v, nil
}
