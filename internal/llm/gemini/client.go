// Package gemini talks to the Gemini generative language API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cv-improver/internal/llm"
	"cv-improver/internal/prompt"
	"cv-improver/internal/shared/telemetry"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-pro"

	fallbackErrorMessage = "An unknown error occurred."
	malformedMessage     = "Received an unexpected response format from the API."
	maxResponseBytes     = 4 << 20
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client implements llm.Provider over the REST API. Requests are single
// attempts; the key travels as the "key" query parameter.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	genConfig  llm.GenerationConfig
}

// NewClient constructs a REST client, applying defaults for empty options.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid GEMINI_BASE_URL: %w", err)
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    base,
		model:      model,
		httpClient: httpClient,
		genConfig:  llm.DefaultGenerationConfig(),
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content            `json:"contents"`
	GenerationConfig llm.GenerationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type errorEnvelope struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// ValidateCredential lists models with the key. Any 2xx means the key is usable.
func (c *Client) ValidateCredential(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return &llm.Error{Kind: llm.CredentialInvalid, Message: "API key is empty"}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/v1beta/models", key), nil)
	if err != nil {
		return err
	}

	start := time.Now()
	status, body, err := c.do(req)
	if err != nil {
		return err
	}
	telemetry.Info("llm.validate", map[string]any{
		"model":       c.model,
		"status":      status,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if status < 200 || status > 299 {
		return &llm.Error{Kind: llm.CredentialInvalid, Message: errorMessage(body), Status: status}
	}
	return nil
}

// Generate sends one generateContent request and returns the first candidate's text.
func (c *Client) Generate(ctx context.Context, promptText string, key string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: promptText}}}},
		GenerationConfig: c.genConfig,
	})
	if err != nil {
		return "", err
	}
	path := "/v1beta/models/" + url.PathEscape(c.model) + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, key), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	status, body, err := c.do(req)
	if err != nil {
		return "", err
	}
	telemetry.Info("llm.response", map[string]any{
		"model":       c.model,
		"prompt_hash": prompt.Hash(promptText),
		"status":      status,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if status < 200 || status > 299 {
		return "", &llm.Error{Kind: llm.GenerationFailed, Message: errorMessage(body), Status: status}
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &llm.Error{Kind: llm.MalformedResponse, Message: malformedMessage, Status: status, Err: err}
	}
	if len(parsed.Candidates) == 0 || parsed.Candidates[0].Content == nil || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", &llm.Error{Kind: llm.MalformedResponse, Message: malformedMessage, Status: status}
	}
	return candidateText(parsed.Candidates[0].Content.Parts[0].Text, status)
}

// candidateText rejects a first part with no text, as returned for blocked
// or empty candidates.
func candidateText(text string, status int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", &llm.Error{Kind: llm.MalformedResponse, Message: malformedMessage, Status: status}
	}
	return text, nil
}

func (c *Client) endpoint(path, key string) string {
	return c.baseURL + path + "?key=" + url.QueryEscape(key)
}

// do executes req and reads the body. Transport failures become NetworkFailure
// with the request URL stripped so the key never reaches an error message.
func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, networkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, networkError(err)
	}
	return resp.StatusCode, body, nil
}

func networkError(err error) error {
	cause := err
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		cause = urlErr.Err
	}
	msg := cause.Error()
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(msg, "Client.Timeout") {
		msg = "request timeout: " + msg
	}
	return &llm.Error{Kind: llm.NetworkFailure, Message: msg, Err: cause}
}

func errorMessage(body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Error == nil {
		return fallbackErrorMessage
	}
	if msg := strings.TrimSpace(env.Error.Message); msg != "" {
		return msg
	}
	return fallbackErrorMessage
}

var _ llm.Provider = (*Client)(nil)
