package gemini

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"google.golang.org/genai"

	"cv-improver/internal/llm"
	"cv-improver/internal/prompt"
	"cv-improver/internal/shared/telemetry"
)

// SDKClient implements llm.Provider with the official genai SDK. A genai
// client is bound to one key, so one is built per call.
type SDKClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
	genConfig  llm.GenerationConfig
}

// NewSDKClient constructs an SDK-backed provider.
func NewSDKClient(opts Options) (*SDKClient, error) {
	rest, err := NewClient(opts)
	if err != nil {
		return nil, err
	}
	return &SDKClient{
		baseURL:    rest.baseURL,
		model:      rest.model,
		httpClient: rest.httpClient,
		genConfig:  rest.genConfig,
	}, nil
}

func (c *SDKClient) client(ctx context.Context, key string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      key,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  c.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: c.baseURL + "/"},
	})
	if err != nil {
		return nil, &llm.Error{Kind: llm.CredentialInvalid, Message: err.Error(), Err: err}
	}
	return client, nil
}

// ValidateCredential lists models with the key.
func (c *SDKClient) ValidateCredential(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return &llm.Error{Kind: llm.CredentialInvalid, Message: "API key is empty"}
	}
	client, err := c.client(ctx, key)
	if err != nil {
		return err
	}
	start := time.Now()
	_, err = client.Models.List(ctx, &genai.ListModelsConfig{})
	telemetry.Info("llm.validate", map[string]any{
		"model":       c.model,
		"transport":   "sdk",
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if err != nil {
		return mapSDKError(err, llm.CredentialInvalid)
	}
	return nil
}

// Generate sends one GenerateContent call with the fixed generation config.
func (c *SDKClient) Generate(ctx context.Context, promptText string, key string) (string, error) {
	client, err := c.client(ctx, key)
	if err != nil {
		return "", err
	}
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(c.genConfig.Temperature),
		TopK:            genai.Ptr(float32(c.genConfig.TopK)),
		TopP:            genai.Ptr(c.genConfig.TopP),
		MaxOutputTokens: int32(c.genConfig.MaxOutputTokens),
	}

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, c.model, genai.Text(promptText), cfg)
	telemetry.Info("llm.response", map[string]any{
		"model":       c.model,
		"transport":   "sdk",
		"prompt_hash": prompt.Hash(promptText),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if err != nil {
		return "", mapSDKError(err, llm.GenerationFailed)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &llm.Error{Kind: llm.MalformedResponse, Message: malformedMessage}
	}
	part := resp.Candidates[0].Content.Parts[0]
	if part == nil {
		return "", &llm.Error{Kind: llm.MalformedResponse, Message: malformedMessage}
	}
	return candidateText(part.Text, http.StatusOK)
}

// mapSDKError turns API errors into kind. Transport and context failures are
// network failures; anything else means the body could not be decoded.
func mapSDKError(err error, kind llm.Kind) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiError(apiErr, kind, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiError(*apiErrPtr, kind, err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return networkError(err)
	}
	return &llm.Error{Kind: llm.MalformedResponse, Message: malformedMessage, Err: err}
}

func apiError(apiErr genai.APIError, kind llm.Kind, err error) error {
	msg := strings.TrimSpace(apiErr.Message)
	if msg == "" {
		msg = fallbackErrorMessage
	}
	return &llm.Error{Kind: kind, Message: msg, Status: apiErr.Code, Err: err}
}

var _ llm.Provider = (*SDKClient)(nil)
