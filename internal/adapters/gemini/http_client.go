package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// APIError is an error response from the upstream API. The handler
// relays StatusCode to the caller so quota and auth failures are not
// masked as server errors.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gemini: %s", e.Message)
	}
	return fmt.Sprintf("gemini: unexpected status %d", e.StatusCode)
}

// HTTPClient calls the Google Generative Language API.
type HTTPClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a client for the given API key and model.
// PRE: apiKey is a valid API key; model names a generateContent model
// POST: Returns a ready-to-use client
func NewHTTPClient(apiKey, model string) *HTTPClient {
	return &HTTPClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// WithBaseURL overrides the API endpoint. Used in tests.
func (c *HTTPClient) WithBaseURL(url string) *HTTPClient {
	c.baseURL = url
	return c
}

// Request/response shapes for the generateContent endpoint.
type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Role  string         `json:"role,omitempty"`
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []generatePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate produces a reply to message given the prior conversation.
// PRE: message is non-empty
// POST: Returns the first candidate's text, or an error
func (c *HTTPClient) Generate(ctx context.Context, message string, history []Turn) (string, error) {
	contents := make([]generateContent, 0, len(history)+1)
	for _, turn := range history {
		contents = append(contents, generateContent{
			Role:  turn.Role,
			Parts: []generatePart{{Text: turn.Text}},
		})
	}
	contents = append(contents, generateContent{
		Role:  "user",
		Parts: []generatePart{{Text: message}},
	})

	resp, err := c.post(ctx, generateRequest{Contents: contents})
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: empty response")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// Ping verifies the upstream API is reachable and the key works.
// POST: Returns nil when a trivial generation succeeds
func (c *HTTPClient) Ping(ctx context.Context) error {
	_, err := c.Generate(ctx, "Hello", nil)
	return err
}

func (c *HTTPClient) post(ctx context.Context, reqBody generateRequest) (generateResponse, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return generateResponse{}, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return generateResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.client.Do(req)
	if err != nil {
		slog.Error("gemini_request_failed", "error", err, "model", c.model)
		return generateResponse{}, fmt.Errorf("gemini request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return generateResponse{}, err
	}

	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return generateResponse{}, fmt.Errorf("gemini: decode response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: httpResp.StatusCode}
		if resp.Error != nil {
			apiErr.Message = resp.Error.Message
		}
		slog.Error("gemini_api_error", "status", apiErr.StatusCode, "message", apiErr.Message, "model", c.model)
		return generateResponse{}, apiErr
	}
	if resp.Error != nil {
		return generateResponse{}, fmt.Errorf("gemini: %s", resp.Error.Message)
	}
	return resp, nil
}
