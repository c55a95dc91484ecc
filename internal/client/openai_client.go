package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/aurify/api/internal/config"
	"github.com/aurify/api/internal/model"
)

// OpenAIClient handles communication with an OpenAI-compatible
// chat-completions API, including vision requests that pass the image by
// reference rather than embedding bytes.
type OpenAIClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// ContentPart is one element of a multi-part user message. Text parts carry
// the prompt; image parts carry the image URL.
type ContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *ImageURLPart `json:"image_url,omitempty"`
}

// ImageURLPart wraps the image reference for an image_url content part
type ImageURLPart struct {
	URL string `json:"url"`
}

// VisionMessage represents a message in a vision chat completion request
type VisionMessage struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// ChatCompletionRequest represents the request body for chat completion
type ChatCompletionRequest struct {
	Model     string          `json:"model"`
	Messages  []VisionMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

// ChatCompletionResponse represents the response from chat completion
type ChatCompletionResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

const (
	maxAttempts  = 3
	retryBackoff = 2 * time.Second
)

// NewOpenAIClient creates a new OpenAI API client
func NewOpenAIClient(cfg *config.OpenAIConfig) *OpenAIClient {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if cfg.Timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OpenAIClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}
}

// VisionCompletion sends a single chat completion request carrying the
// prompt text and the image reference as separate content parts, and returns
// the first choice's message content. Transient failures (transport errors,
// 429, 5xx) are retried with doubling backoff; other statuses fail
// immediately.
func (c *OpenAIClient) VisionCompletion(ctx context.Context, prompt, imageURL string, maxTokens int) (string, error) {
	reqBody := ChatCompletionRequest{
		Model: c.model,
		Messages: []VisionMessage{
			{
				Role: "user",
				Content: []ContentPart{
					{Type: "text", Text: prompt},
					{Type: "image_url", ImageURL: &ImageURLPart{URL: imageURL}},
				},
			},
		},
		MaxTokens: maxTokens,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	backoff := retryBackoff

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			log.Printf("[OpenAI API] Retry attempt %d/%d", attempt, maxAttempts)
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", model.ErrInvocation, ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		content, retryable, err := c.completeOnce(ctx, bodyBytes)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
	}

	return "", lastErr
}

// completeOnce performs exactly one network call. The second return value
// reports whether the failure is worth retrying.
func (c *OpenAIClient) completeOnce(ctx context.Context, body []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, fmt.Errorf("%w: %v", model.ErrInvocation, ctx.Err())
		}
		return "", true, fmt.Errorf("%w: %v", model.ErrInvocation, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, fmt.Errorf("%w: failed to read response: %v", model.ErrInvocation, err)
	}

	log.Printf("[OpenAI API] ← %d in %s", resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", retryable, fmt.Errorf("%w: status %d: %s", model.ErrInvocation, resp.StatusCode, string(respBody))
	}

	var chatResp ChatCompletionResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", false, fmt.Errorf("%w: %v", model.ErrMalformedCompletion, err)
	}

	if len(chatResp.Choices) == 0 {
		return "", false, fmt.Errorf("%w: no choices in response", model.ErrMalformedCompletion)
	}
	content := chatResp.Choices[0].Message.Content
	if content == "" {
		return "", false, fmt.Errorf("%w: empty message content", model.ErrMalformedCompletion)
	}

	return content, false, nil
}

// IsConfigured returns true if the client has valid configuration
func (c *OpenAIClient) IsConfigured() bool {
	return c.apiKey != ""
}
