package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"datadesk/ports"

	"github.com/tidwall/gjson"
)

// Config holds the settings of an OpenAI-compatible endpoint
type Config struct {
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
}

// NewOpenAIClient creates an LLM client based on config
func NewOpenAIClient(config Config) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("missing OpenAI API key")
	}

	baseURL := strings.TrimSpace(config.BaseURL)
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &OpenAIClient{
		APIKey:      config.APIKey,
		BaseURL:     baseURL,
		Timeout:     timeout,
		Temperature: config.Temperature,
		httpClient:  &http.Client{Timeout: timeout},
	}, nil
}

// MockLLMClient is a mock LLM client for local runs without an API key
type MockLLMClient struct {
	Response string // Set this for testing
	Error    error  // Set this to simulate errors
}

var _ ports.LLMClient = (*MockLLMClient)(nil)

func (m *MockLLMClient) ChatCompletion(ctx context.Context, model string, prompt string, maxTokens int) (string, error) {
	if m.Error != nil {
		return "", m.Error
	}
	if m.Response != "" {
		return m.Response, nil
	}
	return fmt.Sprintf("_LLM disabled: received a %d character prompt._", len(prompt)), nil
}

// OpenAIClient implements LLMClient for OpenAI
type OpenAIClient struct {
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64

	httpClient *http.Client
}

var _ ports.LLMClient = (*OpenAIClient)(nil)

func (c *OpenAIClient) ChatCompletion(ctx context.Context, model string, prompt string, maxTokens int) (string, error) {
	if strings.TrimSpace(model) == "" {
		return "", fmt.Errorf("missing model")
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	// Chat Completions API: one system and one user message
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type reqBody struct {
		Model       string  `json:"model"`
		Messages    []msg   `json:"messages"`
		Temperature float64 `json:"temperature,omitempty"`
		MaxTokens   int     `json:"max_tokens,omitempty"`
	}
	body := reqBody{
		Model: model,
		Messages: []msg{
			{Role: "system", Content: "You are a data analyst. Answer from the data shown; say so when it is not enough."},
			{Role: "user", Content: prompt},
		},
		Temperature: c.Temperature,
		MaxTokens:   maxTokens,
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	client := c.httpClient
	if client == nil {
		client = &http.Client{Timeout: c.Timeout}
	}
	url := strings.TrimRight(c.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if msg := gjson.GetBytes(respRaw, "error.message"); msg.Exists() {
			return "", fmt.Errorf("openai http %d: %s", resp.StatusCode, msg.String())
		}
		return "", fmt.Errorf("openai http %d: %s", resp.StatusCode, strings.TrimSpace(string(respRaw)))
	}

	if !gjson.ValidBytes(respRaw) {
		return "", fmt.Errorf("openai response is not valid JSON")
	}
	content := gjson.GetBytes(respRaw, "choices.0.message.content")
	if !content.Exists() {
		return "", fmt.Errorf("openai response missing choices")
	}
	return content.String(), nil
}

