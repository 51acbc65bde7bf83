package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(Config{})
	assert.Error(t, err)

	c, err := NewOpenAIClient(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "https://api.openai.com/v1", c.BaseURL)
	assert.Positive(t, c.Timeout)
}

func TestOpenAIClientChatCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
			Messages  []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body.Model)
		assert.Equal(t, 256, body.MaxTokens)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "what is in column a?", body.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"Mostly integers."}}]}`))
	}))
	defer srv.Close()

	c, err := NewOpenAIClient(Config{APIKey: "secret", BaseURL: srv.URL + "/v1/"})
	require.NoError(t, err)

	answer, err := c.ChatCompletion(context.Background(), "gpt-4o-mini", "what is in column a?", 256)
	require.NoError(t, err)
	assert.Equal(t, "Mostly integers.", answer)
}

func TestOpenAIClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := NewOpenAIClient(Config{APIKey: "secret", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.ChatCompletion(context.Background(), "m", "p", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	_, err = c.ChatCompletion(context.Background(), " ", "p", 10)
	assert.Error(t, err)
}

func TestOpenAIClientErrorBodies(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"provider error message", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, "bad key"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "missing choices"},
		{"not json", http.StatusOK, `<html>`, "not valid JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := NewOpenAIClient(Config{APIKey: "secret", BaseURL: srv.URL})
			require.NoError(t, err)

			_, err = c.ChatCompletion(context.Background(), "m", "p", 10)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMockLLMClient(t *testing.T) {
	m := &MockLLMClient{Response: "fixed"}
	out, err := m.ChatCompletion(context.Background(), "m", "p", 1)
	require.NoError(t, err)
	assert.Equal(t, "fixed", out)

	m = &MockLLMClient{Error: errors.New("down")}
	_, err = m.ChatCompletion(context.Background(), "m", "p", 1)
	assert.Error(t, err)
}
