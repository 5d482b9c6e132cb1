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
)

const (
	OpenAIBaseURL = "https://api.openai.com/v1/chat/completions"
	GroqBaseURL   = "https://api.groq.com/openai/v1/chat/completions"
)

// SystemPrompt is the system turn sent with every chat request.
const SystemPrompt = "You are a creative programmer."

// ChatClient calls an OpenAI-compatible Chat Completions endpoint
// (OpenAI, Groq, local gateways).
type ChatClient struct {
	http    *http.Client
	apiKey  string
	model   string
	baseURL string
}

// NewChatClient creates a chat client. An empty baseURL targets OpenAI.
func NewChatClient(apiKey, model, baseURL string) *ChatClient {
	if baseURL == "" {
		baseURL = OpenAIBaseURL
	}
	if model == "" {
		model = "gpt-4-turbo"
	}
	return &ChatClient{
		http:    &http.Client{Timeout: 120 * time.Second},
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
	}
}

// WithHTTPClient replaces the transport, mainly for tests.
func (c *ChatClient) WithHTTPClient(h *http.Client) *ChatClient {
	c.http = h
	return c
}

func (c *ChatClient) Name() string { return "Chat:" + c.model }
func (c *ChatClient) Close() error { return nil }

type chatReq struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateText sends the system prompt and prompt as one exchange and returns
// the first choice's content.
func (c *ChatClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatReq{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		err := fmt.Errorf("chat: unexpected status %s: %s", resp.Status, string(raw))
		switch {
		case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
			return "", NewPermanentError(err)
		case resp.StatusCode == http.StatusBadRequest && strings.Contains(string(raw), "context_length_exceeded"):
			return "", NewPermanentError(err)
		}
		return "", err
	}
	var out chatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("chat: decode response: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return out.Choices[0].Message.Content, nil
}
