// Package openai implements the OpenAI chat-completions LLM provider: a
// hand-rolled POST to /v1/chat/completions with a Bearer API key, rather
// than pulling in a heavy SDK dependency.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/driveguide/enrichpipe/llm"
)

const defaultBaseURL = "https://api.openai.com/v1/chat/completions"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Provider calls the OpenAI chat completions API.
type Provider struct {
	APIKey  string
	Model   string
	BaseURL string
	HTTP    *http.Client
}

func New(apiKey, model string, httpClient *http.Client) *Provider {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Provider{APIKey: apiKey, Model: model, BaseURL: defaultBaseURL, HTTP: httpClient}
}

func (p *Provider) Name() string { return "openai" }

func (p *Provider) Complete(ctx context.Context, prompt string) (string, llm.Usage, error) {
	body, err := json.Marshal(chatRequest{
		Model:    p.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", llm.Usage{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", llm.Usage{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.HTTP.Do(req)
	if err != nil {
		return "", llm.Usage{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", llm.Usage{}, err
	}

	var out chatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", llm.Usage{}, err
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != nil {
			return "", llm.Usage{}, fmt.Errorf("openai: %s", out.Error.Message)
		}
		return "", llm.Usage{}, fmt.Errorf("openai: unexpected status %d", resp.StatusCode)
	}
	if len(out.Choices) == 0 {
		return "", llm.Usage{}, fmt.Errorf("openai: empty choices in response")
	}

	usage := llm.Usage{PromptTokens: out.Usage.PromptTokens, CompletionTokens: out.Usage.CompletionTokens}
	return out.Choices[0].Message.Content, usage, nil
}
