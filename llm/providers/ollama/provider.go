// Package ollama implements the local-model LLM provider: a plain POST to
// a local Ollama server's /api/generate endpoint, no API key required.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/driveguide/enrichpipe/llm"
)

const defaultBaseURL = "http://localhost:11434"

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response        string `json:"response"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

// Provider calls a local Ollama server.
type Provider struct {
	BaseURL string
	Model   string
	HTTP    *http.Client
}

// New builds a Provider. baseURL defaults to http://localhost:11434, model
// to "llama3" when empty.
func New(baseURL, model string, httpClient *http.Client) *Provider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = "llama3"
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Provider{BaseURL: baseURL, Model: model, HTTP: httpClient}
}

func (p *Provider) Name() string { return "local" }

func (p *Provider) Complete(ctx context.Context, prompt string) (string, llm.Usage, error) {
	body, err := json.Marshal(generateRequest{Model: p.Model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", llm.Usage{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", llm.Usage{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.HTTP.Do(req)
	if err != nil {
		return "", llm.Usage{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", llm.Usage{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return "", llm.Usage{}, fmt.Errorf("ollama: unexpected status %d: %s", resp.StatusCode, string(data))
	}

	var out generateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", llm.Usage{}, err
	}
	return out.Response, llm.Usage{PromptTokens: out.PromptEvalCount, CompletionTokens: out.EvalCount}, nil
}
