// Package gemini implements the Google Gemini LLM provider: a POST to
// /v1/models/{model}:generateContent with the API key as a query parameter.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/driveguide/enrichpipe/llm"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1"

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	UsageMetadata usageMetadata `json:"usageMetadata"`
	Error         *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Provider calls the Gemini generateContent API.
type Provider struct {
	APIKey  string
	Model   string
	BaseURL string
	HTTP    *http.Client
}

func New(apiKey, model string, httpClient *http.Client) *Provider {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Provider{APIKey: apiKey, Model: model, BaseURL: defaultBaseURL, HTTP: httpClient}
}

func (p *Provider) Name() string { return "gemini" }

func (p *Provider) Complete(ctx context.Context, prompt string) (string, llm.Usage, error) {
	body, err := json.Marshal(generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}})
	if err != nil {
		return "", llm.Usage{}, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.BaseURL, p.Model, p.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
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

	var out generateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", llm.Usage{}, err
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != nil {
			return "", llm.Usage{}, fmt.Errorf("gemini: %s", out.Error.Message)
		}
		return "", llm.Usage{}, fmt.Errorf("gemini: unexpected status %d", resp.StatusCode)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", llm.Usage{}, fmt.Errorf("gemini: empty candidates in response")
	}

	text := ""
	for _, part := range out.Candidates[0].Content.Parts {
		text += part.Text
	}
	u := llm.Usage{PromptTokens: out.UsageMetadata.PromptTokenCount, CompletionTokens: out.UsageMetadata.CandidatesTokenCount}
	return text, u, nil
}
