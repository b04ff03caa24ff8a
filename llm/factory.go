package llm

import (
	"net/http"

	"github.com/driveguide/enrichpipe/core"
	"github.com/driveguide/enrichpipe/llm/providers/anthropic"
	"github.com/driveguide/enrichpipe/llm/providers/gemini"
	"github.com/driveguide/enrichpipe/llm/providers/mock"
	"github.com/driveguide/enrichpipe/llm/providers/ollama"
	"github.com/driveguide/enrichpipe/llm/providers/openai"
)

// NewProvider resolves a Provider by name: "auto" tries claude, then
// openai, then gemini, then local (ollama), falling back to mock whenever
// a provider's required secret is absent — a missing credential is never
// fatal, the pipeline keeps running on the mock responder instead.
func NewProvider(name string, httpClient *http.Client) Provider {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	switch name {
	case "claude":
		if key := core.Secrets("ANTHROPIC_API_KEY"); key != "" {
			return anthropic.New(key, core.Secrets("CLAUDE_MODEL"), httpClient)
		}
		return mock.New()
	case "openai":
		if key := core.Secrets("OPENAI_API_KEY"); key != "" {
			return openai.New(key, core.Secrets("OPENAI_MODEL"), httpClient)
		}
		return mock.New()
	case "gemini":
		if key := core.Secrets("GEMINI_API_KEY"); key != "" {
			return gemini.New(key, core.Secrets("GEMINI_MODEL"), httpClient)
		}
		return mock.New()
	case "local", "ollama":
		return ollama.New(core.Secrets("OLLAMA_BASE_URL"), core.Secrets("OLLAMA_MODEL"), httpClient)
	case "mock":
		return mock.New()
	case "auto", "":
		return resolveAuto(httpClient)
	default:
		return mock.New()
	}
}

// resolveAuto walks the precedence chain claude > openai > gemini > local,
// selecting the first provider whose required secret is present, and
// falling back to mock only if none are configured. "local" (Ollama) needs
// no API key, but is only attempted when OLLAMA_ENABLED is set — otherwise
// auto mode would always try a network call to an assumed-always-running
// local daemon.
func resolveAuto(httpClient *http.Client) Provider {
	if key := core.Secrets("ANTHROPIC_API_KEY"); key != "" {
		return anthropic.New(key, core.Secrets("CLAUDE_MODEL"), httpClient)
	}
	if key := core.Secrets("OPENAI_API_KEY"); key != "" {
		return openai.New(key, core.Secrets("OPENAI_MODEL"), httpClient)
	}
	if key := core.Secrets("GEMINI_API_KEY"); key != "" {
		return gemini.New(key, core.Secrets("GEMINI_MODEL"), httpClient)
	}
	if core.Secrets("OLLAMA_ENABLED") != "" {
		return ollama.New(core.Secrets("OLLAMA_BASE_URL"), core.Secrets("OLLAMA_MODEL"), httpClient)
	}
	return mock.New()
}
