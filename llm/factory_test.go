package llm

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func clearProviderSecrets(t *testing.T) {
	t.Helper()
	keys := []string{
		"ANTHROPIC_API_KEY", "CLAUDE_MODEL", "OPENAI_API_KEY", "OPENAI_MODEL",
		"GEMINI_API_KEY", "GEMINI_MODEL", "OLLAMA_ENABLED", "OLLAMA_BASE_URL", "OLLAMA_MODEL",
	}
	saved := make(map[string]string, len(keys))
	for _, k := range keys {
		saved[k] = os.Getenv(k)
		os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for k, v := range saved {
			if v != "" {
				os.Setenv(k, v)
			}
		}
	})
}

func TestNewProviderAutoFallsBackToMockWithNoSecrets(t *testing.T) {
	clearProviderSecrets(t)
	p := NewProvider("auto", nil)
	assert.Equal(t, "mock", p.Name())
}

func TestNewProviderAutoPrefersClaudeOverOpenAI(t *testing.T) {
	clearProviderSecrets(t)
	os.Setenv("ANTHROPIC_API_KEY", "key1")
	os.Setenv("OPENAI_API_KEY", "key2")
	defer os.Unsetenv("ANTHROPIC_API_KEY")
	defer os.Unsetenv("OPENAI_API_KEY")

	p := NewProvider("auto", nil)
	assert.Equal(t, "claude", p.Name())
}

func TestNewProviderNamedFallsBackToMockWithoutCredentials(t *testing.T) {
	clearProviderSecrets(t)
	p := NewProvider("openai", nil)
	assert.Equal(t, "mock", p.Name())
}

func TestNewProviderMockIsAlwaysMock(t *testing.T) {
	p := NewProvider("mock", nil)
	assert.Equal(t, "mock", p.Name())
}
