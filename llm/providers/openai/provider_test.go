package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteParsesChatCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hi"}}],"usage":{"prompt_tokens":3,"completion_tokens":1}}`))
	}))
	defer srv.Close()

	p := New("sk-test", "gpt-4o-mini", srv.Client())
	p.BaseURL = srv.URL
	text, usage, err := p.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi", text)
	assert.Equal(t, 3, usage.PromptTokens)
}

func TestCompleteReturnsAPIErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer srv.Close()

	p := New("bad-key", "", srv.Client())
	p.BaseURL = srv.URL
	_, _, err := p.Complete(context.Background(), "hello")
	assert.ErrorContains(t, err, "invalid api key")
}
