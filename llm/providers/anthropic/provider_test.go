package anthropic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteConcatenatesTextBlocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
		w.Write([]byte(`{"content":[{"type":"text","text":"hello "},{"type":"text","text":"world"}],"usage":{"input_tokens":5,"output_tokens":2}}`))
	}))
	defer srv.Close()

	p := New("test-key", "", srv.Client())
	p.BaseURL = srv.URL
	text, usage, err := p.Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
	assert.Equal(t, 5, usage.PromptTokens)
}

func TestCompleteReturnsErrorOnAPIErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	}))
	defer srv.Close()

	p := New("test-key", "", srv.Client())
	p.BaseURL = srv.URL
	_, _, err := p.Complete(context.Background(), "hi")
	assert.ErrorContains(t, err, "overloaded")
}
