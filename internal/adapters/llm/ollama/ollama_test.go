package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/david-geiger/knowthelist/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"{\"translation\": \"Umělec\"}"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "llama3", time.Second)
	res, err := c.Translate(context.Background(), ports.Segment{Text: "Artist"}, ports.TranslateParams{
		SystemPrompt: "sys",
		UserPrompt:   "Artist",
		Temperature:  0.2,
	})
	require.NoError(t, err)
	assert.Equal(t, "Umělec", res.Translation)
	assert.Equal(t, "llama3", got.Model)
	assert.Equal(t, "json", got.Format)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
}

func TestListModelsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	err := New(srv.URL, "llama3", time.Second).Test(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama list models: 404")
}
