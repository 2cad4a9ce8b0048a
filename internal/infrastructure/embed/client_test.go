package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gemgem/backend/internal/domain"
)

func embedServer(t *testing.T, handler func(req embeddingRequest) embeddingResponse) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/embeddings", r.URL.Path)

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(handler(req))
	}))
}

func TestEmbed(t *testing.T) {
	server := embedServer(t, func(req embeddingRequest) embeddingResponse {
		var resp embeddingResponse
		resp.Data = []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}{
			{Embedding: []float32{0.1, 0.2, 0.3}, Index: 0},
		}
		resp.Model = req.Model
		return resp
	})
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Model: "all-MiniLM-L6-v2"})

	got, err := client.Embed(context.Background(), "18k gold solitaire ring")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got)
}

func TestEmbedBatch_ReordersByIndex(t *testing.T) {
	server := embedServer(t, func(req embeddingRequest) embeddingResponse {
		var resp embeddingResponse
		// Return out of order; the client must reassemble by index
		resp.Data = []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}{
			{Embedding: []float32{2}, Index: 1},
			{Embedding: []float32{1}, Index: 0},
		}
		return resp
	})
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})

	got, err := client.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}, {2}}, got)
}

func TestEmbedBatch_SplitsIntoBatches(t *testing.T) {
	var requests atomic.Int32
	server := embedServer(t, func(req embeddingRequest) embeddingResponse {
		requests.Add(1)
		assert.LessOrEqual(t, len(req.Input), 2)

		var resp embeddingResponse
		for i := range req.Input {
			resp.Data = append(resp.Data, struct {
				Embedding []float32 `json:"embedding"`
				Index     int       `json:"index"`
			}{Embedding: []float32{float32(i)}, Index: i})
		}
		return resp
	})
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, BatchSize: 2})

	got, err := client.EmbedBatch(context.Background(), []string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)
	assert.Len(t, got, 5)
	assert.Equal(t, int32(3), requests.Load())
}

func TestEmbedBatch_Empty(t *testing.T) {
	client := NewClient(ClientConfig{BaseURL: "http://unused.invalid"})

	got, err := client.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEmbedBatch_SendsAuthAndModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "all-MiniLM-L6-v2", req.Model)
		assert.Equal(t, 384, req.Dimensions)

		var resp embeddingResponse
		resp.Data = []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}{
			{Embedding: []float32{0.5}, Index: 0},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		APIKey:     "secret",
		Model:      "all-MiniLM-L6-v2",
		Dimensions: 384,
	})

	_, err := client.Embed(context.Background(), "ring")
	require.NoError(t, err)
}

func TestEmbedBatch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})

	_, err := client.Embed(context.Background(), "ring")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	server := embedServer(t, func(req embeddingRequest) embeddingResponse {
		return embeddingResponse{} // no data for any input
	})
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})

	_, err := client.Embed(context.Background(), "ring")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}
