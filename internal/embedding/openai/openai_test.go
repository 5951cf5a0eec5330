package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyEnv = "DOCRANK_TEST_OPENAI_KEY"

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

// fakeServer answers /embeddings with [len(input), index] per input, listed in reverse.
func fakeServer(t *testing.T, failures int32, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if n <= failures {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"busy","type":"server_error"}}`))
			return
		}
		var req embeddingRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		data := make([]map[string]any, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, map[string]any{
				"object":    "embedding",
				"index":     i,
				"embedding": []float32{float32(len(req.Input[i])), float32(i)},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	t.Setenv(testKeyEnv, "sk-test")
	c, err := NewClient(Config{BaseURL: baseURL, APIKeyEnv: testKeyEnv, Model: "test-embed", MaxRetries: 2})
	require.NoError(t, err)
	c.delay = func(int) time.Duration { return time.Millisecond }
	return c
}

func TestNewClient_MissingKey(t *testing.T) {
	t.Setenv(testKeyEnv, "")
	_, err := NewClient(Config{APIKeyEnv: testKeyEnv})
	require.Error(t, err)
	assert.Contains(t, err.Error(), testKeyEnv)
}

func TestClient_EncodeKeepsInputOrder(t *testing.T) {
	srv, calls := fakeServer(t, 0, 0)
	c := newTestClient(t, srv.URL)

	vecs, err := c.Encode(context.Background(), []string{"a", "bbb", "cc"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {3, 1}, {2, 2}}, vecs)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_RetriesServerErrors(t *testing.T) {
	srv, calls := fakeServer(t, 2, http.StatusServiceUnavailable)
	c := newTestClient(t, srv.URL)

	vecs, err := c.Encode(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Len(t, vecs, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	srv, calls := fakeServer(t, 100, http.StatusTooManyRequests)
	c := newTestClient(t, srv.URL)

	_, err := c.Encode(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	srv, calls := fakeServer(t, 100, http.StatusBadRequest)
	c := newTestClient(t, srv.URL)

	_, err := c.Encode(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, retryDelay(-1))
	assert.Equal(t, 400*time.Millisecond, retryDelay(1))
	assert.Equal(t, 5*time.Second, retryDelay(10))
}
