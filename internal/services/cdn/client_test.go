package cdn

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCache struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memCache) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string]string{}
	}
	m.data[key] = value
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// flakyServer fails the first `failures` requests with status, then serves body.
func flakyServer(t *testing.T, failures int32, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		if n <= failures {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestClient(attempts int, cache Cache) *Client {
	return New(Options{Attempts: attempts, BaseDelay: time.Millisecond, Cache: cache})
}

// getRaw fetches url through GetJSON and returns the undecoded body.
func getRaw(ctx context.Context, c *Client, url string) ([]byte, error) {
	var raw json.RawMessage
	err := c.GetJSON(ctx, url, &raw)
	return raw, err
}

func TestGetJSON_Success(t *testing.T) {
	srv, hits := flakyServer(t, 0, 0, `{"version":"16.3.1"}`)

	var out struct {
		Version string `json:"version"`
	}
	err := newTestClient(3, nil).GetJSON(context.Background(), srv.URL, &out)
	require.NoError(t, err)
	assert.Equal(t, "16.3.1", out.Version)
	assert.Equal(t, int32(1), hits.Load())
}

func TestGetJSON_RetriesServerErrors(t *testing.T) {
	srv, hits := flakyServer(t, 2, http.StatusServiceUnavailable, `[]`)

	body, err := getRaw(context.Background(), newTestClient(3, nil), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(body))
	assert.Equal(t, int32(3), hits.Load())
}

func TestGetJSON_GivesUpAfterAttempts(t *testing.T) {
	srv, hits := flakyServer(t, 10, http.StatusBadGateway, `[]`)

	_, err := getRaw(context.Background(), newTestClient(3, nil), srv.URL)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, int32(3), hits.Load())
}

func TestGetJSON_NotFoundIsNotRetried(t *testing.T) {
	srv, hits := flakyServer(t, 10, http.StatusNotFound, `[]`)

	_, err := getRaw(context.Background(), newTestClient(3, nil), srv.URL)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), hits.Load())
}

func TestGetJSON_SingleAttempt(t *testing.T) {
	srv, hits := flakyServer(t, 1, http.StatusInternalServerError, `[]`)

	_, err := getRaw(context.Background(), newTestClient(0, nil), srv.URL)
	assert.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestGetJSON_UsesCache(t *testing.T) {
	srv, hits := flakyServer(t, 0, 0, `{"a":1}`)
	cache := &memCache{}
	c := newTestClient(3, cache)

	for i := 0; i < 3; i++ {
		body, err := getRaw(context.Background(), c, srv.URL)
		require.NoError(t, err)
		assert.JSONEq(t, `{"a":1}`, string(body))
	}
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, `{"a":1}`, cache.data[srv.URL])
}

func TestGetJSON_EvictsUndecodableCacheEntry(t *testing.T) {
	srv, hits := flakyServer(t, 0, 0, `{"version":"16.3.1"}`)
	cache := &memCache{data: map[string]string{}}
	cache.data[srv.URL] = `{"version":`

	var out struct {
		Version string `json:"version"`
	}
	require.NoError(t, newTestClient(1, cache).GetJSON(context.Background(), srv.URL, &out))
	assert.Equal(t, "16.3.1", out.Version)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, `{"version":"16.3.1"}`, cache.data[srv.URL])
}

func TestGetJSON_FailuresAreNotCached(t *testing.T) {
	srv, _ := flakyServer(t, 10, http.StatusNotFound, ``)
	cache := &memCache{}

	_, err := getRaw(context.Background(), newTestClient(1, cache), srv.URL)
	assert.Error(t, err)
	assert.Empty(t, cache.data)
}

func TestGetJSON_DecodeError(t *testing.T) {
	srv, hits := flakyServer(t, 0, 0, `not json`)

	var out map[string]any
	err := newTestClient(3, nil).GetJSON(context.Background(), srv.URL, &out)
	assert.ErrorContains(t, err, "failed to decode")
	assert.Equal(t, int32(1), hits.Load())
}

func TestGetJSON_CancelledContext(t *testing.T) {
	srv, _ := flakyServer(t, 0, 0, `{}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := getRaw(ctx, newTestClient(3, nil), srv.URL)
	assert.Error(t, err)
}
