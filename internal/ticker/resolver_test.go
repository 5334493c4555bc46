package ticker

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient scripts Lookup answers and counts calls per CUSIP.
type fakeClient struct {
	symbols map[string]string
	errs    map[string]error
	calls   map[string]int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		symbols: make(map[string]string),
		errs:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

func (f *fakeClient) Lookup(_ context.Context, cusip string) (string, error) {
	f.calls[cusip]++
	if err, ok := f.errs[cusip]; ok {
		return "", err
	}
	return f.symbols[cusip], nil
}

func newTestResolver(t *testing.T, client MappingClient, negativeCache bool) (*Resolver, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cusip_tickers.json")
	r, err := NewResolver(path, client, negativeCache)
	require.NoError(t, err)
	return r, path
}

func TestResolve_CacheHitSkipsNetwork(t *testing.T) {
	client := newFakeClient()
	client.symbols["037833100"] = "AAPL"
	r, _ := newTestResolver(t, client, true)

	assert.Equal(t, "AAPL", r.Resolve(context.Background(), "037833100", "APPLE"))
	assert.Equal(t, "AAPL", r.Resolve(context.Background(), "037833100", "APPLE"))
	assert.Equal(t, 1, client.calls["037833100"])
}

func TestResolve_ConfirmedNotFoundCached(t *testing.T) {
	// The service answered cleanly with no mapping; that answer is cached
	// regardless of the negative-cache setting.
	client := newFakeClient()
	r, _ := newTestResolver(t, client, false)

	assert.Equal(t, Unknown, r.Resolve(context.Background(), "999999999", "GHOST CO"))
	assert.Equal(t, Unknown, r.Resolve(context.Background(), "999999999", "GHOST CO"))
	assert.Equal(t, 1, client.calls["999999999"])
}

func TestResolve_FailurePoisonsCacheByDefault(t *testing.T) {
	// With negative caching on, a transient 429 is cached as Unknown and the
	// CUSIP is never retried, even after the service recovers.
	client := newFakeClient()
	client.errs["594918104"] = ErrRateLimited
	r, _ := newTestResolver(t, client, true)

	assert.Equal(t, Unknown, r.Resolve(context.Background(), "594918104", "MSFT"))

	delete(client.errs, "594918104")
	client.symbols["594918104"] = "MSFT"

	assert.Equal(t, Unknown, r.Resolve(context.Background(), "594918104", "MSFT"))
	assert.Equal(t, 1, client.calls["594918104"])
}

func TestResolve_FailureNotCachedWhenDisabled(t *testing.T) {
	client := newFakeClient()
	client.errs["594918104"] = ErrRateLimited
	r, _ := newTestResolver(t, client, false)

	assert.Equal(t, Unknown, r.Resolve(context.Background(), "594918104", "MSFT"))

	delete(client.errs, "594918104")
	client.symbols["594918104"] = "MSFT"

	assert.Equal(t, "MSFT", r.Resolve(context.Background(), "594918104", "MSFT"))
	assert.Equal(t, 2, client.calls["594918104"])
}

func TestResolve_PersistsAcrossInstances(t *testing.T) {
	client := newFakeClient()
	client.symbols["037833100"] = "AAPL"
	r, path := newTestResolver(t, client, true)
	r.Resolve(context.Background(), "037833100", "APPLE")

	// A fresh resolver over the same file answers from disk.
	r2, err := NewResolver(path, newFakeClient(), true)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", r2.Resolve(context.Background(), "037833100", "APPLE"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var cache map[string]string
	require.NoError(t, json.Unmarshal(data, &cache))
	assert.Equal(t, map[string]string{"037833100": "AAPL"}, cache)
}

func TestNewResolver_CorruptCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cusip_tickers.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewResolver(path, newFakeClient(), true)
	assert.Error(t, err)
}
