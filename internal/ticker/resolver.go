package ticker

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Unknown is the sentinel cached for CUSIPs that could not be resolved.
const Unknown = "UNKNOWN"

// Resolver maps CUSIPs to trading symbols via a persistent local cache with
// remote fallback. Resolve never fails: it returns either a symbol or the
// Unknown sentinel.
//
// Known risk, preserved deliberately: with negative caching enabled
// (the default), a single failed lookup — including a transient 429 —
// permanently marks that CUSIP as Unknown until the cache file is edited by
// hand. Set ticker.negative_cache to false to cache only confirmed
// not-found answers and retry failures on a later run.
//
// The cache is read-modify-write with no locking; not safe for concurrent
// use.
type Resolver struct {
	path          string
	client        MappingClient
	negativeCache bool
	cache         map[string]string
}

// NewResolver loads the cache file at path (which need not exist yet) and
// returns a resolver over the given mapping client.
func NewResolver(path string, client MappingClient, negativeCache bool) (*Resolver, error) {
	cache := make(map[string]string)

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cache); err != nil {
			return nil, eris.Wrapf(err, "ticker: parse cache %s", path)
		}
	case os.IsNotExist(err):
		// First run; start empty.
	default:
		return nil, eris.Wrapf(err, "ticker: read cache %s", path)
	}

	return &Resolver{
		path:          path,
		client:        client,
		negativeCache: negativeCache,
		cache:         cache,
	}, nil
}

// Resolve returns the trading symbol for cusip, or Unknown. A cache hit
// short-circuits without any network call. Every cache mutation is persisted
// before returning, so an interrupted batch loses no progress.
func (r *Resolver) Resolve(ctx context.Context, cusip, fallbackName string) string {
	if symbol, ok := r.cache[cusip]; ok {
		return symbol
	}

	log := zap.L().With(zap.String("cusip", cusip), zap.String("name", fallbackName))
	log.Info("resolving ticker")

	symbol, err := r.client.Lookup(ctx, cusip)
	if err != nil {
		log.Warn("ticker lookup failed", zap.Error(err))
		if !r.negativeCache {
			return Unknown
		}
		symbol = ""
	}

	if symbol == "" {
		symbol = Unknown
	}

	r.cache[cusip] = symbol
	if err := r.save(); err != nil {
		log.Warn("ticker cache save failed", zap.Error(err))
	}
	return symbol
}

// save rewrites the whole cache file atomically.
func (r *Resolver) save() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return eris.Wrap(err, "ticker: create cache dir")
	}

	data, err := json.MarshalIndent(r.cache, "", "  ")
	if err != nil {
		return eris.Wrap(err, "ticker: marshal cache")
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return eris.Wrap(err, "ticker: write cache")
	}
	if err := os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)
		return eris.Wrap(err, "ticker: rename cache")
	}
	return nil
}

// decodeJSON is a small helper shared by the API client.
func decodeJSON(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}
