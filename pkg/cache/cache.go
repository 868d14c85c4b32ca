// Package cache provides result caching for embedding runs.
//
// A run is expensive (seconds to minutes on hardware-scale target graphs),
// fully determined by (source edges, target edges, options) when a seed is
// fixed, and produces a small JSON payload. The cache stores that payload
// keyed by a content hash of the inputs, so repeated CLI and API calls with
// identical inputs return instantly.
//
// [FileCache] is the real backend; [NewNullCache] returns a no-op used when
// caching is disabled.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// TTLEmbedding is how long cached embedding results are kept. Results never
// go stale (the inputs are content-hashed), so the TTL only bounds disk use.
const TTLEmbedding = 30 * 24 * time.Hour

// Cache is the storage interface shared by the CLI and the API server.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// nullCache discards everything: Set stores nothing and Get always misses.
// It keeps the "--no-cache" path free of nil checks.
type nullCache struct{}

// NewNullCache returns the no-op cache.
func NewNullCache() Cache { return nullCache{} }

func (nullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (nullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (nullCache) Delete(context.Context, string) error                     { return nil }
func (nullCache) Close() error                                             { return nil }

// Hash returns the hex SHA-256 of data. The runner hashes the source edge
// list, the target edge list, and the options payload separately before key
// derivation, so each input's hash can be inspected on its own.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// keySchemeVersion is folded into every derived key. Bump it when the key
// inputs change meaning (e.g. an option starts or stops affecting results),
// so old entries become unreachable instead of wrong.
const keySchemeVersion = "minorminer/embedding/v1"

// Keyer builds cache keys. Wrap the default with [NewScopedKeyer] to
// namespace keys per tenant.
type Keyer interface {
	// EmbeddingKey builds the key for one embedding run from the content
	// hashes of the source edge list, the target edge list, and the
	// options.
	EmbeddingKey(srcHash, tgtHash, optsHash string) string
}

// DefaultKeyer derives keys by hashing the three input hashes under the
// current key scheme version.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// EmbeddingKey implements Keyer.
func (k *DefaultKeyer) EmbeddingKey(srcHash, tgtHash, optsHash string) string {
	h := sha256.New()
	for _, part := range []string{keySchemeVersion, srcHash, tgtHash, optsHash} {
		h.Write([]byte(part))
		h.Write([]byte{0}) // keep adjacent parts from gluing together
	}
	return "embedding:" + hex.EncodeToString(h.Sum(nil))
}

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation, e.g.
// per-user namespaces on a shared API deployment.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// EmbeddingKey generates a prefixed key for one embedding run.
func (k *ScopedKeyer) EmbeddingKey(srcHash, tgtHash, optsHash string) string {
	return k.prefix + k.inner.EmbeddingKey(srcHash, tgtHash, optsHash)
}
