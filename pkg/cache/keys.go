package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Keyer builds cache keys for the cacheable stages of the toolkit.
// Implementations must be deterministic: equal inputs produce equal keys.
type Keyer interface {
	// NetworkKey identifies a CX2 network fetched from an NDEx server.
	NetworkKey(host, uuid string) string

	// RenderKey identifies a rendered artifact by the hash of the
	// graph description it was produced from.
	RenderKey(contentHash string, opts RenderKeyOpts) string
}

// RenderKeyOpts are the rendering parameters that affect artifact bytes.
type RenderKeyOpts struct {
	Format string `json:"format"`
	Layout string `json:"layout"`
}

// DefaultKeyer is the standard key scheme. Network keys stay readable for
// debugging; keys derived from options are hashed so every parameter
// participates without escaping concerns.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) NetworkKey(host, uuid string) string {
	return fmt.Sprintf("network:%s:%s", host, uuid)
}

func (DefaultKeyer) RenderKey(contentHash string, opts RenderKeyOpts) string {
	return hashKey("render", contentHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix so separate workspaces sharing a
// backend get isolated namespaces.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key.
// A nil inner keyer falls back to the DefaultKeyer scheme.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) NetworkKey(host, uuid string) string {
	return k.prefix + k.inner.NetworkKey(host, uuid)
}

func (k *ScopedKeyer) RenderKey(contentHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(contentHash, opts)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes the SHA-256 hash of data as a 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
