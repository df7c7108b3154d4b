package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer builds cache keys for every cached artifact type.
type Keyer interface {
	// HTTPKey keys a decoded provider response.
	HTTPKey(namespace, key string) string
	// ElementsKey keys a display result computed from a database snapshot.
	ElementsKey(snapshotHash string, opts ElementsKeyOpts) string
}

// ElementsKeyOpts holds every option that changes a display result.
type ElementsKeyOpts struct {
	Names    []string `json:"names,omitempty"`
	K        int      `json:"k"`
	Seed     uint64   `json:"seed"`
	Relation string   `json:"relation"`
	XScale   float64  `json:"x_scale"`
	YScale   float64  `json:"y_scale"`
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// ElementsKey returns "elements:" and a hash of the snapshot hash and the
// options. Name order is significant because it fixes element order.
func (DefaultKeyer) ElementsKey(snapshotHash string, opts ElementsKeyOpts) string {
	data, _ := json.Marshal(struct {
		Snapshot string          `json:"snapshot"`
		Opts     ElementsKeyOpts `json:"opts"`
	}{snapshotHash, opts})
	return "elements:" + Hash(data)
}

// scopedKeyer prefixes every key of an inner keyer.
type scopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer prefixes the keys of inner so several databases can share
// one cache backend. A nil inner uses the default keyer.
//
//	k := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "db:survey-2023:")
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return scopedKeyer{inner: inner, prefix: prefix}
}

func (k scopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

func (k scopedKeyer) ElementsKey(snapshotHash string, opts ElementsKeyOpts) string {
	return k.prefix + k.inner.ElementsKey(snapshotHash, opts)
}
