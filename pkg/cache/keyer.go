package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// TTLLayout is how long a layout result stays valid.
const TTLLayout = 24 * time.Hour

// LayoutKeyOpts are the layout options that change the result.
type LayoutKeyOpts struct {
	Strategy           string `json:"strategy,omitempty"`
	LaneStrategy       string `json:"lane_strategy,omitempty"`
	Scope              string `json:"scope,omitempty"`
	GridSnap           int    `json:"grid_snap,omitempty"`
	PoolExpansion      bool   `json:"pool_expansion"`
	ExpandSubprocesses bool   `json:"expand_subprocesses,omitempty"`
	// Algorithm names the layered graph algorithm.
	Algorithm string `json:"algorithm,omitempty"`
	// Tunables is a hash of the tunables in effect.
	Tunables string `json:"tunables,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey returns the key of a layout result for the diagram whose
	// document hashes to diagramHash.
	LayoutKey(diagramHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer produces keys of the form "layout:<sha256>", where the hash
// covers the document hash and the JSON form of the options.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(diagramHash string, opts LayoutKeyOpts) string {
	// LayoutKeyOpts holds only strings, ints and bools; Marshal cannot fail.
	data, _ := json.Marshal(struct {
		Doc  string        `json:"doc"`
		Opts LayoutKeyOpts `json:"opts"`
	}{diagramHash, opts})
	return "layout:" + Hash(data)
}

// ScopedKeyer prepends a fixed prefix to the keys of another keyer, so
// several deployments can share one Redis database.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// LayoutKey implements [Keyer].
func (k *ScopedKeyer) LayoutKey(diagramHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(diagramHash, opts)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON returns the [Hash] of the JSON encoding of v. Map keys are
// sorted by encoding/json, so equal maps hash equally.
func HashJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return Hash(data), nil
}
