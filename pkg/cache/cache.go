// Package cache provides pluggable byte caches for pipeline artifacts.
//
// Routing a problem is deterministic, so everything derived from it can be
// keyed by content hash: a [Keyer] builds stable keys from problem and
// result hashes, and [Cache] implementations store the bytes. [FileCache]
// backs the CLI, [RedisCache] multi-instance server deployments, and
// [NullCache] disables caching without branching at call sites.
package cache

import (
	"context"
	"time"
)

// Default lifetimes for cached pipeline stages.
const (
	// TTLRoute is how long cached routing results live.
	TTLRoute = 24 * time.Hour

	// TTLArtifact is how long cached rendered artifacts live. Artifacts are
	// cheap to keep and expensive to rebuild when external converters are
	// involved, so they outlive their routing results.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the interface for cache backends.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A non-positive ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys for the pipeline stages.
type Keyer interface {
	// RouteKey keys a routing result by problem hash and the options that
	// change routing behavior.
	RouteKey(problemHash string, opts RouteKeyOpts) string

	// ArtifactKey keys a rendered artifact by routing-result hash and
	// format options.
	ArtifactKey(routeHash string, opts ArtifactKeyOpts) string
}

// RouteKeyOpts are the options that affect the routing stage.
type RouteKeyOpts struct {
	Straps bool `json:"straps"`
}

// ArtifactKeyOpts are the options that affect a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Scale    float64 `json:"scale,omitempty"`
	Detailed bool    `json:"detailed,omitempty"`
}

// DefaultKeyer builds hash-based keys with per-stage prefixes.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// RouteKey generates a key for routing-result caching.
func (k *DefaultKeyer) RouteKey(problemHash string, opts RouteKeyOpts) string {
	return hashKey("route", problemHash, opts)
}

// ArtifactKey generates a key for artifact caching.
func (k *DefaultKeyer) ArtifactKey(routeHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", routeHash, opts)
}
