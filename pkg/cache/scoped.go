package cache

// ScopedKeyer prefixes every key of an inner Keyer, giving callers separate
// namespaces on a shared backend. The API server scopes its keys so
// server-triggered runs never collide with CLI entries in the same Redis.
//
// Example usage:
//
//	// Server-side keys
//	srvKeyer := NewScopedKeyer(NewDefaultKeyer(), "api:")
//
//	// Plain keys for the CLI
//	cliKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner with a key prefix. A nil inner uses the
// default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// RouteKey generates a prefixed routing-result key.
func (k *ScopedKeyer) RouteKey(problemHash string, opts RouteKeyOpts) string {
	return k.prefix + k.inner.RouteKey(problemHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(routeHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(routeHash, opts)
}
