package cache

// ScopedKeyer wraps a Keyer with a prefix so that several map projects can
// share one cache backend without their keys colliding.
//
//	us := NewScopedKeyer(NewDefaultKeyer(), "us-2067:")
//	eu := NewScopedKeyer(NewDefaultKeyer(), "eu-2070:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// LayoutKey generates a prefixed layout key.
func (k *ScopedKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(inputHash, opts)
}

// MetricsKey generates a prefixed image metrics key.
func (k *ScopedKeyer) MetricsKey(source, name string) string {
	return k.prefix + k.inner.MetricsKey(source, name)
}
