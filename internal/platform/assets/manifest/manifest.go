package manifest

import (
	"errors"
	"sort"
)

var (
	ErrRootRequired = errors.New("asset root is required")
	ErrRootNotDir   = errors.New("asset root is not a directory")
	ErrPathRequired = errors.New("manifest path is required")
)

// Manifest maps normalized reference keys to canonical public paths.
type Manifest map[string]string

// Lookup returns the canonical path registered for key.
func (m Manifest) Lookup(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	canonical, ok := m[key]
	return canonical, ok
}

// Len returns the number of keys.
func (m Manifest) Len() int {
	return len(m)
}

// Canonicals returns the distinct canonical paths in sorted order.
func (m Manifest) Canonicals() []string {
	seen := make(map[string]struct{}, len(m))
	for _, canonical := range m {
		seen[canonical] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for canonical := range seen {
		out = append(out, canonical)
	}
	sort.Strings(out)
	return out
}
