// Package resolve maps asset references used in markup to the canonical
// public paths recorded in the image manifest.
//
// Resolution is a pure in-memory lookup. A reference that cannot be matched
// is returned unchanged; callers that render it are expected to fall back
// to a placeholder image on their own.
package resolve

import (
	"net/url"
	"strings"

	"github.com/velo-events/site/internal/platform/assets/manifest"
	"golang.org/x/text/unicode/norm"
)

// CandidateExtensions are appended, in order, to an extension-less reference
// when neither the reference nor its stripped form matched.
var CandidateExtensions = []string{".webp", ".jpg", ".jpeg", ".png", ".svg", ".avif"}

// Resolver looks references up in a loaded manifest.
type Resolver struct {
	manifest manifest.Manifest
}

// New returns a resolver over m. The manifest must not be modified afterwards.
func New(m manifest.Manifest) *Resolver {
	return &Resolver{manifest: m}
}

// IsPassthrough reports whether src is a remote URL or data URI that is
// never looked up.
func IsPassthrough(src string) bool {
	s := strings.TrimSpace(src)
	if strings.HasPrefix(s, "//") {
		return true
	}
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "data:")
}

// Resolve returns the canonical path for src, or src unchanged when it is a
// pass-through reference or nothing in the manifest matches.
func (r *Resolver) Resolve(src string) string {
	resolved, _ := r.Lookup(src)
	return resolved
}

// Exists reports whether src matched a manifest entry.
func (r *Resolver) Exists(src string) bool {
	_, ok := r.Lookup(src)
	return ok
}

// Lookup resolves src and reports whether a manifest entry matched.
// Pass-through references and misses return (src, false).
//
// The search order is: the reference itself, the reference without its
// extension, then the extension-less reference with each candidate
// extension. Each step tries the raw, lower-cased, percent-decoded and
// decoded lower-cased spellings. A query string or fragment that prevents a
// match is split off and re-attached to the result.
func (r *Resolver) Lookup(src string) (string, bool) {
	if IsPassthrough(src) || r == nil || len(r.manifest) == 0 {
		return src, false
	}
	ref, suffix := splitSuffix(strings.TrimSpace(src))
	if suffix == "" {
		if canonical, ok := r.lookupPath(src); ok {
			return canonical, true
		}
		return src, false
	}
	// A file name may itself contain "?" or "#".
	if canonical, ok := r.lookupVariants(src); ok {
		return canonical, true
	}
	if canonical, ok := r.lookupPath(ref); ok {
		return canonical + suffix, true
	}
	return src, false
}

func (r *Resolver) lookupPath(src string) (string, bool) {
	if canonical, ok := r.lookupVariants(src); ok {
		return canonical, true
	}

	trimmed := strings.TrimSpace(src)
	base := manifest.StripExtension(trimmed)
	if base != trimmed {
		if canonical, ok := r.lookupVariants(base); ok {
			return canonical, true
		}
	}

	for _, ext := range CandidateExtensions {
		if canonical, ok := r.lookupVariants(base + ext); ok {
			return canonical, true
		}
	}
	return "", false
}

func (r *Resolver) lookupVariants(s string) (string, bool) {
	for _, key := range variants(s) {
		if canonical, ok := r.manifest.Lookup(key); ok {
			return canonical, true
		}
	}
	return "", false
}

// variants returns the raw, lower-cased, decoded and decoded lower-cased
// spellings of s, followed by the same for the trimmed and NFC forms.
func variants(s string) []string {
	out := make([]string, 0, 8)
	seen := make(map[string]struct{}, 8)
	add := func(v string) {
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	for _, form := range []string{s, strings.TrimSpace(s)} {
		add(form)
		add(strings.ToLower(form))
		if decoded, err := url.PathUnescape(form); err == nil {
			add(decoded)
			add(strings.ToLower(decoded))
			nfc := norm.NFC.String(decoded)
			add(nfc)
			add(strings.ToLower(nfc))
		}
	}
	return out
}

// splitSuffix separates a trailing query string or fragment from ref.
func splitSuffix(ref string) (string, string) {
	idx := strings.IndexAny(ref, "?#")
	if idx < 0 {
		return ref, ""
	}
	return ref[:idx], ref[idx:]
}
