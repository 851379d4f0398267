package manifest

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// widthSuffix matches a responsive-image width marker such as "-640w".
var widthSuffix = regexp.MustCompile(`^(.+)-\d+w$`)

// KeyKind separates keys that still carry the file extension from the
// logical keys derived by stripping it.
type KeyKind int

const (
	// KeyExact keys keep the file name intact.
	KeyExact KeyKind = iota
	// KeyLogical keys drop the extension and, when present, the width suffix.
	KeyLogical
)

// String returns a human-readable kind name.
func (k KeyKind) String() string {
	switch k {
	case KeyExact:
		return "exact"
	case KeyLogical:
		return "logical"
	default:
		return "unknown"
	}
}

// Key is one normalized spelling of a canonical path.
type Key struct {
	Value string
	Kind  KeyKind
}

// Keys returns every normalized key registered for canonical, in insertion
// order and without duplicates.
//
// Exact keys cover the percent-encoded path, the raw and decoded path, their
// NFC forms, and lower-cased and whitespace-trimmed forms of each. Logical
// keys strip the extension from every exact key and, for names ending in
// "-<digits>w", the width marker as well.
func Keys(canonical string) []Key {
	var keys []Key
	seen := make(map[string]struct{})
	add := func(value string, kind KeyKind) {
		if value == "" {
			return
		}
		if _, ok := seen[value]; ok {
			return
		}
		seen[value] = struct{}{}
		keys = append(keys, Key{Value: value, Kind: kind})
	}

	for _, form := range surfaceForms(canonical) {
		trimmed := strings.TrimSpace(form)
		add(form, KeyExact)
		add(strings.ToLower(form), KeyExact)
		add(trimmed, KeyExact)
		add(strings.ToLower(trimmed), KeyExact)
	}

	exact := make([]string, 0, len(keys))
	for _, key := range keys {
		exact = append(exact, key.Value)
	}
	for _, value := range exact {
		stripped := StripExtension(value)
		if stripped == value {
			continue
		}
		add(stripped, KeyLogical)
		if base, ok := StripWidthSuffix(stripped); ok {
			add(base, KeyLogical)
		}
	}
	return keys
}

// surfaceForms returns the encoded, raw, decoded and NFC spellings of p.
func surfaceForms(p string) []string {
	forms := []string{EncodePath(p), p}
	if decoded, err := url.PathUnescape(p); err == nil && decoded != p {
		forms = append(forms, decoded)
	}
	for _, form := range forms[1:] {
		if nfc := norm.NFC.String(form); nfc != form {
			forms = append(forms, nfc)
		}
	}
	return forms
}

// EncodePath percent-encodes p the way a browser encodes a URL path,
// leaving "/" separators untouched.
func EncodePath(p string) string {
	return (&url.URL{Path: p}).EscapedPath()
}

// StripExtension removes the final ".ext" of the last path segment. Dot files
// such as "/.well-known" and names without an extension are returned as is.
func StripExtension(p string) string {
	ext := path.Ext(p)
	if ext == "" {
		return p
	}
	name := p[strings.LastIndex(p, "/")+1:]
	if name == ext {
		return p
	}
	return strings.TrimSuffix(p, ext)
}

// StripWidthSuffix removes a trailing "-<digits>w" marker from an
// extension-less path.
func StripWidthSuffix(p string) (string, bool) {
	match := widthSuffix.FindStringSubmatch(p)
	if match == nil {
		return p, false
	}
	base := match[1]
	if strings.HasSuffix(base, "/") {
		return p, false
	}
	return base, true
}
