package resolve

import (
	"strings"

	"github.com/velo-events/site/internal/platform/assets/manifest"
)

// SrcsetCandidate is one "url descriptor" entry of a srcset attribute.
type SrcsetCandidate struct {
	URL        string
	Descriptor string
}

// ParseSrcset splits a srcset attribute into its candidates. Empty entries
// are dropped.
func ParseSrcset(srcset string) []SrcsetCandidate {
	var out []SrcsetCandidate
	for _, part := range strings.Split(srcset, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		out = append(out, SrcsetCandidate{
			URL:        fields[0],
			Descriptor: strings.Join(fields[1:], " "),
		})
	}
	return out
}

// Srcset resolves every candidate URL of a srcset attribute. Matched paths
// are percent-encoded since srcset entries cannot contain spaces.
func (r *Resolver) Srcset(srcset string) string {
	candidates := ParseSrcset(srcset)
	parts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		entry := c.URL
		if resolved, ok := r.Lookup(c.URL); ok {
			_, suffix := splitSuffix(c.URL)
			if suffix != "" && strings.HasSuffix(resolved, suffix) {
				entry = manifest.EncodePath(strings.TrimSuffix(resolved, suffix)) + suffix
			} else {
				entry = manifest.EncodePath(resolved)
			}
		}
		if c.Descriptor != "" {
			entry += " " + c.Descriptor
		}
		parts = append(parts, entry)
	}
	return strings.Join(parts, ", ")
}
