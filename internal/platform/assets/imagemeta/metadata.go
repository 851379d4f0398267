package imagemeta

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/velo-events/site/internal/platform/assets/manifest"
)

// sidecarSuffix is appended to a base path to name its metadata sidecar.
const sidecarSuffix = ".meta.json"

// Metadata is the decoded content of a sidecar.
type Metadata struct {
	Placeholder   string `json:"placeholder"`
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
	DominantColor string `json:"dominantColor,omitempty"`
}

// Empty is the value stored for images without usable metadata.
var Empty = Metadata{Placeholder: ""}

// BasePath strips the extension and any "-<digits>w" width marker from a
// canonical image path.
func BasePath(canonical string) string {
	base, _ := manifest.StripWidthSuffix(manifest.StripExtension(strings.TrimSpace(canonical)))
	return base
}

// SidecarURL returns the URL of the sidecar for basePath. An empty baseURL
// yields a site-relative URL.
func SidecarURL(baseURL, basePath string) (string, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return "", ErrBasePathRequired
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	escaped := manifest.EncodePath(basePath + sidecarSuffix)

	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return escaped, nil
	}
	if _, err := url.Parse(baseURL); err != nil {
		return "", fmt.Errorf("parse metadata base url: %w", err)
	}
	return strings.TrimRight(baseURL, "/") + escaped, nil
}

// decode parses a sidecar body.
func decode(data []byte) (Metadata, error) {
	var md Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return Empty, fmt.Errorf("decode metadata: %w", err)
	}
	return md, nil
}
