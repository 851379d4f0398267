package web

import (
	"encoding/json"
	"log"
	"net/http"
	"path"
	"slices"
	"strings"

	"github.com/velo-events/site/internal/platform/assets/manifest"
	"github.com/velo-events/site/internal/platform/assets/resolve"
	"github.com/velo-events/site/internal/platform/otel"
	"go.opentelemetry.io/otel/attribute"
)

// resolvePath is the debug endpoint reporting how a reference resolves.
const resolvePath = "/_assets/resolve"

var tracer = otel.Tracer("internal/services/web")

// resolveResponse is the JSON body of the debug endpoint.
type resolveResponse struct {
	Src      string `json:"src"`
	Resolved string `json:"resolved"`
	Found    bool   `json:"found"`
	Srcset   string `json:"srcset,omitempty"`
}

type handler struct {
	root     http.FileSystem
	files    http.Handler
	resolver *resolve.Resolver
}

// NewHandler serves publicDir and redirects misses to their canonical path.
func NewHandler(publicDir string, resolver *resolve.Resolver) http.Handler {
	root := http.Dir(publicDir)
	h := &handler{
		root:     root,
		files:    http.FileServer(root),
		resolver: resolver,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+resolvePath, h.handleResolve)
	mux.HandleFunc("/", h.handleAsset)
	return mux
}

func (h *handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	_, span := tracer.Start(r.Context(), "web.resolve")
	defer span.End()

	query := r.URL.Query()
	src := query.Get("src")
	resolved, found := h.resolver.Lookup(src)
	span.SetAttributes(
		attribute.String("asset.src", src),
		attribute.Bool("asset.found", found),
	)
	body := resolveResponse{Src: src, Resolved: resolved, Found: found}
	if srcset := query.Get("srcset"); srcset != "" {
		body.Srcset = h.resolver.Srcset(srcset)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write resolve response: %v", err)
	}
}

func (h *handler) handleAsset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	requested := r.URL.Path
	if h.servable(requested) {
		h.files.ServeHTTP(w, r)
		return
	}

	canonical, ok := h.resolver.Lookup(requested)
	if !ok || canonical == requested {
		http.NotFound(w, r)
		return
	}
	target := manifest.EncodePath(canonical)
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusMovedPermanently)
}

// servable reports whether p names a file, or a directory with an index.html.
// Segments listed in manifest.ExcludedNames are never served.
func (h *handler) servable(p string) bool {
	clean := path.Clean("/" + p)
	for _, segment := range strings.Split(clean, "/") {
		if slices.Contains(manifest.ExcludedNames, segment) {
			return false
		}
	}
	f, err := h.root.Open(clean)
	if err != nil {
		return false
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return false
	}
	if !info.IsDir() {
		return true
	}
	index, err := h.root.Open(path.Join(clean, "index.html"))
	if err != nil {
		return false
	}
	index.Close()
	return true
}
