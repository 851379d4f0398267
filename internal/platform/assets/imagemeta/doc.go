// Package imagemeta fetches and memoizes the small JSON sidecars that carry
// blur-up placeholders for responsive images.
//
// For an image at canonical path "/gallery/hero-640w.webp" the sidecar lives
// at "/gallery/hero.meta.json" and is shared by every width and format of
// that image. Missing or malformed sidecars are normal: the cache stores an
// empty placeholder and never reports an error to its caller.
package imagemeta
