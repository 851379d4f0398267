// Package web serves the public asset tree.
//
// Requests for files that exist are served as is. Requests that miss on disk
// are resolved through the image manifest and, when that yields a different
// canonical path, redirected to it, so stale or mis-cased links keep working.
// The package does not render pages.
package web
