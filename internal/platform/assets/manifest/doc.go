// Package manifest builds and loads the public image manifest.
//
// The manifest maps many normalized spellings of each public asset path
// (percent-encoded, decoded, lower-cased, trimmed, extension-less and
// width-suffix-less) to the one canonical path found on disk. It is produced
// offline by Build, written with WriteFile, and loaded once at startup with
// LoadFile. A loaded Manifest is never mutated.
package manifest
