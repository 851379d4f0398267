// Package timeouts defines shared timeout constants used by the site
// commands. Keeping them in one place makes the durations discoverable.
package timeouts

import "time"

// ReadHeader limits how long the asset server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the asset server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// MetadataFetch caps a single image metadata sidecar request.
const MetadataFetch = 3 * time.Second

// TelemetryShutdown caps the flush of pending spans when a command exits.
const TelemetryShutdown = 5 * time.Second
