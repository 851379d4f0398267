// Package main scans the public asset tree and writes the image manifest
// consumed by the path resolver.
package main

import (
	"context"
	"flag"
	"os"

	imagemanifestcmd "github.com/velo-events/site/internal/cmd/imagemanifest"
	"github.com/velo-events/site/internal/platform/config"
)

func main() {
	cfg, err := imagemanifestcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	if err := imagemanifestcmd.Run(context.Background(), cfg, os.Stdout); err != nil {
		config.Exitf("Error: %v", err)
	}
}
