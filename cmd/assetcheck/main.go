// Package main audits rendered HTML for image references that the image
// manifest cannot resolve.
package main

import (
	"context"
	"errors"
	"flag"
	"os"

	assetcheckcmd "github.com/velo-events/site/internal/cmd/assetcheck"
	"github.com/velo-events/site/internal/platform/config"
)

func main() {
	cfg, err := assetcheckcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	if err := assetcheckcmd.Run(context.Background(), cfg, os.Stdout); err != nil {
		if errors.Is(err, assetcheckcmd.ErrUnresolved) {
			config.ExitCodef(2, "Error: %v", err)
		}
		config.Exitf("Error: %v", err)
	}
}
