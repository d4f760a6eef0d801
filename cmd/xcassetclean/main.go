// Command xcassetclean is the CLI entrypoint for the asset catalog filename
// normalizer.
//
// It parses flags, layers configuration, and runs the catalog pipeline over
// the single positional path.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/backmassage/xcassetclean/internal/config"
	"github.com/backmassage/xcassetclean/internal/display"
	"github.com/backmassage/xcassetclean/internal/logging"
	"github.com/backmassage/xcassetclean/internal/pipeline"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Bootstrap: the logger doesn't exist yet, so errors go directly to
	// stderr via fmt.
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, args, version); err != nil {
		if errors.Is(err, config.ErrHelpShown) || errors.Is(err, config.ErrVersionShown) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "xcassetclean: %v\n", err)
		return 1
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "xcassetclean: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "xcassetclean: %v\n", err)
		return 1
	}
	defer log.Close()

	if cfg.Verbose {
		display.PrintBanner(os.Stdout, version+" ("+commit+")")
	}

	// A wrong argument count prints usage but does not stop the run: with
	// extra arguments the first one is still processed.
	if cfg.ArgCountMismatch {
		config.PrintUsage(os.Stdout, version)
	}

	if _, err := pipeline.Run(&cfg, log); err != nil {
		if errors.Is(err, pipeline.ErrInvalidRoot) {
			log.Warn("Given XCAssets folder does not exist: %q", cfg.CatalogDir)
			return 0
		}
		log.Error("%v", err)
		return 1
	}
	return 0
}
