// Command brewstats fetches brewing batches from the Brewfather API,
// aggregates them into a statistics report, and renders a static
// showcase site.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sklopivo/sklopivo.github.io/internal/config"
)

var (
	configPath = flag.String("config", "", "Path to optional JSON config file")
	listen     = flag.String("listen", ":8080", "Listen address for the serve command")
	runLimit   = flag.Int("run-limit", 10, "Number of fetch runs to list")
)

const usageText = `usage: brewstats [flags] <command>

Commands:
  fetch     Download all batches from Brewfather into the raw data file
  analyze   Aggregate the raw data file into the statistics report
  render    Generate the static showcase site from the report
  all       fetch, analyze, and render in sequence
  runs      List recorded fetch runs from the archive
  serve     Serve the showcase site and stats API locally
  version   Print build information

Credentials for fetch come from BREWFATHER_USER_ID and BREWFATHER_API_KEY.
`

func usage() {
	fmt.Fprint(flag.CommandLine.Output(), usageText)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	cfg := &config.Config{}
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd := flag.Arg(0); cmd {
	case "fetch":
		err = runFetch(ctx, cfg)
	case "analyze":
		err = runAnalyze(cfg)
	case "render":
		err = runRender(cfg)
	case "all":
		err = runAll(ctx, cfg)
	case "runs":
		err = runRuns(cfg, *runLimit)
	case "serve":
		err = runServe(cfg, *listen)
	case "version":
		err = runVersion()
	default:
		log.Fatalf("unknown command %q", cmd)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", flag.Arg(0), err)
	}
}
