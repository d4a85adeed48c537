package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/ritzau/dystonia-kg/pkg/config"
	"github.com/ritzau/dystonia-kg/pkg/logging"
	"github.com/ritzau/dystonia-kg/pkg/output"
	"github.com/ritzau/dystonia-kg/pkg/pipeline"
)

func main() {
	// Parse command-line flags
	f := pflag.NewFlagSet("dystonia-kg", pflag.ContinueOnError)
	config.RegisterFlags(f)
	if err := f.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level := logging.ParseLevel(cfg.Verbosity, cfg.VerboseCnt)
	if cfg.LogJSON {
		logging.SetJSONOutput(level)
	} else {
		logging.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithRunID(ctx, logging.NewRunID())

	report, err := pipeline.NewRunner(cfg).Run(ctx)
	if err != nil {
		logging.ErrorContext(ctx, "Run failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}

	// Print colorized run report to console
	output.PrintRunReport(os.Stdout, *report)
}
