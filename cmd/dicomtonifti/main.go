// Command dicomtonifti converts DICOM series into NIFTI-1 volumes.
//
// It parses flags, validates the output argument, and runs the conversion
// driver either into one file or, with --batch, into a directory tree.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/backmassage/dicomtonifti/internal/config"
	"github.com/backmassage/dicomtonifti/internal/ioerr"
	"github.com/backmassage/dicomtonifti/internal/logging"
	"github.com/backmassage/dicomtonifti/internal/pipeline"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	prog := args[0]

	// Phase 1: Bootstrap. No logger yet, so errors go straight to stderr.
	cfg := config.DefaultConfig()
	if err := config.LoadEnvironment(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "dicomtonifti: %v\n", err)
		return 1
	}
	if err := config.ParseFlags(&cfg, args[1:]); err != nil {
		switch {
		case errors.Is(err, config.ErrHelp):
			config.PrintHelp(os.Stdout, prog)
			return 0
		case errors.Is(err, config.ErrVersion):
			config.PrintVersion(os.Stdout, prog, version, commit)
			return 0
		}
		fmt.Fprintf(os.Stderr, "dicomtonifti: %v\n", err)
		config.PrintUsage(os.Stderr, prog)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "dicomtonifti: %v\n", err)
		config.PrintUsage(os.Stderr, prog)
		return 1
	}
	if err := cfg.ValidateOutput(); err != nil {
		fmt.Fprintf(os.Stderr, "dicomtonifti: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dicomtonifti: %v\n", err)
		return 1
	}
	defer log.Close()

	log.Debug("dicomtonifti %s (%s), run %s", version, commit, log.RunID())
	if cfg.DryRun {
		log.Warn("DRY RUN: no files will be written")
	}

	// Phase 2: cancel on SIGINT/SIGTERM so the driver stops between series.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Received interrupt, stopping after the current series")
			cancel()
		case <-ctx.Done():
		}
	}()

	// Phase 3: expand → group → convert.
	if _, err := pipeline.NewRunner(&cfg, log).Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, diagnostic(err))
		return 1
	}
	return 0
}

// diagnostic renders a run error for stderr. Collaborator failures print
// their own sentence; anything else gets the program prefix used by the
// bootstrap errors.
func diagnostic(err error) string {
	var e *ioerr.Error
	if errors.As(err, &e) {
		return ioerr.Message(err)
	}
	return "dicomtonifti: " + err.Error()
}
