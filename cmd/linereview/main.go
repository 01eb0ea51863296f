package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/sokinpui/linereview/cli"
	"github.com/sokinpui/linereview/internal/config"
	"github.com/sokinpui/linereview/internal/logger"
	"github.com/sokinpui/linereview/internal/ui"
	"github.com/sokinpui/linereview/linereview"
)

func main() {
	flags, err := cli.ParseFlags()
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		// pflag already prints the error message.
		os.Exit(1)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		ui.Error("Error: %v", err)
		os.Exit(1)
	}

	log, closeLog := newLogger(cfg)
	defer closeLog()

	app, err := linereview.New(cfg, log)
	if err != nil {
		ui.Error("Failed to initialize application: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		var detailed *linereview.DetailedError
		if errors.As(err, &detailed) {
			fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", detailed.Stack)
		}
		log.Error().Err(err).Msg("exited with error")
		ui.Error("Error: %v", err)
		closeLog()
		os.Exit(1)
	}
}

// newLogger honours --log-file. The terminal hosts own the screen, so
// without a usable log file they log nothing rather than draw over it.
func newLogger(cfg *config.Config) (*logger.Logger, func()) {
	terminal := cfg.Host != config.HostNvim
	if cfg.LogFile == "" && terminal {
		return logger.Nop(), func() {}
	}

	log, closeLog, err := logger.NewFileLogger("linereview-"+cfg.Host, cfg.LogFile, cfg.LogLevel)
	if err != nil {
		if terminal {
			ui.Warning("Logging disabled: %v", err)
			return logger.Nop(), func() {}
		}
		ui.Warning("Logging to stderr: %v", err)
	}
	return log, closeLog
}
