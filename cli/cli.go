package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
)

// Config holds all the command-line flag values. Unset flags keep their zero
// value so that lower configuration layers can fill them in.
type Config struct {
	ConfigPath string
	Endpoint   string
	Extensions []string
	Root       string
	Timeout    time.Duration
	Host       string
	Listen     string
	LogFile    string
	LogLevel   string
	Files      []string
}

// ParseFlags parses the process arguments.
func ParseFlags() (*Config, error) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs defines and parses command-line flags using pflag.
func ParseArgs(args []string) (*Config, error) {
	cfg := &Config{}
	fs := pflag.NewFlagSet("linereview", pflag.ContinueOnError)

	fs.StringVarP(&cfg.ConfigPath, "config", "c", "", "Path to a YAML config file.")
	fs.StringVarP(&cfg.Endpoint, "endpoint", "E", "", "Base URL of the review-state service ('reviews' is appended).")
	fs.StringSliceVarP(&cfg.Extensions, "extension", "e", []string{}, "Recognized source extensions (default: cpp, h, go).")
	fs.StringVar(&cfg.Root, "root", "", "Send file names relative to this directory instead of absolute paths.")
	fs.DurationVarP(&cfg.Timeout, "timeout", "t", 0, "Timeout for each request to the service (default 15s).")
	fs.StringVar(&cfg.Host, "host", "", "Editor host: nvim, tui or status (default: tui when files are given, nvim otherwise).")
	fs.StringVarP(&cfg.Listen, "listen", "l", "", "Neovim socket to connect to (default: $NVIM_LISTEN_ADDRESS, then stdio).")
	fs.StringVar(&cfg.LogFile, "log-file", "", "Write logs to this file (default: stderr).")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level: debug, info, warn, error (default: info).")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: linereview [flags] [files...]")
		fmt.Fprintln(os.Stderr, "\nMark line ranges as reviewed, modified or ignored and highlight them in your editor.")
		fmt.Fprintln(os.Stderr, "\nExamples:")
		fmt.Fprintln(os.Stderr, "  linereview -E http://localhost:8000/ main.go util.h")
		fmt.Fprintln(os.Stderr, "  linereview --host status -E http://localhost:8000/ *.cpp")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Files = fs.Args()

	return cfg, nil
}
