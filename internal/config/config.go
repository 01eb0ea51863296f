// Package config assembles the runtime configuration of linereview from an
// optional YAML file, LINEREVIEW_* environment variables and command-line
// flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/sokinpui/linereview/cli"
)

const (
	HostNvim   = "nvim"
	HostTUI    = "tui"
	HostStatus = "status"

	// EndpointSuffix is appended to the configured base URL.
	EndpointSuffix = "reviews"

	DefaultTimeout  = 15 * time.Second
	DefaultLogLevel = "info"
)

// DefaultExtensions is the source-file allowlist used when none is configured.
var DefaultExtensions = []string{".cpp", ".h", ".go"}

var (
	ErrEndpointRequired = errors.New("review service endpoint is required")
	ErrInvalidEndpoint  = errors.New("invalid review service endpoint")
	ErrInvalidHost      = errors.New("invalid editor host")
	ErrInvalidTimeout   = errors.New("invalid request timeout")
)

// Config is the merged configuration.
type Config struct {
	// Endpoint is the base URL of the review-state service, without the
	// reviews suffix.
	Endpoint string `yaml:"endpoint" env:"ENDPOINT"`
	// Extensions are the recognized source-file extensions, each with a
	// leading dot.
	Extensions []string `yaml:"extensions" env:"EXTENSIONS" envSeparator:","`
	// Root, when set, makes file names relative to it.
	Root string `yaml:"root" env:"ROOT"`
	// Timeout bounds each HTTP request.
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// Host selects the editor integration.
	Host string `yaml:"host" env:"HOST"`
	// Listen is the Neovim socket address.
	Listen string `yaml:"listen" env:"LISTEN"`
	// LogFile receives logs; empty means stderr.
	LogFile string `yaml:"log_file" env:"LOG_FILE"`
	// LogLevel is a zerolog level name.
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// Files are opened by the tui and status hosts.
	Files []string `yaml:"-"`
}

// Load merges the config file named by flags (or $LINEREVIEW_CONFIG), the
// environment and flags, then applies defaults and validates the result.
func Load(flags *cli.Config) (*Config, error) {
	return newBuilder().
		withFile(flags).
		withEnv().
		withFlags(flags).
		build()
}

// ReviewsURL returns the endpoint with the fixed reviews suffix appended.
func (c *Config) ReviewsURL() string {
	return JoinEndpoint(c.Endpoint)
}

// JoinEndpoint appends EndpointSuffix to the path of base, inserting a slash
// when base does not end with one.
func JoinEndpoint(base string) string {
	u, err := url.Parse(base)
	if err != nil {
		return strings.TrimRight(base, "/") + "/" + EndpointSuffix
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.Path += EndpointSuffix
	return u.String()
}

// NormalizeExtensions adds a leading dot where missing and drops empty
// entries.
func NormalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if ext[0] != '.' {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

func (c *Config) applyDefaults() {
	if len(c.Extensions) == 0 {
		c.Extensions = append([]string(nil), DefaultExtensions...)
	}
	c.Extensions = NormalizeExtensions(c.Extensions)
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Host == "" {
		if len(c.Files) > 0 {
			c.Host = HostTUI
		} else {
			c.Host = HostNvim
		}
	}
}

func (c *Config) validate() error {
	if c.Endpoint == "" {
		return ErrEndpointRequired
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidEndpoint, c.Endpoint)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, c.Timeout)
	}
	switch c.Host {
	case HostNvim, HostTUI, HostStatus:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidHost, c.Host)
	}
	if c.Host != HostNvim && len(c.Files) == 0 {
		return fmt.Errorf("%w: %s host needs at least one file", ErrInvalidHost, c.Host)
	}
	return nil
}

type builder struct {
	configs []*Config
	err     error
}

func newBuilder() *builder {
	return &builder{configs: make([]*Config, 0, 3)}
}

func (b *builder) build() (*Config, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occurred during building config: %w", b.err)
	}

	cfg := new(Config)
	for _, layer := range b.configs {
		if err := mergo.Merge(cfg, layer, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}
	cfg.applyDefaults()

	return cfg, cfg.validate()
}

func (b *builder) withFile(flags *cli.Config) *builder {
	path := flags.ConfigPath
	if path == "" {
		path = os.Getenv(envPrefix + "CONFIG")
	}
	if path == "" {
		return b
	}

	data, err := os.ReadFile(path)
	if err != nil {
		b.err = errors.Join(b.err, fmt.Errorf("error reading config file: %w", err))
		return b
	}
	fileCfg := &Config{}
	if err := yaml.Unmarshal(data, fileCfg); err != nil {
		b.err = errors.Join(b.err, fmt.Errorf("error parsing config file %s: %w", path, err))
		return b
	}

	b.configs = append(b.configs, fileCfg)
	return b
}

const envPrefix = "LINEREVIEW_"

func (b *builder) withEnv() *builder {
	envCfg := &Config{}
	if err := env.ParseWithOptions(envCfg, env.Options{Prefix: envPrefix}); err != nil {
		b.err = errors.Join(b.err, fmt.Errorf("error getting env configs: %w", err))
		return b
	}

	b.configs = append(b.configs, envCfg)
	return b
}

func (b *builder) withFlags(flags *cli.Config) *builder {
	b.configs = append(b.configs, &Config{
		Endpoint:   flags.Endpoint,
		Extensions: flags.Extensions,
		Root:       flags.Root,
		Timeout:    flags.Timeout,
		Host:       flags.Host,
		Listen:     flags.Listen,
		LogFile:    flags.LogFile,
		LogLevel:   flags.LogLevel,
		Files:      flags.Files,
	})
	return b
}
