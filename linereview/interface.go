package linereview

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sokinpui/linereview/internal/config"
	"github.com/sokinpui/linereview/model"
)

// Config for using linereview as a library.
type Config struct {
	// Base URL of the review-state service. The reviews suffix is appended.
	Endpoint string
	// Send file names relative to Root when set.
	Root string
	// Per-request timeout. Zero uses the default.
	Timeout time.Duration
}

func (c Config) appConfig() (*config.Config, error) {
	if c.Endpoint == "" {
		return nil, config.ErrEndpointRequired
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = config.DefaultTimeout
	}
	return &config.Config{
		Endpoint:   c.Endpoint,
		Root:       c.Root,
		Timeout:    timeout,
		Host:       config.HostStatus,
		Extensions: config.DefaultExtensions,
	}, nil
}

func newLibraryApp(c Config) (*App, error) {
	cfg, err := c.appConfig()
	if err != nil {
		return nil, err
	}
	app, err := New(cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize linereview app: %w", err)
	}
	return app, nil
}

// Status returns review counts for each file.
func Status(ctx context.Context, files []string, c Config) ([]model.Summary, error) {
	app, err := newLibraryApp(c)
	if err != nil {
		return nil, err
	}
	return app.Summaries(ctx, files), nil
}

// Fetch returns the review state of file.
func Fetch(ctx context.Context, file string, c Config) (model.ReviewState, error) {
	app, err := newLibraryApp(c)
	if err != nil {
		return model.ReviewState{}, err
	}
	key, err := app.key(file)
	if err != nil {
		return model.ReviewState{}, err
	}
	return app.svc.FetchState(ctx, key)
}

// Mark applies action to the inclusive, zero-based line range start..end of
// file. The bounds may be given in either order.
func Mark(ctx context.Context, file string, start, end int, action model.ReviewAction, c Config) error {
	if _, err := model.ParseReviewAction(string(action)); err != nil {
		return err
	}
	app, err := newLibraryApp(c)
	if err != nil {
		return err
	}
	key, err := app.key(file)
	if err != nil {
		return err
	}
	rng := model.NormalizeRange(start, end)
	return app.svc.UpdateState(ctx, model.UpdateRequest{
		FileName:    key,
		StartLine:   rng.Start,
		EndLine:     rng.End,
		ReviewState: action,
	})
}

func (a *App) key(file string) (string, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", fmt.Errorf("invalid path %s: %w", file, err)
	}
	return a.paths.Key(abs), nil
}
