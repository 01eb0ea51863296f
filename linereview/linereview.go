package linereview

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sokinpui/linereview/internal/annotator"
	"github.com/sokinpui/linereview/internal/config"
	"github.com/sokinpui/linereview/internal/fs"
	"github.com/sokinpui/linereview/internal/logger"
	"github.com/sokinpui/linereview/internal/nvim"
	"github.com/sokinpui/linereview/internal/service"
	"github.com/sokinpui/linereview/internal/tui"
	"github.com/sokinpui/linereview/internal/ui"
	"github.com/sokinpui/linereview/model"
)

// App orchestrates the entire application logic.
type App struct {
	cfg   *config.Config
	log   *logger.Logger
	svc   service.ReviewService
	paths *fs.PathResolver
}

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

func (e *DetailedError) Unwrap() error {
	return e.Err
}

// New creates a new App instance.
func New(cfg *config.Config, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}
	paths, err := fs.NewPathResolver(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize path resolver: %w", err)
	}
	svc := service.NewHTTPReviewService(service.HTTPConfig{
		URL:     cfg.ReviewsURL(),
		Timeout: cfg.Timeout,
	})

	return &App{
		cfg:   cfg,
		log:   log,
		svc:   svc,
		paths: paths,
	}, nil
}

// Run starts the configured host and blocks until it exits.
func (a *App) Run(ctx context.Context) (err error) {
	// Centralized panic recovery.
	defer func() {
		if r := recover(); r != nil {
			err = &DetailedError{
				Err:   fmt.Errorf("internal panic: %v", r),
				Stack: debug.Stack(),
			}
		}
	}()

	a.log.Info().
		Str("host", a.cfg.Host).
		Str("endpoint", a.cfg.ReviewsURL()).
		Strs("extensions", a.cfg.Extensions).
		Msg("starting")

	switch a.cfg.Host {
	case config.HostNvim:
		return a.runNvim(ctx)
	case config.HostTUI:
		return a.runTUI(ctx)
	case config.HostStatus:
		return a.runStatus(ctx)
	default:
		return fmt.Errorf("%w: %q", config.ErrInvalidHost, a.cfg.Host)
	}
}

func (a *App) newAnnotator(editor annotator.Editor) *annotator.Annotator {
	return annotator.New(editor, a.svc, a.log.GetChildLogger(), annotator.Options{
		Extensions: a.cfg.Extensions,
		Styles:     model.DefaultStyles,
		Paths:      a.paths,
	})
}

// runNvim serves Neovim until it closes the connection.
func (a *App) runNvim(ctx context.Context) error {
	manager, err := nvim.New(a.cfg.Listen, a.log.GetChildLogger())
	if err != nil {
		return err
	}
	defer manager.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ann := a.newAnnotator(manager)
	if err := ann.Start(ctx); err != nil {
		return fmt.Errorf("failed to start annotator: %w", err)
	}

	err = manager.Wait(ctx)
	cancel()
	ann.Wait()
	a.log.Info().Err(err).Msg("nvim connection closed")
	return nil
}

// runTUI opens the configured files in the terminal viewer.
func (a *App) runTUI(ctx context.Context) error {
	host, err := tui.NewHost(a.cfg.Files)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(tui.New(host), tea.WithAltScreen(), tea.WithContext(ctx))
	host.SetProgram(p)

	ann := a.newAnnotator(host)
	if err := ann.Start(ctx); err != nil {
		return fmt.Errorf("failed to start annotator: %w", err)
	}

	_, err = p.Run()
	interrupted := ctx.Err() != nil
	cancel()
	ann.Wait()
	if err != nil && !interrupted {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

// runStatus prints review counts for the configured files.
func (a *App) runStatus(ctx context.Context) error {
	if !ui.Interactive() {
		ui.PrintSummaries(os.Stdout, a.Summaries(ctx, a.cfg.Files))
		return nil
	}

	m := tui.NewStatus(func() ([]model.Summary, error) {
		return a.Summaries(ctx, a.cfg.Files), nil
	})
	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	if sm, ok := final.(tui.StatusModel); ok && sm.Err() != nil {
		return sm.Err()
	}
	return nil
}

// Summaries fetches the review state of every file. Per-file failures are
// reported in the summary rather than aborting the rest.
func (a *App) Summaries(ctx context.Context, files []string) []model.Summary {
	summaries := make([]model.Summary, 0, len(files))
	for _, f := range files {
		summaries = append(summaries, a.summarize(ctx, f))
	}
	return summaries
}

func (a *App) summarize(ctx context.Context, file string) model.Summary {
	key, err := a.key(file)
	if err != nil {
		return model.Summary{Path: file, Err: err}
	}

	state, err := a.svc.FetchState(ctx, key)
	if err != nil {
		a.log.Error().Err(err).Str("file", key).Msg("error fetching review state")
		return model.Summary{Path: file, Err: err}
	}

	// Without the file on disk the raw set sizes are the best we have.
	lineCount := -1
	if lines, err := fs.ReadLines(file); err == nil {
		lineCount = len(lines)
	}
	return model.Summarize(file, state, lineCount)
}
