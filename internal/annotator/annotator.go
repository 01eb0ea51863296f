// Package annotator implements the review annotator: it maps editor review
// commands onto the review-state service and paints the service's answer
// onto the focused buffer.
//
// The annotator never blocks the host's event goroutine on the network.
// Selection and buffer are read synchronously when an event arrives; the
// request and the following render run on a tracked goroutine. Every
// fetch-and-render is a task with a sequence number taken when the event
// arrived, and a completion older than the last rendered task is dropped, so
// the last issued request wins.
package annotator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/sokinpui/linereview/internal/fs"
	"github.com/sokinpui/linereview/internal/logger"
	"github.com/sokinpui/linereview/internal/service"
	"github.com/sokinpui/linereview/model"
)

//go:generate mockgen -source=annotator.go -destination=../mock/editor_mock.go -package=mock

var ErrNoActiveBuffer = errors.New("no active buffer")

// Editor is the capability the annotator needs from a host editor.
type Editor interface {
	// ActiveSelection returns the selection of the focused buffer.
	ActiveSelection() (model.Selection, error)
	// ActiveBuffer returns the focused buffer. ok is false when nothing is
	// focused.
	ActiveBuffer() (buf model.BufferInfo, ok bool, err error)
	// ApplyHighlights replaces all three highlight classes of buf.
	ApplyHighlights(buf model.BufferInfo, h model.Highlights, styles model.Styles) error
	// OnFocusChange subscribes fn to focused-buffer changes.
	OnFocusChange(fn func(buf model.BufferInfo)) error
	// RegisterCommand exposes a user-invocable command.
	RegisterCommand(name string, fn func()) error
}

// Command names a user command and the action it submits.
type Command struct {
	Name   string
	Action model.ReviewAction
}

// Commands are registered with the host on Start.
var Commands = []Command{
	{Name: "markReviewed", Action: model.ActionReviewed},
	{Name: "markModified", Action: model.ActionModified},
	{Name: "markIgnored", Action: model.ActionIgnored},
	{Name: "clearReviews", Action: model.ActionCleared},
}

// Options configures an Annotator.
type Options struct {
	// Extensions is the recognized source-file allowlist.
	Extensions []string
	// Styles are passed to every ApplyHighlights call.
	Styles model.Styles
	// Paths maps host paths to service keys. Nil sends paths unchanged.
	Paths *fs.PathResolver
}

// Annotator is the review annotator.
type Annotator struct {
	editor Editor
	svc    service.ReviewService
	log    *logger.Logger
	opts   Options

	ctx context.Context
	wg  sync.WaitGroup

	issued   atomic.Uint64
	renderMu sync.Mutex
	rendered uint64

	newRequestID func() string
}

// New creates an Annotator. Start must be called to hook it into the editor.
func New(editor Editor, svc service.ReviewService, log *logger.Logger, opts Options) *Annotator {
	if log == nil {
		log = logger.Nop()
	}
	if opts.Styles == (model.Styles{}) {
		opts.Styles = model.DefaultStyles
	}
	return &Annotator{
		editor:       editor,
		svc:          svc,
		log:          log,
		opts:         opts,
		ctx:          context.Background(),
		newRequestID: uuid.NewString,
	}
}

// Start registers the review commands and the focus subscription, then runs
// the focus check once against the buffer that is already focused. ctx
// bounds every request dispatched afterwards.
func (a *Annotator) Start(ctx context.Context) error {
	a.ctx = ctx

	for _, cmd := range Commands {
		action := cmd.Action
		name := cmd.Name
		err := a.editor.RegisterCommand(name, func() {
			if err := a.RunCommand(action); err != nil {
				a.log.Warn().Err(err).Str("command", name).Msg("review command not run")
			}
		})
		if err != nil {
			return fmt.Errorf("register command %s: %w", name, err)
		}
	}

	if err := a.editor.OnFocusChange(a.HandleFocus); err != nil {
		return fmt.Errorf("subscribe to focus changes: %w", err)
	}

	buf, ok, err := a.editor.ActiveBuffer()
	if err != nil {
		return fmt.Errorf("read active buffer: %w", err)
	}
	if ok {
		a.HandleFocus(buf)
	}
	return nil
}

// Wait blocks until every dispatched task has finished.
func (a *Annotator) Wait() {
	a.wg.Wait()
}

// Recognized reports whether path has one of the configured extensions.
func (a *Annotator) Recognized(path string) bool {
	return fs.HasExtension(path, a.opts.Extensions)
}

// HandleFocus fetches and renders the review state of buf when its file is
// recognized. Other files are left alone.
func (a *Annotator) HandleFocus(buf model.BufferInfo) {
	if !a.Recognized(buf.Path) {
		a.log.Debug().Str("file", buf.Path).Msg("focus on unrecognized file, skipping")
		return
	}

	t := a.newTask(buf.Path)
	a.dispatch(func(ctx context.Context) {
		a.refresh(t.context(ctx), t)
	})
}

// RunCommand submits action for the active selection of the focused buffer.
func (a *Annotator) RunCommand(action model.ReviewAction) error {
	buf, ok, err := a.editor.ActiveBuffer()
	if err != nil {
		return fmt.Errorf("read active buffer: %w", err)
	}
	if !ok || buf.Path == "" {
		return ErrNoActiveBuffer
	}
	sel, err := a.editor.ActiveSelection()
	if err != nil {
		return fmt.Errorf("read active selection: %w", err)
	}

	rng := sel.Range()
	t := a.newTask(buf.Path)
	a.dispatch(func(ctx context.Context) {
		a.submit(t.context(ctx), t, rng, action)
	})
	return nil
}

// FetchState returns the review state of filePath from the service.
func (a *Annotator) FetchState(ctx context.Context, filePath string) (model.ReviewState, error) {
	state, err := a.svc.FetchState(ctx, a.key(filePath))
	if err != nil {
		return model.ReviewState{}, fmt.Errorf("fetch review state of %s: %w", filePath, err)
	}
	return state, nil
}

// SubmitUpdate sends action for rng of filePath and, once the service has
// answered, re-fetches and renders the file's state. A non-2xx answer is
// logged and still refreshed. Transport failures are logged, never returned,
// and leave the current highlights untouched.
func (a *Annotator) SubmitUpdate(ctx context.Context, filePath string, rng model.LineRange, action model.ReviewAction) {
	t := a.newTask(filePath)
	a.submit(t.context(ctx), t, rng, action)
}

// Render paints state onto the focused buffer. Each line gets at most one
// class; reviewed beats modified beats ignored. With no focused buffer it
// does nothing.
func (a *Annotator) Render(state model.ReviewState) error {
	buf, ok, err := a.editor.ActiveBuffer()
	if err != nil {
		return fmt.Errorf("read active buffer: %w", err)
	}
	if !ok {
		return nil
	}
	return a.renderOn(buf, state)
}

func (a *Annotator) renderOn(buf model.BufferInfo, state model.ReviewState) error {
	h := state.Build(buf.LineCount)
	if err := a.editor.ApplyHighlights(buf, h, a.opts.Styles); err != nil {
		return fmt.Errorf("apply highlights to %s: %w", buf.Path, err)
	}
	return nil
}

func (a *Annotator) submit(ctx context.Context, t *task, rng model.LineRange, action model.ReviewAction) {
	log := t.logger(a.log)
	req := model.UpdateRequest{
		FileName:    a.key(t.file),
		StartLine:   rng.Start,
		EndLine:     rng.End,
		ReviewState: action,
	}

	err := a.svc.UpdateState(ctx, req)
	switch {
	case errors.Is(err, service.ErrUnexpectedStatus):
		// Any answer from the service is followed by a refresh.
		log.Warn().Err(err).
			Str("action", action.String()).
			Str("range", rng.String()).
			Msg("review service rejected update")
	case err != nil:
		log.Error().Err(err).
			Str("action", action.String()).
			Str("range", rng.String()).
			Msg("error updating review state")
		return
	default:
		log.Debug().Str("action", action.String()).Str("range", rng.String()).Msg("review state updated")
	}

	a.refresh(ctx, t)
}

func (a *Annotator) refresh(ctx context.Context, t *task) {
	log := t.logger(a.log)

	state, err := a.FetchState(ctx, t.file)
	if err != nil {
		log.Error().Err(err).Msg("error fetching review state")
		return
	}

	a.renderMu.Lock()
	defer a.renderMu.Unlock()

	if t.seq < a.rendered {
		log.Debug().Uint64("rendered", a.rendered).Msg("discarding stale review state")
		return
	}

	buf, ok, err := a.editor.ActiveBuffer()
	if err != nil {
		log.Error().Err(err).Msg("error reading active buffer")
		return
	}
	if !ok {
		return
	}
	if buf.Path != t.file {
		log.Debug().Str("focused", buf.Path).Msg("focus moved, discarding review state")
		return
	}

	a.rendered = t.seq
	if err := a.renderOn(buf, state); err != nil {
		log.Error().Err(err).Msg("error rendering review state")
	}
}

func (a *Annotator) key(path string) string {
	if a.opts.Paths == nil {
		return path
	}
	return a.opts.Paths.Key(path)
}

func (a *Annotator) dispatch(fn func(ctx context.Context)) {
	ctx := a.ctx
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		fn(ctx)
	}()
}

// task is one fetch-and-render cycle.
type task struct {
	seq  uint64
	id   string
	file string
}

func (a *Annotator) newTask(file string) *task {
	return &task{
		seq:  a.issued.Add(1),
		id:   a.newRequestID(),
		file: file,
	}
}

func (t *task) context(ctx context.Context) context.Context {
	return service.WithRequestID(ctx, t.id)
}

func (t *task) logger(l *logger.Logger) *logger.Logger {
	child := l.WithStr("file", t.file).WithStr("request_id", t.id)
	return &logger.Logger{Logger: child.With().Uint64("seq", t.seq).Logger()}
}
