package nvim

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"unicode"

	"github.com/neovim/go-client/nvim"

	"github.com/sokinpui/linereview/internal/logger"
	"github.com/sokinpui/linereview/model"
)

const (
	namespace     = "linereview"
	augroup       = "linereview"
	commandMethod = "linereview:command"
	focusMethod   = "linereview:focus"
)

// exCommands maps annotator command names to Neovim user commands.
var exCommands = map[string]string{
	"markReviewed": "LineReviewMarkReviewed",
	"markModified": "LineReviewMarkModified",
	"markIgnored":  "LineReviewMarkIgnored",
	"clearReviews": "LineReviewClear",
}

// highlightDefaults are declared with "highlight default" so colour schemes
// can override them.
var highlightDefaults = map[string]string{
	model.DefaultStyles.Reviewed: "guibg=#1f3a2a ctermbg=22",
	model.DefaultStyles.Modified: "guibg=#3d3419 ctermbg=58",
	model.DefaultStyles.Ignored:  "guibg=#2b2b2b ctermbg=236",
}

// Manager is the Neovim host: it implements the annotator's Editor on top of
// a msgpack-RPC connection.
type Manager struct {
	nvim *nvim.Nvim
	log  *logger.Logger
	ns   int

	done chan error

	mu        sync.Mutex
	commands  map[string]func()
	focus     func(model.BufferInfo)
	selection *model.Selection
}

// New connects to Neovim. addr, then $NVIM_LISTEN_ADDRESS, name a socket to
// dial; with neither the plugin talks over stdin and stdout, as when started
// with jobstart(..., {'rpc': v:true}).
func New(addr string, log *logger.Logger) (*Manager, error) {
	if addr == "" {
		addr = os.Getenv("NVIM_LISTEN_ADDRESS")
	}

	var (
		r io.Reader
		w io.Writer
		c io.Closer
	)
	if addr != "" {
		conn, err := dial(addr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to nvim at %s: %w", addr, err)
		}
		r, w, c = conn, conn, conn
	} else {
		r, w, c = os.Stdin, os.Stdout, os.Stdout
	}

	v, err := nvim.New(r, w, c, func(format string, args ...interface{}) {
		log.Debug().Msgf(format, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create nvim client: %w", err)
	}

	m := newManager(v, log)
	m.done = make(chan error, 1)
	go func() {
		m.done <- v.Serve()
	}()

	if err := m.setup(); err != nil {
		v.Close()
		return nil, err
	}
	return m, nil
}

func dial(addr string) (net.Conn, error) {
	if strings.Contains(addr, "/") {
		return net.Dial("unix", addr)
	}
	return net.Dial("tcp", addr)
}

func newManager(v *nvim.Nvim, log *logger.Logger) *Manager {
	return &Manager{
		nvim:     v,
		log:      log,
		commands: make(map[string]func()),
	}
}

// setup registers the RPC handlers, the highlight namespace and the default
// highlight groups.
func (m *Manager) setup() error {
	if err := m.nvim.RegisterHandler(commandMethod, m.handleCommand); err != nil {
		return fmt.Errorf("failed to register command handler: %w", err)
	}
	if err := m.nvim.RegisterHandler(focusMethod, m.handleFocus); err != nil {
		return fmt.Errorf("failed to register focus handler: %w", err)
	}

	ns, err := m.nvim.CreateNamespace(namespace)
	if err != nil {
		return fmt.Errorf("failed to create highlight namespace: %w", err)
	}
	m.ns = ns

	b := m.nvim.NewBatch()
	for group, attrs := range highlightDefaults {
		b.Command(fmt.Sprintf("highlight default %s %s", group, attrs))
	}
	if err := b.Execute(); err != nil {
		return fmt.Errorf("failed to define highlight groups: %w", err)
	}
	return nil
}

// Wait blocks until Neovim closes the connection or ctx is done.
func (m *Manager) Wait(ctx context.Context) error {
	select {
	case err := <-m.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disconnects from Neovim.
func (m *Manager) Close() {
	if m.nvim != nil {
		m.nvim.Close()
	}
}

// RegisterCommand defines a ranged user command that notifies this plugin.
func (m *Manager) RegisterCommand(name string, fn func()) error {
	m.mu.Lock()
	m.commands[name] = fn
	m.mu.Unlock()

	def := commandDefinition(exCommandName(name), name, m.nvim.ChannelID())
	if err := m.nvim.Command(def); err != nil {
		return fmt.Errorf("failed to define command %s: %w", exCommandName(name), err)
	}
	return nil
}

// OnFocusChange installs a BufEnter autocommand that notifies fn.
func (m *Manager) OnFocusChange(fn func(model.BufferInfo)) error {
	m.mu.Lock()
	m.focus = fn
	m.mu.Unlock()

	b := m.nvim.NewBatch()
	for _, cmd := range focusAutocmd(m.nvim.ChannelID()) {
		b.Command(cmd)
	}
	if err := b.Execute(); err != nil {
		return fmt.Errorf("failed to install focus autocommand: %w", err)
	}
	return nil
}

// ActiveSelection returns the range the running command was invoked on, or
// the cursor line outside of a command.
func (m *Manager) ActiveSelection() (model.Selection, error) {
	m.mu.Lock()
	sel := m.selection
	m.mu.Unlock()
	if sel != nil {
		return *sel, nil
	}

	win, err := m.nvim.CurrentWindow()
	if err != nil {
		return model.Selection{}, fmt.Errorf("failed to get current window: %w", err)
	}
	pos, err := m.nvim.WindowCursor(win)
	if err != nil {
		return model.Selection{}, fmt.Errorf("failed to get cursor: %w", err)
	}
	line := pos[0] - 1
	return model.Selection{StartLine: line, EndLine: line}, nil
}

// ActiveBuffer describes the current buffer.
func (m *Manager) ActiveBuffer() (model.BufferInfo, bool, error) {
	buf, err := m.nvim.CurrentBuffer()
	if err != nil {
		return model.BufferInfo{}, false, fmt.Errorf("failed to get current buffer: %w", err)
	}
	info, err := m.bufferInfo(buf)
	if err != nil {
		return model.BufferInfo{}, false, err
	}
	return info, true, nil
}

// ApplyHighlights replaces the plugin's highlights in the buffer named by
// info.
func (m *Manager) ApplyHighlights(info model.BufferInfo, h model.Highlights, styles model.Styles) error {
	buf, err := m.findBuffer(info.Path)
	if err != nil {
		return err
	}

	var id int
	b := m.nvim.NewBatch()
	b.ClearBufferNamespace(buf, m.ns, 0, -1)
	for _, class := range []model.LineClass{model.ClassReviewed, model.ClassModified, model.ClassIgnored} {
		group := styles.For(class)
		for _, line := range h.Lines(class) {
			b.AddBufferHighlight(buf, m.ns, group, line, 0, -1, &id)
		}
	}
	if err := b.Execute(); err != nil {
		return fmt.Errorf("failed to apply highlights to %s: %w", info.Path, err)
	}
	return nil
}

func (m *Manager) bufferInfo(buf nvim.Buffer) (model.BufferInfo, error) {
	b := m.nvim.NewBatch()
	var (
		name  string
		count int
	)
	b.BufferName(buf, &name)
	b.BufferLineCount(buf, &count)
	if err := b.Execute(); err != nil {
		return model.BufferInfo{}, fmt.Errorf("failed to describe buffer %d: %w", buf, err)
	}
	return model.BufferInfo{Path: name, LineCount: count}, nil
}

// findBuffer prefers the current buffer and falls back to a search by name.
func (m *Manager) findBuffer(path string) (nvim.Buffer, error) {
	cur, err := m.nvim.CurrentBuffer()
	if err != nil {
		return 0, fmt.Errorf("failed to get current buffer: %w", err)
	}
	if name, err := m.nvim.BufferName(cur); err == nil && name == path {
		return cur, nil
	}

	bufs, err := m.nvim.Buffers()
	if err != nil {
		return 0, fmt.Errorf("failed to list buffers: %w", err)
	}
	for _, buf := range bufs {
		if name, err := m.nvim.BufferName(buf); err == nil && name == path {
			return buf, nil
		}
	}
	return 0, fmt.Errorf("no buffer named %s", path)
}

// handleCommand runs on go-client's notification goroutine, so the stored
// selection is only visible to the command it belongs to.
func (m *Manager) handleCommand(name string, line1, line2 int) {
	m.mu.Lock()
	fn, ok := m.commands[name]
	m.selection = &model.Selection{StartLine: line1, EndLine: line2}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.selection = nil
		m.mu.Unlock()
	}()

	if !ok {
		m.log.Warn().Str("command", name).Msg("unknown command")
		return
	}
	fn()
}

func (m *Manager) handleFocus(bufnr int) {
	m.mu.Lock()
	fn := m.focus
	m.mu.Unlock()
	if fn == nil {
		return
	}

	info, err := m.bufferInfo(nvim.Buffer(bufnr))
	if err != nil {
		m.log.Error().Err(err).Int("buffer", bufnr).Msg("focus change")
		return
	}
	fn(info)
}

// exCommandName returns the user command for an annotator command.
func exCommandName(name string) string {
	if ex, ok := exCommands[name]; ok {
		return ex
	}
	r := []rune(name)
	if len(r) > 0 {
		r[0] = unicode.ToUpper(r[0])
	}
	return "LineReview" + string(r)
}

func commandDefinition(exName, name string, channel int) string {
	return fmt.Sprintf(
		"command! -range %s call rpcnotify(%d, '%s', '%s', <line1> - 1, <line2> - 1)",
		exName, channel, commandMethod, name,
	)
}

func focusAutocmd(channel int) []string {
	return []string{
		"augroup " + augroup,
		"autocmd!",
		fmt.Sprintf("autocmd BufEnter * call rpcnotify(%d, '%s', str2nr(expand('<abuf>')))", channel, focusMethod),
		"augroup END",
	}
}
