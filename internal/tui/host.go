package tui

import (
	"fmt"
	"path/filepath"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sokinpui/linereview/internal/fs"
	"github.com/sokinpui/linereview/model"
)

// file is one buffer of the terminal host.
type file struct {
	path   string
	lines  []string
	styles map[int]string // line -> style identifier
}

// Host is the terminal editor host. The bubbletea model mutates it from the
// update loop; the annotator reads it from its own goroutines, so all state
// is guarded by mu. Callbacks are always invoked with mu released.
type Host struct {
	mu       sync.Mutex
	files    []*file
	current  int
	cursor   int
	anchor   int // -1 without a selection
	commands map[string]func()
	focus    func(model.BufferInfo)
	send     func(tea.Msg)
}

// highlightsMsg asks the model to redraw after new highlights arrived.
type highlightsMsg struct{ path string }

// NewHost loads paths into a new Host. Paths are made absolute.
func NewHost(paths []string) (*Host, error) {
	h := &Host{anchor: -1, commands: make(map[string]func())}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("invalid path %s: %w", p, err)
		}
		lines, err := fs.ReadLines(abs)
		if err != nil {
			return nil, err
		}
		h.files = append(h.files, &file{path: abs, lines: lines, styles: map[int]string{}})
	}
	if len(h.files) == 0 {
		return nil, fmt.Errorf("no files to open")
	}
	return h, nil
}

// SetProgram routes redraw requests to p.
func (h *Host) SetProgram(p *tea.Program) {
	h.mu.Lock()
	h.send = p.Send
	h.mu.Unlock()
}

// ActiveSelection returns the anchor-to-cursor range, or the cursor line.
func (h *Host) ActiveSelection() (model.Selection, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.anchor < 0 {
		return model.Selection{StartLine: h.cursor, EndLine: h.cursor}, nil
	}
	return model.Selection{StartLine: h.anchor, EndLine: h.cursor}, nil
}

// ActiveBuffer describes the focused file.
func (h *Host) ActiveBuffer() (model.BufferInfo, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.files) == 0 {
		return model.BufferInfo{}, false, nil
	}
	return h.infoLocked(h.current), true, nil
}

// ApplyHighlights replaces the highlight styles of the file at buf.Path.
func (h *Host) ApplyHighlights(buf model.BufferInfo, hl model.Highlights, styles model.Styles) error {
	h.mu.Lock()
	f := h.fileLocked(buf.Path)
	if f == nil {
		h.mu.Unlock()
		return fmt.Errorf("no open file %s", buf.Path)
	}
	f.styles = make(map[int]string)
	for _, class := range []model.LineClass{model.ClassReviewed, model.ClassModified, model.ClassIgnored} {
		for _, line := range hl.Lines(class) {
			f.styles[line] = styles.For(class)
		}
	}
	send := h.send
	h.mu.Unlock()

	if send != nil {
		send(highlightsMsg{path: buf.Path})
	}
	return nil
}

// OnFocusChange subscribes fn to file switches.
func (h *Host) OnFocusChange(fn func(model.BufferInfo)) error {
	h.mu.Lock()
	h.focus = fn
	h.mu.Unlock()
	return nil
}

// RegisterCommand binds a command name to fn.
func (h *Host) RegisterCommand(name string, fn func()) error {
	h.mu.Lock()
	h.commands[name] = fn
	h.mu.Unlock()
	return nil
}

// Invoke runs a registered command and clears the selection afterwards.
func (h *Host) Invoke(name string) error {
	h.mu.Lock()
	fn, ok := h.commands[name]
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown command %s", name)
	}
	fn()

	h.mu.Lock()
	h.anchor = -1
	h.mu.Unlock()
	return nil
}

// Switch focuses the file delta positions away, wrapping around, and
// notifies the focus subscriber.
func (h *Host) Switch(delta int) {
	h.mu.Lock()
	n := len(h.files)
	if n < 2 {
		h.mu.Unlock()
		return
	}
	h.current = ((h.current+delta)%n + n) % n
	h.cursor = 0
	h.anchor = -1
	info := h.infoLocked(h.current)
	fn := h.focus
	h.mu.Unlock()

	if fn != nil {
		fn(info)
	}
}

// Move moves the cursor by delta lines, clamped to the file.
func (h *Host) Move(delta int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	last := len(h.files[h.current].lines) - 1
	h.cursor = max(0, min(last, h.cursor+delta))
}

// ToggleSelection starts a selection at the cursor or drops the current one.
func (h *Host) ToggleSelection() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.anchor >= 0 {
		h.anchor = -1
	} else {
		h.anchor = h.cursor
	}
}

// ClearSelection drops the selection.
func (h *Host) ClearSelection() {
	h.mu.Lock()
	h.anchor = -1
	h.mu.Unlock()
}

// Reference returns "path:start-end" of the selection, one-based.
func (h *Host) Reference() string {
	sel, _ := h.ActiveSelection()
	buf, _, _ := h.ActiveBuffer()
	r := sel.Range()
	if r.Start == r.End {
		return fmt.Sprintf("%s:%d", buf.Path, r.Start+1)
	}
	return fmt.Sprintf("%s:%d-%d", buf.Path, r.Start+1, r.End+1)
}

// snapshot is a consistent copy of what the view needs.
type snapshot struct {
	path      string
	lines     []string
	styles    map[int]string
	cursor    int
	selection *model.LineRange
	index     int
	count     int
}

func (h *Host) snapshot() snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	f := h.files[h.current]
	s := snapshot{
		path:   f.path,
		lines:  f.lines,
		styles: make(map[int]string, len(f.styles)),
		cursor: h.cursor,
		index:  h.current,
		count:  len(h.files),
	}
	for k, v := range f.styles {
		s.styles[k] = v
	}
	if h.anchor >= 0 {
		r := model.NormalizeRange(h.anchor, h.cursor)
		s.selection = &r
	}
	return s
}

func (h *Host) infoLocked(i int) model.BufferInfo {
	f := h.files[i]
	return model.BufferInfo{Path: f.path, LineCount: len(f.lines)}
}

func (h *Host) fileLocked(path string) *file {
	for _, f := range h.files {
		if f.path == path {
			return f
		}
	}
	return nil
}
