package tui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/linereview/model"
)

func writeFiles(t *testing.T, contents ...string) []string {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for i, c := range contents {
		p := filepath.Join(dir, string(rune('a'+i))+".go")
		require.NoError(t, os.WriteFile(p, []byte(c), 0o644))
		paths = append(paths, p)
	}
	return paths
}

func TestNewHost(t *testing.T) {
	paths := writeFiles(t, "one\ntwo\nthree\n", "x\n")

	h, err := NewHost(paths)
	require.NoError(t, err)

	buf, ok, err := h.ActiveBuffer()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, paths[0], buf.Path)
	assert.Equal(t, 3, buf.LineCount)
}

func TestNewHost_Errors(t *testing.T) {
	_, err := NewHost(nil)
	assert.Error(t, err)

	_, err = NewHost([]string{filepath.Join(t.TempDir(), "missing.go")})
	assert.Error(t, err)
}

func TestHost_SelectionAndMove(t *testing.T) {
	h, err := NewHost(writeFiles(t, "a\nb\nc\nd\n"))
	require.NoError(t, err)

	sel, err := h.ActiveSelection()
	require.NoError(t, err)
	assert.Equal(t, model.Selection{StartLine: 0, EndLine: 0}, sel)

	h.Move(2)
	h.ToggleSelection()
	h.Move(-2)
	sel, _ = h.ActiveSelection()
	assert.Equal(t, model.Selection{StartLine: 2, EndLine: 0}, sel)
	assert.Contains(t, h.Reference(), ":1-3")

	h.Move(100)
	sel, _ = h.ActiveSelection()
	assert.Equal(t, 3, sel.EndLine, "cursor is clamped to the last line")

	h.ClearSelection()
	h.Move(-100)
	sel, _ = h.ActiveSelection()
	assert.Equal(t, model.Selection{StartLine: 0, EndLine: 0}, sel)
	assert.Contains(t, h.Reference(), "a.go:1")
}

func TestHost_Switch(t *testing.T) {
	paths := writeFiles(t, "a\n", "b\nb\n", "c\n")
	h, err := NewHost(paths)
	require.NoError(t, err)

	var focused []string
	require.NoError(t, h.OnFocusChange(func(buf model.BufferInfo) {
		// The host must not hold its lock while notifying.
		_, _, _ = h.ActiveBuffer()
		focused = append(focused, buf.Path)
	}))

	h.ToggleSelection()
	h.Switch(1)
	h.Switch(-2)

	assert.Equal(t, []string{paths[1], paths[2]}, focused)
	sel, _ := h.ActiveSelection()
	assert.Equal(t, model.Selection{StartLine: 0, EndLine: 0}, sel, "switching drops the selection")
}

func TestHost_ApplyHighlights(t *testing.T) {
	paths := writeFiles(t, "a\nb\nc\n", "x\n")
	h, err := NewHost(paths)
	require.NoError(t, err)

	var sent []tea.Msg
	h.send = func(msg tea.Msg) { sent = append(sent, msg) }

	hl := model.Highlights{Reviewed: []int{0}, Modified: []int{2}, Ignored: []int{}}
	require.NoError(t, h.ApplyHighlights(model.BufferInfo{Path: paths[0]}, hl, model.DefaultStyles))

	s := h.snapshot()
	assert.Equal(t, map[int]string{0: model.DefaultStyles.Reviewed, 2: model.DefaultStyles.Modified}, s.styles)
	assert.Equal(t, []tea.Msg{highlightsMsg{path: paths[0]}}, sent)

	// A background file can be highlighted too.
	require.NoError(t, h.ApplyHighlights(model.BufferInfo{Path: paths[1]}, model.Highlights{Ignored: []int{0}}, model.DefaultStyles))
	assert.Len(t, h.snapshot().styles, 2, "focused file is untouched")

	assert.Error(t, h.ApplyHighlights(model.BufferInfo{Path: "/nowhere.go"}, hl, model.DefaultStyles))
}

func TestHost_Invoke(t *testing.T) {
	h, err := NewHost(writeFiles(t, "a\nb\n"))
	require.NoError(t, err)

	var got model.Selection
	require.NoError(t, h.RegisterCommand("markReviewed", func() {
		got, _ = h.ActiveSelection()
	}))

	h.ToggleSelection()
	h.Move(1)
	require.NoError(t, h.Invoke("markReviewed"))
	assert.Equal(t, model.Selection{StartLine: 0, EndLine: 1}, got)

	sel, _ := h.ActiveSelection()
	assert.Equal(t, model.Selection{StartLine: 1, EndLine: 1}, sel, "selection is cleared after a command")

	assert.Error(t, h.Invoke("unknown"))
}
