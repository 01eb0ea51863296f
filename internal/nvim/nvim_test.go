package nvim

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/neovim/go-client/nvim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/linereview/internal/logger"
	"github.com/sokinpui/linereview/model"
)

func TestExCommandName(t *testing.T) {
	assert.Equal(t, "LineReviewMarkReviewed", exCommandName("markReviewed"))
	assert.Equal(t, "LineReviewClear", exCommandName("clearReviews"))
	assert.Equal(t, "LineReviewRefresh", exCommandName("refresh"))
}

func TestCommandDefinition(t *testing.T) {
	got := commandDefinition("LineReviewMarkIgnored", "markIgnored", 3)

	assert.Equal(t,
		"command! -range LineReviewMarkIgnored call rpcnotify(3, 'linereview:command', 'markIgnored', <line1> - 1, <line2> - 1)",
		got)
}

func TestFocusAutocmd(t *testing.T) {
	cmds := focusAutocmd(7)

	require.Len(t, cmds, 4)
	assert.Equal(t, "augroup linereview", cmds[0])
	assert.Equal(t, "autocmd!", cmds[1])
	assert.Contains(t, cmds[2], "BufEnter")
	assert.Contains(t, cmds[2], "rpcnotify(7, 'linereview:focus'")
	assert.Equal(t, "augroup END", cmds[3])
}

// newEmbeddedManager starts a throwaway Neovim for integration tests.
func newEmbeddedManager(t *testing.T) *Manager {
	t.Helper()
	if _, err := exec.LookPath("nvim"); err != nil {
		t.Skip("nvim not found in PATH")
	}

	v, err := nvim.NewChildProcess(nvim.ChildProcessArgs("-u", "NONE", "-n", "--embed", "--headless"))
	require.NoError(t, err)
	t.Cleanup(func() { v.Close() })

	m := newManager(v, logger.Nop())
	require.NoError(t, m.setup())
	return m
}

func TestManager_Integration(t *testing.T) {
	m := newEmbeddedManager(t)

	path := filepath.Join(t.TempDir(), "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n\nfunc main() {}\n\n// end\n"), 0o644))

	focused := make(chan model.BufferInfo, 4)
	require.NoError(t, m.OnFocusChange(func(buf model.BufferInfo) { focused <- buf }))

	require.NoError(t, m.nvim.Command("edit "+path))

	select {
	case buf := <-focused:
		assert.Equal(t, path, buf.Path)
		assert.Equal(t, 5, buf.LineCount)
	case <-time.After(5 * time.Second):
		t.Fatal("no focus notification")
	}

	buf, ok, err := m.ActiveBuffer()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, path, buf.Path)

	h := model.ReviewState{
		Reviewed: model.NewLineSet(0),
		Ignored:  model.NewLineSet(4),
	}.Build(buf.LineCount)
	require.NoError(t, m.ApplyHighlights(buf, h, model.DefaultStyles))

	var marks []interface{}
	require.NoError(t, m.nvim.Request("nvim_buf_get_extmarks", &marks, 0, m.ns, 0, -1, map[string]interface{}{}))
	assert.Len(t, marks, 2)

	// Re-rendering replaces rather than accumulates.
	require.NoError(t, m.ApplyHighlights(buf, model.Highlights{Modified: []int{2}}, model.DefaultStyles))
	marks = nil
	require.NoError(t, m.nvim.Request("nvim_buf_get_extmarks", &marks, 0, m.ns, 0, -1, map[string]interface{}{}))
	assert.Len(t, marks, 1)

	sel, err := m.ActiveSelection()
	require.NoError(t, err)
	assert.Equal(t, model.Selection{StartLine: 0, EndLine: 0}, sel)

	ran := make(chan model.Selection, 1)
	require.NoError(t, m.RegisterCommand("markReviewed", func() {
		s, err := m.ActiveSelection()
		assert.NoError(t, err)
		ran <- s
	}))
	require.NoError(t, m.nvim.Command("2,4LineReviewMarkReviewed"))

	select {
	case s := <-ran:
		assert.Equal(t, model.Selection{StartLine: 1, EndLine: 3}, s)
	case <-time.After(5 * time.Second):
		t.Fatal("command notification not received")
	}
}
