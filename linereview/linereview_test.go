package linereview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/linereview/internal/config"
	"github.com/sokinpui/linereview/model"
)

type fakeService struct {
	mu      sync.Mutex
	states  map[string]string
	updates []model.UpdateRequest
}

func newFakeService(t *testing.T, states map[string]string) (*fakeService, *httptest.Server) {
	t.Helper()
	f := &fakeService{states: states}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reviews" {
			http.NotFound(w, r)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()

		switch r.Method {
		case http.MethodGet:
			body, ok := f.states[r.URL.Query().Get("file_name")]
			if !ok {
				http.Error(w, "unknown file", http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		case http.MethodPost:
			var req model.UpdateRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			f.updates = append(f.updates, req)
		}
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestStatus(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.go", "one\ntwo\nthree\n")
	b := writeFile(t, dir, "b.go", "x\n")

	_, srv := newFakeService(t, map[string]string{
		"a.go": `{"reviewed":[0,1],"modified":[1,9],"ignored":null}`,
	})

	summaries, err := Status(context.Background(), []string{a, b}, Config{Endpoint: srv.URL, Root: dir})
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, a, summaries[0].Path)
	assert.Equal(t, 2, summaries[0].Reviewed)
	assert.Equal(t, 0, summaries[0].Modified, "line 1 is reviewed, line 9 is past the end")
	assert.NoError(t, summaries[0].Err)

	assert.Equal(t, b, summaries[1].Path)
	assert.Error(t, summaries[1].Err)
}

func TestStatus_MissingFileUsesRawCounts(t *testing.T) {
	dir := t.TempDir()
	_, srv := newFakeService(t, map[string]string{
		"gone.go": `{"reviewed":[0,1,2],"modified":[],"ignored":[7]}`,
	})

	summaries, err := Status(context.Background(), []string{filepath.Join(dir, "gone.go")}, Config{Endpoint: srv.URL, Root: dir})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 3, summaries[0].Reviewed)
	assert.Equal(t, 1, summaries[0].Ignored)
}

func TestFetch(t *testing.T) {
	dir := t.TempDir()
	_, srv := newFakeService(t, map[string]string{
		"pkg/main.go": `{"reviewed":[4],"modified":[],"ignored":[]}`,
	})

	state, err := Fetch(context.Background(), filepath.Join(dir, "pkg", "main.go"), Config{Endpoint: srv.URL + "/", Root: dir})
	require.NoError(t, err)
	assert.Equal(t, []int{4}, state.Reviewed.Sorted())
	assert.Empty(t, state.Modified)
}

func TestMark(t *testing.T) {
	dir := t.TempDir()
	f, srv := newFakeService(t, nil)

	err := Mark(context.Background(), filepath.Join(dir, "x.cpp"), 7, 3, model.ActionIgnored, Config{Endpoint: srv.URL, Root: dir})
	require.NoError(t, err)

	require.Len(t, f.updates, 1)
	assert.Equal(t, model.UpdateRequest{
		FileName:    "x.cpp",
		StartLine:   3,
		EndLine:     7,
		ReviewState: model.ActionIgnored,
	}, f.updates[0])
}

func TestMark_InvalidAction(t *testing.T) {
	f, srv := newFakeService(t, nil)

	err := Mark(context.Background(), "x.go", 0, 0, model.ReviewAction("Approved"), Config{Endpoint: srv.URL})
	assert.Error(t, err)
	assert.Empty(t, f.updates)
}

func TestLibrary_EndpointRequired(t *testing.T) {
	_, err := Status(context.Background(), []string{"a.go"}, Config{})
	assert.ErrorIs(t, err, config.ErrEndpointRequired)

	_, err = Fetch(context.Background(), "a.go", Config{})
	assert.ErrorIs(t, err, config.ErrEndpointRequired)
}

func TestApp_RunUnknownHost(t *testing.T) {
	app, err := New(&config.Config{Endpoint: "http://localhost:1", Host: "emacs"}, nil)
	require.NoError(t, err)

	err = app.Run(context.Background())
	assert.ErrorIs(t, err, config.ErrInvalidHost)
}

func TestApp_RunTUIMissingFile(t *testing.T) {
	app, err := New(&config.Config{
		Endpoint: "http://localhost:1",
		Host:     config.HostTUI,
		Files:    []string{filepath.Join(t.TempDir(), "missing.go")},
	}, nil)
	require.NoError(t, err)

	assert.Error(t, app.Run(context.Background()))
}

func TestDetailedError(t *testing.T) {
	cause := errors.New("boom")
	err := &DetailedError{Err: cause, Stack: []byte("stack")}

	assert.Equal(t, "boom", err.Error())
	assert.ErrorIs(t, err, cause)
}
