package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	cfg, err := ParseArgs([]string{
		"-E", "http://localhost:8000/",
		"-e", "go,py",
		"--timeout", "2s",
		"--host", "tui",
		"main.go", "util.h",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/", cfg.Endpoint)
	assert.Equal(t, []string{"go", "py"}, cfg.Extensions)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, "tui", cfg.Host)
	assert.Equal(t, []string{"main.go", "util.h"}, cfg.Files)
}

func TestParseArgs_UnsetFlagsStayZero(t *testing.T) {
	cfg, err := ParseArgs(nil)
	require.NoError(t, err)

	assert.Empty(t, cfg.Endpoint)
	assert.Empty(t, cfg.Extensions)
	assert.Zero(t, cfg.Timeout)
	assert.Empty(t, cfg.Files)
}

func TestParseArgs_UnknownFlag(t *testing.T) {
	_, err := ParseArgs([]string{"--nope"})
	assert.Error(t, err)
}
