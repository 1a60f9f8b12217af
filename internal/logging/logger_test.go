package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWritesConsoleAndFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var stderr bytes.Buffer
	closeFn, err := Setup(Options{LogDir: dir, Stderr: &stderr})
	require.NoError(t, err)

	log.Info().Str("task_id", "t1").Msg("completed")
	log.Debug().Msg("hidden")
	require.NoError(t, closeFn())

	assert.Contains(t, stderr.String(), "completed")
	assert.NotContains(t, stderr.String(), "hidden")
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"task_id":"t1"`)
}

func TestSetupDisabledSkipsFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var stderr bytes.Buffer
	closeFn, err := Setup(Options{LogDir: dir, Disable: true, Debug: true, Stderr: &stderr})
	require.NoError(t, err)
	log.Debug().Msg("visible")
	require.NoError(t, closeFn())

	assert.Contains(t, stderr.String(), "visible")
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}
