package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-certichain/certichain/cmd/certichain/config"
)

func TestNewWriter(t *testing.T) {
	w, err := newWriter(config.LoggerConf{}, "test.log")
	require.NoError(t, err)
	assert.Equal(t, os.Stderr, w)

	dir := t.TempDir()
	w, err = newWriter(config.LoggerConf{Dir: dir}, "test.log")
	require.NoError(t, err)
	_, err = w.Write([]byte("hello\n"))
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))

	w, err = newWriter(config.LoggerConf{Dir: dir, StdErr: true}, "test.log")
	require.NoError(t, err)
	assert.NotEqual(t, os.Stderr, w)

	_, err = newWriter(config.LoggerConf{Dir: filepath.Join(dir, "missing")}, "test.log")
	assert.Error(t, err)
}
