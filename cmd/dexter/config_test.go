package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("decodes known keys", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte(`
format = "json"
verbosity = 2
hidden_api = false
verify = true
jobs = 8
colour = "blue"
`), 0o644))

		cfg, err := loadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "json", cfg.Format)
		assert.Equal(t, 2, cfg.Verbosity)
		require.NotNil(t, cfg.HiddenAPI)
		assert.False(t, *cfg.HiddenAPI)
		assert.True(t, cfg.Verify)
		assert.Equal(t, 8, cfg.Jobs)
	})

	t.Run("explicit missing file", func(t *testing.T) {
		_, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, err)
	})

	t.Run("syntax error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte("format = "), 0o644))
		_, err := loadConfig(path)
		assert.Error(t, err)
	})
}

func TestJobs(t *testing.T) {
	g := &globalOptions{}
	assert.Equal(t, 4, g.jobs())
	g.cfg.Jobs = 2
	assert.Equal(t, 2, g.jobs())
}

func TestDecodeOptions(t *testing.T) {
	g := &globalOptions{hiddenAPI: true}
	assert.Len(t, g.decodeOptions(), 1)
	g.cfg.Verify = true
	assert.Len(t, g.decodeOptions(), 3)
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"dump", "header", "strings", "classes", "code", "offsets", "verify"}, names)
}
