package scaffold

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jorge-barreto/blogflow/internal/config"
	"github.com/jorge-barreto/blogflow/internal/ux"
)

func quiet(t *testing.T) {
	t.Helper()
	prev := ux.Out
	ux.Out = io.Discard
	t.Cleanup(func() { ux.Out = prev })
}

func TestInit_CreatesDirectoryStructure(t *testing.T) {
	quiet(t)
	dir := t.TempDir()
	require.NoError(t, Init(dir))

	for _, path := range []string{
		config.Dir,
		filepath.Join(config.Dir, "artifacts"),
		filepath.Join(config.Dir, config.ConfigFile),
		EnvExample,
	} {
		info, err := os.Stat(filepath.Join(dir, path))
		require.NoError(t, err, path)
		if !info.IsDir() {
			assert.NotZero(t, info.Size(), "%s is empty", path)
		}
	}
}

func TestInit_GeneratedConfigIsValid(t *testing.T) {
	quiet(t)
	dir := t.TempDir()
	require.NoError(t, Init(dir))

	cfg, err := config.Load(config.Path(dir), dir)
	require.NoError(t, err)
	assert.Equal(t, "my-blog", cfg.Name)
	assert.Equal(t, 2, cfg.Retry.Max)
	assert.Equal(t, "sqlite3", cfg.Store.Driver)
	assert.Equal(t, filepath.Join(dir, config.Dir, "articles.db"), cfg.Store.DSN)
	assert.Len(t, cfg.EndpointMap(), 5)
}

func TestInit_FailsIfDirExists(t *testing.T) {
	quiet(t)
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, config.Dir), 0755))

	err := Init(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInit_KeepsExistingEnvExample(t *testing.T) {
	quiet(t)
	dir := t.TempDir()
	path := filepath.Join(dir, EnvExample)
	require.NoError(t, os.WriteFile(path, []byte("MINE=1\n"), 0644))

	require.NoError(t, Init(dir))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "MINE=1\n", string(data))
}
