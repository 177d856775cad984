package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Play.Words)
	assert.Nil(t, cfg.Log.Level)
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[play]
words = "/tmp/words.json"
mode = "review"
seed = 7

[serve]
addr = ":9000"

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Play.Words)
	assert.Equal(t, "/tmp/words.json", *cfg.Play.Words)
	assert.Equal(t, "review", *cfg.Play.Mode)
	assert.Equal(t, int64(7), *cfg.Play.Seed)
	assert.Equal(t, ":9000", *cfg.Serve.Addr)
	assert.Equal(t, "debug", *cfg.Log.Level)
}

func TestLoadConfigRejectsUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[play]\nhearts = 5\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "play.hearts")
}

func TestLoadConfigEmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	require.Error(t, err)
}

func TestDefaultPathsHonorEnv(t *testing.T) {
	t.Setenv(EnvDBPath, "/data/progress.db")
	t.Setenv(EnvWordsPath, "/data/words.tsv")
	assert.Equal(t, "/data/progress.db", DefaultDBPath())
	assert.Equal(t, "/data/words.tsv", DefaultWordListPath())
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	t.Setenv(EnvWordsPath, "")
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/share")
	assert.Equal(t, filepath.Join("/share", "wordmonster", "wordmonster.db"), DefaultDBPath())
	assert.Equal(t, filepath.Join("/cfg", "wordmonster", "words.json"), DefaultWordListPath())
	assert.Equal(t, filepath.Join("/cfg", "wordmonster", "config.toml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/share", "wordmonster", "wordmonster.log"), DefaultLogPath())
}
