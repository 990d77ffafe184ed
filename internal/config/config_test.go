package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := &Config{
		ListenAddr:             ":8080",
		CORSOrigins:            []string{"https://example.com"},
		DefaultSolverTimeLimit: 30 * time.Second,
	}

	assert.NoError(t, Validate(cfg))
}

func TestValidate_MissingListenAddr(t *testing.T) {
	cfg := &Config{
		CORSOrigins:            []string{"https://example.com"},
		DefaultSolverTimeLimit: 30 * time.Second,
	}

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_EmptyCORSOrigins(t *testing.T) {
	cfg := &Config{
		ListenAddr:             ":8080",
		DefaultSolverTimeLimit: 30 * time.Second,
	}

	assert.Error(t, Validate(cfg))
}

func TestValidate_BlankCORSOrigin(t *testing.T) {
	cfg := &Config{
		ListenAddr:             ":8080",
		CORSOrigins:            []string{""},
		DefaultSolverTimeLimit: 30 * time.Second,
	}

	assert.Error(t, Validate(cfg))
}

func TestLoadFromPath_ParsesYAMLAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, configFileName)
	contents := "listenAddr: \":9090\"\ncorsOrigins:\n  - \"https://example.com\"\ndefaultSolverTimeLimit: 45s\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, []string{"https://example.com"}, cfg.CORSOrigins)
	assert.Equal(t, 45*time.Second, cfg.DefaultSolverTimeLimit)
}

func TestLoadFromPath_EnvOverridesWin(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, configFileName)
	contents := "listenAddr: \":9090\"\ncorsOrigins:\n  - \"https://example.com\"\ndefaultSolverTimeLimit: 45s\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	t.Setenv("ROSTERD_LISTEN_ADDR", ":7070")
	t.Setenv("ROSTERD_CORS_ORIGINS", "https://a.test,https://b.test")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.ListenAddr)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.CORSOrigins)
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
