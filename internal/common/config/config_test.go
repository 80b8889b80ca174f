package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveEnv(t *testing.T) {
	t.Setenv("X_A", "va")
	in := []byte("a: ${X_A:da}\nb: ${X_B:db}")
	out := resolveEnv(in)
	assert.Contains(t, string(out), "a: va")
	assert.Contains(t, string(out), "b: db")
}

func TestLoadConfig_Backend(t *testing.T) {
	tmp := t.TempDir()
	old, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(old) })
	_ = os.Chdir(tmp)

	yaml := `
server:
  port: 1234
logger:
  level: debug
  format: console
openai:
  api_key: ${X_OPENAI_KEY:test-key}
  model: gpt-4o-mini
generator:
  max_rounds: 5
`
	file := filepath.Join(tmp, "backend.yaml")
	assert.NoError(t, os.WriteFile(file, []byte(yaml), 0o644))

	cfg, path, err := LoadConfig("backend.yaml")
	assert.NoError(t, err)
	realFile, _ := filepath.EvalSymlinks(file)
	realPath, _ := filepath.EvalSymlinks(path)
	assert.Equal(t, realFile, realPath)
	assert.Equal(t, 1234, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "test-key", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, 5, cfg.Generator.MaxRounds)
}

func TestLoadConfig_Defaults(t *testing.T) {
	tmp := t.TempDir()
	old, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(old) })
	_ = os.Chdir(tmp)

	file := filepath.Join(tmp, "backend.yaml")
	assert.NoError(t, os.WriteFile(file, []byte("server:\n  port: 0\n"), 0o644))

	cfg, _, err := LoadConfig("backend.yaml")
	assert.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, 3, cfg.Generator.MaxRounds)
	assert.Equal(t, 5, cfg.Generator.DefaultJUnitVersion)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, _, err := LoadConfig("/nonexistent/backend.yaml")
	assert.Error(t, err)
}
