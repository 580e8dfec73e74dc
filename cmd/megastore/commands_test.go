package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("MS_KAFKA_BROKERS", "")
	t.Setenv("MS_REDIS_ADDR", "")
	t.Setenv("MS_METRICS_PORT", "")
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDemo(t *testing.T) {
	out, err := run(t, "", "demo", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "id=1 ")
	assert.Contains(t, out, "id=3 ")
	assert.NotContains(t, out, "id=2 ")
}

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(catalogPath, []byte(`[
		{"id": 10, "name": "Camisa Preta"},
		{"id": 11, "name": "Camisa Branca"}
	]`), 0o644))
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
logging:
  level: error
catalog:
  source: file
  path: `+catalogPath+`
`), 0o644))
	return cfgPath
}

func TestSearch(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "", "--config", cfg, "search", "branca")
	require.NoError(t, err)
	assert.Contains(t, out, "id=11 ")
	assert.NotContains(t, out, "id=10 ")

	out, err = run(t, "", "--config", cfg, "search", "-n", "1", "camisa")
	require.NoError(t, err)
	assert.Contains(t, out, "id=10 ")
	assert.Contains(t, out, "(1 of 2 matches)")

	_, err = run(t, "", "--config", cfg, "search")
	assert.Error(t, err)
}

func TestShell(t *testing.T) {
	out, err := run(t, "camisa\nbranca\n", "--config", writeConfig(t), "shell")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "id="))
}

func TestPublishValidatesFlags(t *testing.T) {
	_, err := run(t, "", "publish", "--log-level", "error")
	assert.ErrorContains(t, err, "exactly one of")

	_, err = run(t, "", "publish", "--delete", "1", "--log-level", "error")
	assert.ErrorContains(t, err, "kafka.brokers")
}

func TestBadConfigFails(t *testing.T) {
	_, err := run(t, "", "--config", "/nonexistent.yaml", "demo")
	assert.Error(t, err)
}
