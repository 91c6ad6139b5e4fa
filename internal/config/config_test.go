package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracesum.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, slog.LevelWarn, cfg.Level())
	assert.Empty(t, cfg.Catalog)
}

func TestLoad_Full(t *testing.T) {
	path := filepath.Join("testdata", "full.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, FormatJSON, cfg.LogFormat)
	assert.Equal(t, filepath.Join("testdata", "data", "catalog.db"), cfg.Catalog)
	assert.Equal(t, "/var/tmp/summaries", cfg.OutputDir)
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "log_level: info\n"))
	require.NoError(t, err)

	assert.Equal(t, slog.LevelInfo, cfg.Level())
	assert.Equal(t, FormatText, cfg.LogFormat)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"unknown key", "log_levle: debug\n", "failed to parse YAML"},
		{"bad level", "log_level: loud\n", `log_level "loud"`},
		{"bad format", "log_format: xml\n", `log_format "xml"`},
		{"not a mapping", "- a\n- b\n", "failed to parse YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLevel_CaseInsensitive(t *testing.T) {
	cfg := Config{LogLevel: "ERROR", LogFormat: FormatText}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, slog.LevelError, cfg.Level())
}
