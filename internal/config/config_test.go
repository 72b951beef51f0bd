package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/sheetstats-go/pkg/sheetstats"
)

// chdirTemp moves into an empty directory so no stray .env is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv(ConfigFileEnv, "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, int64(32<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, 2*time.Hour, cfg.Server.SessionTTL)
	assert.Equal(t, 8784, cfg.Server.MaxBuckets)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "sheets", cfg.Layout.Mode)
	assert.Equal(t, 4, cfg.Layout.StartRow)
	assert.Equal(t, "A1", cfg.Layout.TitleCell)
	assert.Equal(t, []string{"Посилання", "Пошук"}, cfg.Layout.ServiceSheets)
	assert.Empty(t, cfg.Layout.FrequencyColumn)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "sheetstats.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
  session_ttl: 30m
  max_buckets: 744
logging:
  level: debug
  format: text
layout:
  mode: lookup
  data_sheet: Events
  timezone: UTC
`), 0o600))

	t.Setenv(ConfigFileEnv, "")
	t.Setenv("SHEETSTATS_SERVER_ADDR", ":7070")
	t.Setenv("SHEETSTATS_LAYOUT_SERVICE_SHEETS", "Index,Notes")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr, "env wins over file")
	assert.Equal(t, 30*time.Minute, cfg.Server.SessionTTL)
	assert.Equal(t, 744, cfg.Server.MaxBuckets)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "lookup", cfg.Layout.Mode)
	assert.Equal(t, "Events", cfg.Layout.DataSheet)
	assert.Equal(t, "C", cfg.Layout.FrequencyColumn)
	assert.Empty(t, cfg.Layout.TitleCell)
	assert.Equal(t, []string{"Index", "Notes"}, cfg.Layout.ServiceSheets)

	opts, err := cfg.Layout.Options()
	require.NoError(t, err)
	assert.Equal(t, sheetstats.LayoutLookup, opts.Layout)
	assert.Equal(t, "Events", opts.DataSheet)
	assert.Equal(t, time.UTC, opts.Location)
}

func TestLoadFromConfigEnv(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("layout:\n  start_row: 2\n"), 0o600))
	t.Setenv(ConfigFileEnv, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Layout.StartRow)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SHEETSTATS_LOGGING_LEVEL=warn\n"), 0o600))
	t.Setenv(ConfigFileEnv, "")
	// godotenv never overrides variables that are already set.
	t.Setenv("SHEETSTATS_LOGGING_LEVEL", "")
	require.NoError(t, os.Unsetenv("SHEETSTATS_LOGGING_LEVEL"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{name: "missing file", file: "does-not-exist.yaml"},
		{name: "bad mode", env: map[string]string{"SHEETSTATS_LAYOUT_MODE": "grid"}},
		{name: "bad level", env: map[string]string{"SHEETSTATS_LOGGING_LEVEL": "loud"}},
		{name: "bad duration", env: map[string]string{"SHEETSTATS_SERVER_SESSION_TTL": "soon"}},
		{name: "bad bucket limit", env: map[string]string{"SHEETSTATS_SERVER_MAX_BUCKETS": "-1"}},
		{name: "bad column", env: map[string]string{"SHEETSTATS_LAYOUT_DATE_COLUMN": "1"}},
		{name: "bad timezone", env: map[string]string{"SHEETSTATS_LAYOUT_TIMEZONE": "Mars/Olympus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := chdirTemp(t)
			t.Setenv(ConfigFileEnv, "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = filepath.Join(dir, tt.file)
			}

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	opts, err := cfg.Layout.Options()
	require.NoError(t, err)
	assert.Equal(t, sheetstats.LayoutSheets, opts.Layout)
	assert.Equal(t, time.Local, opts.Location)
}

func TestLocation(t *testing.T) {
	for _, tz := range []string{"", "Local", "local"} {
		loc, err := LayoutConfig{Timezone: tz}.Location()
		require.NoError(t, err)
		assert.Equal(t, time.Local, loc)
	}

	loc, err := LayoutConfig{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}
