package config

import (
	"os"
	"path/filepath"
	"testing"

	"bayesview/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		FileEnv, "SAMPLES_DELIMITER", "SAMPLES_MAX_ROWS", "SAMPLES_RECODE", "SAMPLES_SHEET",
		"SAMPLES_QUERY", "DATABASE_URL", "LAYOUT_UPDATES", "LAYOUT_ATTEMPTS", "LAYOUT_SEED",
		"ESTIMATOR_WORKERS", "TABLE_PRECISION", "PICK_RADIUS", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	delim, err := cfg.Samples.DelimiterRune()
	require.NoError(t, err)
	assert.Equal(t, rune(0), delim)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bayesview.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "DEBUG"

[samples]
delimiter = "tab"
max_rows = 6301
recode = { ex = 1, su = 1 }

[layout]
attempts = 3

[display]
precision = 2
pick_radius = 0.25
`), 0o644))
	t.Setenv(FileEnv, path)
	t.Setenv("TABLE_PRECISION", "6")
	t.Setenv("LAYOUT_SEED", "99")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 6301, cfg.Samples.MaxRows)
	assert.Equal(t, map[string]int{"ex": 1, "su": 1}, cfg.Samples.Recode)
	assert.Equal(t, 3, cfg.Layout.Attempts)
	assert.Equal(t, 150, cfg.Layout.Updates, "unset file keys keep defaults")
	assert.Equal(t, int64(99), cfg.Layout.Seed)
	assert.Equal(t, 6, cfg.Display.Precision, "env overrides file")
	assert.Equal(t, 0.25, cfg.Display.PickRadius)
	assert.Equal(t, "DEBUG", cfg.LogLevel)

	delim, err := cfg.Samples.DelimiterRune()
	require.NoError(t, err)
	assert.Equal(t, '\t', delim)
}

func TestLoad_EnvRecode(t *testing.T) {
	clearEnv(t)
	t.Setenv("SAMPLES_RECODE", "ex:1, su:1")
	t.Setenv("SAMPLES_DELIMITER", ";")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"ex": 1, "su": 1}, cfg.Samples.Recode)
	delim, _ := cfg.Samples.DelimiterRune()
	assert.Equal(t, ';', delim)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{name: "bad int", env: map[string]string{"SAMPLES_MAX_ROWS": "many"}},
		{name: "bad seed", env: map[string]string{"LAYOUT_SEED": "x"}},
		{name: "negative rows", env: map[string]string{"SAMPLES_MAX_ROWS": "-1"}},
		{name: "zero attempts", env: map[string]string{"LAYOUT_ATTEMPTS": "0"}},
		{name: "bad recode", env: map[string]string{"SAMPLES_RECODE": "ex=1"}},
		{name: "long delimiter", env: map[string]string{"SAMPLES_DELIMITER": "::"}},
		{name: "query without database", env: map[string]string{"SAMPLES_QUERY": "SELECT 1"}},
		{name: "log level", env: map[string]string{"LOG_LEVEL": "LOUD"}},
		{name: "precision", env: map[string]string{"TABLE_PRECISION": "30"}},
		{name: "bad pick radius", env: map[string]string{"PICK_RADIUS": "near"}},
		{name: "negative pick radius", env: map[string]string{"PICK_RADIUS": "-0.5"}},
		{name: "unknown file key", file: "[layout]\nspeed = 3\n"},
		{name: "file syntax", file: "[layout\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if tt.file != "" {
				path := filepath.Join(t.TempDir(), "bad.toml")
				require.NoError(t, os.WriteFile(path, []byte(tt.file), 0o644))
				t.Setenv(FileEnv, path)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestParseRecode(t *testing.T) {
	recode, err := ParseRecode("ex:1, su:1,gr:-2,")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"ex": 1, "su": 1, "gr": -2}, recode)

	recode, err = ParseRecode("")
	require.NoError(t, err)
	assert.Empty(t, recode)

	for _, bad := range []string{"ex", ":1", "ex:one"} {
		_, err := ParseRecode(bad)
		assert.Error(t, err, bad)
	}
}
