package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ematools/register"
)

// TestDefault verifies the default values
func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, register.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 5, cfg.Concurrency)
	assert.Equal(t, "60s", cfg.FetchTimeout)
	assert.Contains(t, cfg.CacheDir, ".ematools")
	assert.NoError(t, cfg.Validate())
}

// TestLoad_MissingFile verifies a missing config file yields the defaults
func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

// TestLoad_Overlay verifies file values overlay the defaults
func TestLoad_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `base_url: https://mirror.example.org/register
concurrency: 2
fetch_timeout: 90s
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://mirror.example.org/register", cfg.BaseURL)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, 90*time.Second, cfg.FetchTimeoutDuration())
	assert.Equal(t, Default().CacheDir, cfg.CacheDir, "unset fields keep defaults")
}

// TestLoad_Invalid verifies validation runs on loaded files
func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"zero concurrency", "concurrency: 0\n"},
		{"bad timeout", "fetch_timeout: soon\n"},
		{"empty base url", `base_url: ""` + "\n"},
		{"malformed yaml", "base_url: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0o644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

// TestWithdrawnRegister verifies the default descriptor and the override
func TestWithdrawnRegister(t *testing.T) {
	cfg := Default()
	assert.Equal(t, register.WithdrawnHuman, cfg.WithdrawnRegister())

	cfg.Withdrawn = &register.Register{Stem: "reg_hum_wd_new", Prefix: "w"}
	got := cfg.WithdrawnRegister()
	assert.Equal(t, "reg_hum_wd_new", got.Stem)
	assert.Equal(t, register.WithdrawnHuman.Key, got.Key, "key falls back when unset")
}
