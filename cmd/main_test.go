package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/geon/internal/config"
)

// useTestConfig installs a default configuration with a temp catalog.
func useTestConfig(t *testing.T) *config.Config {
	t.Helper()
	prev := cfg
	cfg = &config.Config{
		Log:   config.LogConfig{Level: "error", Format: "json"},
		Parse: config.ParseConfig{MaxDepth: 64},
		Convert: config.ConvertConfig{
			DefaultType: "hybrid",
			DefaultName: "Unnamed",
			SourceTag:   "GeoJSON conversion",
		},
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: filepath.Join(t.TempDir(), "geon.db"),
		},
		Server: config.ServerConfig{Port: 8080, CORSOrigins: []string{"*"}},
		Batch:  config.BatchConfig{Concurrency: 2},
	}
	t.Cleanup(func() { cfg = prev })
	return cfg
}

// writeFile creates name under dir with content and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// setFlag sets a package-level flag variable for the duration of a test.
func setFlag[T any](t *testing.T, ptr *T, v T) {
	t.Helper()
	prev := *ptr
	*ptr = v
	t.Cleanup(func() { *ptr = prev })
}
