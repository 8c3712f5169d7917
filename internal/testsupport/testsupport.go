// Package testsupport provides per-test builders for configuration and
// storage so tests never touch a real workspace.
package testsupport

import (
	"path/filepath"
	"testing"

	"dubsync/internal/config"
	"dubsync/internal/store"
)

// NewConfig returns a default configuration rooted in a throwaway
// workspace directory.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.WorkspaceDir = filepath.Join(base, "workspace")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// NewStore opens a store in the configuration's workspace and closes it
// when the test finishes.
func NewStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()
	st, err := store.Open(cfg.DatabasePath())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}
