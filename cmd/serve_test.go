package cmd

import (
	"path/filepath"
	"testing"
)

func TestRunServeMissingConfig(t *testing.T) {
	err := runServe(filepath.Join(t.TempDir(), "missing.json"), "", false, MetricsConfig{})
	if err == nil {
		t.Fatal("runServe() with missing config should fail")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path, err := defaultConfigPath()
	if err != nil {
		t.Fatalf("defaultConfigPath() error = %v", err)
	}
	if filepath.Base(path) != "config.json" {
		t.Errorf("defaultConfigPath() = %q, want a config.json path", path)
	}
	if filepath.Base(filepath.Dir(path)) != "mailbridge" {
		t.Errorf("defaultConfigPath() = %q, want a mailbridge directory", path)
	}
}

func TestServeCommandFlags(t *testing.T) {
	cmd := newServeCmd()

	for _, name := range []string{"config", "templates", "debug", "metrics-enabled", "metrics-addr"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("serve command is missing flag %q", name)
		}
	}
}
