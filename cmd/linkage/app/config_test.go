package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/agentstation/linkage/pkg/errors"
)

// TestLoadConfig verifies basic config loading.
func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.LogFormat == "" {
		t.Error("LogFormat not set to default")
	}
	if config.LogOutput != "stderr" && os.Getenv("LINKAGE_LOG_OUTPUT") == "" {
		t.Errorf("LogOutput = %s, want stderr", config.LogOutput)
	}
}

// TestConfig_EnvironmentVariables verifies prefixed environment variables.
func TestConfig_EnvironmentVariables(t *testing.T) {
	t.Setenv("LINKAGE_VERBOSE", "true")
	t.Setenv("LINKAGE_FORMAT", "json")
	t.Setenv("LINKAGE_PARALLELISM", "4")
	t.Setenv("LINKAGE_LOG_LEVEL", "debug")

	config, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() failed: %v", err)
	}

	if !config.Verbose {
		t.Error("LINKAGE_VERBOSE not loaded")
	}
	if config.Format != "json" {
		t.Errorf("Format = %s, want json", config.Format)
	}
	if config.Parallelism != 4 {
		t.Errorf("Parallelism = %d, want 4", config.Parallelism)
	}
	if config.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", config.LogLevel)
	}
}

// TestConfig_File verifies an explicit config file is read.
func TestConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linkage.yaml")
	content := "format: yaml\nparallelism: 8\nlog:\n  format: json\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() failed: %v", err)
	}
	if config.Format != "yaml" {
		t.Errorf("Format = %s, want yaml", config.Format)
	}
	if config.Parallelism != 8 {
		t.Errorf("Parallelism = %d, want 8", config.Parallelism)
	}
	if config.LogFormat != "json" {
		t.Errorf("LogFormat = %s, want json", config.LogFormat)
	}
	if config.ConfigFile != path {
		t.Errorf("ConfigFile = %s, want %s", config.ConfigFile, path)
	}
}

// TestConfig_MissingFile verifies an explicit but missing file is an error.
func TestConfig_MissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
	if !errors.IsConfigError(err) {
		t.Errorf("error %v is not a config error", err)
	}
}

// TestConfig_DiscoveredFile verifies the home config file is optional but
// must parse when present.
func TestConfig_DiscoveredFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	if _, err := loadConfig(""); err != nil {
		t.Fatalf("loadConfig() without a config file failed: %v", err)
	}

	path := filepath.Join(home, ".linkage.yaml")
	if err := os.WriteFile(path, []byte("format: [table\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := loadConfig("")
	if err == nil {
		t.Fatal("expected an error for a malformed config file")
	}
	if !errors.IsConfigError(err) {
		t.Errorf("error %v is not a config error", err)
	}
}

// TestConfig_UpdateFromFlags verifies flag values take precedence.
func TestConfig_UpdateFromFlags(t *testing.T) {
	config := &Config{Format: "table", LogLevel: "info"}
	config.UpdateFromFlags(true, false, true, "json", "")

	if !config.Verbose || !config.NoColor {
		t.Error("boolean flags not applied")
	}
	if config.Format != "json" {
		t.Errorf("Format = %s, want json", config.Format)
	}
	if config.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info (empty flag keeps it)", config.LogLevel)
	}
}
