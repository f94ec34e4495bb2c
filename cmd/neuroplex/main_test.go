package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// newTestRootCmd creates a root command with persistent flags for testing subcommands
func newTestRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use: "neuroplex",
	}
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Config file path")
	rootCmd.PersistentFlags().String("log-level", "", "Log verbosity")
	return rootCmd
}

// isolateHome sets HOME to a temp directory so tests never read a real
// ~/.neuroplex/config.yaml
func isolateHome(t *testing.T, tmpDir string) {
	t.Helper()
	tmpHome := filepath.Join(tmpDir, "home")
	if err := os.MkdirAll(tmpHome, 0700); err != nil {
		t.Fatalf("Failed to create temp home: %v", err)
	}
	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpHome)
	t.Cleanup(func() {
		os.Setenv("HOME", oldHome)
	})
}

func TestVersionCmd(t *testing.T) {
	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newVersionCmd())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out.String(), "neuroplex version") {
		t.Errorf("unexpected version output: %q", out.String())
	}
}

func TestVersionCmd_JSON(t *testing.T) {
	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newVersionCmd())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version", "--json"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}

	var payload map[string]string
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("version JSON is invalid: %v", err)
	}
	if payload["version"] == "" {
		t.Error("version field is empty")
	}
}

func TestLoadConfig_FileAndLevelOverride(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	cfgPath := filepath.Join(tmpDir, "config.yaml")
	cfgYAML := "network:\n  neurons: 25\n  topology: grid2d\nlogging:\n  level: info\n"
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	rootCmd := newTestRootCmd()
	var got int
	var gotLevel string
	rootCmd.AddCommand(&cobra.Command{
		Use: "probe",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			got = cfg.Network.Neurons
			gotLevel = cfg.Logging.Level
			return nil
		},
	})
	rootCmd.SetArgs([]string{"probe", "--config", cfgPath, "--log-level", "debug"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if got != 25 {
		t.Errorf("neurons = %d, want 25 from config file", got)
	}
	if gotLevel != "debug" {
		t.Errorf("level = %q, want the flag override debug", gotLevel)
	}
}

func TestLoadConfig_RejectsInvalidFile(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("network:\n  neurons: -5\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(&cobra.Command{
		Use: "probe",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := loadConfig(cmd)
			return err
		},
	})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"probe", "--config", cfgPath})

	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected an error for an invalid config")
	}
}
