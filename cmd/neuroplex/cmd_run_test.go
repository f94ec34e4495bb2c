package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nervelab/neuroplex/internal/export"
)

func TestRunCmd_WritesCSVAndSummary(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	csvPath := filepath.Join(tmpDir, "run.csv")

	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newRunCmd())
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{
		"run", "--json",
		"--neurons", "9", "--topology", "grid2d", "--ticks", "10", "--seed", "7",
		"--threshold", "0.15",
		"--target", "4", "--stimulus", "2.0", "--stimulus-from", "2", "--stimulus-until", "8",
		"--csv", csvPath,
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var summary runSummary
	if err := json.Unmarshal(out.Bytes(), &summary); err != nil {
		t.Fatalf("summary JSON is invalid: %v\noutput: %s", err, out.String())
	}
	if summary.Name != "run" {
		t.Errorf("Name = %q, want run", summary.Name)
	}
	if summary.Neurons != 9 || summary.Ticks != 10 {
		t.Errorf("Neurons/Ticks = %d/%d, want 9/10", summary.Neurons, summary.Ticks)
	}
	if summary.Seed != 7 {
		t.Errorf("Seed = %d, want 7", summary.Seed)
	}
	if summary.RunID != "" {
		t.Errorf("RunID = %q, want empty without --db", summary.RunID)
	}
	// The stimulus lands in slot 4 of every input vector, and weights start
	// at 0.1 or above, so 2.0 clears the 0.15 threshold for the whole
	// population at onset.
	if summary.PeakFiring != 9 {
		t.Errorf("PeakFiring = %d, want 9", summary.PeakFiring)
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 11 {
		t.Fatalf("csv has %d lines, want 11 (header + 10 ticks)", len(lines))
	}
	if lines[0] != strings.Join(export.Columns, ",") {
		t.Errorf("csv header = %q, want the canonical columns", lines[0])
	}
}

func TestRunCmd_PersistsToStore(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	dbPath := filepath.Join(tmpDir, "runs.db")

	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newRunCmd())
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{
		"run", "--json",
		"--neurons", "9", "--ticks", "5", "--seed", "7", "--target", "0", "--stimulus", "0",
		"--db", dbPath,
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var summary runSummary
	if err := json.Unmarshal(out.Bytes(), &summary); err != nil {
		t.Fatalf("summary JSON is invalid: %v", err)
	}
	if summary.RunID == "" {
		t.Fatal("RunID is empty for a persisted run")
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("store file missing: %v", err)
	}
}

func TestRunCmd_RejectsBadFlags(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	cases := [][]string{
		{"run", "--neurons", "0"},
		{"run", "--topology", "ring"},
		{"run", "--neurons", "10", "--target", "10"},
		{"run", "--stimulus-from", "50", "--stimulus-until", "10"},
	}
	for _, args := range cases {
		rootCmd := newTestRootCmd()
		rootCmd.AddCommand(newRunCmd())
		rootCmd.SetOut(&bytes.Buffer{})
		rootCmd.SetErr(&bytes.Buffer{})
		rootCmd.SetArgs(args)
		if err := rootCmd.Execute(); err == nil {
			t.Errorf("args %v: expected an error", args)
		}
	}
}
