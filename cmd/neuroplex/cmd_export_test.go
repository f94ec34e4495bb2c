package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nervelab/neuroplex/internal/export"
)

func TestExportCSV(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	dbPath, _ := seedRenderStore(t, tmpDir)

	outPath := filepath.Join(tmpDir, "run.csv")

	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newExportCmd())
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	// No --run: the latest run in the store is exported.
	rootCmd.SetArgs([]string{"export", "--db", dbPath, "--output", outPath})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(out.String(), "Exported 20 ticks") {
		t.Errorf("output = %q, want 20 exported ticks", out.String())
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 21 {
		t.Fatalf("csv has %d lines, want 21", len(lines))
	}
	if lines[0] != strings.Join(export.Columns, ",") {
		t.Errorf("csv header = %q", lines[0])
	}
}

func TestExportArrowRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	dbPath, runID := seedRenderStore(t, tmpDir)

	outPath := filepath.Join(tmpDir, "run.arrow")

	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newExportCmd())
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{
		"export", "--format", "arrow",
		"--db", dbPath, "--run", runID, "--output", outPath,
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	series, gotRunID, err := export.ReadArrowFile(outPath)
	if err != nil {
		t.Fatalf("read arrow file: %v", err)
	}
	if gotRunID != runID {
		t.Errorf("run id in file = %q, want %q", gotRunID, runID)
	}
	if len(series) != 20 {
		t.Fatalf("len(series) = %d, want 20", len(series))
	}
	if series[0].Tick != 0 || series[19].Tick != 19 {
		t.Errorf("tick range = [%d, %d], want [0, 19]", series[0].Tick, series[19].Tick)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	dbPath, _ := seedRenderStore(t, tmpDir)

	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newExportCmd())
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"export", "--db", dbPath, "--format", "parquet"})

	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("err = %v, want unsupported format", err)
	}
}

func TestExportEmptyStore(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newExportCmd())
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"export", "--db", filepath.Join(tmpDir, "empty.db")})

	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "no runs recorded") {
		t.Fatalf("err = %v, want no runs recorded", err)
	}
}
