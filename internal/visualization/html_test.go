package visualization

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nervelab/neuroplex/internal/store"
)

func chartSnapshots() []store.TickMetrics {
	return []store.TickMetrics{
		{Tick: 0, TargetEnergy: 99.9, TargetPriority: 1.0, AvgEnergy: 99.9},
		{Tick: 1, TargetFiring: true, TargetEnergy: 89.8, TargetPriority: 1.02, TotalFiring: 42, AvgEnergy: 95.5, AvgNovelty: 0.02},
		{Tick: 2, TargetEnergy: 91.6, TargetPriority: 1.01, TotalFiring: 3, AvgEnergy: 96.1, AvgNovelty: 0.01, AlertLevel: 0.5},
	}
}

func TestRenderHTML_ProducesChartPage(t *testing.T) {
	html, err := RenderHTML(chartSnapshots(), "habituation")
	if err != nil {
		t.Fatalf("RenderHTML() error = %v", err)
	}

	htmlStr := string(html)

	if !strings.Contains(htmlStr, "<!DOCTYPE html>") {
		t.Error("expected DOCTYPE declaration")
	}
	if !strings.Contains(htmlStr, "<title>habituation - neuroplex charts</title>") {
		t.Error("expected run title in page title")
	}
	for _, id := range []string{`id="priority-alert"`, `id="energy"`, `id="activity"`} {
		if !strings.Contains(htmlStr, id) {
			t.Errorf("expected canvas %s", id)
		}
	}
	if !strings.Contains(htmlStr, "target_priority") {
		t.Error("expected tick series fields embedded in page")
	}
}

func TestRenderHTML_SeriesIsArrayLiteral(t *testing.T) {
	html, err := RenderHTML(chartSnapshots(), "habituation")
	if err != nil {
		t.Fatalf("RenderHTML() error = %v", err)
	}

	htmlStr := string(html)

	// If the template used template.HTML instead of template.JS, the
	// series would render as a quoted string instead of a JS array.
	if strings.Contains(htmlStr, `var seriesData = "`) {
		t.Error("seriesData is a quoted string, want an array literal")
	}
	if !strings.Contains(htmlStr, "var seriesData = [") {
		t.Error("expected seriesData to be an array literal")
	}
}

func TestRenderHTML_EmptySeries(t *testing.T) {
	html, err := RenderHTML(nil, "empty")
	if err != nil {
		t.Fatalf("RenderHTML() error = %v", err)
	}
	if !strings.Contains(string(html), "<!DOCTYPE html>") {
		t.Error("expected a complete page even with no snapshots")
	}
}

func TestWriteChartFiles(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "exp1_habituation")

	path, err := WriteChartFiles(chartSnapshots(), prefix)
	if err != nil {
		t.Fatalf("WriteChartFiles() error = %v", err)
	}

	if want := prefix + "_charts.html"; path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read chart file: %v", err)
	}
	if !strings.Contains(string(data), "<title>exp1_habituation - neuroplex charts</title>") {
		t.Error("expected prefix-derived title in chart file")
	}
}

func TestWriteChartFiles_CreatesParentDirs(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "out", "nested", "exp3_urgent_event")

	path, err := WriteChartFiles(chartSnapshots(), prefix)
	if err != nil {
		t.Fatalf("WriteChartFiles() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("stat chart file: %v", err)
	}
}
