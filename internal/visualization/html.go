package visualization

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/nervelab/neuroplex/internal/store"
)

// chartTemplateData holds data passed to the chart HTML template.
// SeriesJSON is pre-sanitized JSON (via json.HTMLEscape) safe for
// inline <script> embedding.
type chartTemplateData struct {
	Title      string
	SeriesJSON template.JS
}

// RenderHTML produces a self-contained HTML page with three canvas
// charts over a run's tick series: target priority with the global
// alert level, target energy against the population average, and
// firing activity.
func RenderHTML(snapshots []store.TickMetrics, title string) ([]byte, error) {
	seriesJSON, err := json.Marshal(snapshots)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tick series: %w", err)
	}

	tmplBytes, err := templates.ReadFile("templates/charts.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read HTML template: %w", err)
	}
	tmpl, err := template.New("charts").Parse(string(tmplBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML template: %w", err)
	}

	// json.HTMLEscape converts <, > and & to unicode escapes, so the
	// inline <script> block cannot be broken out of.
	var escaped bytes.Buffer
	json.HTMLEscape(&escaped, seriesJSON)

	var buf bytes.Buffer
	data := chartTemplateData{
		Title:      title,
		SeriesJSON: template.JS(escaped.String()), // #nosec G203
	}
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute HTML template: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteChartFiles renders the chart page for a tick series and writes
// it as <prefix>_charts.html, creating parent directories as needed.
// It returns the written path. The prefix convention matches the CSV
// outputs, so an experiment's artifacts sort together.
func WriteChartFiles(snapshots []store.TickMetrics, prefix string) (string, error) {
	html, err := RenderHTML(snapshots, filepath.Base(prefix))
	if err != nil {
		return "", err
	}

	path := prefix + "_charts.html"
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, html, 0644); err != nil {
		return "", fmt.Errorf("failed to write chart file: %w", err)
	}
	return path, nil
}
