package mcp

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestNewServer(t *testing.T) {
	cfg := &Config{
		Name:    "test-server",
		Version: "v1.0.0",
	}

	server, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	if server.server == nil {
		t.Error("Server.server is nil")
	}
	if server.sessions == nil {
		t.Error("Server.sessions is nil")
	}
	if server.store != nil {
		t.Error("Server.store should be nil without a DB path")
	}
}

func TestNewServer_WithStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	cfg := &Config{
		Name:    "test-server",
		Version: "v1.0.0",
		DBPath:  dbPath,
	}

	server, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	if server.store == nil {
		t.Fatal("Server.store is nil with a DB path")
	}
	if server.store.Path() != dbPath {
		t.Errorf("store path = %q, want %q", server.store.Path(), dbPath)
	}
}

func TestClose(t *testing.T) {
	server, err := NewServer(&Config{
		Name:    "test-server",
		Version: "v1.0.0",
		DBPath:  filepath.Join(t.TempDir(), "runs.db"),
	})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	if err := server.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	// Multiple closes should be safe
	if err := server.Close(); err != nil {
		t.Errorf("Second Close() error = %v", err)
	}
}

func TestExperimentsResource(t *testing.T) {
	server := setupTestServer(t)

	result, err := server.handleExperimentsResource(context.Background(), &sdk.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("handleExperimentsResource failed: %v", err)
	}

	if len(result.Contents) != 1 {
		t.Fatalf("len(Contents) = %d, want 1", len(result.Contents))
	}
	content := result.Contents[0]
	if content.URI != "neuroplex://experiments" {
		t.Errorf("URI = %q, want neuroplex://experiments", content.URI)
	}
	if content.MIMEType != "text/markdown" {
		t.Errorf("MIMEType = %q, want text/markdown", content.MIMEType)
	}

	for _, name := range []string{"habituation", "novelty-detection", "urgent-event"} {
		if !strings.Contains(content.Text, name) {
			t.Errorf("catalog missing %q", name)
		}
	}
	if !strings.Contains(content.Text, "sim_experiment") {
		t.Error("catalog missing the sim_experiment pointer")
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	server := setupTestServer(t)

	a := createSession(t, server, SimCreateInput{Neurons: 9, Topology: "grid2d", Seed: 7})
	b := createSession(t, server, SimCreateInput{Neurons: 9, Topology: "grid2d", Seed: 7})
	if a.SessionID == b.SessionID {
		t.Fatal("sessions share an id")
	}

	ctx := context.Background()
	req := &sdk.CallToolRequest{}

	if _, _, err := server.handleSimStep(ctx, req, SimStepInput{
		SessionID: a.SessionID,
		Ticks:     5,
	}); err != nil {
		t.Fatalf("handleSimStep failed: %v", err)
	}

	_, statsA, err := server.handleSimStats(ctx, req, SimStatsInput{SessionID: a.SessionID})
	if err != nil {
		t.Fatalf("handleSimStats failed: %v", err)
	}
	_, statsB, err := server.handleSimStats(ctx, req, SimStatsInput{SessionID: b.SessionID})
	if err != nil {
		t.Fatalf("handleSimStats failed: %v", err)
	}

	if statsA.Tick != 5 {
		t.Errorf("session A tick = %d, want 5", statsA.Tick)
	}
	if statsB.Tick != 0 {
		t.Errorf("session B tick = %d, want 0", statsB.Tick)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	server, err := NewServer(&Config{
		Name:    "test-server",
		Version: "v1.0.0",
	})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	// Run should return quickly with cancelled context
	err = server.Run(ctx)
	// We expect an error since stdio transport won't work in test
	// but we're just verifying it doesn't hang
	if err == nil {
		t.Log("Run returned nil (expected in test environment)")
	}
}
