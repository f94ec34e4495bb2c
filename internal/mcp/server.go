// Package mcp provides an MCP (Model Context Protocol) server for neuroplex.
package mcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nervelab/neuroplex/internal/experiment"
	"github.com/nervelab/neuroplex/internal/neural"
	"github.com/nervelab/neuroplex/internal/store"
)

// Server wraps the MCP SDK server and holds the live simulation sessions.
type Server struct {
	server *sdk.Server
	store  *store.RunStore

	mu       sync.Mutex
	sessions map[string]*session
}

// session is one server-held network, stepped on demand by tool calls.
// The mutex serializes tool calls against the same session; the SDK may
// dispatch them concurrently.
type session struct {
	mu      sync.Mutex
	net     *neural.Network
	seed    uint64
	history []store.TickMetrics
	created time.Time
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "neuroplex")
	Version string // Server version
	DBPath  string // Run store path; empty disables persistence
}

// NewServer creates a new MCP server with the simulation tools.
func NewServer(cfg *Config) (*Server, error) {
	var runStore *store.RunStore
	if cfg.DBPath != "" {
		var err error
		runStore, err = store.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open run store: %w", err)
		}
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			// Client initialized, ready to serve
		},
	})

	s := &Server{
		server:   mcpServer,
		store:    runStore,
		sessions: make(map[string]*session),
	}

	if err := s.registerTools(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	if err := s.registerResources(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to register resources: %w", err)
	}

	return s, nil
}

// registerTools wires the simulation tools into the SDK server.
func (s *Server) registerTools() error {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "sim_create",
		Description: "Create a neural population session (topology, inhibitory mix, firing threshold) and return its session id",
	}, s.handleSimCreate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "sim_step",
		Description: "Advance a session by one or more ticks, optionally under an external stimulus vector",
	}, s.handleSimStep)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "sim_stats",
		Description: "Report population stats for a session, optionally with per-neuron states",
	}, s.handleSimStats)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "sim_experiment",
		Description: "Run a built-in stimulation protocol end to end and return its summary",
	}, s.handleSimExperiment)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "sim_render",
		Description: "Render a session as Graphviz DOT, a JSON graph payload, or an HTML chart page",
	}, s.handleSimRender)

	return nil
}

// registerResources publishes the experiment catalog so clients can discover
// protocol names without a tool round trip.
func (s *Server) registerResources() error {
	s.server.AddResource(&sdk.Resource{
		URI:         "neuroplex://experiments",
		Name:        "neuroplex-experiments",
		Description: "Built-in stimulation protocols runnable via the sim_experiment tool.",
		MIMEType:    "text/markdown",
	}, s.handleExperimentsResource)

	return nil
}

// handleExperimentsResource lists the built-in protocols as markdown.
func (s *Server) handleExperimentsResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	var sb strings.Builder
	sb.WriteString("# Built-in Experiments\n\n")
	for _, name := range experiment.Names() {
		p, _ := experiment.Lookup(name)
		fmt.Fprintf(&sb, "## %s\n\n%s\n\n- neurons: %d (%s)\n- ticks: %d\n- target neuron: %d\n\n",
			p.Name, p.Description, p.Neurons, p.Topology, p.Ticks, p.Target)
	}
	sb.WriteString("Run one with `sim_experiment {\"name\": \"...\"}`.\n")

	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      "neuroplex://experiments",
				MIMEType: "text/markdown",
				Text:     sb.String(),
			},
		},
	}, nil
}

// session looks up a live session by id.
func (s *Server) session(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("unknown session %q", id)
	}
	return sess, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	err := s.server.Run(ctx, &sdk.StdioTransport{})

	s.Close()

	return err
}

// Close releases the run store. Live sessions are dropped with the process.
func (s *Server) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}
