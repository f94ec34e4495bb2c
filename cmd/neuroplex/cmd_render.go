package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nervelab/neuroplex/internal/config"
	"github.com/nervelab/neuroplex/internal/neural"
	"github.com/nervelab/neuroplex/internal/store"
	"github.com/nervelab/neuroplex/internal/visualization"
	"github.com/spf13/cobra"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a network topology or a recorded run",
		Long: `Render in DOT (Graphviz), JSON, or HTML format.

The dot and json formats describe the connectivity of a freshly
initialized network built from the network flags. The html format
renders the chart page of a recorded run from the store; --serve keeps
it available on a local HTTP server instead of writing a file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")

			switch visualization.Format(format) {
			case visualization.FormatDOT, visualization.FormatJSON:
				return renderTopology(cmd, visualization.Format(format))
			case visualization.FormatHTML:
				return renderRunCharts(cmd)
			default:
				return fmt.Errorf("unsupported format %q (use 'dot', 'json', or 'html')", format)
			}
		},
	}

	defaults := config.Default()
	cmd.Flags().String("format", "dot", "Output format: dot, json, or html")
	cmd.Flags().Int("neurons", defaults.Network.Neurons, "Population size (dot/json)")
	cmd.Flags().String("topology", defaults.Network.Topology, "Connectivity: grid2d or fully-connected (dot/json)")
	cmd.Flags().Float64("inhibitory-ratio", defaults.Network.InhibitoryRatio, "Fraction of the population assigned inhibitory (dot/json)")
	cmd.Flags().Float64("threshold", defaults.Network.Threshold, "Firing threshold (dot/json)")
	cmd.Flags().Uint64("seed", 1, "Weight initialization seed (dot/json)")
	cmd.Flags().String("db", "", "Run store path (html; default: config store path)")
	cmd.Flags().String("run", "", "Run id to render (html; default: the latest run)")
	cmd.Flags().StringP("output", "o", "", "Output file path (html)")
	cmd.Flags().Bool("serve", false, "Serve the run charts over local HTTP instead of writing a file")

	return cmd
}

// renderTopology builds a network from the flags and prints its wiring.
func renderTopology(cmd *cobra.Command, format visualization.Format) error {
	neurons, _ := cmd.Flags().GetInt("neurons")
	topoName, _ := cmd.Flags().GetString("topology")
	ratio, _ := cmd.Flags().GetFloat64("inhibitory-ratio")
	threshold, _ := cmd.Flags().GetFloat64("threshold")
	seed, _ := cmd.Flags().GetUint64("seed")

	topo, err := neural.ParseTopology(topoName)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	net, err := neural.New(neurons, topo, ratio, threshold, neural.DefaultConfig(), rng)
	if err != nil {
		return fmt.Errorf("build network: %w", err)
	}

	switch format {
	case visualization.FormatDOT:
		fmt.Fprint(cmd.OutOrStdout(), visualization.RenderDOT(net))
	case visualization.FormatJSON:
		data, err := visualization.RenderJSON(net, nil)
		if err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	}
	return nil
}

// renderRunCharts renders the chart page of a stored run, either to a file
// or over a local HTTP server.
func renderRunCharts(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		dbPath = cfg.Output.StorePath
	}

	rs, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer rs.Close()

	ctx := cmd.Context()

	runID, _ := cmd.Flags().GetString("run")
	if runID == "" {
		runID, err = latestRunID(ctx, rs)
		if err != nil {
			return err
		}
	}

	if serve, _ := cmd.Flags().GetBool("serve"); serve {
		return runChartServer(cmd, ctx, rs, runID)
	}

	meta, err := rs.Run(ctx, runID)
	if err != nil {
		return fmt.Errorf("load run: %w", err)
	}
	series, err := rs.TickSeries(ctx, runID)
	if err != nil {
		return fmt.Errorf("load tick series: %w", err)
	}

	html, err := visualization.RenderHTML(series, meta.Name)
	if err != nil {
		return fmt.Errorf("render HTML: %w", err)
	}

	outPath, _ := cmd.Flags().GetString("output")
	if outPath == "" {
		outPath = meta.Name + "_charts.html"
	}
	if err := os.WriteFile(outPath, html, 0644); err != nil {
		return fmt.Errorf("write HTML file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Charts written to %s\n", outPath)
	return nil
}

// latestRunID resolves the most recently started run in the store.
func latestRunID(ctx context.Context, rs *store.RunStore) (string, error) {
	runs, err := rs.Runs(ctx)
	if err != nil {
		return "", fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("no runs recorded in %s", rs.Path())
	}
	return runs[0].ID, nil
}

// runChartServer serves a run's charts over local HTTP until Ctrl-C.
func runChartServer(cmd *cobra.Command, ctx context.Context, rs *store.RunStore, runID string) error {
	if _, err := rs.Run(ctx, runID); err != nil {
		return fmt.Errorf("load run: %w", err)
	}

	srv := visualization.NewServer(rs, runID)

	srvCtx, srvCancel := context.WithCancel(ctx)
	defer srvCancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			srvCancel()
		case <-srvCtx.Done():
		}
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(srvCtx) }()

	// Wait for the listener to bind
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if srv.Addr() != "" {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	addr := srv.Addr()
	if addr == "" {
		return fmt.Errorf("server failed to start")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Run charts at http://%s\n", addr)
	fmt.Fprintf(cmd.OutOrStdout(), "Press Ctrl-C to stop.\n")

	if err := <-errCh; err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
