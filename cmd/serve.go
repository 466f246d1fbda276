package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/detector"
	"github.com/kozaktomas/face-attendance/internal/recognition"
	"github.com/kozaktomas/face-attendance/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the attendance web server",
	Long: `Start the Face Attendance web server.
The server exposes the attendance ledger, identity registration, one-shot
recognition and continuous recognition sessions over HTTP.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides WEB_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides WEB_HOST)")
}

// initIdentityIndex builds the HNSW index over the registered identities.
func initIdentityIndex(registry *recognition.Registry, indexPath string) *recognition.IdentityIndex {
	index := recognition.NewIdentityIndex()
	index.BuildFromSnapshot(registry.Snapshot(), registry.Version())
	if indexPath != "" {
		index.SetPath(indexPath)
		fmt.Printf("Identity index ready with %d entries (persisted to %s)\n", index.Count(), indexPath)
	} else {
		fmt.Printf("Identity index built with %d entries (in-memory only)\n", index.Count())
	}
	return index
}

// resolveServeHostPort applies flag overrides on top of the environment config.
func resolveServeHostPort(cmd *cobra.Command, cfg *config.Config) {
	if port := mustGetInt(cmd, "port"); port != 0 {
		cfg.Server.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Server.Host = host
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	resolveServeHostPort(cmd, cfg)

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	registry, err := loadRegistry(context.Background(), store, cfg.Recognition.Dimension)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d registered identities\n", registry.Len())

	index := initIdentityIndex(registry, cfg.Database.HNSWIndexPath)

	gate := recognition.NewCooldownGate(cfg.Recognition.CooldownWindow)
	pipeline := recognition.NewPipeline(registry, gate, store,
		cfg.Recognition.MatchThreshold, cfg.Recognition.TickInterval)

	server := web.NewServer(cfg, web.Deps{
		Registry: registry,
		Index:    index,
		Pipeline: pipeline,
		Store:    store,
		NewDetector: func() recognition.Detector {
			return detector.NewService(cfg.Detector.URL, cfg.Detector.Timeout)
		},
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		if err := index.Save(); err != nil {
			fmt.Printf("Warning: failed to save identity index: %v\n", err)
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Face Attendance on http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
