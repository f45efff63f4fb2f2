package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/falconforge/athena-bridge/internal/config"
	"github.com/falconforge/athena-bridge/internal/redact"
	"github.com/falconforge/athena-bridge/internal/server"
)

var servePort int

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP listen port (overrides config)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP intake endpoint",
	Long: "Runs the online intake path: POST /cap authenticates, schema-validates,\n" +
		"and relays each record. The schema document is hot-reloaded when the\n" +
		"file changes, swapped as a whole so readers never see a partial schema.",
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(baseDir, configPath)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	srv, err := server.New(server.Config{
		Port:       cfg.Port,
		Secret:     cfg.HMACSecret,
		SchemaPath: cfg.SchemaPath,
		BridgeURL:  cfg.BridgeURL,
		Token:      cfg.BridgeToken,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	reloader, err := server.NewReloader(srv.Store())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: hot-reload disabled: %v\n", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if reloader != nil {
		go reloader.Run(ctx)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down intake server...")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	fmt.Fprintf(os.Stderr, "athena-bridge intake listening on :%d\n", cfg.Port)
	fmt.Fprintf(os.Stderr, "Schema: %s (hot-reload enabled)\n", cfg.SchemaPath)
	if cfg.BridgeURL != "" {
		fmt.Fprintf(os.Stderr, "Relay: %s (token %s)\n", cfg.BridgeURL, redact.Secret(cfg.BridgeToken))
	} else {
		fmt.Fprintln(os.Stderr, "Relay: disabled (no endpoint configured)")
	}
	if cfg.HMACSecret == "" {
		fmt.Fprintln(os.Stderr, "warning: no HMAC secret configured; every signature check will fail")
	}
	fmt.Fprintln(os.Stderr)

	return srv.Serve()
}
