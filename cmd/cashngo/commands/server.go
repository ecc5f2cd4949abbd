package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/cashngo/am"
	"github.com/teranos/cashngo/errors"
	"github.com/teranos/cashngo/server"
	"github.com/teranos/cashngo/storage"
)

// ServerCmd starts the HTTP/WebSocket server
var ServerCmd = &cobra.Command{
	Use:     "server",
	Aliases: []string{"serve"},
	Short:   "Start the HTTP/WebSocket server",
	Long: `Serve the board, the catalog and live collection snapshots.

Views connect to /ws and receive every collection on connect and again
whenever it changes, including writes made by CLI commands in other
processes sharing the store.`,
	RunE: runServer,
}

func init() {
	ServerCmd.Flags().Int("port", 0, "Port to listen on (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	return withEnv(cmd, func(ctx context.Context, e *env) error {
		// Server defaults to Info
		verbosity := e.verbosity
		if verbosity == 0 {
			verbosity = 1
		}

		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = e.cfg.Server.Port
		}
		if port == 0 {
			port = am.DefaultServerPort
		}

		watchCtx, cancelWatch := context.WithCancel(ctx)
		defer cancelWatch()
		watcher := storage.NewWatcher(e.opened.Store, e.opened.Source)
		if err := watcher.Start(watchCtx); err != nil {
			return errors.Wrap(err, "failed to start store watcher")
		}
		defer watcher.Stop()

		srv := server.New(e.board, e.catalog(), server.Options{
			AllowedOrigins: e.cfg.Server.AllowedOrigins,
			Backend:        e.opened.Backend,
			Verbosity:      verbosity,
		})

		printStartupBanner(verbosity, e.opened.Backend, e.dbPath, port)

		errChan := make(chan error, 1)
		go func() {
			errChan <- srv.ListenAndServe(fmt.Sprintf(":%d", port))
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case err := <-errChan:
			if err != nil {
				return errors.Wrap(err, "server stopped")
			}
			return nil
		case <-sigChan:
			pterm.Info.Println("\nShutting down gracefully (press Ctrl+C again to force)...")

			shutdownDone := make(chan error, 1)
			go func() {
				shutdownDone <- srv.Stop()
			}()

			select {
			case err := <-shutdownDone:
				if err != nil {
					return fmt.Errorf("shutdown error: %w", err)
				}
				pterm.Success.Println("Server stopped cleanly")
				return nil
			case <-sigChan:
				pterm.Warning.Println("\nForce shutdown - exiting immediately")
				os.Exit(1)
				return nil
			}
		}
	})
}
