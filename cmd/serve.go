package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"timepunch/web"
)

var (
	servePort   int
	serveDBPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local JSON API for the tracking engine",
	Long: `Start a local HTTP server exposing the tracking engine as a JSON API.

The API covers timer commands (start, pause, resume, stop), manual entries,
entry listing and deletion, report rollups, and sync. Pause and resume only
exist here: they are in-memory display state and need a long-lived process.

When sync.auto_reconcile is enabled, queued offline entries are replayed
periodically in the background.`,
	Example: `
  # Start the API on the default port
  timepunch serve

  # Custom port and database
  timepunch serve --port 9090 --db ./timepunch.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine(serveDBPath)
		if err != nil {
			return err
		}
		defer engine.Close()

		addr := fmt.Sprintf(":%d", servePort)
		server := &http.Server{
			Addr:    addr,
			Handler: web.NewServer(engine.controller, engine.queue, engine.store, nil),
		}

		reconcileCtx, stopReconcile := context.WithCancel(cmd.Context())
		defer stopReconcile()
		if engine.cfg.Sync.AutoReconcile {
			go autoReconcile(reconcileCtx, engine)
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()

		fmt.Printf("Listening on http://localhost:%d\n", servePort)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-sigCh:
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		}
	},
}

// autoReconcile replays the offline backlog once a minute while the server
// runs. Failures are expected while the service is down and stay quiet.
func autoReconcile(ctx context.Context, engine *engine) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending, err := engine.queue.PendingCount()
			if err != nil || pending == 0 {
				continue
			}
			if result, err := engine.queue.Reconcile(ctx); err == nil && result.Synced > 0 {
				fmt.Printf("Background sync: %d of %d entries synced\n", result.Synced, result.Attempted)
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "", "Path to local SQLite database (defaults to storage.path)")
}
