package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ppiankov/brandguard/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveTools bool

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the knowledge store, critic, verifier and runs over HTTP",
	Long: `Start the HTTP API:
  POST /api/v1/retrieve   search the knowledge store
  POST /api/v1/critique   score a draft
  POST /api/v1/verify     verify claims against chunk ids
  POST /api/v1/runs       run the gated loop for a brief
  GET  /health            health check

With --tools-only the drafting agent is not created and /api/v1/runs
answers 501.

Example:
  brandguard serve --port 8787
  brandguard serve --tools-only`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{
			"host": "server.host",
			"port": "server.port",
		})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		var runs server.Runner
		if !serveTools {
			controller, err := a.controller()
			if err != nil {
				return fmt.Errorf("%w (use --tools-only to serve without a drafting agent)", err)
			}
			runs = controller
		}

		srv := server.NewServer(a.store, a.critic, a.verifier, runs, a.cfg.Server, a.cfg.Runner.RetrievalK, a.logger)

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()
		fmt.Fprintf(os.Stderr, "Listening on http://%s\n", srv.Addr())

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("Shutting down server")
		if err := srv.Stop(shutdownCtx); err != nil {
			a.logger.Warn("shutdown failed", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "listen host (default: server.host)")
	serveCmd.Flags().Int("port", 0, "listen port (default: server.port)")
	serveCmd.Flags().BoolVar(&serveTools, "tools-only", false, "serve retrieve, critique and verify without a drafting agent")
}
