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

	"github.com/mabhi256/medi/internal/mockserver"
)

var (
	mockAddr       string
	mockDailyLimit int
	mockFailStatus int
	mockFailDetail string
	mockDelay      time.Duration
)

var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Run a local stand-in for the analysis service",
	Long: `Serve GET / and POST /analyze with deterministic reports, so the client can be
tried without the real service.

Examples:
  medi mock-server                                    # Listen on :8000
  medi mock-server --daily-limit 2                    # Hit the rate limit quickly
  medi mock-server --fail-status 500 --fail-detail x  # Force failures
  medi mock-server --delay 3s                         # Slow responses`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if mockFailStatus != 0 && (mockFailStatus < 400 || mockFailStatus > 599) {
			return fmt.Errorf("--fail-status must be a 4xx or 5xx code, got %d", mockFailStatus)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srvLogger := logger
		if !cfg.Debug {
			// The server has no UI competing for the terminal
			srvLogger = newConsoleLogger(cmd.ErrOrStderr())
		}

		srv := mockserver.New(mockserver.Options{
			DailyLimit:     mockDailyLimit,
			FailStatus:     mockFailStatus,
			FailDetail:     mockFailDetail,
			Delay:          mockDelay,
			MaxUploadBytes: cfg.MaxUploadBytes.Bytes(),
		}, srvLogger)

		httpServer := &http.Server{
			Addr:              mockAddr,
			Handler:           srv.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			srvLogger.Info("mockserver.listen", "addr", mockAddr, "daily_limit", mockDailyLimit)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srvLogger.Info("mockserver.shutdown")
		return httpServer.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(mockServerCmd)

	f := mockServerCmd.Flags()
	f.StringVar(&mockAddr, "addr", ":8000", "listen address")
	f.IntVar(&mockDailyLimit, "daily-limit", mockserver.DefaultDailyLimit, "analyses per client per day, 0 for unlimited")
	f.IntVar(&mockFailStatus, "fail-status", 0, "answer every analysis with this HTTP status")
	f.StringVar(&mockFailDetail, "fail-detail", "", "detail message sent with --fail-status")
	f.DurationVar(&mockDelay, "delay", 0, "artificial processing time per analysis")
}
