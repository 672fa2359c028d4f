package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	api "umrahtransfer/internal/http"
	"umrahtransfer/internal/jobs"
	"umrahtransfer/internal/realtime"
)

const shutdownTimeout = 10 * time.Second

var noJobs bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, live feed and scheduled jobs",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&noJobs, "no-jobs", false, "do not run the cron jobs in this process")
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := env.Validate(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, env)
	if err != nil {
		return err
	}
	defer a.Close()

	hub := realtime.NewHub(a.broker, env.CORSOrigins)
	a.handler.Hub = hub

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           api.NewRouter(env, a.handler, a.auth),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(gctx) })
	if !noJobs {
		sched, err := jobs.New(a.loc, jobs.Standard(a.bookings, a.drafts)...)
		if err != nil {
			return err
		}
		g.Go(func() error { return sched.Run(gctx) })
	}
	g.Go(func() error {
		zap.L().Info("http server listening", zap.String("addr", env.AppAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	zap.L().Info("server stopped")
	return nil
}
