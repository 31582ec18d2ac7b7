package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/ryhazerus/likes"
	"github.com/ryhazerus/likes/httpapi"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	c, err := openCache(ctx, cfg.Cache, cfg.Redis)
	if err != nil {
		st.Close()
		return fmt.Errorf("open cache: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc, err := likes.New(
		likes.WithStore(st),
		likes.WithCache(c),
		likes.WithSalt(cfg.Session.Salt),
		likes.WithDefaultAddress(cfg.Session.DefaultAddress),
		likes.WithAggregateTTL(cfg.Cache.AggregateTTL),
		likes.WithTimeout(cfg.HTTP.RequestTimeout),
		likes.WithLogger(log),
		likes.WithRegisterer(reg),
	)
	if err != nil {
		st.Close()
		c.Close()
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Warn("close service", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: httpapi.NewRouter(svc, httpapi.RouterConfig{
			RequestTimeout: cfg.HTTP.RequestTimeout,
			Gatherer:       reg,
			Logger:         log,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening",
			zap.String("addr", cfg.HTTP.Addr),
			zap.String("store", cfg.Store.Driver),
			zap.String("cache", cfg.Cache.Driver),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
