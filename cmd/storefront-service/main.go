// Package main boots the storefront HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/storefront-service/internal/catalog"
	"github.com/fairyhunter13/storefront-service/internal/config"
	"github.com/fairyhunter13/storefront-service/internal/events"
	httpapi "github.com/fairyhunter13/storefront-service/internal/http"
	"github.com/fairyhunter13/storefront-service/internal/obs"
	"github.com/fairyhunter13/storefront-service/internal/pricing"
	"github.com/fairyhunter13/storefront-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		obs.Logger.Error("config_error", "error", err)
		os.Exit(1)
	}
	obs.InitLogger(cfg.LogLevel)
	obs.Logger.Info("service_starting", "store", cfg.StoreBackend, "events_sink", cfg.EventsSink)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A store that is not configured leaves the service up; data routes answer 503.
	var st store.Store
	openCtx, cancelOpen := context.WithTimeout(ctx, cfg.StoreTimeout)
	opened, err := store.Open(openCtx, cfg)
	cancelOpen()
	switch {
	case errors.Is(err, store.ErrNotConfigured):
		obs.Logger.Warn("store_not_configured", "backend", cfg.StoreBackend, "error", err)
	case err != nil:
		obs.Logger.Error("store_open_failed", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	default:
		st = opened
		obs.Logger.Info("store_opened", "store", st.Name())
	}

	pub, err := events.NewPublisher(cfg)
	if err != nil {
		obs.Logger.Error("events_sink_error", "error", err)
		os.Exit(1)
	}
	q := events.NewQueue(cfg.QueueHighWatermark)
	mgr := events.NewManager(cfg, q, pub)
	bgCtx, cancelBg := context.WithCancel(context.Background())
	defer cancelBg()
	mgr.Start(bgCtx)

	cat := catalog.New(st)
	if cfg.SeedOnStartup && st != nil {
		seedCtx, cancelSeed := context.WithTimeout(ctx, cfg.StoreTimeout)
		if n, err := cat.EnsureSeeded(seedCtx); err != nil {
			obs.Logger.Error("startup_seed_failed", "error", err)
		} else {
			obs.Logger.Info("startup_seed_complete", "inserted", n)
		}
		cancelSeed()
	}
	eng := pricing.NewEngine(st, mgr)

	app := httpapi.NewApp(cfg, st, cat, eng, mgr)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		obs.Logger.Info("shutdown_signal")

		app.StartShutdown()
		obs.Logger.Info("shutdown_drain_begin", "backlog_size", mgr.BacklogSize(), "worker_count", mgr.WorkerCount())
		ctxDrain, cancelDrain := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancelDrain()
		if drained := mgr.DrainUntil(ctxDrain); !drained {
			obs.Logger.Warn("shutdown_drain_timeout")
		} else {
			obs.Logger.Info("shutdown_drain_complete")
		}

		ctxSrv, cancelSrv := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelSrv()
		return srv.Shutdown(ctxSrv)
	})

	exit := 0
	if err := g.Wait(); err != nil {
		obs.Logger.Error("http_server_error", "error", err)
		exit = 1
	}
	mgr.Stop()
	if err := pub.Close(); err != nil {
		obs.Logger.Warn("events_sink_close_error", "error", err)
	}
	if st != nil {
		if err := st.Close(); err != nil {
			obs.Logger.Warn("store_close_error", "error", err)
		}
	}
	obs.Logger.Info("service_stopped")
	if exit != 0 {
		os.Exit(exit)
	}
}
