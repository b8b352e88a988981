package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/xtding233/enhance-cost/internal/app"
	"github.com/xtding233/enhance-cost/internal/config"
	"github.com/xtding233/enhance-cost/internal/server"
	"github.com/xtding233/enhance-cost/internal/service"
)

// go build -ldflags "-X main.Version=x.y.z"
var Version string

var (
	confDir = flag.String("conf", "./configs", "config directory holding default.yaml and <profile>.yaml")
	profile = flag.String("profile", "", "config profile overlaid on default.yaml")
)

const shutdownTimeout = 10 * time.Second

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "enhancecost-server:", err)
		os.Exit(1)
	}
}

func run() error {
	settings, err := config.NewLoader(*confDir).Load(*profile)
	if err != nil {
		return err
	}
	log, err := app.NewLogger(settings)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log = log.With(zap.String("version", Version), zap.String("config_version", settings.Version))

	est, err := app.NewEstimator(settings)
	if err != nil {
		return err
	}
	prices, err := app.OpenPrices(settings, log.Named("prices"))
	if err != nil {
		return err
	}
	defer func() {
		if err := prices.Close(); err != nil {
			log.Warn("close price source", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := server.NewMetrics(reg)
	estimator := server.NewEstimator(service.New(prices, est, log.Named("service")), log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if prices.Snapshot != nil {
		w := config.NewFileWatcher([]string{prices.Snapshot.Path()}, settings.ReloadPeriod, func(path string) {
			err := prices.Reload()
			metrics.Reloaded(err)
			if err != nil {
				log.Error("snapshot reload failed, keeping previous prices", zap.String("path", path), zap.Error(err))
				return
			}
			log.Info("snapshot reloaded", zap.String("path", path))
		})
		go w.Run(ctx)
	}

	gs := grpc.NewServer(grpc.UnaryInterceptor(metrics.UnaryInterceptor()))
	server.Register(gs, estimator)
	lis, err := net.Listen("tcp", settings.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", settings.GRPCAddr, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("grpc listening", zap.String("addr", lis.Addr().String()))
		return gs.Serve(lis)
	})

	var hs *http.Server
	if settings.MetricsAddr != "" {
		mux := http.NewServeMux()
		server.NewHTTP(estimator, metrics).Routes(mux)
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		hs = &http.Server{Addr: settings.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			log.Info("http listening", zap.String("addr", settings.MetricsAddr))
			if err := hs.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if hs != nil {
			if err := hs.Shutdown(shutCtx); err != nil {
				log.Warn("http shutdown", zap.Error(err))
			}
		}
		done := make(chan struct{})
		go func() {
			gs.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-shutCtx.Done():
			gs.Stop()
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}
