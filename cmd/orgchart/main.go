// OrgChart gRPC Server
// Serves the department hierarchy and priority index over gRPC
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/nainya/orgchart/internal/config"
	"github.com/nainya/orgchart/internal/logger"
	"github.com/nainya/orgchart/internal/metrics"
	"github.com/nainya/orgchart/internal/server"
	"github.com/nainya/orgchart/pkg/orgchart"
	"github.com/nainya/orgchart/pkg/store"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger.InitGlobalLogger(logger.Config{
		Level:      cfg.Log.Level,
		Pretty:     cfg.Log.Pretty,
		WithCaller: cfg.Log.WithCaller,
	})
	log := logger.GetGlobalLogger()

	if err := run(cfg, log); err != nil {
		log.Error("Server exited with error").Err(err).Send()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.LogServerStart(cfg.Server.GRPCPort, cfg.Store.Driver)

	st, err := store.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	m := metrics.NewMetrics()
	svc := orgchart.NewService(st, cfg.Store.Driver, log, m)
	defer svc.Close()

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(server.GrpcMetricsInterceptor(m, log)),
	)
	if err := server.Register(grpcServer, server.NewServer(svc, log)); err != nil {
		return err
	}

	// Register reflection service for grpcurl/grpcui
	reflection.Register(grpcServer)

	g, gctx := errgroup.WithContext(ctx)

	var obs *server.ObservabilityServer
	if cfg.Server.MetricsPort != 0 {
		obs = server.NewObservabilityServer(cfg.Server.MetricsPort, m.Registry(), svc.Ready, log)
		g.Go(obs.Start)
	}

	g.Go(func() error {
		m.RunUptime(15*time.Second, gctx.Done())
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.LogServerShutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-shutdownCtx.Done():
			grpcServer.Stop()
		}

		if obs != nil {
			return obs.Shutdown(shutdownCtx)
		}
		return nil
	})

	if err := svc.Open(gctx); err != nil {
		stop()
		lis.Close()
		g.Wait()
		return fmt.Errorf("open service: %w", err)
	}

	g.Go(func() error {
		log.LogServerReady(cfg.Server.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}
