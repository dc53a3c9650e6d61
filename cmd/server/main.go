// Command dktube-server starts the dk-tube gRPC API and the identity webhook listener.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/ncontiero/dk-tube-sub000/internal/api"
	"github.com/ncontiero/dk-tube-sub000/internal/config"
	"github.com/ncontiero/dk-tube-sub000/internal/identity"
	"github.com/ncontiero/dk-tube-sub000/internal/invalidate"
	"github.com/ncontiero/dk-tube-sub000/internal/limiter"
	"github.com/ncontiero/dk-tube-sub000/internal/media"
	"github.com/ncontiero/dk-tube-sub000/internal/migrate"
	"github.com/ncontiero/dk-tube-sub000/internal/repository/postgres"
	grpcserver "github.com/ncontiero/dk-tube-sub000/internal/server/grpc"
	"github.com/ncontiero/dk-tube-sub000/internal/server/webhook"
	"github.com/ncontiero/dk-tube-sub000/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	cfg, err := config.Load("dktube-server", os.Args[1:], os.Getenv)
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := newLogger(cfg.Dev)
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func newLogger(dev bool) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if dev {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// run wires storage, services and listeners, then blocks until ctx is done.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("grpc", cfg.GRPCAddr),
		zap.String("http", cfg.HTTPAddr),
	)

	applied, err := migrate.Up(ctx, cfg.DSN)
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	logger.Info("schema ready", zap.Int64("version", applied))

	db, err := postgres.New(ctx, cfg.DSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	var notifier invalidate.Notifier = invalidate.LogNotifier{Log: logger}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable; invalidation signals will be dropped", zap.Error(err))
		}
		notifier = invalidate.NewRedisNotifier(rdb, cfg.Redis.Channel)
	}
	inv := invalidate.NewRouter(notifier, logger)

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		return err
	}

	// Repositories
	userRepo := postgres.NewUserRepo(db)
	videoRepo := postgres.NewVideoRepo(db)
	playlistRepo := postgres.NewPlaylistRepo(db)
	memberRepo := postgres.NewMembershipRepo(db)
	historyRepo := postgres.NewHistoryRepo(db)

	lim := limiter.NewPG(db.Pool, cfg.Limiter.Window, cfg.Limiter.MaxFails, cfg.Limiter.BlockFor)

	// Services
	resolver := identity.NewResolver(userRepo, inv, logger)
	collections := service.NewCollectionService(playlistRepo, memberRepo, inv)
	membership := service.NewMembershipService(playlistRepo, memberRepo, inv)
	videos := service.NewVideoService(videoRepo, media.NewClient(cfg.YouTubeAPIKey), inv, logger, cfg.SearchSpace)
	history := service.NewHistoryService(historyRepo, inv)

	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			grpcserver.RecoverUnary(logger),
			grpcserver.LoggingUnary(logger),
			grpcserver.AuthUnary(verifier, lim, grpcserver.AnonymousMethods, logger),
		),
	}
	if cfg.TLSCert != "" {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			return fmt.Errorf("load TLS cert/key: %w", err)
		}
		opts = append(opts, grpc.Creds(creds))
	}
	s := grpc.NewServer(opts...)
	api.RegisterTubeServer(s, grpcserver.New(resolver, collections, membership, videos, history, logger))

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	if cfg.Dev {
		reflection.Register(s)
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.GRPCAddr, err)
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("grpc listening", zap.String("addr", cfg.GRPCAddr), zap.Bool("tls", cfg.TLSCert != ""))
		errCh <- s.Serve(lis)
	}()

	var hsrv *http.Server
	if cfg.HTTPAddr != "" {
		wh, err := webhook.NewHandler(resolver, cfg.WebhookSecret, lim, logger)
		if err != nil {
			return fmt.Errorf("webhook handler: %w", err)
		}
		hsrv = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           wh.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("webhook listening", zap.String("addr", cfg.HTTPAddr))
			if err := hsrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	hs.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if hsrv != nil {
		if err := hsrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("webhook shutdown", zap.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		s.Stop()
	}
	return runErr
}

func newVerifier(ctx context.Context, cfg *config.Config) (identity.Verifier, error) {
	switch cfg.Identity.Mode {
	case config.ModeOIDC:
		v, err := identity.NewOIDCVerifier(ctx, cfg.Identity.Issuer, cfg.Identity.ClientID)
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return identity.NewJWTVerifier([]byte(cfg.Identity.JWTKey)), nil
	}
}
