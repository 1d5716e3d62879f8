package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/ozzus/flight-filter/grpcapp"
	"github.com/ozzus/flight-filter/internal/application/service"
	"github.com/ozzus/flight-filter/internal/config"
	"github.com/ozzus/flight-filter/internal/domain/ports"
	"github.com/ozzus/flight-filter/internal/infrastructures/console"
	pgrepo "github.com/ozzus/flight-filter/internal/infrastructures/db/postgres/repo"
	cacheredis "github.com/ozzus/flight-filter/internal/infrastructures/db/redis"
	"github.com/ozzus/flight-filter/internal/infrastructures/sample"
	"github.com/ozzus/flight-filter/internal/infrastructures/tracing"
	tpclient "github.com/ozzus/flight-filter/internal/infrastructures/travelpayouts/http/client"
	grpcapi "github.com/ozzus/flight-filter/internal/transport/grpc"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Log.Level)
	defer func() {
		_ = log.Sync()
	}()

	shutdownTracer, err := tracing.InitTracer("flight-filter", cfg.Jaeger)
	if err != nil {
		log.Fatal("failed to init tracer", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			log.Warn("failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("flight-filter starting",
		zap.String("mode", cfg.Mode),
		zap.String("source", cfg.Source.Kind),
		zap.Duration("max_ground_time", cfg.Filter.MaxGroundTime),
	)

	source, closeSource := setupSource(ctx, log, cfg)
	defer closeSource()

	var cache ports.ItineraryCache
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Warn("failed to close redis client", zap.Error(err))
			}
		}()
		cache = cacheredis.NewItineraryCacheRepository(redisClient)
	}

	filterService := service.NewFilterService(
		log,
		source,
		cache,
		console.NewSink(os.Stdout, !cfg.Output.NoColor),
		service.Settings{
			SourceKey:     cfg.Source.Kind,
			CacheTTL:      cfg.Source.CacheTTL,
			MaxGroundTime: cfg.Filter.MaxGroundTime,
		},
	)

	if cfg.Mode == config.ModeOnce {
		if err := filterService.Run(ctx); err != nil {
			log.Fatal("filter run failed", zap.Error(err))
		}
		return
	}

	app := grpcapp.New(log, cfg.GRPC.Address(), func(s *grpc.Server) {
		grpcapi.Register(s, log, filterService)
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Run()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		app.Stop()
	case err := <-errCh:
		if err != nil {
			log.Error("gRPC server stopped", zap.Error(err))
		}
	}
}

func setupSource(ctx context.Context, log *zap.Logger, cfg *config.Config) (ports.ItinerarySource, func()) {
	switch cfg.Source.Kind {
	case config.SourceTravelpayouts:
		tp := cfg.Travelpayouts
		return tpclient.NewClient(tp.BaseURL, tp.Token, tp.Currency, tp.Limit, tp.Timeout, tpclient.Search{
			OriginIATA:      tp.OriginIATA,
			DestinationIATA: tp.DestinationIATA,
			DepartureDate:   time.Now().UTC().AddDate(0, 0, tp.DaysAhead),
		}), func() {}
	case config.SourcePostgres:
		repo, err := pgrepo.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			log.Fatal("failed to connect postgres", zap.Error(err))
		}
		return repo, repo.Close
	default:
		return sample.NewSource(time.Now), func() {}
	}
}

func setupLogger(level string) *zap.Logger {
	zapLevel := parseLogLevel(level)
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	log, err := cfg.Build()
	if err != nil {
		panic(err)
	}

	return log
}

func parseLogLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
