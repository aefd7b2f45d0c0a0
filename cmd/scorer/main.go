package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/veritabl/scorer/internal/config"
	"github.com/veritabl/scorer/internal/infrastructure/database"
	"github.com/veritabl/scorer/internal/infrastructure/repository"
	"github.com/veritabl/scorer/internal/present/rest"
	"github.com/veritabl/scorer/internal/service"
	"github.com/veritabl/scorer/internal/usecase"
	"github.com/veritabl/scorer/internal/worker"
)

func main() {
	configPath := flag.String("c", "config.yaml", "path to config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if conf.Server.EnableTrace {
		shutdown, err := setupTracer(ctx, conf.Server.TraceEndpoint)
		if err != nil {
			slog.Error("failed to set up tracing", "error", err)
			os.Exit(1)
		}
		defer shutdown()
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	if err := database.MigratePostgres(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB)
	mc := database.NewMemcached(conf.Server.MemcachedAddr)

	weights, defaultWeight, err := conf.Scorer.ParseWeights()
	if err != nil {
		slog.Error("invalid provider weights", "error", err)
		os.Exit(1)
	}

	passportRepo := repository.NewPassportRepository(db)
	stampRepo := repository.NewStampRepository(db)
	scoreRepo := repository.NewScoreRepository(db, time.Duration(conf.Scorer.StaleClaimSeconds)*time.Second)
	cachedScores := repository.NewCachedScoreRepository(scoreRepo, mc, int32(conf.Scorer.ScoreCacheTTLSeconds))
	communityRepo := repository.NewCachedCommunityRepository(
		repository.NewCommunityRepository(db),
		time.Duration(conf.Scorer.CommunityCacheSeconds)*time.Second,
	)

	signalService := service.NewSignalService(rdb)
	calculator := service.NewWeightedCalculator(weights, defaultWeight)

	passportUC := usecase.NewPassportUsecase(passportRepo, communityRepo, signalService)
	stampUC := usecase.NewStampUsecase(passportRepo, stampRepo, signalService)
	scoreUC := usecase.NewScoreUsecase(passportRepo, cachedScores, signalService)
	communityUC := usecase.NewCommunityUsecase(communityRepo)

	wake := make(chan struct{}, 1)
	pubsub := signalService.Subscribe(ctx)
	defer pubsub.Close()
	go func() {
		for range pubsub.Channel() {
			select {
			case wake <- struct{}{}:
			default:
			}
		}
	}()

	scorerWorker := worker.New(
		passportRepo,
		stampRepo,
		cachedScores,
		calculator,
		wake,
		time.Duration(conf.Scorer.IntervalSeconds)*time.Second,
		conf.Scorer.BatchSize,
		conf.Scorer.Concurrency,
	)
	go func() {
		if err := scorerWorker.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Error("worker stopped", "error", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("scorer"))
	}

	handler := rest.NewHandler(passportUC, stampUC, scoreUC, communityUC)
	handler.RegisterRoutes(e)

	go func() {
		if err := e.Start(conf.Server.Addr); err != nil && err != http.ErrServerClosed {
			slog.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}

func setupTracer(ctx context.Context, endpoint string) (func(), error) {
	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(provider)

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			slog.Error("trace provider shutdown failed", "error", err)
		}
	}, nil
}
