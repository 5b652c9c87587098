package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"praticai/internal/artifact/files"
	artifacthandler "praticai/internal/artifact/handler"
	artifactmetrics "praticai/internal/artifact/metrics"
	artifactservice "praticai/internal/artifact/service"
	"praticai/internal/artifact/store/memory"
	pgstore "praticai/internal/artifact/store/postgres"
	redisstore "praticai/internal/artifact/store/redis"
	"praticai/internal/audit"
	"praticai/internal/document"
	"praticai/internal/document/wkhtml"
	formshandler "praticai/internal/forms/handler"
	formsmetrics "praticai/internal/forms/metrics"
	formsservice "praticai/internal/forms/service"
	"praticai/internal/guide"
	"praticai/internal/guide/openai"
	httpapi "praticai/internal/http"
	"praticai/internal/platform/config"
	"praticai/internal/platform/httpserver"
	"praticai/internal/platform/logger"
	"praticai/internal/platform/metrics"
	"praticai/internal/platform/postgres"
	"praticai/internal/platform/redis"
	"praticai/pkg/platform/circuit"
)

// main loads configuration, wires the services and runs the HTTP server
// alongside the cleanup sweeper and the audit publisher until a signal
// arrives.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	reg := metrics.NewRegistry()

	registry, closeRegistry, err := buildRegistry(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRegistry()

	sink, closeSink, err := buildAuditSink(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSink()
	auditor := audit.NewPublisher(sink, cfg.Audit.Buffer, log)

	renderer, err := document.New(cfg.Document.TemplatesDir, wkhtml.New(cfg.Document.WkhtmltopdfPath),
		document.WithTimeout(cfg.Document.RenderTimeout),
		document.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("document renderer: %w", err)
	}

	drafter := openai.New(openai.Config{
		APIKey:  cfg.Guide.APIKey,
		Model:   cfg.Guide.Model,
		BaseURL: cfg.Guide.BaseURL,
	})
	if !drafter.Configured() {
		log.Warn("OPENAI_API_KEY not set; guides will be degraded")
	}
	breaker := circuit.New("openai",
		circuit.WithFailureThreshold(cfg.Guide.BreakerFailures),
		circuit.WithCooldown(cfg.Guide.BreakerCooldown),
	)
	guides, err := guide.New(drafter,
		guide.WithTimeout(cfg.Guide.Timeout),
		guide.WithLogger(log),
		guide.WithBreaker(breaker),
	)
	if err != nil {
		return fmt.Errorf("guide service: %w", err)
	}

	artifacts := artifactservice.New(registry, files.New(cfg.Artifacts.OutputDir),
		artifactservice.WithLogger(log),
		artifactservice.WithMetrics(artifactmetrics.New(reg)),
		artifactservice.WithAuditor(auditor),
		artifactservice.WithRetention(cfg.Artifacts.Retention, cfg.Artifacts.CleanupInterval),
	)
	generator := formsservice.New(renderer, guides, artifacts,
		formsservice.WithLogger(log),
		formsservice.WithMetrics(formsmetrics.New(reg)),
		formsservice.WithAuditor(auditor),
	)

	router := httpapi.NewRouter(httpapi.Config{
		Logger:         log,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Metrics:        metrics.New(reg),
		Registry:       reg,
		API: []httpapi.Registrar{
			formshandler.New(generator, log),
			artifacthandler.New(artifacts, log),
		},
	})
	srv := httpserver.New(cfg.Server.Addr, router, cfg.Server.ReadHeaderTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting praticai", "addr", cfg.Server.Addr, "registry", cfg.Artifacts.Registry, "audit_sink", cfg.Audit.Sink)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return artifacts.Run(gctx) })
	g.Go(func() error { return auditor.Run(gctx) })

	return g.Wait()
}

func buildRegistry(ctx context.Context, cfg config.Config, log *slog.Logger) (artifactservice.Registry, func(), error) {
	noop := func() {}
	switch cfg.Artifacts.Registry {
	case config.RegistryRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		return redisstore.New(client.Client, cfg.Artifacts.Retention), func() { _ = client.Close() }, nil

	case config.RegistryPostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, noop, err
		}
		store := pgstore.New(db, cfg.Artifacts.Retention)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, noop, fmt.Errorf("artifact schema: %w", err)
		}
		return store, func() { _ = db.Close() }, nil

	default:
		log.Info("using in-memory artifact registry", "size", cfg.Artifacts.RegistrySize)
		return memory.New(cfg.Artifacts.RegistrySize, cfg.Artifacts.Retention), noop, nil
	}
}

func buildAuditSink(ctx context.Context, cfg config.Config, log *slog.Logger) (audit.Sink, func(), error) {
	if cfg.Audit.Sink != config.AuditKafka {
		return audit.NewLogSink(log), func() {}, nil
	}

	client, err := audit.NewKafkaClient(cfg.Audit.Brokers, "praticai")
	if err != nil {
		return nil, func() {}, err
	}
	sink := audit.NewKafkaSink(client, cfg.Audit.Topic)
	if err := sink.EnsureTopic(ctx, 3, 1); err != nil {
		log.Warn("could not ensure audit topic", "topic", cfg.Audit.Topic, "error", err)
	}
	return sink, sink.Close, nil
}
