// Package server wires configuration, storage, services and transports into
// the authentication server and runs it until the process is signalled.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/azura/internal/dbx"
	"github.com/dmitrijs2005/azura/internal/logging"
	"github.com/dmitrijs2005/azura/internal/server/config"
	"github.com/dmitrijs2005/azura/internal/server/httpapi"
	"github.com/dmitrijs2005/azura/internal/server/mailer"
	"github.com/dmitrijs2005/azura/internal/server/password"
	"github.com/dmitrijs2005/azura/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/azura/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/azura/internal/server/services"
	"github.com/dmitrijs2005/azura/internal/server/socket"
	"github.com/dmitrijs2005/azura/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

const (
	metricsNamespace = "azura"
	shutdownTimeout  = 10 * time.Second
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	redis   redis.UniversalClient
	handler http.Handler
}

// NewApp builds the server described by c. Storage connections are opened
// and migrated here, so a returned App is ready to serve.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	app := &App{
		config: c,
		logger: logging.NewJSONLogger(os.Stdout, c.LogLevel),
	}

	if err := app.init(ctx); err != nil {
		app.close()
		return nil, err
	}
	return app, nil
}

func (app *App) init(ctx context.Context) error {
	c := app.config

	var (
		rm   repomanager.RepositoryManager
		dbtx dbx.DBTX
	)
	switch c.Storage {
	case config.StorageMemory:
		rm = repomanager.NewMemoryRepositoryManager()
	case config.StoragePostgres:
		db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return fmt.Errorf("db init error: %w", err)
		}
		app.db = db
		dbtx = db

		rm = repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("migration error: %w", err)
		}
	}

	userRepo := rm.Users(dbtx)
	refreshRepo := rm.RefreshTokens(dbtx)

	if c.RefreshTokenStore == config.RefreshStoreRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		app.redis = client
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis init error: %w", err)
		}
		refreshRepo = refreshtokens.NewRedisRepository(client)
	}

	m, err := app.newMailer(ctx)
	if err != nil {
		return err
	}

	hasher := password.NewBcryptHasher(c.BcryptCost)
	tokens := services.NewTokenService(refreshRepo, c, app.logger)
	resets := services.NewPasswordResetService(userRepo, hasher, m, tokens, c, app.logger)
	auth := services.NewAuthService(userRepo, tokens, resets, hasher, app.logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewMetrics(registry, metricsNamespace)
	tracer := telemetry.Tracer()

	httpRoute := func(ctx *httpapi.Context, _ *httpapi.Request) string { return ctx.Route }
	router := httpapi.NewRouter(app.logger)
	router.Use(
		httpapi.Logging(app.logger),
		telemetry.Layer(metrics, "http", httpRoute),
		telemetry.Tracing(tracer, httpRoute, attribute.String("azura.transport", "http")),
		httpapi.QueryToJSON(),
		httpapi.BodyJSON(),
	)
	httpapi.NewAuthenticationController(auth, app.logger).Routes(router)

	socketEvent := func(_ *socket.Context, f *socket.Frame) string { return f.Event }
	sockets := socket.NewServer(metrics, app.logger)
	sockets.Use(
		telemetry.Layer(metrics, "socket", socketEvent),
		telemetry.Tracing(tracer, socketEvent, attribute.String("azura.transport", "socket")),
	)
	socket.NewAuthenticationController(auth, app.logger).Events(sockets)

	router.Mount("/socket", sockets)
	router.Mount("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	router.Mount("/healthz", http.HandlerFunc(app.healthz))

	app.handler = router
	return nil
}

func (app *App) newMailer(ctx context.Context) (mailer.Mailer, error) {
	if app.config.Mailer != config.MailerS3 {
		return mailer.NewLogMailer(app.logger), nil
	}

	client, err := mailer.NewS3Client(ctx, app.config)
	if err != nil {
		return nil, fmt.Errorf("s3 init error: %w", err)
	}
	return mailer.NewS3OutboxMailer(client, app.config.S3Bucket, app.config.ResetURL, app.logger), nil
}

func (app *App) healthz(w http.ResponseWriter, r *http.Request) {
	if app.db != nil {
		if err := app.db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	if app.redis != nil {
		if err := app.redis.Ping(r.Context()).Err(); err != nil {
			http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Handler returns the root HTTP handler.
func (app *App) Handler() http.Handler { return app.handler }

func (app *App) close() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Warn(context.Background(), "error closing database", "error", err)
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(context.Background(), "error closing redis", "error", err)
		}
	}
}

// Run serves until ctx is cancelled or SIGINT, SIGTERM or SIGQUIT arrives,
// then shuts down gracefully and releases storage connections.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	defer app.close()

	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           app.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "Starting HTTP server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err, ok := <-errc:
		if ok {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
