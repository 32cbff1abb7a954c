package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"lms-service/internal/auth"
	"lms-service/internal/config"
	"lms-service/internal/course"
	"lms-service/internal/db"
	"lms-service/internal/health"
	"lms-service/internal/logger"
	"lms-service/internal/messaging"
	"lms-service/internal/telemetry"
	"lms-service/internal/user"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
)

const healthCheckInterval = 10 * time.Second

type App struct {
	config     *config.Config
	server     *http.Server
	grpcServer *grpc.Server
	health     *health.GrpcChecker
	db         *bun.DB
	publisher  messaging.Publisher
	telemetry  *telemetry.Telemetry
	logger     *slog.Logger
	stopHealth context.CancelFunc
}

func New() *App {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)

	// Set as default logger so slog.Info() uses the same handler
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application", "version", Version, "commit", GitCommit, "build_time", BuildTime)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	ctx := context.Background()

	tel, err := telemetry.Init(ctx, cfg.Telemetry, ServiceName, Version, slogLogger)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}

	database, err := db.New(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := tel.Metrics.Database.RegisterDB(database.DB, tel.Meter); err != nil {
		slogLogger.Warn("failed to register database pool metrics", "error", err)
	}

	if err := db.RunMigrations(ctx, database, db.Schema()...); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	sessions, err := auth.NewSessionManager(cfg.Session, slogLogger)
	if err != nil {
		log.Fatalf("failed to initialize sessions: %v", err)
	}

	publisher, err := messaging.New(cfg.Messaging, slogLogger, tel.Metrics.Messaging)
	if err != nil {
		slogLogger.Warn("failed to initialize event publisher, submissions will not be published", "driver", cfg.Messaging.Driver, "error", err)
		publisher = messaging.Noop{}
	}

	router := NewRouter(Deps{
		Logger:    slogLogger,
		Metrics:   tel.Metrics,
		Sessions:  sessions,
		Users:     user.NewRepository(database, tel.Metrics),
		Courses:   course.NewRepository(database, tel.Metrics),
		Publisher: publisher,
		DB:        database,
	})

	app := &App{
		config: cfg,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		},
		grpcServer: grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler())),
		health:     health.NewGrpcChecker(database, healthCheckInterval, slogLogger),
		db:         database,
		publisher:  publisher,
		telemetry:  tel,
		logger:     slogLogger,
	}

	// gRPC health check
	app.health.Register(app.grpcServer)

	slogLogger.Info("application initialized successfully")

	return app
}

// Run serves HTTP and gRPC until one of them fails or Shutdown is called.
func (a *App) Run() error {
	healthCtx, cancel := context.WithCancel(context.Background())
	a.stopHealth = cancel
	go a.health.Watch(healthCtx)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", a.config.Server.GrpcPort))
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port: %w", err)
	}

	errCh := make(chan error, 2)

	go func() {
		a.logger.Info("gRPC server starting", "port", a.config.Server.GrpcPort)
		if err := a.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	go func() {
		a.logger.Info("server starting", "port", a.config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
			return
		}
		errCh <- nil
	}()

	return <-errCh
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	if a.stopHealth != nil {
		a.stopHealth()
	}
	a.health.Shutdown()

	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	a.grpcServer.GracefulStop()

	if err := a.publisher.Close(); err != nil {
		a.logger.Error("event publisher close error", "error", err)
	}
	if err := a.telemetry.Shutdown(ctx, a.logger); err != nil {
		errs = append(errs, err)
	}
	db.Close(a.db)

	return errors.Join(errs...)
}
