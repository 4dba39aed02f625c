package main

import (
	"NYCU-SDC/questionnaire-backend/internal"
	"NYCU-SDC/questionnaire-backend/internal/config"
	"NYCU-SDC/questionnaire-backend/internal/form/builder"
	"NYCU-SDC/questionnaire-backend/internal/form/render"
	"NYCU-SDC/questionnaire-backend/internal/form/response"
	"NYCU-SDC/questionnaire-backend/internal/form/schema"
	"NYCU-SDC/questionnaire-backend/internal/form/submit"
	"NYCU-SDC/questionnaire-backend/internal/trace"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.6.1"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var AppName = "no-app-name"

var Version = "no-version"

var BuildTime = "no-build-time"

var CommitHash = "no-commit-hash"

var Environment = "no-env"

func main() {
	AppName = os.Getenv("APP_NAME")
	if AppName == "" {
		AppName = "questionnaire-backend"
	}

	if BuildTime == "no-build-time" {
		now := time.Now()
		BuildTime = "not provided (now: " + now.Format(time.RFC3339) + ")"
	}

	Environment = os.Getenv("ENV")
	if Environment == "" {
		Environment = "no-env"
	}

	appMetadata := []zap.Field{
		zap.String("app_name", AppName),
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit_hash", CommitHash),
		zap.String("environment", Environment),
	}

	cfg, cfgLog := config.Load()
	err := cfg.Validate()
	if err != nil {
		if errors.Is(err, config.ErrDatabaseURLRequired) {
			title := "Database URL is required"
			message := "Please set the DATABASE_URL environment variable or provide a config file with the database_url key."
			message = EarlyApplicationFailed(title, message)
			log.Fatal(message)
		} else {
			log.Fatalf("Failed to validate config: %v, exiting...", err)
		}
	}

	logger, err := initLogger(&cfg, appMetadata)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v, exiting...", err)
	}

	cfgLog.FlushToZap(logger)

	if cfg.Dev {
		logger.Warn("Running in development mode, make sure to disable it in production")
	}

	logger.Info("Starting application...")

	logger.Info("Starting database migration...")

	err = databaseutil.MigrationUp(cfg.MigrationSource, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("Failed to run database migration", zap.Error(err))
	}

	dbPool, err := initDatabasePool(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to initialize database pool", zap.Error(err))
	}
	defer dbPool.Close()

	shutdown, err := initOpenTelemetry(AppName, Version, BuildTime, CommitHash, Environment, cfg.OtelCollectorUrl)
	if err != nil {
		logger.Fatal("Failed to initialize OpenTelemetry", zap.Error(err))
	}

	validator := internal.NewValidator()
	problemWriter := internal.NewProblemWriter()
	patterns := render.NewPatternCache(logger, cfg.PatternCacheSize)

	// ============================================
	// Service
	// ============================================

	schemaService := schema.NewService(logger, dbPool)
	responseService := response.NewService(logger, dbPool, schemaService, cfg.ExportSheetName)
	submitService := submit.NewService(logger, schemaService, responseService, patterns)

	// ============================================
	// Handler
	// ============================================

	schemaHandler := schema.NewHandler(logger, validator, problemWriter, schemaService)
	builderHandler := builder.NewHandler(logger, validator, problemWriter)
	formHandler := render.NewHandler(logger, problemWriter, schemaService, responseService, submitService, patterns)
	submitHandler := submit.NewHandler(logger, validator, problemWriter, submitService)
	responseHandler := response.NewHandler(logger, validator, problemWriter, responseService)

	// ============================================
	// Middleware
	// ============================================

	// Middleware Initialization
	traceMiddleware := trace.NewMiddleware(logger, cfg.Debug)

	// Basic Middleware (Tracing and Recovery)
	basicMiddleware := middleware.NewSet(traceMiddleware.RecoverMiddleware)
	basicMiddleware = basicMiddleware.Append(traceMiddleware.TraceMiddleware)

	// HTTP Server
	mux := http.NewServeMux()

	// Health check route
	mux.Handle("GET /api/healthz", basicMiddleware.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			logger.Error("Failed to write response", zap.Error(err))
		}
	}))

	// ============================================
	// Schema routes
	// ============================================

	// Schema Management
	// ----------------------
	mux.Handle("GET /api/schemas", basicMiddleware.HandlerFunc(schemaHandler.ListHandler))
	mux.Handle("POST /api/schemas", basicMiddleware.HandlerFunc(schemaHandler.CreateHandler))
	mux.Handle("GET /api/schemas/{schemaId}", basicMiddleware.HandlerFunc(schemaHandler.GetHandler))
	mux.Handle("PUT /api/schemas/{schemaId}", basicMiddleware.HandlerFunc(schemaHandler.UpdateHandler))
	mux.Handle("DELETE /api/schemas/{schemaId}", basicMiddleware.HandlerFunc(schemaHandler.DeleteHandler))

	// Builder
	// ----------------------
	mux.Handle("POST /api/builder/operations", basicMiddleware.HandlerFunc(builderHandler.ApplyOperationsHandler))

	// ============================================
	// Form routes
	// ============================================

	// --- (?preview=true renders the form read only)
	mux.Handle("GET /api/schemas/{schemaId}/form", basicMiddleware.HandlerFunc(formHandler.FormHandler))
	mux.Handle("POST /api/schemas/{schemaId}/form", basicMiddleware.HandlerFunc(formHandler.SubmitFormHandler))
	mux.Handle("GET /api/responses/{responseId}/form", basicMiddleware.HandlerFunc(formHandler.ResponseFormHandler))

	// ============================================
	// Response routes
	// ============================================

	// Submission
	// ----------------------
	mux.Handle("POST /api/schemas/{schemaId}/responses", basicMiddleware.HandlerFunc(submitHandler.SubmitHandler))

	// Response Management
	// ----------------------
	mux.Handle("GET /api/responses", basicMiddleware.HandlerFunc(responseHandler.ListHandler))
	mux.Handle("GET /api/responses/{responseId}", basicMiddleware.HandlerFunc(responseHandler.GetHandler))
	// --- (?schema=snapshot forces the schema stored with the response)
	mux.Handle("GET /api/responses/{responseId}/report", basicMiddleware.HandlerFunc(responseHandler.ReportHandler))
	mux.Handle("GET /api/schemas/{schemaId}/responses/export", basicMiddleware.HandlerFunc(responseHandler.ExportHandler))

	// End of API routes
	// ============================================
	// handle interrupt signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    cfg.Host + ":" + cfg.Port,
		Handler: otelhttp.NewHandler(mux, AppName),
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("Starting listening request", zap.String("host", cfg.Host), zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		// wait for context close
		<-groupCtx.Done()
		logger.Info("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server forced to shutdown", zap.Error(err))
		}

		otelCtx, otelCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer otelCancel()
		if err := shutdown(otelCtx); err != nil {
			logger.Error("Forced to shutdown OpenTelemetry", zap.Error(err))
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return
	}

	logger.Info("Successfully shutdown")
}

func initLogger(cfg *config.Config, appMetadata []zap.Field) (*zap.Logger, error) {
	var err error
	var logger *zap.Logger
	if cfg.Debug {
		logger, err = logutil.ZapDevelopmentConfig().Build()
		if err != nil {
			return nil, err
		}
		logger.Info("Running in debug mode", appMetadata...)
	} else {
		logger, err = logutil.ZapProductionConfig().Build()
		if err != nil {
			return nil, err
		}

		logger = logger.With(appMetadata...)
	}
	defer func() {
		err := logger.Sync()
		if err != nil {
			zap.S().Errorw("Failed to sync logger", zap.Error(err))
		}
	}()

	return logger, nil
}

func initDatabasePool(databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	dbPool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, err
	}
	return dbPool, nil
}

func initOpenTelemetry(appName, version, buildTime, commitHash, environment, otelCollectorUrl string) (func(context.Context) error, error) {
	ctx := context.Background()

	serviceName := semconv.ServiceNameKey.String(appName)
	serviceVersion := semconv.ServiceVersionKey.String(version)
	serviceNamespace := semconv.ServiceNamespaceKey.String("questionnaire")
	serviceCommitHash := attribute.String("service.commit_hash", commitHash)
	serviceEnvironment := semconv.DeploymentEnvironmentKey.String(environment)

	res, err := resource.New(ctx,
		resource.WithAttributes(
			serviceName,
			serviceVersion,
			serviceNamespace,
			serviceCommitHash,
			serviceEnvironment,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	options := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}

	if otelCollectorUrl != "" {
		conn, err := initGrpcConn(otelCollectorUrl)
		if err != nil {
			return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
		}

		traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}

		bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
		options = append(options, sdktrace.WithSpanProcessor(bsp))
	}

	tracerProvider := sdktrace.NewTracerProvider(options...)

	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tracerProvider.Shutdown, nil
}

func initGrpcConn(target string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	return conn, nil
}

func EarlyApplicationFailed(title, action string) string {
	result := `
-----------------------------------------
Application Failed to Start
-----------------------------------------

# What's wrong?
%s

# How to fix it?
%s

`

	result = fmt.Sprintf(result, title, action)
	return result
}
