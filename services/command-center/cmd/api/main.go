package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/b2b-portal/opscenter/shared/pkg/cloudevents"
	"github.com/b2b-portal/opscenter/shared/pkg/kafka"
	"github.com/b2b-portal/opscenter/shared/pkg/logging"
	"github.com/b2b-portal/opscenter/shared/pkg/metrics"
	"github.com/b2b-portal/opscenter/shared/pkg/middleware"
	"github.com/b2b-portal/opscenter/shared/pkg/mongodb"
	"github.com/b2b-portal/opscenter/shared/pkg/resilience"
	"github.com/b2b-portal/opscenter/shared/pkg/tracing"

	apihttp "github.com/b2b-portal/opscenter/services/command-center/internal/api/http"
	"github.com/b2b-portal/opscenter/services/command-center/internal/application"
	"github.com/b2b-portal/opscenter/services/command-center/internal/config"
	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
	"github.com/b2b-portal/opscenter/services/command-center/internal/infrastructure/guarded"
	kafkaPublisher "github.com/b2b-portal/opscenter/services/command-center/internal/infrastructure/kafka"
	mongoSource "github.com/b2b-portal/opscenter/services/command-center/internal/infrastructure/mongodb"
	graph "github.com/b2b-portal/opscenter/services/command-center/internal/infrastructure/neo4j"
	"github.com/b2b-portal/opscenter/services/command-center/internal/infrastructure/postgres"
	redisCache "github.com/b2b-portal/opscenter/services/command-center/internal/infrastructure/redis"
)

const serviceName = "command-center"

var initTracing = tracing.Initialize

var startHTTPServer = func(srv *http.Server) error {
	return srv.ListenAndServe()
}

func main() {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	if err := run(context.Background(), signalCh); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, signalCh <-chan os.Signal) error {
	logger := newLogger()
	logger.SetDefault()

	logger.Info("Starting command-center API")

	cfg := loadConfig()

	policy, err := config.LoadPolicy(cfg.PolicyPath)
	if err != nil {
		logger.WithError(err).Error("Failed to load policy", "path", cfg.PolicyPath)
		return err
	}
	if len(policy.ATP.IncludedWarehouses) == 0 {
		// Not fatal: the affected sections report CONFIGURATION_MISSING
		logger.Warn("No included warehouses configured")
	}
	logger.Info("Policy loaded", "path", cfg.PolicyPath, "warehouses", policy.ATP.IncludedWarehouses)

	// Initialize OpenTelemetry tracing
	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	tracingConfig.Environment = getEnv("ENVIRONMENT", "development")
	tracingConfig.Enabled = getEnv("TRACING_ENABLED", "true") == "true"

	tracerProvider, err := initTracing(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", tracingConfig.OTLPEndpoint)
	}

	m := metrics.New(metrics.DefaultConfig(serviceName))
	logger.Info("Metrics initialized")

	// Portal database
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to PostgreSQL")
		return err
	}
	defer pool.Close()
	db := postgres.NewDB(pool, m, logger)
	logger.Info("Connected to PostgreSQL")

	// WES picking store
	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		return err
	}
	instrumentedMongo := mongodb.NewInstrumentedClient(mongoClient, m, logger)
	defer instrumentedMongo.Close(context.Background())
	logger.Info("Connected to MongoDB", "database", cfg.MongoDB.Database)

	// Every backing store read goes through its own circuit breaker
	breakers := resilience.NewCircuitBreakerRegistry(logger.Logger, m)

	// Product graph, optional
	coOccurrence, graphProbes, closeGraph := openCoOccurrence(ctx, cfg.Neo4j, breakers, m, logger)
	defer closeGraph()
	sources := application.Sources{
		Orders:       guarded.NewOrderSource(postgres.NewOrderSource(db), guarded.FromRegistry(breakers, guarded.BreakerOrders)),
		Inventory:    guarded.NewInventorySource(postgres.NewInventorySource(db), guarded.FromRegistry(breakers, guarded.BreakerInventory)),
		Customers:    guarded.NewCustomerSource(postgres.NewCustomerSource(db), guarded.FromRegistry(breakers, guarded.BreakerCustomers)),
		Carts:        guarded.NewCartSource(postgres.NewCartSource(db), guarded.FromRegistry(breakers, guarded.BreakerCarts)),
		Catalog:      guarded.NewCatalogSource(postgres.NewCatalogSource(db), guarded.FromRegistry(breakers, guarded.BreakerCatalog)),
		DataQuality:  guarded.NewDataQualitySource(postgres.NewDataQualitySource(db), guarded.FromRegistry(breakers, guarded.BreakerDataQuality)),
		Picking:      guarded.NewPickingSource(mongoSource.NewPickingSource(instrumentedMongo.Collection(mongoSource.PickTasksCollection)), guarded.FromRegistry(breakers, guarded.BreakerPicking)),
		CoOccurrence: coOccurrence,
	}

	// Snapshot events
	producer := kafka.NewProducer(cfg.Kafka)
	defer producer.Close()
	publisher := kafkaPublisher.NewEventPublisher(
		producer,
		cloudevents.NewEventFactory(cloudevents.SourceCommandCenter),
		kafka.Topics.OpsCenterEvents,
		m,
		logger,
	)
	logger.Info("Kafka producer initialized", "brokers", cfg.Kafka.Brokers, "topic", publisher.Topic())

	opts := []application.Option{application.WithPublisher(publisher)}

	probes := []middleware.ReadinessProbe{
		{Name: "postgres", Check: func(ctx context.Context) error { return postgres.HealthCheck(ctx, pool) }},
		{Name: "mongodb", Check: instrumentedMongo.HealthCheck},
	}
	probes = append(probes, graphProbes...)

	// Optional snapshot cache
	if cfg.Redis != nil && policy.Aggregator.CacheTTL > 0 {
		redisClient, err := redisCache.NewClient(ctx, cfg.Redis)
		if err != nil {
			logger.WithError(err).Warn("Snapshot cache disabled, Redis unreachable", "addr", cfg.Redis.Addr)
		} else {
			defer redisClient.Close()
			cache := redisCache.NewSnapshotCache(redisClient, m, logger)
			opts = append(opts, application.WithCache(cache))
			probes = append(probes, middleware.ReadinessProbe{Name: "redis", Check: cache.Ping})
			logger.Info("Snapshot cache enabled", "addr", cfg.Redis.Addr, "ttl", policy.Aggregator.CacheTTL)
		}
	}

	commandCenter := application.NewCommandCenter(sources, policy, logger, m, opts...)
	handlers := apihttp.NewHandlers(commandCenter, logger)

	// Setup Gin router with middleware
	router := gin.New()
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	middleware.Setup(router, middleware.DefaultConfig(serviceName, logger.Logger))
	router.Use(middleware.MetricsMiddleware(m))
	router.Use(middleware.SimpleTracingMiddleware(serviceName))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, 3*time.Second, probes...))
	router.GET("/metrics", middleware.MetricsEndpoint(m))
	router.GET("/circuit-breakers", func(c *gin.Context) {
		c.JSON(http.StatusOK, breakers.Status())
	})

	apihttp.RegisterRoutes(router, handlers)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: policy.Aggregator.SnapshotTimeout + 5*time.Second,
	}

	go func() {
		if err := startHTTPServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", cfg.ServerAddr)

	<-signalCh
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	// Let in-flight snapshot events reach the producer before it closes
	commandCenter.Wait()

	logger.Info("Server stopped")
	return nil
}

// newLogger loads .env first so LOG_LEVEL set there applies.
// Local development reads connection settings from the same file.
func newLogger() *logging.Logger {
	envErr := godotenv.Load()

	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)

	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.WithError(envErr).Warn("Failed to load .env file")
	}
	return logger
}

// openCoOccurrence connects the product graph. When the graph is unreachable
// the co-occurrence source stays nil and substitution runs without that
// signal; neo4j is then left out of readiness.
func openCoOccurrence(
	ctx context.Context,
	cfg graph.Config,
	breakers *resilience.CircuitBreakerRegistry,
	m *metrics.Metrics,
	logger *logging.Logger,
) (domain.CoOccurrenceSource, []middleware.ReadinessProbe, func()) {
	client, err := graph.NewClient(ctx, cfg, m, logger)
	if err != nil {
		logger.WithError(err).Warn("Co-occurrence signal disabled, Neo4j unreachable", "uri", cfg.URI)
		return nil, nil, func() {}
	}
	logger.Info("Connected to Neo4j", "database", cfg.Database)

	source := guarded.NewCoOccurrenceSource(
		graph.NewCoOccurrenceSource(client),
		guarded.FromRegistry(breakers, guarded.BreakerCoOccurrence),
	)
	probes := []middleware.ReadinessProbe{{Name: "neo4j", Check: client.Health}}
	return source, probes, func() { _ = client.Close(context.Background()) }
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodOptions}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", "X-Request-ID", "X-Correlation-ID")
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// Config holds application configuration
type Config struct {
	ServerAddr     string
	PolicyPath     string
	AllowedOrigins []string
	Postgres       *postgres.Config
	MongoDB        *mongodb.Config
	Neo4j          graph.Config
	Redis          *redisCache.Config
	Kafka          *kafka.Config
}

func loadConfig() *Config {
	pg := postgres.DefaultConfig()
	pg.DSN = getEnv("DATABASE_URL", pg.DSN)

	mongoCfg := mongodb.DefaultConfig()
	mongoCfg.URI = getEnv("MONGODB_URI", mongoCfg.URI)
	mongoCfg.Database = getEnv("MONGODB_DATABASE", mongoCfg.Database)

	kafkaCfg := kafka.DefaultConfig()
	kafkaCfg.Brokers = splitList(getEnv("KAFKA_BROKERS", "localhost:9092"))
	kafkaCfg.ClientID = serviceName

	cfg := &Config{
		ServerAddr:     getEnv("SERVER_ADDR", ":8040"),
		PolicyPath:     getEnv("POLICY_PATH", "config/policy.yaml"),
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		Postgres:       pg,
		MongoDB:        mongoCfg,
		Neo4j: graph.Config{
			URI:      getEnv("NEO4J_URI", "neo4j://localhost:7687"),
			Username: getEnv("NEO4J_USERNAME", "neo4j"),
			Password: getEnv("NEO4J_PASSWORD", "neo4j"),
			Database: getEnv("NEO4J_DATABASE", "neo4j"),
		},
		Kafka: kafkaCfg,
	}

	if addr := getEnv("REDIS_ADDR", ""); addr != "" {
		db, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
		cfg.Redis = &redisCache.Config{
			Addr:         addr,
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           db,
			PoolSize:     10,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		}
	}

	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
