package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/dan47bennett/typescript-reddit/internal/db"
	"github.com/dan47bennett/typescript-reddit/internal/events"
	"github.com/dan47bennett/typescript-reddit/internal/graph"
	"github.com/dan47bennett/typescript-reddit/internal/handlers"
	"github.com/dan47bennett/typescript-reddit/internal/logger"
	"github.com/dan47bennett/typescript-reddit/internal/mailer"
	"github.com/dan47bennett/typescript-reddit/internal/middlewares"
	"github.com/dan47bennett/typescript-reddit/internal/repositories"
	"github.com/dan47bennett/typescript-reddit/internal/repositories/gormrepo"
	"github.com/dan47bennett/typescript-reddit/internal/services"
	"github.com/dan47bennett/typescript-reddit/internal/sessions"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

func main() {
	printBuildInfo()

	configPath, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatalf("failed to parse flags: %v", err)
	}

	cfg, err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Version: %s\nCommit: %s\nBuild: %s\n", buildVersion, buildCommit, buildDate)
}

// stores groups the relational repositories behind the service contracts.
type stores struct {
	userReader services.UserReader
	userWriter services.UserWriter
	postReader services.PostReader
	postWriter services.PostWriter
}

// newStores builds the repositories for the configured ORM on top of conn.
func newStores(orm string, conn *sqlx.DB) (*stores, error) {
	switch orm {
	case StorageSQLX, "":
		return &stores{
			userReader: repositories.NewUserReadRepository(conn),
			userWriter: repositories.NewUserWriteRepository(conn),
			postReader: repositories.NewPostReadRepository(conn),
			postWriter: repositories.NewPostWriteRepository(conn),
		}, nil
	case StorageGorm:
		gdb, err := db.OpenGorm(conn)
		if err != nil {
			return nil, err
		}
		users := gormrepo.NewUserRepository(gdb)
		posts := gormrepo.NewPostRepository(gdb)
		return &stores{userReader: users, userWriter: users, postReader: posts, postWriter: posts}, nil
	default:
		return nil, fmt.Errorf("unknown storage orm %q", orm)
	}
}

// newRouter mounts the GraphQL endpoint behind the shared middleware stack.
func newRouter(cfg *Config, graphqlHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(logger.Log))
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigin))

	r.Method(http.MethodGet, "/graphql", graphqlHandler)
	r.Method(http.MethodPost, "/graphql", graphqlHandler)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

// run initializes the logger, database, Redis, mail and event clients and
// the HTTP server. It blocks until ctx is done or a shutdown signal arrives.
func run(ctx context.Context, cfg *Config) error {
	if err := logger.Initialize(cfg.LogLevel, cfg.Env); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Log.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.LogLevel)

	// PostgreSQL
	dsn := db.DSN(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB)
	logger.Log.Infow("connecting to PostgreSQL", "host", cfg.PostgresHost, "port", cfg.PostgresPort, "db", cfg.PostgresDB)

	if err := db.Migrate(dsn); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	conn, err := db.Connect(ctx, dsn, cfg.PostgresMaxOpenConns, cfg.PostgresMaxIdleConns)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close()

	st, err := newStores(cfg.StorageORM, conn)
	if err != nil {
		return err
	}
	logger.Log.Infow("storage ready", "orm", cfg.StorageORM)

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}

	sessionManager := sessions.NewManager(repositories.NewSessionRedisRepository(rdb), sessions.Config{
		CookieName: cfg.SessionCookieName,
		Secret:     cfg.SessionSecret,
		Secure:     cfg.Production(),
	})

	mail, err := mailer.New(mailer.Config{
		Host:     cfg.SMTPHost,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	if err != nil {
		return err
	}

	var kafkaWriter events.KafkaWriter
	if w := events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic); w != nil {
		kafkaWriter = w
	}
	publisher := events.NewPublisher(kafkaWriter)
	defer publisher.Close()

	// Services
	authService := services.NewAuthService(
		st.userReader,
		st.userWriter,
		repositories.NewResetTokenRedisRepository(rdb),
		sessionManager,
		services.BcryptHasher{},
		mail,
		publisher,
		cfg.FrontendURL,
	)
	postService := services.NewPostService(st.postReader, st.postWriter, publisher)

	schema, err := graph.NewSchema(authService, postService)
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler:           newRouter(cfg, handlers.NewGraphQLHandler(schema, sessionManager)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
