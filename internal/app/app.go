package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/metinatakli/seat-reservation/internal/domain"
	"github.com/metinatakli/seat-reservation/internal/events"
	"github.com/metinatakli/seat-reservation/internal/repository"
	"github.com/metinatakli/seat-reservation/internal/reservation"
	appvalidator "github.com/metinatakli/seat-reservation/internal/validator"
	"github.com/metinatakli/seat-reservation/internal/vcs"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

var (
	version = vcs.Version()
)

type Application struct {
	config    Config
	logger    *slog.Logger
	validator *validator.Validate
	showRepo  domain.ShowRepository
	engine    *reservation.Engine
}

type Config struct {
	Port             int
	Env              string
	Store            string
	ReserveTimeout   time.Duration
	MigrationsPath   string
	OtelCollectorUrl string
	AmqpURL          string
	DB               DBConfig
	Redis            RedisConfig
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

func NewApp(
	cfg Config,
	logger *slog.Logger,
	validator *validator.Validate,
	showRepo domain.ShowRepository,
	engine *reservation.Engine) *Application {

	return &Application{
		config:    cfg,
		logger:    logger,
		validator: validator,
		showRepo:  showRepo,
		engine:    engine,
	}
}

func Run() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	var cfg Config

	flag.IntVar(&cfg.Port, "port", envInt("PORT", 3000), "server port")
	flag.StringVar(&cfg.Env, "env", envString("ENV", "dev"), "Environment (dev|staging|prod)")
	flag.StringVar(&cfg.Store, "store", envString("STORE", StoreMemory), "Inventory store (memory|postgres|redis)")
	flag.DurationVar(&cfg.ReserveTimeout, "reserve-timeout", envDuration("RESERVE_TIMEOUT", 5*time.Second), "Deadline for booking and cancellation requests")
	flag.StringVar(&cfg.MigrationsPath, "migrations", envString("MIGRATIONS_PATH", "file://migrations"), "Migrations source applied at startup, empty to skip")
	flag.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", envString("OTEL_COLLECTOR_URL", ""), "OpenTelemetry collector gRPC endpoint")
	flag.StringVar(&cfg.AmqpURL, "amqp-url", envString("AMQP_URL", ""), "RabbitMQ URL for booking events, empty to disable")

	flag.StringVar(&cfg.DB.DSN, "db-dsn", envString("DB_DSN", ""), "PostgreSQL DSN")
	flag.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	flag.StringVar(&cfg.Redis.URL, "redis-url", envString("REDIS_URL", ""), "Redis URL")
	flag.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	app := &Application{
		config:    cfg,
		logger:    slog.New(slog.NewTextHandler(os.Stdout, nil)),
		validator: appvalidator.NewValidator(),
	}

	shutdownTelemetry, err := app.InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	var (
		db          *pgxpool.Pool
		redisClient *redis.Client
	)

	if cfg.DB.DSN != "" {
		db, err = NewDatabasePool(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		if cfg.MigrationsPath != "" {
			err = RunMigrations(cfg.DB.DSN, cfg.MigrationsPath)
			if err != nil {
				return err
			}
		}

		app.showRepo = repository.NewPostgresShowRepository(db)
	} else {
		app.showRepo = repository.NewMemoryShowRepository()
	}

	var store domain.InventoryStore

	switch cfg.Store {
	case StoreMemory:
		store = repository.NewMemoryInventoryStore()
	case StorePostgres:
		if db == nil {
			return errors.New("postgres store requires -db-dsn")
		}

		store = repository.NewPostgresInventoryStore(db)
	case StoreRedis:
		redisClient, err = NewRedisClient(cfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		store = repository.NewRedisInventoryStore(redisClient)
	default:
		return fmt.Errorf("unknown store %q", cfg.Store)
	}

	var publisher events.Publisher = events.NoopPublisher{}

	if cfg.AmqpURL != "" {
		rabbit, err := events.NewRabbitPublisher(cfg.AmqpURL, app.logger)
		if err != nil {
			return err
		}
		defer rabbit.Close()

		publisher = rabbit
	}

	app.engine = reservation.NewEngine(app.showRepo, store, app.validator, publisher, app.logger)

	return app.serve()
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	if err := redisotel.InstrumentTracing(rdb); err != nil {
		return nil, err
	}

	if err := redisotel.InstrumentMetrics(rdb); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) serve() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		shutdownError <- srv.Shutdown(ctx)
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env, "store", app.config.Store)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func envString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func envInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return value
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return value
}
