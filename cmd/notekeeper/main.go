package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	authmemory "notekeeper/internal/auth/adapters/memory"
	authpostgres "notekeeper/internal/auth/adapters/postgres"
	authservices "notekeeper/internal/auth/adapters/services"
	authapp "notekeeper/internal/auth/app"
	"notekeeper/internal/auth/ports/repositories"
	"notekeeper/internal/config"
	"notekeeper/internal/db"
	grpcserver "notekeeper/internal/gateway/adapters/grpc"
	httpserver "notekeeper/internal/gateway/adapters/http"
	"notekeeper/internal/gateway/ratelimit"
	notescache "notekeeper/internal/notes/adapters/cache"
	notesmemory "notekeeper/internal/notes/adapters/memory"
	notespostgres "notekeeper/internal/notes/adapters/postgres"
	notesapp "notekeeper/internal/notes/app"
	noterepos "notekeeper/internal/notes/ports/repositories"
	"notekeeper/internal/resilience"
	redisdb "notekeeper/pkg/db/redis"
	"notekeeper/pkg/logger"
	"notekeeper/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "NOTEKEEPER_LOGGER_MODE"
	EnvLoggerLevel = "NOTEKEEPER_LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrConnectDatabase      = "failed to connect to database"
	ErrCreateRedisClient    = "failed to create Redis client"
	ErrStartHTTPServer      = "failed to start HTTP server"
	ErrStartGRPCServer      = "failed to start gRPC server"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "notekeeper service started"
	LogServiceShutdownDone = "notekeeper service shutdown complete"
	LogInitStorage         = "initializing storage"
	LogInitCache           = "initializing cache"
	LogInitServices        = "initializing services"
	LogStartingHTTP        = "starting HTTP server"
	LogStoppingHTTP        = "stopping HTTP server"
	LogClosingRedis        = "closing Redis connection"
	LogStoppingLimiter     = "stopping rate limiter"
)

type storage struct {
	users  repositories.UserRepository
	notes  noterepos.NoteRepository
	health httpserver.HealthCheck
	close  shutdown.Hook
}

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := log.Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		cfg, err := config.Load(ctx)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", string(cfg.Logging.GetEnvironment())),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		log.Info(ctx, LogInitStorage, zap.String("driver", cfg.Storage.Driver))
		store, err := openStorage(ctx, cfg)
		if err != nil {
			log.Error(ctx, ErrConnectDatabase, zap.Error(err))
			exitCode = 1
			return
		}

		var redisClient *redis.Client
		if cfg.Redis.Enabled {
			log.Info(ctx, LogInitCache)
			redisClient, err = redisdb.NewClient(ctx, cfg.Redis.ClientConfig())
			if err != nil {
				log.Error(ctx, ErrCreateRedisClient, zap.Error(err))
				if closeErr := store.close(ctx); closeErr != nil {
					log.Warn(ctx, closeErr.Error())
				}
				exitCode = 1
				return
			}
			store.notes = notescache.NewCachedNoteRepository(
				store.notes, notescache.NewRedisCache(redisClient, cfg.Redis.TTL), cfg.Redis.TTL)
		}

		log.Info(ctx, LogInitServices)
		factory := authservices.NewServiceFactory(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.BCryptCost)
		limiter := ratelimit.New(ratelimit.Config{RPS: cfg.RateLimit.RPS, Burst: cfg.RateLimit.Burst})

		app := httpserver.NewApp(cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout)
		httpserver.SetupRouter(app, httpserver.Deps{
			Auth:    authapp.NewAuthUseCase(store.users, factory.PasswordService(), factory.TokenService()),
			Gate:    authapp.NewGate(factory.TokenService(), store.users),
			Notes:   notesapp.NewNoteUseCase(store.notes),
			Limiter: limiter,
			Health:  store.health,
		})

		log.Info(ctx, LogStartingHTTP, zap.String("address", cfg.HTTP.GetAddress()))
		go func() {
			if err := app.Listen(cfg.HTTP.GetAddress()); err != nil {
				log.Error(ctx, ErrStartHTTPServer, zap.Error(err))
			}
		}()

		grpcSrv := grpcserver.New(&cfg.GRPC)
		if err := grpcSrv.Start(ctx); err != nil {
			log.Error(ctx, ErrStartGRPCServer, zap.Error(err))
		}

		shutdown.Wait(ctx, cfg.Shutdown.GetTimeout(),
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingHTTP)
				return app.ShutdownWithContext(ctx)
			},
			grpcSrv.Stop,
		)

		// Хранилища закрываются после того, как серверы перестали принимать запросы.
		shutdown.Run(ctx, cfg.Shutdown.GetTimeout(),
			store.close,
			func(ctx context.Context) error {
				if redisClient == nil {
					return nil
				}
				log.Info(ctx, LogClosingRedis)
				return redisClient.Close()
			},
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingLimiter)
				limiter.Stop()
				return nil
			},
		)

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		return &storage{
			users: authmemory.NewUserRepository(),
			notes: notesmemory.NewNoteRepository(),
			close: func(context.Context) error { return nil },
		}, nil
	}

	retry := resilience.NewRetry("postgres-connect", resilience.StartupRetryConfig())
	database, err := resilience.Do(ctx, retry, func(ctx context.Context) (*db.DB, error) {
		return db.New(ctx, &cfg.Postgres)
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	return &storage{
		users:  authpostgres.NewRepositoryFactory(database.Pool()).UserRepository(),
		notes:  notespostgres.NewRepositoryFactory(database.Pool()).NoteRepository(),
		health: database.Ping,
		close: func(ctx context.Context) error {
			database.Close(ctx)
			return nil
		},
	}, nil
}
