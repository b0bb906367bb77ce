package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/phrazzld/taskdesk-api/internal/api/middleware"
	"github.com/phrazzld/taskdesk-api/internal/api/shared"
	"github.com/phrazzld/taskdesk-api/internal/config"
	"github.com/phrazzld/taskdesk-api/internal/events"
	"github.com/phrazzld/taskdesk-api/internal/platform/memory"
	"github.com/phrazzld/taskdesk-api/internal/platform/metrics"
	"github.com/phrazzld/taskdesk-api/internal/platform/postgres"
	"github.com/phrazzld/taskdesk-api/internal/platform/rabbitmq"
	"github.com/phrazzld/taskdesk-api/internal/platform/redis"
	"github.com/phrazzld/taskdesk-api/internal/service"
	"github.com/phrazzld/taskdesk-api/internal/service/auth"
	"github.com/phrazzld/taskdesk-api/internal/store"
)

// application holds the wired dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger

	db        *sql.DB
	userStore store.UserStore
	taskStore store.TaskStore

	jwtService  auth.JWTService
	userService service.UserService
	taskService service.TaskService

	emitter      *events.InMemoryEventEmitter
	metrics      *metrics.Metrics
	loginLimiter middleware.Limiter

	// closers are released in reverse order by cleanup.
	closers []io.Closer
}

// newApplication wires storage, services and optional infrastructure from cfg.
// Redis and RabbitMQ are only dialed when their addresses are configured.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &application{config: cfg, logger: logger}

	if err := app.setupStorage(ctx); err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app.metrics = metrics.New(reg)

	app.emitter = events.NewInMemoryEventEmitter(logger)
	app.emitter.RegisterHandler(app.metrics)
	if err := app.setupPublisher(); err != nil {
		app.cleanup()
		return nil, err
	}

	if err := app.setupLimiter(ctx); err != nil {
		app.cleanup()
		return nil, err
	}

	if err := app.setupServices(); err != nil {
		app.cleanup()
		return nil, err
	}

	return app, nil
}

// setupStorage selects the postgres or in-memory stores.
func (app *application) setupStorage(ctx context.Context) error {
	switch app.config.Database.Storage {
	case config.StorageMemory:
		users := memory.NewUserStore()
		app.userStore = users
		app.taskStore = memory.NewTaskStore(users)
		app.logger.Warn("Using in-memory storage; data is lost on restart")
		return nil
	case config.StoragePostgres:
		db, err := setupAppDatabase(ctx, app.config.Database, app.logger)
		if err != nil {
			return err
		}
		app.db = db
		app.closers = append(app.closers, db)
		app.userStore = postgres.NewPostgresUserStore(db)
		app.taskStore = postgres.NewPostgresTaskStore(db)
		return nil
	default:
		return fmt.Errorf("unknown storage backend %q", app.config.Database.Storage)
	}
}

// setupPublisher forwards lifecycle events to RabbitMQ when a broker is configured.
func (app *application) setupPublisher() error {
	if app.config.Events.AMQPURL == "" {
		return nil
	}

	conn, ch, err := rabbitmq.Connect(app.config.Events.AMQPURL, app.config.Events.Exchange)
	if err != nil {
		return err
	}
	app.closers = append(app.closers, conn, ch)

	app.emitter.RegisterHandler(rabbitmq.NewPublisher(ch, app.config.Events.Exchange, app.logger,
		rabbitmq.WithTraceID(shared.GetTraceID)))
	app.logger.Info("Publishing task events", "exchange", app.config.Events.Exchange)
	return nil
}

// setupLimiter enables login throttling when Redis is configured.
func (app *application) setupLimiter(ctx context.Context) error {
	if app.config.Redis.Addr == "" {
		return nil
	}

	client, err := redis.NewClient(ctx, app.config.Redis)
	if err != nil {
		return err
	}
	app.closers = append(app.closers, client)

	app.loginLimiter = redis.NewFixedWindowLimiter(client, "login",
		app.config.Redis.LoginLimit, app.config.Redis.LoginWindow())
	app.logger.Info("Login throttling enabled",
		"limit", app.config.Redis.LoginLimit,
		"window", app.config.Redis.LoginWindow())
	return nil
}

func (app *application) setupServices() error {
	jwtService, err := auth.NewJWTService(app.config.Auth)
	if err != nil {
		return fmt.Errorf("failed to create JWT service: %w", err)
	}
	app.jwtService = jwtService

	userService, err := service.NewUserService(
		app.userStore,
		jwtService,
		auth.NewBcryptHasher(app.config.Auth.BcryptCost),
		auth.NewBcryptVerifier(),
		app.db,
		app.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create user service: %w", err)
	}
	app.userService = userService

	taskService, err := service.NewTaskService(app.taskStore, app.userStore, app.emitter, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create task service: %w", err)
	}
	app.taskService = taskService

	return nil
}

// seedAdmin creates the configured admin account.
func (app *application) seedAdmin(ctx context.Context) error {
	seed := app.config.Seed
	if seed.AdminEmail == "" || seed.AdminPassword == "" {
		return fmt.Errorf("seed.admin_email and seed.admin_password are required to seed an admin")
	}
	name := seed.AdminName
	if name == "" {
		name = "Admin"
	}

	admin, err := app.userService.EnsureAdmin(ctx, name, seed.AdminEmail, seed.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	app.logger.Info("Admin account ready", "user_id", admin.ID)
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			app.logger.Error("Error closing resource", "error", err)
		}
	}
	app.closers = nil

	app.logger.Info("Application shutdown completed")
}
