package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/prasetyadi/hr-platform/internal"
	"github.com/prasetyadi/hr-platform/internal/auth"
	authpostgres "github.com/prasetyadi/hr-platform/internal/auth/postgres"
	"github.com/prasetyadi/hr-platform/internal/core/events"
	"github.com/prasetyadi/hr-platform/internal/leave"
	leavepostgres "github.com/prasetyadi/hr-platform/internal/leave/postgres"
	"github.com/prasetyadi/hr-platform/internal/personnel"
	personnelpostgres "github.com/prasetyadi/hr-platform/internal/personnel/postgres"
	"github.com/prasetyadi/hr-platform/internal/transport/rest"
	"github.com/prasetyadi/hr-platform/internal/user"
	userpostgres "github.com/prasetyadi/hr-platform/internal/user/postgres"
	"github.com/prasetyadi/hr-platform/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	GormDB   *gorm.DB
	Router   *chi.Mux
	Logger   *slog.Logger
	EventBus *events.EventBus
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) {
	cfg := deps.Config

	tokenGen := auth.NewJWTTokenGenerator(
		cfg.Security.JWTSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)

	authRepo := authpostgres.NewRepository(deps.GormDB)
	authService := auth.NewService(authRepo, authRepo, tokenGen, cfg.Security.SessionTimeout, deps.Logger)
	authHandler := auth.NewHandler(authService)
	guard := auth.NewGuard(deps.Logger)

	userRepo := userpostgres.NewUserRepository(deps.DB)
	userService := user.NewService(userRepo, deps.Logger)
	userHandler := user.NewHandler(userService)

	personnelRepo := personnelpostgres.NewPersonnelRepository(deps.GormDB)
	personnelService := personnel.NewService(personnelRepo, deps.Logger)
	personnelHandler := personnel.NewHandler(personnelService)

	leaveService := leave.NewService(
		leavepostgres.NewLeaveRepository(deps.GormDB),
		leavepostgres.NewBalanceRepository(deps.GormDB),
		leavepostgres.NewTypeRepository(deps.GormDB),
		leavepostgres.NewMonetizationRepository(deps.GormDB),
		deps.EventBus,
		deps.Logger,
	)
	leaveHandler := leave.NewHandler(leaveService, personnelService)

	registerEventHandlers(deps.EventBus, deps.Logger)

	rest.RegisterAllRoutes(
		deps.Router,
		deps.DB.DB,
		authHandler,
		guard,
		userHandler,
		personnelHandler,
		leaveHandler,
		deps.Logger,
	)
}

// registerEventHandlers subscribes the audit trail to leave lifecycle events.
func registerEventHandlers(bus *events.EventBus, lg *slog.Logger) {
	audit := func(ctx context.Context, event events.Event) error {
		lg.Info("audit",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
			"payload", event.Payload())
		return nil
	}

	for _, eventType := range []string{
		events.EventLeaveApplied,
		events.EventLeaveApproved,
		events.EventLeaveRejected,
		events.EventLeaveCancelled,
		events.EventMonetizationApproved,
	} {
		bus.Subscribe(eventType, audit)
	}
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	return &Dependencies{
		Config:   config,
		Logger:   lg,
		DB:       db,
		GormDB:   gormDB,
		Router:   chi.NewRouter(),
		EventBus: events.NewEventBus(lg),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm layers GORM over the already-open pool so both access paths share
// one set of connections.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
}
