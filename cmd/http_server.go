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

	"github.com/yakey01/dokterku-sub009/internal"
	"github.com/yakey01/dokterku-sub009/internal/alertgateway"
	"github.com/yakey01/dokterku-sub009/internal/attendance"
	attendancepostgres "github.com/yakey01/dokterku-sub009/internal/attendance/postgres"
	"github.com/yakey01/dokterku-sub009/internal/auth"
	authpostgres "github.com/yakey01/dokterku-sub009/internal/auth/postgres"
	"github.com/yakey01/dokterku-sub009/internal/core/events"
	"github.com/yakey01/dokterku-sub009/internal/master"
	masterpostgres "github.com/yakey01/dokterku-sub009/internal/master/postgres"
	"github.com/yakey01/dokterku-sub009/internal/notification"
	notificationpostgres "github.com/yakey01/dokterku-sub009/internal/notification/postgres"
	"github.com/yakey01/dokterku-sub009/internal/tindakan"
	tindakanpostgres "github.com/yakey01/dokterku-sub009/internal/tindakan/postgres"
	"github.com/yakey01/dokterku-sub009/internal/transport"
	"github.com/yakey01/dokterku-sub009/internal/transport/rest"
	"github.com/yakey01/dokterku-sub009/internal/transport/swagger"
	"github.com/yakey01/dokterku-sub009/internal/user"
	userpostgres "github.com/yakey01/dokterku-sub009/internal/user/postgres"
	"github.com/yakey01/dokterku-sub009/pkg/logger"
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
	Config      *internal.Config
	DB          *sqlx.DB
	Router      *chi.Mux
	AlertClient *alertgateway.Client
	Logger      *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

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
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		deps.AlertClient.Shutdown()
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

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"), config.Observability.Logging.Level)
	log := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	// Fail fast on a broken API contract rather than at first swagger hit.
	if _, err := swagger.LoadSpec(context.Background(), "./api/openapi.yml"); err != nil {
		log.Warn("openapi spec could not be loaded", "error", err)
	}

	eventBus := events.NewEventBus(log)

	alertClient := alertgateway.NewClient(alertgateway.Config{
		WebhookURL:     config.Notifier.WebhookURL,
		APIKey:         config.Notifier.APIKey,
		SendTimeout:    config.Notifier.SendTimeout,
		MaxWorkers:     config.Notifier.MaxWorkers,
		JobQueueSize:   config.Notifier.JobQueueSize,
		WorkerPoolSize: config.Notifier.WorkerPoolSize,
	}, log)

	// Auth
	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authRepo := authpostgres.NewRepository(gormDB)
	authService := auth.NewService(authRepo, tokenGen)
	authHandler := auth.NewHandler(authService)
	rbac := auth.NewRBACAuthorization(auth.NewPermissionChecker(), log)

	// Users
	userService := user.NewService(userpostgres.NewUserRepository(gormDB))
	userHandler := user.NewHandler(userService)

	// Master data
	masterService := master.NewService(masterpostgres.NewMasterRepository(gormDB), log)
	masterHandler := master.NewHandler(transport.NewBaseHandler(log), masterService)

	// Notifications subscribe to domain events before anything publishes.
	notificationService := notification.NewService(notificationpostgres.NewNotificationRepository(gormDB), log)
	notificationHandler := notification.NewHandler(notificationService)
	notificationEvents := notification.NewEventHandler(notificationService, alertClient, log)
	notificationEvents.RegisterEventHandlers(eventBus)

	// Tindakan
	tindakanService := tindakan.NewService(
		tindakanpostgres.NewTindakanRepository(gormDB),
		masterService,
		userService,
		eventBus,
		log,
	)
	tindakanHandler := tindakan.NewHandler(tindakanService)

	// Attendance
	attendanceService := attendance.NewService(
		attendancepostgres.NewAttendanceRepository(gormDB),
		attendance.NoHolidays{},
		eventBus,
		log,
	)
	attendanceHandler := attendance.NewHandler(attendanceService)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, rest.Handlers{
		Auth:         authHandler,
		User:         userHandler,
		Master:       masterHandler,
		Tindakan:     tindakanHandler,
		Attendance:   attendanceHandler,
		Notification: notificationHandler,
	}, rbac, config.Server.AllowedOrigins, log)

	return &Dependencies{
		Config:      config,
		DB:          db,
		Router:      router,
		AlertClient: alertClient,
		Logger:      log,
	}, nil
}

// initDB opens the pgx-backed connection pool shared by the ORM layer.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
