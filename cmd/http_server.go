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
	"github.com/ulule/limiter/v3"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/workstack/workforce-management/internal"
	"github.com/workstack/workforce-management/internal/auth"
	authpg "github.com/workstack/workforce-management/internal/auth/postgres"
	"github.com/workstack/workforce-management/internal/calendar"
	calendarpg "github.com/workstack/workforce-management/internal/calendar/postgres"
	"github.com/workstack/workforce-management/internal/core/events"
	"github.com/workstack/workforce-management/internal/employee"
	employeepg "github.com/workstack/workforce-management/internal/employee/postgres"
	"github.com/workstack/workforce-management/internal/expense"
	expensepg "github.com/workstack/workforce-management/internal/expense/postgres"
	"github.com/workstack/workforce-management/internal/leave"
	leavepg "github.com/workstack/workforce-management/internal/leave/postgres"
	"github.com/workstack/workforce-management/internal/notification"
	"github.com/workstack/workforce-management/internal/report"
	reportpg "github.com/workstack/workforce-management/internal/report/postgres"
	"github.com/workstack/workforce-management/internal/timesheet"
	timesheetpg "github.com/workstack/workforce-management/internal/timesheet/postgres"
	"github.com/workstack/workforce-management/internal/transport/middleware"
	"github.com/workstack/workforce-management/internal/transport/rest"
	"github.com/workstack/workforce-management/pkg/logger"
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
	Handlers    rest.Handlers
	Tokens      *auth.TokenService
	RateLimiter *limiter.Limiter
	Logger      *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Tokens, deps.Handlers, deps.RateLimiter, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
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

func initializeDependencies() (*Dependencies, error) {
	cfg, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.Env)
	log := logger.L()

	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// All repositories share the pgx connection pool through GORM.
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ORM: %w", err)
	}

	tokens := auth.NewTokenService(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration)

	bus := events.NewBus(log)
	notifier := notification.NewNotifier(nil, log)
	notifier.Register(bus)

	directory := employee.NewService(employeepg.NewEmployeeRepository(gormDB), log)
	holidayRepo := calendarpg.NewHolidayRepository(gormDB)
	workCalendar := calendar.NewCalculator(holidayRepo, log)
	holidayService := calendar.NewHolidayService(holidayRepo, log)

	loginService := auth.NewLoginService(authpg.NewCredentialStore(gormDB), tokens, cfg.Security.BCryptCost, log)

	timesheetService := timesheet.NewService(timesheetpg.NewTimesheetRepository(gormDB), directory, bus, log)
	expenseService := expense.NewService(expensepg.NewExpenseRepository(gormDB), directory, expense.NewRules(cfg.Workflow), bus, log)

	ledger := leave.NewLedger(leavepg.NewBalanceRepository(gormDB), log)
	leaveService := leave.NewService(leavepg.NewLeaveRepository(gormDB), directory, workCalendar, ledger, bus, log)

	reportService := report.NewService(reportpg.NewReportSource(gormDB), directory, log)

	maxPage := cfg.Workflow.MaxPageSize
	handlers := rest.Handlers{
		Auth:      auth.NewHandler(loginService),
		Calendar:  calendar.NewHandler(holidayService),
		Timesheet: timesheet.NewHandler(timesheetService, maxPage),
		Expense:   expense.NewHandler(expenseService, maxPage),
		Leave:     leave.NewHandler(leaveService, maxPage),
		Report:    report.NewHandler(reportService),
	}

	var rateLimiter *limiter.Limiter
	if cfg.Server.RateLimit != "" {
		rate, err := limiter.NewRateFromFormatted(cfg.Server.RateLimit)
		if err != nil {
			return nil, fmt.Errorf("invalid rate limit %q: %w", cfg.Server.RateLimit, err)
		}
		rateLimiter = middleware.NewRateLimiter(rate)
	}

	return &Dependencies{
		Config:      cfg,
		DB:          db,
		Router:      chi.NewRouter(),
		Handlers:    handlers,
		Tokens:      tokens,
		RateLimiter: rateLimiter,
		Logger:      log,
	}, nil
}

// initDB opens the pgx-backed connection pool and verifies it.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
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
