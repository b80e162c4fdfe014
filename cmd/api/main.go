package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/attendance-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/notify"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/oauth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/realtime"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/session"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-backend-go/internal/service/attendance"
	serviceAdvance "github.com/cmlabs-hris/attendance-backend-go/internal/service/advance"
	serviceAuth "github.com/cmlabs-hris/attendance-backend-go/internal/service/auth"
	dashboardService "github.com/cmlabs-hris/attendance-backend-go/internal/service/dashboard"
	employeeService "github.com/cmlabs-hris/attendance-backend-go/internal/service/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/service/file"
	reportService "github.com/cmlabs-hris/attendance-backend-go/internal/service/report"
	settingsService "github.com/cmlabs-hris/attendance-backend-go/internal/service/settings"
	userService "github.com/cmlabs-hris/attendance-backend-go/internal/service/user"
	"github.com/cmlabs-hris/attendance-backend-go/migrations"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()})).With(
		slog.String("app", "attendance-backend"),
		slog.String("version", cfg.App.Version),
	))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.App.AutoMigrate {
		applied, err := migrations.Apply(ctx, db.Pool)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		slog.Info("migrations up to date", "applied", len(applied))
	}

	defaultWindow, err := cfg.Window()
	if err != nil {
		return err
	}
	loc := cfg.Location()

	// Repositories
	tx := postgresql.NewTransactor(db)
	userRepo := postgresql.NewUserRepository(db)
	JWTRepository := postgresql.NewJWTRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	advanceRepo := postgresql.NewAdvanceRepository(db)
	settingsRepo := postgresql.NewSettingsRepository(db)
	dashboardRepo := postgresql.NewDashboardRepository(db)

	// Realtime: changes go out through pg_notify and come back through the
	// listener, so every instance's hub sees every change.
	hub := realtime.NewHub()
	publisher := realtime.NewPGNotifier(db.Pool)
	go realtime.NewListener(db.Pool, hub).Run(ctx)

	var notifier notify.Notifier = notify.Noop{}
	if cfg.Telegram.Enabled() {
		telegram, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			slog.Warn("telegram disabled", "error", err)
		} else {
			notifier = telegram
		}
	}

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	if err != nil {
		return fmt.Errorf("initialize local storage: %w", err)
	}

	sessions := session.NewBroadcaster(
		session.ListenerFunc(func(_ context.Context, e session.Event) {
			slog.Info("session changed", "kind", e.Kind, "user_id", e.Session.UserID, "role", e.Session.Role)
		}),
		session.ListenerFunc(func(ctx context.Context, e session.Event) {
			if err := publisher.Publish(ctx, realtime.NewChange(realtime.TableSessions, realtime.ActionUpdate, e.Session.UserID)); err != nil {
				slog.Warn("failed to publish session change", "error", err)
			}
		}),
	)

	// Services
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration, cfg.App.IsProduction())
	var googleService oauth.GoogleService
	if cfg.OAuth2Google.Enabled() {
		googleService = oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)
	}

	fileService := file.NewFileService(fileStorage)
	settingsSvc := settingsService.NewSettingsService(settingsRepo, defaultWindow, cfg.Timekeeping.OvertimeHourlyRate, publisher)
	authSvc := serviceAuth.NewAuthService(tx, userRepo, JWTService, JWTRepository, sessions)
	userSvc := userService.NewUserService(tx, userRepo)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo, fileService, publisher)
	attendanceSvc := attendanceService.NewAttendanceService(tx, attendanceRepo, employeeRepo, settingsSvc, publisher, notifier, loc)
	advanceSvc := serviceAdvance.NewAdvanceService(advanceRepo, employeeRepo, publisher)
	reportSvc := reportService.NewReportService(employeeRepo, attendanceRepo, advanceRepo, settingsSvc)
	dashboardSvc := dashboardService.NewDashboardService(dashboardRepo, employeeRepo, attendanceRepo, advanceRepo, settingsSvc, loc)

	allowedOrigins := cfg.App.AllowedOrigins
	if len(allowedOrigins) == 0 && cfg.App.FrontendURL != "" {
		allowedOrigins = []string{cfg.App.FrontendURL}
	}

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		AppName:        "attendance-backend",
		Version:        cfg.App.Version,
		Env:            cfg.App.Env,
		LogLevel:       cfg.LogLevel(),
		AllowedOrigins: allowedOrigins,
		UploadsDir:     cfg.Storage.BasePath,
		GoogleEnabled:  googleService != nil,
	}, JWTService, appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(JWTService, authSvc, googleService, cfg.App.FrontendURL, cfg.App.IsProduction()),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
		Employee:   appHTTP.NewEmployeeHandler(employeeSvc),
		Advance:    appHTTP.NewAdvanceHandler(advanceSvc),
		Report:     appHTTP.NewReportHandler(reportSvc),
		Dashboard:  appHTTP.NewDashboardHandler(dashboardSvc),
		User:       appHTTP.NewUserHandler(userSvc),
		Settings:   appHTTP.NewSettingsHandler(settingsSvc),
		Realtime:   appHTTP.NewRealtimeHandler(JWTService, hub),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Open SSE streams end with the signal context instead of holding up Shutdown
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "env", cfg.App.Env, "timezone", loc.String())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
