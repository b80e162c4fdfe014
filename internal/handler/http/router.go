package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterConfig carries the non-handler settings of the router.
type RouterConfig struct {
	AppName        string
	Version        string
	Env            string
	LogLevel       slog.Level
	AllowedOrigins []string
	// UploadsDir is served under /uploads; empty disables it.
	UploadsDir string
	// GoogleEnabled mounts the Google sign-in routes.
	GoogleEnabled bool
}

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth       AuthHandler
	Attendance AttendanceHandler
	Employee   EmployeeHandler
	Advance    AdvanceHandler
	Report     ReportHandler
	Dashboard  DashboardHandler
	User       UserHandler
	Settings   SettingsHandler
	Realtime   RealtimeHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.AppName),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if cfg.UploadsDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir)))
		r.Get("/uploads/*", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=86400")
			fs.ServeHTTP(w, r)
		})
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
			if cfg.GoogleEnabled {
				r.Get("/login/oauth/google", h.Auth.LoginWithGoogle)
				r.Get("/oauth/callback/google", h.Auth.OAuthCallbackGoogle)
			}
		})

		// SSE authenticates with ?token= since EventSource cannot set headers
		r.Get("/realtime/{table}", h.Realtime.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Get("/auth/me", h.Auth.Me)
			r.Post("/auth/sse-token", h.Auth.SSEToken)
			r.Put("/auth/password", h.User.ChangePassword)

			r.With(middleware.RequirePermission(user.PermissionDashboardView)).Get("/dashboard", h.Dashboard.GetDashboard)

			r.Route("/attendance", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionAttendanceScan)).Post("/scan", h.Attendance.Scan)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceView))
					r.Post("/compute", h.Attendance.Compute)
					r.Get("/", h.Attendance.List)
					r.Get("/today/{employeeID}", h.Attendance.Today)
					r.Get("/{id}", h.Attendance.Get)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceManage))
					r.Post("/", h.Attendance.Create)
					r.Put("/{id}", h.Attendance.Update)
					r.Delete("/{id}", h.Attendance.Delete)
				})
			})

			r.Route("/employees", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionEmployeeView))
					r.Get("/", h.Employee.List)
					r.Get("/matricule/{matricule}", h.Employee.GetByMatricule)
					r.Get("/{id}", h.Employee.Get)
					r.Get("/{id}/badge", h.Employee.Badge)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionEmployeeManage))
					r.Post("/", h.Employee.Create)
					r.Put("/{id}", h.Employee.Update)
					r.Delete("/{id}", h.Employee.Delete)
					r.Post("/{id}/photo", h.Employee.UploadPhoto)
					r.Delete("/{id}/photo", h.Employee.DeletePhoto)
				})
			})

			r.Route("/advances", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionAdvanceManage))
				r.Get("/", h.Advance.List)
				r.Post("/", h.Advance.Create)
				r.Get("/{id}", h.Advance.Get)
				r.Delete("/{id}", h.Advance.Delete)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionReportView))
				r.Get("/daily", h.Report.GetDailyReport)
				r.Get("/daily/export", h.Report.ExportDailyReport)
				r.Get("/monthly", h.Report.GetMonthlyReport)
				r.Get("/monthly/export", h.Report.ExportMonthlyReport)
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", h.Settings.Get)
				r.With(middleware.RequirePermission(user.PermissionSettingsManage)).Put("/", h.Settings.Update)
			})

			// Admin only
			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Use(middleware.RequirePermission(user.PermissionUserManage))
				r.Get("/", h.User.List)
				r.Post("/", h.User.Create)
				r.Put("/{id}/role", h.User.UpdateRole)
				r.Put("/{id}/password", h.User.ResetPassword)
				r.Delete("/{id}", h.User.Delete)
			})
		})
	})
	return r
}
