package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/ulule/limiter/v3"

	"github.com/workstack/workforce-management/internal/auth"
	"github.com/workstack/workforce-management/internal/calendar"
	"github.com/workstack/workforce-management/internal/expense"
	"github.com/workstack/workforce-management/internal/leave"
	"github.com/workstack/workforce-management/internal/report"
	"github.com/workstack/workforce-management/internal/timesheet"
	"github.com/workstack/workforce-management/internal/transport/middleware"
	"github.com/workstack/workforce-management/internal/transport/swagger"
)

// Handlers bundles every domain handler the router mounts.
type Handlers struct {
	Auth      *auth.Handler
	Calendar  *calendar.Handler
	Timesheet *timesheet.Handler
	Expense   *expense.Handler
	Leave     *leave.Handler
	Report    *report.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, tokens *auth.TokenService, handlers Handlers, rateLimiter *limiter.Limiter, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	if rateLimiter != nil {
		router.Use(middleware.RateLimit(rateLimiter, logger))
	}

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check routes
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if handlers.Auth != nil {
			r.Post("/auth/login", handlers.Auth.Login)
		}

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(auth.Middleware(tokens))

			if handlers.Timesheet != nil {
				pr.Route("/timesheets", func(tr chi.Router) {
					tr.Post("/", handlers.Timesheet.Create)
					tr.Get("/", handlers.Timesheet.ListOwn)
					tr.Get("/pending", handlers.Timesheet.Pending)
					tr.Post("/bulk-approve", handlers.Timesheet.BulkApprove)
					tr.Get("/{id}", handlers.Timesheet.Get)
					tr.Put("/{id}", handlers.Timesheet.Update)
					tr.Delete("/{id}", handlers.Timesheet.Delete)
					tr.Patch("/{id}/submit", handlers.Timesheet.Submit)
					tr.Patch("/{id}/approve", handlers.Timesheet.Approve)
					tr.Patch("/{id}/auto-approve", handlers.Timesheet.AutoApprove)
					tr.Patch("/{id}/reject", handlers.Timesheet.Reject)
				})
			}

			if handlers.Expense != nil {
				pr.Route("/expenses", func(er chi.Router) {
					er.Post("/", handlers.Expense.Create)
					er.Get("/", handlers.Expense.ListOwn)
					er.Get("/pending", handlers.Expense.Pending)
					er.Get("/{id}", handlers.Expense.Get)
					er.Put("/{id}", handlers.Expense.Update)
					er.Delete("/{id}", handlers.Expense.Delete)
					er.Patch("/{id}/submit", handlers.Expense.Submit)
					er.Patch("/{id}/approve", handlers.Expense.Approve)
					er.Patch("/{id}/auto-approve", handlers.Expense.AutoApprove)
					er.Patch("/{id}/reject", handlers.Expense.Reject)
				})
			}

			if handlers.Leave != nil {
				pr.Route("/leave", func(lr chi.Router) {
					lr.Post("/", handlers.Leave.Create)
					lr.Get("/", handlers.Leave.ListOwn)
					lr.Get("/pending", handlers.Leave.Pending)
					lr.Get("/preview", handlers.Leave.Preview)
					lr.Get("/balances", handlers.Leave.Balances)
					lr.Post("/balances/reset", handlers.Leave.ResetBalances)
					lr.Get("/{id}", handlers.Leave.Get)
					lr.Put("/{id}", handlers.Leave.Update)
					lr.Delete("/{id}", handlers.Leave.Delete)
					lr.Patch("/{id}/submit", handlers.Leave.Submit)
					lr.Patch("/{id}/approve", handlers.Leave.Approve)
					lr.Patch("/{id}/auto-approve", handlers.Leave.AutoApprove)
					lr.Patch("/{id}/reject", handlers.Leave.Reject)
				})
			}

			if handlers.Calendar != nil {
				pr.Route("/holidays", func(hr chi.Router) {
					hr.Post("/", handlers.Calendar.Create)
					hr.Get("/", handlers.Calendar.List)
				})
			}

			if handlers.Report != nil {
				pr.Route("/reports", func(rr chi.Router) {
					rr.Get("/leave", handlers.Report.Leave)
					rr.Get("/expenses", handlers.Report.Expenses)
				})
			}
		})
	})
}
