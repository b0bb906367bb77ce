package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/taskdesk-api/internal/api"
	apiMiddleware "github.com/phrazzld/taskdesk-api/internal/api/middleware"
	"github.com/phrazzld/taskdesk-api/internal/platform/metrics"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(apiMiddleware.NewCORSMiddleware(app.config.Server.CORSAllowedOrigins))
	r.Use(app.metrics.Middleware)

	authHandler := api.NewAuthHandler(app.userService, app.metrics, app.logger)
	userHandler := api.NewUserHandler(app.userService, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	login := http.Handler(http.HandlerFunc(authHandler.Login))
	if app.loginLimiter != nil {
		limiter := apiMiddleware.NewRateLimitMiddleware(app.loginLimiter,
			apiMiddleware.WithThrottleHook(func() { app.metrics.RecordLogin(metrics.LoginThrottled) }))
		login = limiter.Limit(login)
	}

	// protected registers the authenticated /api routes.
	protected := func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/students", userHandler.ListStudents)

		r.Post("/tasks", taskHandler.CreateTask)
		r.Get("/tasks", taskHandler.ListTasks)
		r.Get("/tasks/{id}", taskHandler.GetTask)
		r.Put("/tasks/{id}", taskHandler.UpdateTask)
		r.Delete("/tasks/{id}", taskHandler.DeleteTask)
		r.Put("/tasks/{id}/status", taskHandler.SetStatus)
		r.Put("/tasks/{id}/verify", taskHandler.VerifyTask)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Method(http.MethodPost, "/auth/login", login)
		r.Group(protected)
	})

	// Unversioned paths kept for existing clients.
	r.Post("/register", authHandler.Register)
	r.Method(http.MethodPost, "/login", login)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Get("/students", userHandler.ListStudents)
		r.Post("/tasks", taskHandler.CreateTask)
		r.Get("/tasks", taskHandler.ListTasks)
		r.Put("/tasks/{id}", taskHandler.UpdateTask)
		r.Delete("/tasks/{id}", taskHandler.DeleteTask)
		r.Put("/status/{id}", taskHandler.SetStatus)
		r.Put("/verify/{id}", taskHandler.VerifyTask)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	return r
}
