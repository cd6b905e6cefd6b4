// Package progression предоставляет маршруты для основного приложения.
package progression

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/indianduo/progression-engine/internal/http/handlers/auth/login"
	"github.com/indianduo/progression-engine/internal/http/handlers/auth/register"
	"github.com/indianduo/progression-engine/internal/http/handlers/health"
	heartsrefill "github.com/indianduo/progression-engine/internal/http/handlers/hearts/refill"
	languagelist "github.com/indianduo/progression-engine/internal/http/handlers/language/list"
	lessoncomplete "github.com/indianduo/progression-engine/internal/http/handlers/lesson/complete"
	lessonfail "github.com/indianduo/progression-engine/internal/http/handlers/lesson/fail"
	lessonlist "github.com/indianduo/progression-engine/internal/http/handlers/lesson/list"
	"github.com/indianduo/progression-engine/internal/http/handlers/progress/snapshot"
	subcancel "github.com/indianduo/progression-engine/internal/http/handlers/subscription/cancel"
	subcurrent "github.com/indianduo/progression-engine/internal/http/handlers/subscription/current"
	subplans "github.com/indianduo/progression-engine/internal/http/handlers/subscription/plans"
	subsubscribe "github.com/indianduo/progression-engine/internal/http/handlers/subscription/subscribe"
	"github.com/indianduo/progression-engine/internal/http/middlewarectx"
	authservice "github.com/indianduo/progression-engine/internal/services/auth"
	progressionservice "github.com/indianduo/progression-engine/internal/services/progression"
	subscriptionservice "github.com/indianduo/progression-engine/internal/services/subscription"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	authService *authservice.Service,
	progressionService *progressionservice.Service,
	subscriptionService *subscriptionservice.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Get("/health", health.New(logger).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/progress", snapshot.New(logger, progressionService).ServeHTTP)
			r.Get("/languages", languagelist.New(logger, progressionService).ServeHTTP)
			r.Get("/lessons", lessonlist.New(logger, progressionService).ServeHTTP)
			r.Post("/lessons/{id}/complete", lessoncomplete.New(logger, progressionService).ServeHTTP)
			r.Post("/lessons/{id}/fail", lessonfail.New(logger, progressionService).ServeHTTP)
			r.Post("/hearts/refill", heartsrefill.New(logger, progressionService).ServeHTTP)
			r.Get("/subscription/plans", subplans.New(logger, subscriptionService).ServeHTTP)
			r.Get("/subscription/current", subcurrent.New(logger, subscriptionService).ServeHTTP)
			r.Post("/subscription/subscribe", subsubscribe.New(logger, subscriptionService).ServeHTTP)
			r.Post("/subscription/cancel", subcancel.New(logger, subscriptionService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
