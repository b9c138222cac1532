package http

import (
	"net/http"

	"github.com/inhabitapp/inhabit/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the HTTP handler serving the habit API.
//
// Routes:
//
//	POST /api/auth/register             → authHandler.Register
//	POST /api/auth/login                → authHandler.Login
//	POST /api/auth/logout               → authHandler.Logout   (bearer)
//	GET  /api/auth/me                   → authHandler.Me       (bearer)
//	GET  /api/habits                    → habitsHandler.List   (bearer)
//	POST /api/habits                    → habitsHandler.Create (bearer)
//	GET  /api/habits/categories         → habitsHandler.Categories (bearer)
//	GET  /api/habits/{id}               → habitsHandler.Get    (bearer)
//	PUT  /api/habits/{id}               → habitsHandler.Update (bearer)
//	DELETE /api/habits/{id}             → habitsHandler.Delete (bearer)
//	POST /api/habits/{id}/toggle        → habitsHandler.Toggle (bearer)
//	POST /api/habits/{id}/archive       → habitsHandler.Archive (bearer)
//	GET  /api/habits/{id}/completions   → habitsHandler.Completions (bearer)
//
// Middleware chain (applied in order):
//  1. AllowContentType("application/json") — rejects non-JSON bodies
//  2. WithRequestLogging(logger)           — logs incoming requests
//  3. BearerAuth (protected group only)    — resolves the bearer token
func NewRouter(
	authHandler *AuthHandler,
	habitsHandler *HabitsHandler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected group: requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(authHandler.AuthService))

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/me", authHandler.Me)

			r.Route("/habits", func(r chi.Router) {
				r.Get("/", habitsHandler.List)
				r.Post("/", habitsHandler.Create)
				r.Get("/categories", habitsHandler.Categories)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", habitsHandler.Get)
					r.Put("/", habitsHandler.Update)
					r.Delete("/", habitsHandler.Delete)
					r.Post("/toggle", habitsHandler.Toggle)
					r.Post("/archive", habitsHandler.Archive)
					r.Get("/completions", habitsHandler.Completions)
				})
			})
		})
	})

	return r
}
