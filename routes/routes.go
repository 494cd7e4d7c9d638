// Package routes builds the HTTP router. Which class a path falls into
// (public, platform, tenant scoped) is decided by the tenancy pipeline, not
// here; this file only binds paths to handlers.
package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/oneclass/platform/app"
	"github.com/oneclass/platform/middleware"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS middleware. Credentials stay on because the session rides in a
	// cookie; school frontends call the API from their own subdomain.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID", "X-School-ID", "X-School-Name", "X-School-Tier"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Tenant resolution runs on every request; the route class decides what
	// it demands.
	r.Use(deps.Tenancy.Pipeline)

	requireSession := middleware.RequireSession(deps.Logger)

	// Health check endpoints
	r.Get("/healthz", deps.HealthHandler.HandleHealth)
	r.Get("/readyz", deps.HealthHandler.HandleReadiness)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", deps.HealthHandler.HandleStatus)

		// Session endpoints
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", deps.AuthHandler.HandleLogin)
			r.Post("/logout", deps.AuthHandler.HandleLogout)
			r.With(requireSession).Get("/me", deps.AuthHandler.HandleMe)
		})

		// School onboarding and the public directory
		r.Route("/schools", func(r chi.Router) {
			r.Post("/register", deps.SchoolHandler.HandleRegister)
			r.Post("/validate-subdomain", deps.SchoolHandler.HandleValidateSubdomain)
			r.Post("/suggest-subdomains", deps.SchoolHandler.HandleSuggestSubdomains)
			r.Get("/directory", deps.SchoolHandler.HandleDirectory)
			r.Get("/by-subdomain/{subdomain}", deps.SchoolHandler.HandleBySubdomain)
		})

		// Platform operator endpoints; the pipeline already required a
		// platform_admin credential for everything under /platform
		r.Route("/platform", func(r chi.Router) {
			r.Route("/schools", func(r chi.Router) {
				r.Get("/", deps.PlatformHandler.HandleListSchools)
				r.Post("/", deps.PlatformHandler.HandleCreateSchool)
				r.Get("/{id}", deps.PlatformHandler.HandleGetSchool)
				r.Patch("/{id}/status", deps.PlatformHandler.HandleUpdateStatus)
				r.Patch("/{id}/subscription", deps.PlatformHandler.HandleUpdateSubscription)
				r.Put("/{id}/modules", deps.PlatformHandler.HandleSetModules)
			})
			r.Get("/audit-logs", deps.PlatformHandler.HandleListAuditLogs)
		})

		// Student information system
		r.Route("/sis/students", func(r chi.Router) {
			r.Use(requireSession)
			r.Get("/", deps.StudentHandler.HandleList)
			r.Post("/", deps.StudentHandler.HandleCreate)
			r.Get("/{id}", deps.StudentHandler.HandleGet)
			r.Put("/{id}", deps.StudentHandler.HandleUpdate)
			r.Delete("/{id}", deps.StudentHandler.HandleDelete)
		})

		// Fees and invoicing
		r.Route("/finance/invoices", func(r chi.Router) {
			r.Use(requireSession)
			r.Get("/", deps.InvoiceHandler.HandleList)
			r.Post("/", deps.InvoiceHandler.HandleCreate)
			r.Get("/{id}", deps.InvoiceHandler.HandleGet)
			r.Post("/{id}/void", deps.InvoiceHandler.HandleVoid)
		})

		// Classes and timetabling
		r.Route("/academic/classes", func(r chi.Router) {
			r.Use(requireSession)
			r.Get("/", deps.ClassHandler.HandleList)
			r.Post("/", deps.ClassHandler.HandleCreate)
			r.Get("/{id}", deps.ClassHandler.HandleGet)
			r.Put("/{id}", deps.ClassHandler.HandleUpdate)
			r.Delete("/{id}", deps.ClassHandler.HandleDelete)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not_found","message":"Endpoint not found"}`))
	})

	return r
}
