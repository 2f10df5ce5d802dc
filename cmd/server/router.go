package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/arborhq/arbor-api/internal/api"
	apiMiddleware "github.com/arborhq/arbor-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.passwordVerifier)
	identityHandler := api.NewIdentityHandler(app.identityService)
	goalHandler := api.NewGoalHandler(app.goalService)
	journalHandler := api.NewJournalHandler(app.journalService)
	documentHandler := api.NewDocumentHandler(app.documentService, app.config.Storage.MaxUploadSizeBytes)
	insightHandler := api.NewInsightHandler(app.insightService)
	pathHandler := api.NewPathHandler(app.pathService)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Identity seed endpoints
			r.Post("/identity", identityHandler.CreateSeed)
			r.Get("/identity", identityHandler.ListSeeds)
			r.Get("/identity/active", identityHandler.GetActiveSeed)
			r.Post("/identity/{id}/activate", identityHandler.ActivateSeed)

			// Goal endpoints
			r.Post("/goals", goalHandler.CreateGoal)
			r.Get("/goals", goalHandler.ListGoals)
			r.Get("/goals/{id}", goalHandler.GetGoal)
			r.Patch("/goals/{id}", goalHandler.UpdateGoal)
			r.Post("/goals/{id}/status", goalHandler.UpdateGoalStatus)
			r.Delete("/goals/{id}", goalHandler.DeleteGoal)

			// Journal endpoints
			r.Post("/journal", journalHandler.CreateEntry)
			r.Get("/journal", journalHandler.ListEntries)
			r.Get("/journal/{id}", journalHandler.GetEntry)
			r.Post("/journal/{id}/reflect", journalHandler.ReflectOnEntry)
			r.Delete("/journal/{id}", journalHandler.DeleteEntry)

			// Document endpoints
			r.Post("/documents/upload", documentHandler.UploadDocument)
			r.Post("/documents/url", documentHandler.SubmitURL)
			r.Get("/documents", documentHandler.ListDocuments)
			r.Get("/documents/{id}", documentHandler.GetDocument)
			r.Delete("/documents/{id}", documentHandler.DeleteDocument)

			// Insight endpoints
			r.Post("/insights", insightHandler.CreateInsight)
			r.Post("/insights/search", insightHandler.SearchInsights)
			r.Get("/insights", insightHandler.ListInsights)
			r.Get("/insights/{id}", insightHandler.GetInsight)
			r.Delete("/insights/{id}", insightHandler.DeleteInsight)

			// Learning path endpoints
			r.Post("/paths", pathHandler.CreatePath)
			r.Get("/paths", pathHandler.ListPaths)
			r.Get("/paths/{id}", pathHandler.GetPath)
			r.Post("/paths/{id}/days/{dayID}/complete", pathHandler.CompleteDay)
			r.Delete("/paths/{id}", pathHandler.DeletePath)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
