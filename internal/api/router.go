package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fundsetu/mfdata-backend/internal/api/handlers"
	custommiddleware "github.com/fundsetu/mfdata-backend/internal/api/middleware"
	"github.com/fundsetu/mfdata-backend/internal/config"
	"github.com/fundsetu/mfdata-backend/internal/service"
)

// NewRouter creates and configures the HTTP router.
// tokenAuth may be nil, in which case import endpoints are unprotected.
func NewRouter(
	systemService *service.SystemService,
	fundService *service.FundService,
	importService *service.ImportService,
	tokenAuth *custommiddleware.TokenAuth,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/funds", func(r chi.Router) {
			fundHandler := handlers.NewFundHandler(fundService)
			r.Get("/", fundHandler.GetAllFunds)
			r.Get("/amcs", fundHandler.GetAmcNames)
			r.Route("/{isin}", func(r chi.Router) {
				r.Get("/", fundHandler.GetFund)
				r.Get("/factsheet", fundHandler.GetFactSheet)
				r.Get("/returns", fundHandler.GetReturns)
				r.Get("/holdings", fundHandler.GetHoldings)
				r.Get("/nav", fundHandler.GetNavHistory)
				r.Get("/complete", fundHandler.GetFundComplete)
			})
		})

		// Import namespace, optionally token-protected
		r.Group(func(r chi.Router) {
			if tokenAuth != nil {
				r.Use(tokenAuth.Handler)
			}
			importHandler := handlers.NewImportHandler(importService, cfg.Import.MaxUploadBytes)
			r.Post("/upload", importHandler.Upload)
			r.Get("/imports", importHandler.GetRuns)
			r.Get("/imports/{id}", importHandler.GetRun)
		})
	})

	return r
}
