package router

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/GregMSThompson/explorer-guide/internal/handlers"
	"github.com/GregMSThompson/explorer-guide/internal/middleware"
)

func NewRouter(deps *handlers.Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggerMiddleware(deps.Log).LoggerMiddleware)
	r.Use(middleware.NewRecoverer(deps.ResponseHandler).Recoverer)

	rh := handlers.NewRootHandlers(deps)
	r.Get("/", rh.Welcome)
	r.Get("/healthz", rh.Health)

	gh := handlers.NewGuideHandlers(deps)
	r.Route("/api/v1", func(r chi.Router) {
		if deps.Firebase != nil {
			r.Use(middleware.NewMiddleware(deps.Firebase, deps.ResponseHandler).FirebaseAuth)
		}
		r.Mount("/", gh.GuideRoutes())
	})
	return r
}
