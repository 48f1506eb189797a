package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/GregMSThompson/insights-dashboard/internal/handlers"
	"github.com/GregMSThompson/insights-dashboard/internal/middleware"
)

func NewRouter(deps *handlers.Deps) chi.Router {
	r := chi.NewRouter()

	lm := middleware.NewLoggerMiddleware(deps.Log)
	r.Use(chimiddleware.RequestID)
	r.Use(lm.LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mw := middleware.NewMiddleware(deps.Firebase)
	wh := handlers.NewWidgetHandlers(deps)
	ih := handlers.NewInsightHandlers(deps)
	sh := handlers.NewSessionHandlers(deps)

	r.Group(func(r chi.Router) {
		r.Use(mw.FirebaseAuth)
		r.Route("/departments/{departmentId}", func(r chi.Router) {
			r.Mount("/widgets", wh.WidgetRoutes())
			r.Get("/insights", ih.ListInsights)
		})
		r.Mount("/sessions", sh.SessionRoutes())
	})
	return r
}
