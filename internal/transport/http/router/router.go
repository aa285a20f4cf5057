package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/config"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/metrics"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/transport/http/handlers"
	authmw "github.com/baechuer/real-time-ressys/services/engagement-service/internal/transport/http/middleware"
)

type Handlers struct {
	Views     *handlers.ViewsHandler
	Reactions *handlers.ReactionsHandler
	Bookmarks *handlers.BookmarksHandler
	Sync      *handlers.SyncHandler
	Health    *handlers.HealthHandler
}

func New(
	h Handlers,
	auth *authmw.AuthMiddleware,
	visitors authmw.VisitorResolver,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	r.Use(authmw.RequestID)
	r.Use(authmw.SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(authmw.AccessLog)
	r.Use(metrics.Middleware)

	r.Get("/healthz", h.Health.Healthz)
	r.Get("/readyz", h.Health.Readyz)
	r.Handle("/metrics", metrics.MetricsHandler())

	r.Route("/engagement/v1", func(r chi.Router) {
		if cfg.RLEnabled {
			r.Use(httprate.Limit(
				cfg.RLLimit,
				cfg.RLWindow,
				httprate.WithKeyFuncs(httprate.KeyByRealIP),
			))
		}

		// anonymous or authenticated
		r.Group(func(r chi.Router) {
			r.Use(auth.Optional)
			r.Use(authmw.Visitor(visitors))

			r.Post("/views/items", h.Views.IngestItems)
			r.Post("/views/lists/{list_id}", h.Views.IngestList)
			r.Get("/views/items", h.Views.ItemCounts)
			r.Get("/views/lists/{list_id}", h.Views.ListCount)
			r.Get("/reactions", h.Reactions.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Require)

			r.Post("/reactions/toggle", h.Reactions.Toggle)

			r.Post("/bookmarks/toggle", h.Bookmarks.Toggle)
			r.Get("/bookmarks", h.Bookmarks.List)
			r.Patch("/bookmarks/{bookmark_id}/collection", h.Bookmarks.Move)

			r.Post("/collections", h.Bookmarks.CreateCollection)
			r.Get("/collections", h.Bookmarks.ListCollections)
			r.Delete("/collections/{collection_id}", h.Bookmarks.DeleteCollection)
		})
	})

	r.Route("/internal", func(r chi.Router) {
		r.Use(authmw.CronSecret(cfg.CronSecret))
		r.Post("/sync", h.Sync.Run)
		r.Get("/sync", h.Sync.Last)
	})

	return r
}
