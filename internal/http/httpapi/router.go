package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"waii/internal/http/handlers"
	"waii/internal/infra"
	"waii/internal/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.Logger(app.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/styles", app.Styles)
		r.Get("/aspect-ratios", app.AspectRatios)
		r.Get("/stock-models", app.StockModels)
		r.Get("/prompts/examples", app.PromptExamples)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
			r.Post("/generate", app.Generate)
		})

		r.Get("/state", app.ArtifactState)
		r.Get("/artifacts/archive", app.ArtifactsArchive)
		r.Get("/artifacts/{id}/download", app.ArtifactDownload)
	})

	return r
}
