package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	corslib "github.com/rs/cors"

	"github.com/voleibolstats/voleibol-web/internal/api/handler"
	"github.com/voleibolstats/voleibol-web/internal/api/render"
	"github.com/voleibolstats/voleibol-web/internal/cache"
	"github.com/voleibolstats/voleibol-web/internal/config"
	"github.com/voleibolstats/voleibol-web/internal/locale"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(src handler.Source, pages *render.Renderer, pageCache *cache.Cache, loc *locale.Resolver, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(MetricsMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(src, pages, pageCache, loc, cfg, logger)

	// --- Routes ---

	// Pages, with the request language resolved
	r.Group(func(r chi.Router) {
		r.Use(loc.Middleware)

		r.Get("/", h.Home)
		r.Get("/equip/{teamID}", h.Team)
		r.Get("/resultats", h.Results)
		r.Get("/set-language/{code}", h.SetLanguage)
		for path, page := range render.InfoPages {
			r.Get(path, h.Info(page))
		}
	})

	r.Get("/login", h.Login)
	r.Get("/ads.txt", h.AdsTxt)

	// Static assets, shareable across origins
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "ETag"},
		AllowCredentials: false,
	})
	r.Handle("/static/*", c.Handler(http.StripPrefix("/static/", render.Static())))

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
