// Package handler provides the HTTP handlers for every page.
// Handlers read through a Source, assemble a view-model and render it into
// a pooled buffer. A page is written only after it rendered completely.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/valyala/bytebufferpool"

	"github.com/voleibolstats/voleibol-web/internal/api/render"
	"github.com/voleibolstats/voleibol-web/internal/api/respond"
	"github.com/voleibolstats/voleibol-web/internal/cache"
	"github.com/voleibolstats/voleibol-web/internal/config"
	"github.com/voleibolstats/voleibol-web/internal/db"
	"github.com/voleibolstats/voleibol-web/internal/locale"
	"github.com/voleibolstats/voleibol-web/internal/volley"
)

// Source is the read side of the store the handlers depend on.
type Source interface {
	Rule(ctx context.Context) (volley.Rule, error)
	Teams(ctx context.Context, seasonID *int) ([]volley.Team, error)
	Team(ctx context.Context, id int) (*volley.Team, error)
	Seasons(ctx context.Context) ([]volley.Season, error)
	Roster(ctx context.Context, teamID int) ([]volley.Player, error)
	TeamMatches(ctx context.Context, teamID int, seasonID *int, limit int) ([]volley.Match, error)
	RecentResults(ctx context.Context, seasonID *int, limit int) ([]volley.Match, error)
	TopScorers(ctx context.Context, teamID int, seasonID *int, limit int) ([]volley.Scorer, error)
	Ping(ctx context.Context) error
}

// errRedirectHome makes a page answer with a redirect to the home page
// instead of rendering.
var errRedirectHome = errors.New("redirect home")

// Handler holds shared dependencies for all page handlers.
type Handler struct {
	src    Source
	pages  *render.Renderer
	cache  *cache.Cache
	locale *locale.Resolver
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a Handler with shared dependencies.
func New(src Source, pages *render.Renderer, c *cache.Cache, loc *locale.Resolver, cfg *config.Config, logger *slog.Logger) *Handler {
	return &Handler{
		src:    src,
		pages:  pages,
		cache:  c,
		locale: loc,
		cfg:    cfg,
		logger: logger,
	}
}

// view builds the data of one page for lang.
type view func(ctx context.Context, r *http.Request, lang string) (any, error)

// servePage serves a rendered page through the page cache.
func (h *Handler) servePage(w http.ResponseWriter, r *http.Request, page string, build view) {
	lang := locale.FromContext(r.Context())
	key := cache.Key(r.URL.Path, r.URL.RawQuery, lang)

	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteHTML(w, data, etag, h.clientTTL(), true)
		return
	}

	data, err := build(r.Context(), r, lang)
	if errors.Is(err, errRedirectHome) {
		respond.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.fail(w, r, lang, page, err)
		return
	}

	buf, err := h.pages.Render(page, data)
	if err != nil {
		h.fail(w, r, lang, page, err)
		return
	}
	defer bytebufferpool.Put(buf)

	etag := h.cache.Set(key, buf.B)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteHTML(w, buf.B, etag, h.clientTTL(), false)
}

// fail logs err and answers with the generic error page.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, lang, page string, err error) {
	h.logger.Error("Failed to serve page",
		"page", page,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
		"error", err)

	buf, rerr := h.pages.Render(render.PageError, h.base(r, lang, locale.T(lang, "error.generic"), nil))
	if rerr != nil {
		h.logger.Error("Failed to render error page", "error", rerr)
		respond.WriteError(w, http.StatusInternalServerError, nil)
		return
	}
	defer bytebufferpool.Put(buf)
	respond.WriteError(w, http.StatusInternalServerError, buf.B)
}

func (h *Handler) clientTTL() time.Duration {
	if !h.cache.Enabled() {
		return 0
	}
	return h.cache.TTL()
}

func (h *Handler) base(r *http.Request, lang, title string, teams []volley.Team) render.Page {
	return render.Page{
		Lang:      lang,
		Languages: config.SupportedLanguages,
		Path:      r.URL.Path,
		Title:     title,
		Teams:     teams,
	}
}

// --------------------------------------------------------------------------
// Health checks
// --------------------------------------------------------------------------

// HealthCheck returns basic health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity. An unconfigured database is
// reported as unavailable; the pages still render empty in that case.
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	err := h.src.Ping(r.Context())
	switch {
	case errors.Is(err, db.ErrUnconfigured):
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "degraded",
			"database":  "unconfigured",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	case err != nil:
		h.logger.Warn("Database health check failed", "error", err)
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	default:
		respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"database":  "connected",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// HealthCheckCache returns page cache statistics.
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
