package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/voleibolstats/voleibol-web/internal/api/render"
	"github.com/voleibolstats/voleibol-web/internal/api/respond"
	"github.com/voleibolstats/voleibol-web/internal/locale"
)

// SetLanguage stores a supported language in the session and sends the
// client back to the page it came from. Unsupported codes are ignored.
func (h *Handler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if !h.locale.Choose(w, r, code) {
		h.logger.Debug("Ignoring unsupported language", "code", code)
	}
	respond.Redirect(w, r, backTarget(r), http.StatusFound)
}

// backTarget is the same-host referrer path, without any language
// override, or "/".
func backTarget(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Host != r.Host || !strings.HasPrefix(ref.Path, "/") || strings.HasPrefix(ref.Path, "//") {
		return "/"
	}
	q := ref.Query()
	q.Del(locale.QueryParam)
	target := url.URL{Path: ref.Path, RawQuery: q.Encode()}
	return target.String()
}

// Login sends the client to the external application.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	respond.Redirect(w, r, h.cfg.LoginURL, http.StatusFound)
}

// AdsTxt serves the embedded ads.txt.
func (h *Handler) AdsTxt(w http.ResponseWriter, r *http.Request) {
	body, err := render.Asset("ads.txt")
	if err != nil {
		h.logger.Error("Failed to read ads.txt", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, nil)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	respond.WriteText(w, http.StatusOK, body)
}
