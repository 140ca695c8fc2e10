// Package locale resolves the display language of a request and translates
// the few labels that depend on it.
//
// Resolution order, first match wins:
//  1. a supported ?lang= query parameter, which is persisted to the session
//  2. a supported language already stored in the session
//  3. the best match for Accept-Language, or the default language
package locale

import (
	"context"
	"net/http"

	"golang.org/x/text/language"

	"github.com/voleibolstats/voleibol-web/internal/config"
)

// QueryParam is the query parameter that selects a language explicitly.
const QueryParam = "lang"

type ctxKey struct{}

// Resolver picks the language for each request.
type Resolver struct {
	sessions  *Sessions
	fallback  string
	supported []language.Tag
	matcher   language.Matcher
}

// NewResolver returns a Resolver over config.SupportedLanguages. fallback
// must be one of them.
func NewResolver(sessions *Sessions, fallback string) *Resolver {
	// The fallback goes first so the matcher returns it when nothing matches.
	codes := []string{fallback}
	for _, code := range config.SupportedLanguages {
		if code != fallback {
			codes = append(codes, code)
		}
	}
	tags := make([]language.Tag, 0, len(codes))
	for _, code := range codes {
		tags = append(tags, language.MustParse(code))
	}
	return &Resolver{
		sessions:  sessions,
		fallback:  fallback,
		supported: tags,
		matcher:   language.NewMatcher(tags),
	}
}

// Default is the language used when nothing else matches.
func (l *Resolver) Default() string {
	return l.fallback
}

// Resolve returns the language for r, persisting an explicit choice.
func (l *Resolver) Resolve(w http.ResponseWriter, r *http.Request) string {
	if code := r.URL.Query().Get(QueryParam); config.IsSupportedLanguage(code) {
		l.sessions.SetLanguage(w, r, code)
		return code
	}
	if code := l.sessions.Language(r); config.IsSupportedLanguage(code) {
		return code
	}
	return l.Negotiate(r.Header.Get("Accept-Language"))
}

// Choose persists code as the session language. It reports false, and
// changes nothing, when code is not supported.
func (l *Resolver) Choose(w http.ResponseWriter, r *http.Request, code string) bool {
	if !config.IsSupportedLanguage(code) {
		return false
	}
	l.sessions.SetLanguage(w, r, code)
	return true
}

// Negotiate returns the best supported match for an Accept-Language value.
func (l *Resolver) Negotiate(acceptLanguage string) string {
	if acceptLanguage == "" {
		return l.fallback
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return l.fallback
	}
	_, idx, confidence := l.matcher.Match(prefs...)
	if confidence == language.No {
		return l.fallback
	}
	base, _ := l.supported[idx].Base()
	return base.String()
}

// Middleware resolves the language and stores it in the request context.
func (l *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := l.Resolve(w, r)
		next.ServeHTTP(w, r.WithContext(WithLanguage(r.Context(), lang)))
	})
}

// WithLanguage returns a context carrying lang.
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// FromContext returns the resolved language, or the package default.
func FromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(ctxKey{}).(string); ok && lang != "" {
		return lang
	}
	return config.DefaultLanguage
}
