// Package respond provides shared response utilities for page handlers.
package respond

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WriteHTML writes a rendered page with cache and ETag headers. A zero ttl
// marks the page as not cacheable by clients.
func WriteHTML(w http.ResponseWriter, data []byte, etag string, ttl time.Duration, cacheHit bool) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if etag != "" {
		w.Header().Set("ETag", etag)
	}
	w.Header().Set("Vary", "Accept-Encoding, Accept-Language, Cookie")
	setCacheHeaders(w, ttl, cacheHit)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// WriteText writes a plain-text body.
func WriteText(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

// WriteNotModified sends a 304 with the matching ETag.
func WriteNotModified(w http.ResponseWriter, etag string) {
	w.Header().Set("ETag", etag)
	w.WriteHeader(http.StatusNotModified)
}

// WriteError sends a complete error page. body is the rendered error page;
// when it is empty a plain-text message is sent instead.
func WriteError(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	if len(body) == 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

// Redirect sends the client to target without caching the redirect.
func Redirect(w http.ResponseWriter, r *http.Request, target string, status int) {
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, target, status)
}

// WriteJSONObject marshals a Go value to JSON and writes it.
// Used for the health endpoints.
func WriteJSONObject(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func setCacheHeaders(w http.ResponseWriter, ttl time.Duration, cacheHit bool) {
	if cacheHit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	maxAge := int(ttl.Seconds())
	if maxAge <= 0 {
		w.Header().Set("Cache-Control", "no-cache")
		return
	}
	w.Header().Set("Cache-Control",
		fmt.Sprintf("private, max-age=%d, stale-while-revalidate=%d", maxAge, maxAge/2))
}
