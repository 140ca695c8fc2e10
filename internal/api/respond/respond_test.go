package respond

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWriteHTML(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteHTML(rec, []byte("<p>ok</p>"), `W/"abc"`, time.Minute, true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `W/"abc"`, rec.Header().Get("ETag"))
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, "private, max-age=60, stale-while-revalidate=30", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "<p>ok</p>", rec.Body.String())
}

func TestWriteHTMLWithoutTTL(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteHTML(rec, []byte("x"), "", 0, false)

	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Empty(t, rec.Header().Get("ETag"))
}

func TestWriteNotModified(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteNotModified(rec, `W/"abc"`)

	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Equal(t, `W/"abc"`, rec.Header().Get("ETag"))
	assert.Empty(t, rec.Body.String())
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusInternalServerError, []byte("<h1>Error</h1>"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "<h1>Error</h1>", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")

	plain := httptest.NewRecorder()
	WriteError(plain, http.StatusInternalServerError, nil)
	assert.Equal(t, "Internal Server Error\n", plain.Body.String())
}

func TestRedirect(t *testing.T) {
	rec := httptest.NewRecorder()
	Redirect(rec, httptest.NewRequest(http.MethodGet, "/equip/99", nil), "/", http.StatusSeeOther)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}
