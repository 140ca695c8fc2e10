// Package render turns page view-models into HTML using the embedded
// templates, and serves the embedded static assets.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/valyala/bytebufferpool"

	"github.com/voleibolstats/voleibol-web/internal/locale"
	"github.com/voleibolstats/voleibol-web/internal/volley"
)

var (
	//go:embed templates/*.html
	templates embed.FS

	//go:embed all:static
	static embed.FS
)

// Page names. Each one is a file under templates/ rendered inside the layout.
const (
	PageHome    = "home"
	PageTeam    = "team"
	PageResults = "results"
	PageError   = "error"
)

// InfoPages maps the path of each fixed-content page to its template.
var InfoPages = map[string]string{
	"/quisom":       "quisom",
	"/contacte":     "contacte",
	"/privacitat":   "privacitat",
	"/avis-legal":   "avis-legal",
	"/cookies":      "cookies",
	"/com-funciona": "com-funciona",
}

// Page carries the fields every template reads through the layout.
type Page struct {
	Lang      string
	Languages []string
	Path      string
	Title     string
	Teams     []volley.Team
	TeamID    int
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page template together with the layout.
func New() (*Renderer, error) {
	names := []string{PageHome, PageTeam, PageResults, PageError}
	for _, name := range InfoPages {
		names = append(names, name)
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		t, err := template.New(name).Funcs(funcs).ParseFS(templates, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes page into a pooled buffer. The caller owns the buffer and
// must release it with bytebufferpool.Put. On error nothing is returned, so
// a half-rendered page never reaches the client.
func (r *Renderer) Render(page string, data any) (*bytebufferpool.ByteBuffer, error) {
	t, ok := r.pages[page]
	if !ok {
		return nil, fmt.Errorf("unknown page %q", page)
	}
	buf := bytebufferpool.Get()
	if err := t.ExecuteTemplate(buf, "layout", data); err != nil {
		bytebufferpool.Put(buf)
		return nil, fmt.Errorf("rendering %s: %w", page, err)
	}
	return buf, nil
}

// Static serves the embedded static directory. Mount it under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

// Asset returns the content of one embedded static file.
func Asset(name string) ([]byte, error) {
	return static.ReadFile(path.Join("static", name))
}

var funcs = template.FuncMap{
	"t":        locale.T,
	"position": locale.PositionLabel,
	"outcome":  func(o volley.Outcome) string { return o.Class() },
	"upper":    strings.ToUpper,
}
