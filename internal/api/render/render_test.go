package render

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/bytebufferpool"

	"github.com/voleibolstats/voleibol-web/internal/volley"
)

func ptr[T any](v T) *T { return &v }

func render(t *testing.T, r *Renderer, page string, data any) *goquery.Document {
	t.Helper()
	buf, err := r.Render(page, data)
	require.NoError(t, err)
	defer bytebufferpool.Put(buf)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(buf.String()))
	require.NoError(t, err)
	return doc
}

func TestNewParsesEveryPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	for _, page := range []string{PageHome, PageTeam, PageResults, PageError} {
		assert.Contains(t, r.pages, page)
	}
	for _, page := range InfoPages {
		assert.Contains(t, r.pages, page)
	}
}

func TestRenderUnknownPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	_, err = r.Render("nope", Page{})
	assert.Error(t, err)
}

func TestRenderLayoutLanguage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	doc := render(t, r, "quisom", Page{Lang: "en", Languages: []string{"ca", "es", "en"}})
	lang, _ := doc.Find("html").Attr("lang")
	assert.Equal(t, "en", lang)
	assert.Equal(t, "About us", doc.Find("h1").Text())
	assert.Equal(t, "EN", doc.Find(".languages a.active").Text())
	assert.Equal(t, 3, doc.Find(".languages a").Length())
}

type teamData struct {
	Page
	Team    volley.Team
	Season  *volley.Season
	Summary volley.Summary
	Roster  []volley.Player
	Scorers []volley.Scorer
	Matches []volley.Match
}

func TestRenderTeamPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	team := volley.Team{ID: 4, Name: "Alcoi", Qualifier: "B"}
	data := teamData{
		Page: Page{Lang: "ca", Teams: []volley.Team{team}, TeamID: 4},
		Team: team,
		Summary: volley.Summary{
			Played: 2, Wins: 1, Losses: 1, SetsFor: 4, SetsAgainst: 4,
			Streak: []volley.Outcome{volley.Win, volley.Loss},
		},
		Roster: []volley.Player{
			{ID: 1, Surname: "Serra", GivenName: ptr("Anna"), Number: ptr(7), Position: ptr("colocador")},
			{ID: 2, Surname: "Vidal"},
		},
		Scorers: []volley.Scorer{{PlayerID: 1, Name: "Anna Serra", Points: 12}},
		Matches: []volley.Match{
			{ID: 9, Opponent: "Xàtiva", Home: true, ResultText: ptr("3-1"), Outcome: volley.Win},
		},
	}

	doc := render(t, r, PageTeam, data)
	assert.Equal(t, "Alcoi B", doc.Find("h1.team-name").Text())
	assert.Equal(t, "2", doc.Find("dd.played").Text())
	assert.Equal(t, 0, doc.Find("dd.draws").Length())
	assert.Equal(t, "4-4", doc.Find("dd.sets").Text())

	streak := doc.Find(".streak li")
	require.Equal(t, 2, streak.Length())
	assert.True(t, streak.Eq(0).HasClass("victoria"))
	assert.True(t, streak.Eq(1).HasClass("derrota"))

	players := doc.Find("tr.player")
	require.Equal(t, 2, players.Length())
	assert.Equal(t, "7", players.Eq(0).Find(".number").Text())
	assert.Equal(t, "Anna Serra", players.Eq(0).Find(".name").Text())
	assert.Equal(t, "Col·locador", players.Eq(0).Find(".position").Text())
	assert.Equal(t, "", players.Eq(1).Find(".number").Text())
	assert.Equal(t, "-", players.Eq(1).Find(".position").Text())

	assert.Equal(t, "12", doc.Find(".scorer .points").Text())
	assert.Equal(t, "Casa", doc.Find(".team-matches .venue").Text())
	assert.True(t, doc.Find(".team-matches tr.match").HasClass("victoria"))
	assert.True(t, doc.Find(".team-nav a.active").Length() == 1)
}

func TestStaticAssets(t *testing.T) {
	ads, err := Asset("ads.txt")
	require.NoError(t, err)
	assert.Contains(t, string(ads), "DIRECT")

	srv := http.StripPrefix("/static/", Static())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
}
