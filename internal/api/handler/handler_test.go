package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voleibolstats/voleibol-web/internal/api/render"
	"github.com/voleibolstats/voleibol-web/internal/cache"
	"github.com/voleibolstats/voleibol-web/internal/config"
	"github.com/voleibolstats/voleibol-web/internal/db"
	"github.com/voleibolstats/voleibol-web/internal/locale"
	"github.com/voleibolstats/voleibol-web/internal/volley"
)

func ptr[T any](v T) *T { return &v }

// fakeSource serves fixed data. Calls counts reads so tests can see cache hits.
type fakeSource struct {
	variant volley.Variant
	teams   []volley.Team
	seasons []volley.Season
	players map[int][]volley.Player
	matches []volley.Match
	scorers map[int][]volley.Scorer
	err     error
	pingErr error

	calls      int
	lastSeason *int
}

func (f *fakeSource) Rule(context.Context) (volley.Rule, error) {
	return volley.RuleFor(f.variant), nil
}

func (f *fakeSource) Teams(_ context.Context, seasonID *int) ([]volley.Team, error) {
	f.calls++
	f.lastSeason = seasonID
	if f.err != nil {
		return nil, f.err
	}
	return append([]volley.Team{}, f.teams...), nil
}

func (f *fakeSource) Team(_ context.Context, id int) (*volley.Team, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return volley.FindTeam(f.teams, id), nil
}

func (f *fakeSource) Seasons(context.Context) ([]volley.Season, error) {
	return append([]volley.Season{}, f.seasons...), nil
}

func (f *fakeSource) Roster(_ context.Context, teamID int) ([]volley.Player, error) {
	return append([]volley.Player{}, f.players[teamID]...), nil
}

func (f *fakeSource) TeamMatches(_ context.Context, teamID int, _ *int, limit int) ([]volley.Match, error) {
	out := []volley.Match{}
	for _, m := range f.matches {
		if m.TeamID == teamID {
			out = append(out, m)
		}
	}
	return recent(out, limit), nil
}

func (f *fakeSource) RecentResults(_ context.Context, _ *int, limit int) ([]volley.Match, error) {
	return recent(volley.Played(f.matches), limit), nil
}

func (f *fakeSource) TopScorers(_ context.Context, teamID int, _ *int, limit int) ([]volley.Scorer, error) {
	return volley.TopN(f.scorers[teamID], limit), nil
}

func (f *fakeSource) Ping(context.Context) error {
	return f.pingErr
}

func result(id, team int, opponent, score string, daysAgo int) volley.Match {
	m := volley.Match{
		ID:         id,
		TeamID:     team,
		TeamName:   "Alcoi",
		Opponent:   opponent,
		Date:       time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -daysAgo),
		ResultText: ptr(score),
	}
	m.Outcome = volley.LeadingThreeRule{}.Classify(m)
	return m
}

func sampleSource() *fakeSource {
	return &fakeSource{
		variant: volley.VariantClassic,
		teams: []volley.Team{
			{ID: 1, Name: "Alcoi", Qualifier: "A"},
			{ID: 2, Name: "Alcoi", Qualifier: "B"},
		},
		players: map[int][]volley.Player{
			1: {
				{ID: 10, Surname: "Serra", Number: ptr(4), Position: ptr("central")},
				{ID: 11, Surname: "Vidal", Number: ptr(9)},
			},
		},
		matches: []volley.Match{
			result(100, 1, "Xàtiva", "3-1", 0),
			result(101, 1, "Gandia", "1-3", 7),
			result(102, 1, "Ontinyent", "3-2", 14),
			{ID: 103, TeamID: 1, Opponent: "Elx", Date: time.Date(2024, 6, 6, 0, 0, 0, 0, time.UTC)},
		},
		scorers: map[int][]volley.Scorer{
			1: {{PlayerID: 10, Name: "Serra", Points: 31}, {PlayerID: 11, Name: "Vidal", Points: 12}},
		},
	}
}

type testServer struct {
	router http.Handler
	cache  *cache.Cache
}

func newTestServer(t *testing.T, src Source, cacheEnabled bool) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pages, err := render.New()
	require.NoError(t, err)

	cfg := &config.Config{
		LoginURL:       config.DefaultLoginURL,
		TeamMatchLimit: 2,
	}
	loc := locale.NewResolver(locale.NewSessions("0123456789abcdef0123456789abcdef", false, logger), "ca")
	pageCache := cache.New(cacheEnabled, time.Minute)
	h := New(src, pages, pageCache, loc, cfg, logger)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(loc.Middleware)
		r.Get("/", h.Home)
		r.Get("/equip/{teamID}", h.Team)
		r.Get("/resultats", h.Results)
		r.Get("/set-language/{code}", h.SetLanguage)
		r.Get("/quisom", h.Info("quisom"))
	})
	r.Get("/login", h.Login)
	r.Get("/ads.txt", h.AdsTxt)
	r.Get("/health/db", h.HealthCheckDB)
	return &testServer{router: r, cache: pageCache}
}

func (s *testServer) get(t *testing.T, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func document(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return doc
}

func TestHomeWithEmptyStore(t *testing.T) {
	srv := newTestServer(t, &fakeSource{variant: volley.VariantClassic}, false)

	rec := srv.get(t, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	doc := document(t, rec)
	assert.Equal(t, 0, doc.Find("li.team").Length())
	assert.Equal(t, 0, doc.Find("tr.match").Length())
	assert.Equal(t, 2, doc.Find("p.empty").Length())
}

func TestHomeListsTeamsAndResults(t *testing.T) {
	srv := newTestServer(t, sampleSource(), false)

	doc := document(t, srv.get(t, "/", nil))
	teams := doc.Find("li.team a")
	require.Equal(t, 2, teams.Length())
	assert.Equal(t, "Alcoi A", teams.Eq(0).Text())
	href, _ := teams.Eq(1).Attr("href")
	assert.Equal(t, "/equip/2", href)

	matches := doc.Find(".latest tr.match")
	require.Equal(t, 3, matches.Length())
	assert.True(t, matches.Eq(0).HasClass("victoria"))
	assert.True(t, matches.Eq(1).HasClass("derrota"))
	assert.Equal(t, "30/05/2024", matches.Eq(0).Find(".date").Text())
}

func TestHomeScopesToCurrentSeason(t *testing.T) {
	src := sampleSource()
	src.seasons = []volley.Season{
		{ID: 1, Name: "2022-23", Active: true},
		{ID: 2, Name: "2023-24", Active: true},
		{ID: 3, Name: "2024-25", Active: false},
	}
	srv := newTestServer(t, src, false)

	doc := document(t, srv.get(t, "/", nil))
	require.NotNil(t, src.lastSeason)
	assert.Equal(t, 2, *src.lastSeason)
	assert.Equal(t, "2023-24", doc.Find(".teams h1 small").Text())
}

func TestTeamPage(t *testing.T) {
	srv := newTestServer(t, sampleSource(), false)

	rec := srv.get(t, "/equip/1", map[string]string{"Accept-Language": "en"})
	require.Equal(t, http.StatusOK, rec.Code)
	doc := document(t, rec)

	assert.Equal(t, "Alcoi A", doc.Find("h1.team-name").Text())
	assert.Equal(t, "3", doc.Find("dd.played").Text())
	assert.Equal(t, "2", doc.Find("dd.wins").Text())
	assert.Equal(t, "1", doc.Find("dd.losses").Text())
	assert.Equal(t, "7-6", doc.Find("dd.sets").Text())

	streak := doc.Find(".streak li")
	require.Equal(t, 3, streak.Length())
	assert.Equal(t, "W", streak.Eq(0).Text())
	assert.Equal(t, "L", streak.Eq(1).Text())
	assert.Equal(t, "W", streak.Eq(2).Text())

	assert.Equal(t, "Middle blocker", doc.Find("tr.player .position").First().Text())
	assert.Equal(t, "-", doc.Find("tr.player .position").Last().Text())
	assert.Equal(t, 2, doc.Find("li.scorer").Length())
	assert.Equal(t, 2, doc.Find(".team-matches tr.match").Length())
	assert.Equal(t, 1, doc.Find(".team-nav a.active").Length())
}

func TestTeamRedirects(t *testing.T) {
	srv := newTestServer(t, sampleSource(), false)

	for _, target := range []string{"/equip/99", "/equip/abc", "/equip/0", "/equip/-3"} {
		rec := srv.get(t, target, nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code, target)
		assert.Equal(t, "/", rec.Header().Get("Location"), target)
	}
}

func TestResultsSeasonParam(t *testing.T) {
	src := sampleSource()
	src.seasons = []volley.Season{
		{ID: 1, Name: "2022-23", Active: true},
		{ID: 2, Name: "2023-24", Active: true},
		{ID: 3, Name: "2021-22", Active: false},
	}
	srv := newTestServer(t, src, false)

	doc := document(t, srv.get(t, "/resultats?temporada=1", nil))
	assert.Equal(t, 1, *src.lastSeason)
	assert.Equal(t, "2022-23", doc.Find(".season-filter a.active").Text())
	assert.Equal(t, 3, doc.Find("tr.match").Length())

	srv.get(t, "/resultats?temporada=3", nil)
	assert.Equal(t, 2, *src.lastSeason)

	srv.get(t, "/resultats?temporada=x", nil)
	assert.Equal(t, 2, *src.lastSeason)
}

func TestStoreErrorRendersGenericPage(t *testing.T) {
	src := sampleSource()
	src.err = errors.New("connection reset")
	srv := newTestServer(t, src, false)

	rec := srv.get(t, "/", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
	assert.Equal(t, "S'ha produït un error", document(t, rec).Find(".error h1").Text())
}

func TestPageCacheAndETag(t *testing.T) {
	src := sampleSource()
	srv := newTestServer(t, src, true)

	first := srv.get(t, "/", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)
	calls := src.calls

	second := srv.get(t, "/", nil)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, calls, src.calls)

	notModified := srv.get(t, "/", map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, notModified.Code)
	assert.Empty(t, notModified.Body.String())

	other := srv.get(t, "/", map[string]string{"Accept-Language": "es"})
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"))
	assert.NotEqual(t, etag, other.Header().Get("ETag"))
}

func TestETagWithoutCache(t *testing.T) {
	srv := newTestServer(t, sampleSource(), false)

	first := srv.get(t, "/quisom", nil)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.Equal(t, "no-cache", first.Header().Get("Cache-Control"))

	again := srv.get(t, "/quisom", map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, again.Code)
}

func TestSetLanguage(t *testing.T) {
	srv := newTestServer(t, sampleSource(), false)

	rec := srv.get(t, "/set-language/es", map[string]string{"Referer": "http://example.com/equip/1?lang=en&x=1"})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/equip/1?x=1", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/quisom", nil)
	req.AddCookie(cookies[0])
	page := httptest.NewRecorder()
	srv.router.ServeHTTP(page, req)
	assert.Equal(t, "Quiénes somos", document(t, page).Find("h1").Text())
}

func TestSetLanguageUnsupported(t *testing.T) {
	srv := newTestServer(t, sampleSource(), false)

	rec := srv.get(t, "/set-language/xx", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Empty(t, rec.Result().Cookies())
}

func TestSetLanguageForeignReferer(t *testing.T) {
	srv := newTestServer(t, sampleSource(), false)

	for _, ref := range []string{"https://evil.test/phish", "http://example.com//evil.test/x", "not a url\x7f"} {
		rec := srv.get(t, "/set-language/en", map[string]string{"Referer": ref})
		assert.Equal(t, "/", rec.Header().Get("Location"), ref)
	}
}

func TestLoginAndAdsTxt(t *testing.T) {
	srv := newTestServer(t, sampleSource(), false)

	login := srv.get(t, "/login", nil)
	assert.Equal(t, http.StatusFound, login.Code)
	assert.Equal(t, "https://app.voleibolstats.com", login.Header().Get("Location"))

	ads := srv.get(t, "/ads.txt", nil)
	assert.Equal(t, http.StatusOK, ads.Code)
	assert.Equal(t, "text/plain; charset=utf-8", ads.Header().Get("Content-Type"))
	assert.Contains(t, ads.Body.String(), "google.com")
}

func TestHealthCheckDB(t *testing.T) {
	src := sampleSource()
	srv := newTestServer(t, src, false)
	assert.Equal(t, http.StatusOK, srv.get(t, "/health/db", nil).Code)

	src.pingErr = db.ErrUnconfigured
	rec := srv.get(t, "/health/db", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unconfigured")

	src.pingErr = errors.New("dial tcp: refused")
	rec = srv.get(t, "/health/db", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "disconnected")
}
