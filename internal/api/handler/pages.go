package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/voleibolstats/voleibol-web/internal/api/render"
	"github.com/voleibolstats/voleibol-web/internal/locale"
	"github.com/voleibolstats/voleibol-web/internal/volley"
)

// SeasonParam selects a season on the results page.
const SeasonParam = "temporada"

// HomeView is the data of the home page.
type HomeView struct {
	render.Page
	Season  *volley.Season
	Seasons []volley.Season
	Results []volley.Match
}

// TeamView is the data of the team detail page.
type TeamView struct {
	render.Page
	Team    volley.Team
	Season  *volley.Season
	Summary volley.Summary
	Roster  []volley.Player
	Scorers []volley.Scorer
	Matches []volley.Match
}

// ResultsView is the data of the results page.
type ResultsView struct {
	render.Page
	Season  *volley.Season
	Seasons []volley.Season
	Results []volley.Match
}

// Home serves the home page: teams, seasons and the latest results.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, render.PageHome, func(ctx context.Context, r *http.Request, lang string) (any, error) {
		seasons, err := h.src.Seasons(ctx)
		if err != nil {
			return nil, err
		}
		current := volley.CurrentSeason(seasons)
		sid := seasonID(current)

		teams, err := h.src.Teams(ctx, sid)
		if err != nil {
			return nil, err
		}
		results, err := h.src.RecentResults(ctx, sid, volley.HomeResultsLimit)
		if err != nil {
			return nil, err
		}
		return HomeView{
			Page:    h.base(r, lang, "", teams),
			Season:  current,
			Seasons: seasons,
			Results: results,
		}, nil
	})
}

// Team serves the detail page of one team. A malformed or unknown id
// redirects to the home page.
func (h *Handler) Team(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, render.PageTeam, func(ctx context.Context, r *http.Request, lang string) (any, error) {
		id, err := strconv.Atoi(chi.URLParam(r, "teamID"))
		if err != nil || id <= 0 {
			return nil, errRedirectHome
		}
		team, err := h.src.Team(ctx, id)
		if err != nil {
			return nil, err
		}
		if team == nil {
			return nil, errRedirectHome
		}

		seasons, err := h.src.Seasons(ctx)
		if err != nil {
			return nil, err
		}
		current := volley.CurrentSeason(seasons)
		sid := seasonID(current)

		teams, err := h.src.Teams(ctx, sid)
		if err != nil {
			return nil, err
		}
		rule, err := h.src.Rule(ctx)
		if err != nil {
			return nil, err
		}
		matches, err := h.src.TeamMatches(ctx, id, sid, 0)
		if err != nil {
			return nil, err
		}
		roster, err := h.src.Roster(ctx, id)
		if err != nil {
			return nil, err
		}
		scorers, err := h.src.TopScorers(ctx, id, sid, volley.DefaultTopScorers)
		if err != nil {
			return nil, err
		}

		view := TeamView{
			Page:    h.base(r, lang, team.DisplayName(), teams),
			Team:    *team,
			Season:  current,
			Summary: volley.Summarize(volley.Played(matches), rule),
			Roster:  roster,
			Scorers: scorers,
			Matches: recent(matches, h.cfg.TeamMatchLimit),
		}
		view.TeamID = team.ID
		return view, nil
	})
}

// Results serves every result-bearing match of a season, most recent first.
// ?temporada= picks an active season; anything else shows the current one.
func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, render.PageResults, func(ctx context.Context, r *http.Request, lang string) (any, error) {
		seasons, err := h.src.Seasons(ctx)
		if err != nil {
			return nil, err
		}
		season := requestedSeason(r, seasons)
		sid := seasonID(season)

		teams, err := h.src.Teams(ctx, sid)
		if err != nil {
			return nil, err
		}
		results, err := h.src.RecentResults(ctx, sid, volley.AllResultsLimit)
		if err != nil {
			return nil, err
		}
		return ResultsView{
			Page:    h.base(r, lang, locale.T(lang, "nav.results"), teams),
			Season:  season,
			Seasons: seasons,
			Results: results,
		}, nil
	})
}

// Info serves one of the fixed-content pages.
func (h *Handler) Info(page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.servePage(w, r, page, func(_ context.Context, r *http.Request, lang string) (any, error) {
			return h.base(r, lang, locale.T(lang, fmt.Sprintf("page.%s", page)), nil), nil
		})
	}
}

func requestedSeason(r *http.Request, seasons []volley.Season) *volley.Season {
	if raw := r.URL.Query().Get(SeasonParam); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			if s := volley.FindSeason(seasons, id); s != nil && s.Active {
				return s
			}
		}
	}
	return volley.CurrentSeason(seasons)
}

func seasonID(s *volley.Season) *int {
	if s == nil {
		return nil
	}
	id := s.ID
	return &id
}

// recent keeps the first limit matches. limit 0 keeps them all.
func recent(matches []volley.Match, limit int) []volley.Match {
	if limit > 0 && len(matches) > limit {
		return matches[:limit]
	}
	return matches
}
