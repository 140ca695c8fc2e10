// Package volley holds the read-only volleyball records served by the site
// and the derived statistics computed from them: match outcomes, win/loss
// summaries, streaks and roster ordering.
package volley

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	StreakLength          = 5
	DefaultTopScorers     = 5
	HomeResultsLimit      = 10
	AllResultsLimit       = 50
	DefaultTeamMatchLimit = 10

	// DateLayout is the display format for match dates.
	DateLayout = "02/01/2006"
)

// --------------------------------------------------------------------------
// Records
// --------------------------------------------------------------------------

// Team is a roster entity. Qualifier is the letter ("B") or category
// ("Cadet") that distinguishes teams of the same club.
type Team struct {
	ID        int
	Name      string
	Qualifier string
	SeasonID  *int
}

// DisplayName is the base name, followed by the qualifier when present.
func (t Team) DisplayName() string {
	return DisplayName(t.Name, t.Qualifier)
}

// DisplayName joins a base name and an optional qualifier.
func DisplayName(name, qualifier string) string {
	name = strings.TrimSpace(name)
	qualifier = strings.TrimSpace(qualifier)
	if qualifier == "" {
		return name
	}
	return name + " " + qualifier
}

// FindTeam returns the team with the given id, or nil.
func FindTeam(teams []Team, id int) *Team {
	for i := range teams {
		if teams[i].ID == id {
			return &teams[i]
		}
	}
	return nil
}

type Season struct {
	ID     int
	Name   string
	Active bool
}

// CurrentSeason picks the first active season by descending name, or nil
// when there is none.
func CurrentSeason(seasons []Season) *Season {
	var current *Season
	for i := range seasons {
		s := &seasons[i]
		if !s.Active {
			continue
		}
		if current == nil || s.Name > current.Name {
			current = s
		}
	}
	return current
}

// FindSeason returns the season with the given id, or nil.
func FindSeason(seasons []Season, id int) *Season {
	for i := range seasons {
		if seasons[i].ID == id {
			return &seasons[i]
		}
	}
	return nil
}

type Player struct {
	ID        int
	Surname   string
	GivenName *string
	TeamID    int
	Number    *int
	Position  *string
	Active    bool
}

// FullName is "Given Surname" when the given name is known.
func (p Player) FullName() string {
	if p.GivenName == nil || strings.TrimSpace(*p.GivenName) == "" {
		return p.Surname
	}
	return strings.TrimSpace(*p.GivenName) + " " + p.Surname
}

// SortRoster orders players by shirt number ascending with unnumbered
// players last, then by surname.
func SortRoster(players []Player) {
	sort.SliceStable(players, func(i, j int) bool {
		a, b := players[i], players[j]
		switch {
		case a.Number != nil && b.Number != nil:
			if *a.Number != *b.Number {
				return *a.Number < *b.Number
			}
		case a.Number != nil:
			return true
		case b.Number != nil:
			return false
		}
		return a.Surname < b.Surname
	})
}

// Match is one game played (or scheduled) by a team. Depending on the schema
// variant the result is either ResultText ("3-1") or SetsFor/SetsAgainst.
type Match struct {
	ID          int
	TeamID      int
	TeamName    string
	Opponent    string
	Home        bool
	Date        time.Time
	SeasonID    *int
	ResultText  *string
	SetsFor     *int
	SetsAgainst *int
	Outcome     Outcome
}

// FormattedDate renders the match date as DD/MM/YYYY.
func (m Match) FormattedDate() string {
	if m.Date.IsZero() {
		return ""
	}
	return m.Date.Format(DateLayout)
}

// Score is the result as shown on the page.
func (m Match) Score() string {
	if m.SetsFor != nil && m.SetsAgainst != nil {
		return fmt.Sprintf("%d-%d", *m.SetsFor, *m.SetsAgainst)
	}
	if m.ResultText != nil {
		return strings.TrimSpace(*m.ResultText)
	}
	return ""
}

// HasResult reports whether any result has been recorded.
func (m Match) HasResult() bool {
	if m.SetsFor != nil && m.SetsAgainst != nil {
		return true
	}
	return m.ResultText != nil && strings.TrimSpace(*m.ResultText) != ""
}

// Scorer is one entry of the top-scorer ranking.
type Scorer struct {
	PlayerID int
	Name     string
	Points   int
}

// TopN truncates an already ordered ranking to limit entries, dropping any
// player without points. A non-positive limit uses DefaultTopScorers.
func TopN(scorers []Scorer, limit int) []Scorer {
	if limit <= 0 {
		limit = DefaultTopScorers
	}
	out := make([]Scorer, 0, min(limit, len(scorers)))
	for _, s := range scorers {
		if s.Points <= 0 {
			continue
		}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}
