// Package store is the data access layer. Each accessor runs one
// parameterized read query against the variant's schema and returns typed
// volley records. When no database is configured, list accessors return an
// empty slice and lookups return nil, both without error.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/voleibolstats/voleibol-web/internal/db"
	"github.com/voleibolstats/voleibol-web/internal/metrics"
	"github.com/voleibolstats/voleibol-web/internal/volley"
)

// errUnavailable marks a read skipped because the store is not configured.
var errUnavailable = errors.New("store unavailable")

// Store reads teams, seasons, players, matches and scoring actions.
type Store struct {
	pools   *db.Lazy
	setting string
	logger  *slog.Logger

	mu     sync.Mutex
	schema *Schema
}

// New returns a Store backed by the lazily built pool. setting is the
// SCHEMA_VARIANT value ("auto" detects the variant on first use).
func New(pools *db.Lazy, setting string, logger *slog.Logger) *Store {
	return &Store{pools: pools, setting: setting, logger: logger}
}

// --------------------------------------------------------------------------
// Row types, one per query shape
// --------------------------------------------------------------------------

type teamRow struct {
	ID        int    `db:"id"`
	Name      string `db:"nombre"`
	Qualifier string `db:"calificador"`
	SeasonID  *int   `db:"temporada_id"`
}

func (r teamRow) team() volley.Team {
	return volley.Team{ID: r.ID, Name: r.Name, Qualifier: r.Qualifier, SeasonID: r.SeasonID}
}

type seasonRow struct {
	ID     int    `db:"id"`
	Name   string `db:"nombre"`
	Active bool   `db:"activa"`
}

type playerRow struct {
	ID        int     `db:"id"`
	Surname   string  `db:"apellido"`
	GivenName *string `db:"nombre"`
	TeamID    int     `db:"equipo_id"`
	Number    *int    `db:"dorsal"`
	Position  *string `db:"posicion"`
	Active    bool    `db:"activo"`
}

type matchRow struct {
	ID            int        `db:"id"`
	TeamID        int        `db:"equipo_id"`
	TeamName      string     `db:"equipo_nombre"`
	TeamQualifier string     `db:"equipo_calificador"`
	Opponent      *string    `db:"rival"`
	Home          bool       `db:"local"`
	Date          *time.Time `db:"fecha"`
	SeasonID      *int       `db:"temporada_id"`
	Result        *string    `db:"resultado"`
	SetsFor       *int       `db:"sets_favor"`
	SetsAgainst   *int       `db:"sets_contra"`
}

func (r matchRow) match(rule volley.Rule) volley.Match {
	m := volley.Match{
		ID:          r.ID,
		TeamID:      r.TeamID,
		TeamName:    volley.DisplayName(r.TeamName, r.TeamQualifier),
		Home:        r.Home,
		SeasonID:    r.SeasonID,
		ResultText:  r.Result,
		SetsFor:     r.SetsFor,
		SetsAgainst: r.SetsAgainst,
	}
	if r.Opponent != nil {
		m.Opponent = strings.TrimSpace(*r.Opponent)
	}
	if r.Date != nil {
		m.Date = *r.Date
	}
	m.Outcome = rule.Classify(m)
	return m
}

type scorerRow struct {
	PlayerID int    `db:"jugador_id"`
	Name     string `db:"jugador"`
	Points   int    `db:"puntos"`
}

// --------------------------------------------------------------------------
// Plumbing
// --------------------------------------------------------------------------

// read checks out a connection, resolves the schema and runs fn. It returns
// errUnavailable when no database is configured.
func (s *Store) read(ctx context.Context, name string, fn func(q db.Querier, sch Schema) error) error {
	pool, err := s.pools.Pool()
	if errors.Is(err, db.ErrUnconfigured) {
		metrics.RecordDegradedRead(name)
		return errUnavailable
	}
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	start := time.Now()
	err = pool.Do(ctx, func(q db.Querier) error {
		sch, err := s.resolveSchema(ctx, q)
		if err != nil {
			return err
		}
		return fn(q, sch)
	})
	metrics.RecordQuery(name, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// resolveSchema detects the variant once. A failed detection is retried on
// the next read.
func (s *Store) resolveSchema(ctx context.Context, q db.Querier) (Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schema != nil {
		return *s.schema, nil
	}

	v, err := db.DetectVariant(ctx, q, s.setting)
	if err != nil {
		return Schema{}, fmt.Errorf("detect schema: %w", err)
	}
	sch := SchemaFor(v)
	s.schema = &sch
	s.logger.Info("Schema variant resolved", "variant", v, "setting", s.setting)
	return sch, nil
}

func collect[T any](ctx context.Context, q db.Querier, qr *query) ([]T, error) {
	rows, err := q.Query(ctx, qr.String(), qr.args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[T])
}

// --------------------------------------------------------------------------
// Accessors
// --------------------------------------------------------------------------

// Variant returns the active schema variant, or classic when the store is
// unavailable.
func (s *Store) Variant(ctx context.Context) (volley.Variant, error) {
	var v volley.Variant
	err := s.read(ctx, "variant", func(_ db.Querier, sch Schema) error {
		v = sch.Variant
		return nil
	})
	if errors.Is(err, errUnavailable) {
		return volley.VariantClassic, nil
	}
	return v, err
}

// Rule returns the result rule of the active schema variant.
func (s *Store) Rule(ctx context.Context) (volley.Rule, error) {
	v, err := s.Variant(ctx)
	if err != nil {
		return nil, err
	}
	return volley.RuleFor(v), nil
}

// Teams lists teams ordered by name and qualifier, scoped to seasonID when
// the variant has seasons and seasonID is set.
func (s *Store) Teams(ctx context.Context, seasonID *int) ([]volley.Team, error) {
	teams := []volley.Team{}
	err := s.read(ctx, "teams", func(q db.Querier, sch Schema) error {
		rows, err := collect[teamRow](ctx, q, teamsQuery(sch, seasonID))
		if err != nil {
			return err
		}
		for _, r := range rows {
			teams = append(teams, r.team())
		}
		return nil
	})
	if errors.Is(err, errUnavailable) {
		return []volley.Team{}, nil
	}
	return teams, err
}

// Team looks up one team. It returns nil, nil when the team does not exist.
func (s *Store) Team(ctx context.Context, id int) (*volley.Team, error) {
	var team *volley.Team
	err := s.read(ctx, "team", func(q db.Querier, sch Schema) error {
		rows, err := collect[teamRow](ctx, q, teamByIDQuery(sch, id))
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			t := rows[0].team()
			team = &t
		}
		return nil
	})
	if errors.Is(err, errUnavailable) {
		return nil, nil
	}
	return team, err
}

// Seasons lists active seasons by descending name. Variants without
// seasons return an empty list.
func (s *Store) Seasons(ctx context.Context) ([]volley.Season, error) {
	seasons := []volley.Season{}
	err := s.read(ctx, "seasons", func(q db.Querier, sch Schema) error {
		if !sch.HasSeasons() {
			return nil
		}
		rows, err := collect[seasonRow](ctx, q, seasonsQuery(sch))
		if err != nil {
			return err
		}
		for _, r := range rows {
			seasons = append(seasons, volley.Season{ID: r.ID, Name: r.Name, Active: r.Active})
		}
		return nil
	})
	if errors.Is(err, errUnavailable) {
		return []volley.Season{}, nil
	}
	return seasons, err
}

// Roster lists a team's active players by shirt number, unnumbered last,
// then surname.
func (s *Store) Roster(ctx context.Context, teamID int) ([]volley.Player, error) {
	players := []volley.Player{}
	err := s.read(ctx, "roster", func(q db.Querier, sch Schema) error {
		rows, err := collect[playerRow](ctx, q, rosterQuery(sch, teamID))
		if err != nil {
			return err
		}
		for _, r := range rows {
			players = append(players, volley.Player{
				ID:        r.ID,
				Surname:   r.Surname,
				GivenName: r.GivenName,
				TeamID:    r.TeamID,
				Number:    r.Number,
				Position:  r.Position,
				Active:    r.Active,
			})
		}
		return nil
	})
	if errors.Is(err, errUnavailable) {
		return []volley.Player{}, nil
	}
	volley.SortRoster(players)
	return players, err
}

// TeamMatches lists a team's matches, most recent first, with outcomes
// classified. limit 0 returns every match.
func (s *Store) TeamMatches(ctx context.Context, teamID int, seasonID *int, limit int) ([]volley.Match, error) {
	return s.matches(ctx, "team_matches", func(sch Schema) *query {
		return teamMatchesQuery(sch, teamID, seasonID, limit)
	})
}

// RecentResults lists result-bearing matches across all teams, most recent first.
func (s *Store) RecentResults(ctx context.Context, seasonID *int, limit int) ([]volley.Match, error) {
	return s.matches(ctx, "recent_results", func(sch Schema) *query {
		return recentResultsQuery(sch, seasonID, limit)
	})
}

func (s *Store) matches(ctx context.Context, name string, build func(Schema) *query) ([]volley.Match, error) {
	matches := []volley.Match{}
	err := s.read(ctx, name, func(q db.Querier, sch Schema) error {
		rows, err := collect[matchRow](ctx, q, build(sch))
		if err != nil {
			return err
		}
		rule := volley.RuleFor(sch.Variant)
		for _, r := range rows {
			matches = append(matches, r.match(rule))
		}
		return nil
	})
	if errors.Is(err, errUnavailable) {
		return []volley.Match{}, nil
	}
	return matches, err
}

// TopScorers ranks a team's players by points won with attacks, blocks and
// serves. Players without points are excluded.
func (s *Store) TopScorers(ctx context.Context, teamID int, seasonID *int, limit int) ([]volley.Scorer, error) {
	if limit <= 0 {
		limit = volley.DefaultTopScorers
	}
	scorers := []volley.Scorer{}
	err := s.read(ctx, "top_scorers", func(q db.Querier, sch Schema) error {
		rows, err := collect[scorerRow](ctx, q, topScorersQuery(sch, teamID, seasonID, limit))
		if err != nil {
			return err
		}
		for _, r := range rows {
			scorers = append(scorers, volley.Scorer{PlayerID: r.PlayerID, Name: r.Name, Points: r.Points})
		}
		return nil
	})
	if errors.Is(err, errUnavailable) {
		return []volley.Scorer{}, nil
	}
	return volley.TopN(scorers, limit), err
}

// Ping verifies connectivity. It returns db.ErrUnconfigured when no
// database is configured.
func (s *Store) Ping(ctx context.Context) error {
	pool, err := s.pools.Pool()
	if err != nil {
		return err
	}
	return pool.HealthCheck(ctx)
}
