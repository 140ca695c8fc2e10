package store

import (
	"strconv"
	"strings"

	"github.com/voleibolstats/voleibol-web/internal/volley"
)

// query accumulates SQL text and its positional arguments.
type query struct {
	buf  strings.Builder
	args []any
}

// bind appends v to the arguments and returns its placeholder.
func (q *query) bind(v any) string {
	q.args = append(q.args, v)
	return "$" + strconv.Itoa(len(q.args))
}

func (q *query) sql(parts ...string) *query {
	for _, p := range parts {
		q.buf.WriteString(p)
	}
	return q
}

func (q *query) String() string {
	return q.buf.String()
}

// seasonFilter scopes rows to a season when the variant has seasons and a
// season is selected.
func (q *query) seasonFilter(s Schema, column string, seasonID *int) {
	if !s.HasSeasons() || seasonID == nil {
		return
	}
	q.sql(" AND ", column, " = ", q.bind(*seasonID))
}

func (q *query) limit(n int) {
	if n > 0 {
		q.sql(" LIMIT ", q.bind(n))
	}
}

func seasonColumn(s Schema, alias string) string {
	if !s.HasSeasons() {
		return "NULL::int"
	}
	return alias + ".temporada_id"
}

func teamsQuery(s Schema, seasonID *int) *query {
	q := &query{}
	q.sql(
		"SELECT e.id, e.nombre, COALESCE(e.", s.TeamQualifier, "::text, '') AS calificador, ",
		seasonColumn(s, "e"), " AS temporada_id",
		" FROM ", s.Teams, " e WHERE TRUE",
	)
	q.seasonFilter(s, "e.temporada_id", seasonID)
	q.sql(" ORDER BY e.nombre, calificador")
	return q
}

func teamByIDQuery(s Schema, id int) *query {
	q := &query{}
	q.sql(
		"SELECT e.id, e.nombre, COALESCE(e.", s.TeamQualifier, "::text, '') AS calificador, ",
		seasonColumn(s, "e"), " AS temporada_id",
		" FROM ", s.Teams, " e WHERE e.id = ", q.bind(id),
	)
	return q
}

func seasonsQuery(s Schema) *query {
	q := &query{}
	q.sql("SELECT id, nombre, activa FROM ", s.Seasons, " WHERE activa = TRUE ORDER BY nombre DESC, id DESC")
	return q
}

func rosterQuery(s Schema, teamID int) *query {
	given := "NULL::text"
	if s.PlayerGivenName {
		given = "j.nombre"
	}
	q := &query{}
	q.sql(
		"SELECT j.id, j.apellido, ", given, " AS nombre, j.equipo_id, j.dorsal, j.posicion, j.activo",
		" FROM ", s.Players, " j",
		" WHERE j.equipo_id = ", q.bind(teamID), " AND j.activo = TRUE",
		" ORDER BY j.dorsal NULLS LAST, j.apellido",
	)
	return q
}

func matchColumns(s Schema) string {
	result, setsFor, setsAgainst := "p.resultado", "NULL::int", "NULL::int"
	if s.Variant == volley.VariantSets {
		result, setsFor, setsAgainst = "NULL::text", "p.sets_favor", "p.sets_contra"
	}
	return "SELECT p.id, p.equipo_id, e.nombre AS equipo_nombre," +
		" COALESCE(e." + s.TeamQualifier + "::text, '') AS equipo_calificador," +
		" p.rival, COALESCE(p.local, FALSE) AS local, p.fecha, " +
		seasonColumn(s, "p") + " AS temporada_id, " +
		result + " AS resultado, " +
		setsFor + " AS sets_favor, " +
		setsAgainst + " AS sets_contra" +
		" FROM " + s.Matches + " p JOIN " + s.Teams + " e ON e.id = p.equipo_id"
}

func hasResult(s Schema) string {
	if s.Variant == volley.VariantSets {
		return "p.sets_favor IS NOT NULL AND p.sets_contra IS NOT NULL"
	}
	return "p.resultado IS NOT NULL AND btrim(p.resultado) <> ''"
}

const matchOrder = " ORDER BY p.fecha DESC NULLS LAST, p.id DESC"

func teamMatchesQuery(s Schema, teamID int, seasonID *int, limit int) *query {
	q := &query{}
	q.sql(matchColumns(s), " WHERE p.equipo_id = ", q.bind(teamID))
	q.seasonFilter(s, "p.temporada_id", seasonID)
	q.sql(matchOrder)
	q.limit(limit)
	return q
}

func recentResultsQuery(s Schema, seasonID *int, limit int) *query {
	q := &query{}
	q.sql(matchColumns(s), " WHERE ", hasResult(s))
	q.seasonFilter(s, "p.temporada_id", seasonID)
	q.sql(matchOrder)
	q.limit(limit)
	return q
}

func topScorersQuery(s Schema, teamID int, seasonID *int, limit int) *query {
	q := &query{}
	marker := q.bind(PointMarker)
	q.sql(
		"SELECT j.id AS jugador_id, j.apellido AS jugador,",
		" COUNT(*) FILTER (WHERE a.marca = ", marker, ") AS puntos",
		" FROM ", s.Actions, " a",
		" JOIN ", s.Players, " j ON a.jugador_id = j.id",
		" JOIN ", s.Matches, " p ON a.partido_id = p.id",
		" WHERE p.equipo_id = ", q.bind(teamID),
		" AND a.tipo_accion = ANY(", q.bind(ScoringActionTypes), ")",
	)
	q.seasonFilter(s, "p.temporada_id", seasonID)
	q.sql(
		" GROUP BY j.id, j.apellido",
		" HAVING COUNT(*) FILTER (WHERE a.marca = ", marker, ") > 0",
		" ORDER BY puntos DESC",
	)
	q.limit(limit)
	return q
}
