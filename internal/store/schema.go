package store

import (
	"github.com/voleibolstats/voleibol-web/internal/volley"
)

// Schema names the tables and columns of one store variant. Every identifier
// here is a fixed constant; request input never reaches query text.
type Schema struct {
	Variant volley.Variant

	Teams   string
	Players string
	Matches string
	Actions string
	Seasons string // empty when the variant has no seasons

	// TeamQualifier is the column holding the letter or category.
	TeamQualifier string
	// PlayerGivenName is false when jugadores has no nombre column.
	PlayerGivenName bool
}

// HasSeasons reports whether queries can be scoped to a season.
func (s Schema) HasSeasons() bool {
	return s.Seasons != ""
}

var schemas = map[volley.Variant]Schema{
	volley.VariantClassic: {
		Variant:       volley.VariantClassic,
		Teams:         "equipos",
		Players:       "jugadores",
		Matches:       "partidos_new",
		Actions:       "acciones_new",
		TeamQualifier: "equipo_letra",
	},
	volley.VariantSets: {
		Variant:         volley.VariantSets,
		Teams:           "equipos",
		Players:         "jugadores",
		Matches:         "partidos",
		Actions:         "acciones",
		Seasons:         "temporadas",
		TeamQualifier:   "categoria",
		PlayerGivenName: true,
	},
	volley.VariantHomeAway: {
		Variant:         volley.VariantHomeAway,
		Teams:           "equipos",
		Players:         "jugadores",
		Matches:         "partidos",
		Actions:         "acciones",
		Seasons:         "temporadas",
		TeamQualifier:   "equipo_letra",
		PlayerGivenName: true,
	},
}

// SchemaFor returns the schema descriptor of a variant, defaulting to classic.
func SchemaFor(v volley.Variant) Schema {
	if s, ok := schemas[v]; ok {
		return s
	}
	return schemas[volley.VariantClassic]
}

// ScoringActionTypes are the action types that can win a point.
var ScoringActionTypes = []string{"atacar", "bloqueo", "saque"}

// PointMarker is the outcome marker of a point-winning action.
const PointMarker = "#"
