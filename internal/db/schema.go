package db

import (
	"context"
	"fmt"

	"github.com/voleibolstats/voleibol-web/internal/config"
	"github.com/voleibolstats/voleibol-web/internal/volley"
)

// Columns maps table name to the set of its column names.
type Columns map[string]map[string]bool

// Has reports whether table has every one of the given columns.
func (c Columns) Has(table string, columns ...string) bool {
	cols, ok := c[table]
	if !ok {
		return false
	}
	for _, col := range columns {
		if !cols[col] {
			return false
		}
	}
	return true
}

// LoadColumns reads the column inventory of the current schema.
func LoadColumns(ctx context.Context, q Querier) (Columns, error) {
	rows, err := q.Query(ctx, "schema_columns")
	if err != nil {
		return nil, fmt.Errorf("load schema columns: %w", err)
	}
	defer rows.Close()

	cols := Columns{}
	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return nil, fmt.Errorf("scan schema column: %w", err)
		}
		if cols[table] == nil {
			cols[table] = map[string]bool{}
		}
		cols[table][column] = true
	}
	return cols, rows.Err()
}

// VariantFromColumns picks the schema variant from the available columns:
// integer set columns, then a season-scoped text result, then the classic
// partidos_new table. Unrecognized schemas fall back to classic.
func VariantFromColumns(cols Columns) volley.Variant {
	switch {
	case cols.Has("partidos", "sets_favor", "sets_contra"):
		return volley.VariantSets
	case cols.Has("partidos", "resultado", "local"):
		return volley.VariantHomeAway
	case cols.Has("partidos_new", "resultado"):
		return volley.VariantClassic
	default:
		return volley.VariantClassic
	}
}

// VariantOverride maps a SCHEMA_VARIANT value to a variant. ok is false for
// "auto", meaning the variant must be detected.
func VariantOverride(setting string) (volley.Variant, bool) {
	switch setting {
	case config.SchemaClassic:
		return volley.VariantClassic, true
	case config.SchemaSets:
		return volley.VariantSets, true
	case config.SchemaHomeAway:
		return volley.VariantHomeAway, true
	default:
		return "", false
	}
}

// DetectVariant resolves the schema variant, honoring an explicit override.
func DetectVariant(ctx context.Context, q Querier, setting string) (volley.Variant, error) {
	if v, ok := VariantOverride(setting); ok {
		return v, nil
	}
	cols, err := LoadColumns(ctx, q)
	if err != nil {
		return "", err
	}
	return VariantFromColumns(cols), nil
}
