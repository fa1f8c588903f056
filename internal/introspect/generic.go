package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"etl_manager/internal/models"
)

// genericReader reads the information_schema views shared by Postgres, MySQL
// and SQL Server. They carry no comments.
type genericReader struct{}

const genericTablesQuery = `
	SELECT table_name
	FROM information_schema.tables
	WHERE table_schema = ?
		AND table_type = 'BASE TABLE'
	ORDER BY table_name`

const genericColumnsQuery = `
	SELECT table_name, column_name, data_type, character_maximum_length,
		numeric_precision, numeric_scale, is_nullable
	FROM information_schema.columns
	WHERE table_schema = ?`

const genericPrimaryKeysQuery = `
	SELECT kcu.table_name, kcu.column_name
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
		ON tc.constraint_name = kcu.constraint_name
		AND tc.table_schema = kcu.table_schema
		AND tc.table_name = kcu.table_name
	WHERE tc.constraint_type = 'PRIMARY KEY'
		AND tc.table_schema = ?`

func (genericReader) tables(ctx context.Context, db *sqlx.DB, schema string) ([]models.TableDescriptor, error) {
	rows, err := db.QueryxContext(ctx, db.Rebind(genericTablesQuery), schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := []models.TableDescriptor{}
	for rows.Next() {
		var t models.TableDescriptor
		if err := rows.Scan(&t.TableName); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	return tables, rows.Err()
}

func (genericReader) columns(ctx context.Context, db *sqlx.DB, schema, table string) (map[string][]models.ColumnDescriptor, error) {
	query, args := genericColumnsQuery, []any{schema}
	if table != "" {
		query += " AND table_name = ?"
		args = append(args, table)
	}
	query += " ORDER BY table_name, ordinal_position"

	rows, err := db.QueryxContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]models.ColumnDescriptor{}
	for rows.Next() {
		var (
			tableName, nullable string
			col                 models.ColumnDescriptor
			length              sql.NullInt64
			precision, scale    sql.NullInt64
		)
		if err := rows.Scan(&tableName, &col.Name, &col.Type, &length, &precision, &scale, &nullable); err != nil {
			return nil, err
		}
		col.Type = genericType(col.Type, length, precision, scale)
		col.Nullable = strings.EqualFold(nullable, "YES")
		out[tableName] = append(out[tableName], col)
	}

	return out, rows.Err()
}

func (genericReader) primaryKeys(ctx context.Context, db *sqlx.DB, schema, table string) (map[string]map[string]bool, error) {
	query, args := genericPrimaryKeysQuery, []any{schema}
	if table != "" {
		query += " AND tc.table_name = ?"
		args = append(args, table)
	}

	rows, err := db.QueryxContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanKeySet(rows)
}

// genericType appends length to character types and precision/scale to
// exact numerics; integer and floating types keep their bare name.
func genericType(dataType string, length, precision, scale sql.NullInt64) string {
	t := strings.ToLower(dataType)
	switch {
	case strings.Contains(t, "char") && length.Valid && length.Int64 > 0:
		return fmt.Sprintf("%s(%d)", t, length.Int64)
	case (t == "numeric" || t == "decimal") && precision.Valid:
		if scale.Valid && scale.Int64 > 0 {
			return fmt.Sprintf("%s(%d,%d)", t, precision.Int64, scale.Int64)
		}
		return fmt.Sprintf("%s(%d)", t, precision.Int64)
	default:
		return t
	}
}
