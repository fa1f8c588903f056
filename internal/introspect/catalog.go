package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"etl_manager/internal/models"
)

// catalogReader reads Oracle's ALL_* dictionary views. Comments are LEFT
// joined so tables and columns without one come back with a nil comment.
type catalogReader struct{}

const catalogTablesQuery = `
	SELECT t.table_name, c.comments
	FROM all_tables t
	LEFT JOIN all_tab_comments c
		ON c.owner = t.owner AND c.table_name = t.table_name
	WHERE t.owner = ?
	ORDER BY t.table_name`

const catalogColumnsQuery = `
	SELECT c.table_name, c.column_name, c.data_type, c.data_length,
		c.data_precision, c.data_scale, c.nullable, cc.comments
	FROM all_tab_columns c
	LEFT JOIN all_col_comments cc
		ON cc.owner = c.owner AND cc.table_name = c.table_name AND cc.column_name = c.column_name
	WHERE c.owner = ?`

const catalogPrimaryKeysQuery = `
	SELECT cols.table_name, cols.column_name
	FROM all_constraints cons
	JOIN all_cons_columns cols
		ON cols.owner = cons.owner AND cols.constraint_name = cons.constraint_name
	WHERE cons.constraint_type = 'P'
		AND cons.owner = ?`

func (catalogReader) tables(ctx context.Context, db *sqlx.DB, owner string) ([]models.TableDescriptor, error) {
	rows, err := db.QueryxContext(ctx, db.Rebind(catalogTablesQuery), owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := []models.TableDescriptor{}
	for rows.Next() {
		var t models.TableDescriptor
		if err := rows.Scan(&t.TableName, &t.Comment); err != nil {
			return nil, err
		}
		t.Comment = nullableString(t.Comment)
		tables = append(tables, t)
	}

	return tables, rows.Err()
}

func (catalogReader) columns(ctx context.Context, db *sqlx.DB, owner, table string) (map[string][]models.ColumnDescriptor, error) {
	query, args := catalogColumnsQuery, []any{owner}
	if table != "" {
		query += " AND c.table_name = ?"
		args = append(args, table)
	}
	query += " ORDER BY c.table_name, c.column_id"

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
		if err := rows.Scan(&tableName, &col.Name, &col.Type, &length, &precision, &scale, &nullable, &col.Comment); err != nil {
			return nil, err
		}
		col.Type = oracleType(col.Type, length, precision, scale)
		col.Nullable = nullable == "Y"
		col.Comment = nullableString(col.Comment)
		out[tableName] = append(out[tableName], col)
	}

	return out, rows.Err()
}

func (catalogReader) primaryKeys(ctx context.Context, db *sqlx.DB, owner, table string) (map[string]map[string]bool, error) {
	query, args := catalogPrimaryKeysQuery, []any{owner}
	if table != "" {
		query += " AND cons.table_name = ?"
		args = append(args, table)
	}

	rows, err := db.QueryxContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanKeySet(rows)
}

// oracleType rebuilds the declared type from its dictionary parts, e.g.
// NUMBER with precision 7 and scale 2 becomes NUMBER(7,2).
func oracleType(dataType string, length, precision, scale sql.NullInt64) string {
	switch t := strings.ToUpper(dataType); {
	case t == "NUMBER" || t == "FLOAT":
		if !precision.Valid {
			return t
		}
		if scale.Valid && scale.Int64 > 0 {
			return fmt.Sprintf("%s(%d,%d)", t, precision.Int64, scale.Int64)
		}
		return fmt.Sprintf("%s(%d)", t, precision.Int64)
	case strings.Contains(t, "CHAR") || t == "RAW":
		if length.Valid && length.Int64 > 0 {
			return fmt.Sprintf("%s(%d)", t, length.Int64)
		}
		return t
	default:
		return t
	}
}

func scanKeySet(rows *sqlx.Rows) (map[string]map[string]bool, error) {
	out := map[string]map[string]bool{}
	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return nil, err
		}
		if out[table] == nil {
			out[table] = map[string]bool{}
		}
		out[table][column] = true
	}
	return out, rows.Err()
}
