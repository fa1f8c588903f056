// Package ddl renders CREATE, DROP, and COMMENT statements for target
// tables.  Output is deterministic: identifiers are upper-cased and double
// quoted, columns keep descriptor order.
package ddl

import (
	"fmt"
	"strings"

	"etl_manager/internal/models"
)

// QuoteIdent upper-cases name and wraps it in double quotes, doubling any
// embedded quote.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(name)), `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func GenerateDropDDL(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", QuoteIdent(table))
}

// GenerateCreateDDL returns the drop statement, a blank line, and the create
// statement, ready to be shown or saved as a script.
func GenerateCreateDDL(table string, columns []models.ColumnDescriptor) string {
	return GenerateDropDDL(table) + "\n\n" + CreateTableStatement(table, columns)
}

// CreateTableStatement renders the CREATE TABLE statement alone. The first
// column is tab-indented and the rest lead with "  , ". A single key column
// is marked inline; a composite key becomes a trailing constraint line.
func CreateTableStatement(table string, columns []models.ColumnDescriptor) string {
	var keys []string
	for _, c := range columns {
		if c.IsPrimaryKey {
			keys = append(keys, QuoteIdent(c.Name))
		}
	}
	inlineKey := len(keys) == 1

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(QuoteIdent(table))
	b.WriteString(" (\n")

	for i, c := range columns {
		if i == 0 {
			b.WriteString("\t")
		} else {
			b.WriteString("  , ")
		}
		b.WriteString(QuoteIdent(c.Name))
		b.WriteString(" ")
		b.WriteString(strings.TrimSpace(c.Type))
		if c.IsPrimaryKey && inlineKey {
			b.WriteString(" PRIMARY KEY")
		}
		b.WriteString("\n")
	}

	if len(keys) > 1 {
		b.WriteString("  , PRIMARY KEY (")
		b.WriteString(strings.Join(keys, ", "))
		b.WriteString(")\n")
	}

	b.WriteString(");")
	return b.String()
}

// CommentStatements returns one COMMENT ON COLUMN per commented column.
func CommentStatements(table string, columns []models.ColumnDescriptor) []string {
	var out []string
	for _, c := range columns {
		if c.Comment == nil || *c.Comment == "" {
			continue
		}
		out = append(out, fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s;",
			QuoteIdent(table), QuoteIdent(c.Name), quoteLiteral(*c.Comment)))
	}
	return out
}
