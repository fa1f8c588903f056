// Package typemap translates source column types into target (Postgres-family)
// column types.
package typemap

import "strings"

const (
	Numeric   = "NUMERIC"
	Integer   = "INTEGER"
	Varchar   = "VARCHAR"
	Timestamp = "TIMESTAMP"
	Text      = "TEXT"
)

var (
	numericTokens  = []string{"NUMBER", "NUMERIC", "DECIMAL", "INTEGER", "BIGINT", "SMALLINT", "TINYINT"}
	charTokens     = []string{"VARCHAR", "CHAR"}
	temporalTokens = []string{"DATE", "TIME"}
)

// Map returns the target type for a raw source type. It never fails; types it
// does not recognize become TEXT.
//
// Order matters: a numeric type carrying a scale ("NUMBER(7,2)") must land on
// NUMERIC before the plain integer rule can see it.
func Map(sourceType string) string {
	t := strings.ToUpper(strings.TrimSpace(sourceType))

	switch {
	case isNumeric(t) && strings.Contains(t, ","):
		return Numeric
	case isNumeric(t):
		return Integer
	case containsAny(t, charTokens):
		return Varchar
	case containsAny(t, temporalTokens):
		return Timestamp
	default:
		return Text
	}
}

// isNumeric also accepts a bare INT, but not INTERVAL or POINT.
func isNumeric(t string) bool {
	if t == "INT" || strings.HasPrefix(t, "INT(") || strings.HasPrefix(t, "INT ") {
		return true
	}
	return containsAny(t, numericTokens)
}

func containsAny(s string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}
