// Package introspect reads table and column descriptors from a live source
// or target connection.
//
// Reads are best effort.  Any failure to open, ping, query, or scan is logged,
// counted, and turned into an empty result; callers never see an error.
package introspect

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"etl_manager/internal/dialect"
	"etl_manager/internal/metrics"
	"etl_manager/internal/models"
)

// reader is one way of reading a catalog. An empty table argument means
// every table of the schema.
type reader interface {
	tables(ctx context.Context, db *sqlx.DB, schema string) ([]models.TableDescriptor, error)
	columns(ctx context.Context, db *sqlx.DB, schema, table string) (map[string][]models.ColumnDescriptor, error)
	primaryKeys(ctx context.Context, db *sqlx.DB, schema, table string) (map[string]map[string]bool, error)
}

func readerFor(s dialect.Strategy) reader {
	switch s {
	case dialect.StrategyCatalog:
		return catalogReader{}
	case dialect.StrategyGeneric:
		return genericReader{}
	}
	panic("introspect: unknown strategy " + s.String())
}

type Introspector struct {
	open dialect.Opener
	log  *zap.SugaredLogger
}

func New(open dialect.Opener, log *zap.SugaredLogger) *Introspector {
	if open == nil {
		open = dialect.Open
	}
	return &Introspector{open: open, log: log}
}

// ListTables returns every base table of the connection's schema with its
// columns, ordered by table name.
func (i *Introspector) ListTables(ctx context.Context, conn models.Connection) []models.TableDescriptor {
	empty := []models.TableDescriptor{}

	d, db, ok := i.connect(ctx, conn)
	if !ok {
		return empty
	}
	defer db.Close()

	r := readerFor(d.Strategy())
	schema := d.Schema(conn)

	tables, err := r.tables(ctx, db, schema)
	if err != nil {
		i.fail(d.Name(), "tables", conn, err)
		return empty
	}
	cols, err := r.columns(ctx, db, schema, "")
	if err != nil {
		i.fail(d.Name(), "columns", conn, err)
		return empty
	}
	pks, err := r.primaryKeys(ctx, db, schema, "")
	if err != nil {
		i.fail(d.Name(), "primary_keys", conn, err)
		return empty
	}

	for n := range tables {
		tables[n].Origin = models.OriginSource
		tables[n].Columns = withKeys(cols[tables[n].TableName], pks[tables[n].TableName])
	}
	return tables
}

// ListColumns returns the columns of one table in catalog ordinal order.
func (i *Introspector) ListColumns(ctx context.Context, conn models.Connection, table string) []models.ColumnDescriptor {
	empty := []models.ColumnDescriptor{}

	d, db, ok := i.connect(ctx, conn)
	if !ok {
		return empty
	}
	defer db.Close()

	r := readerFor(d.Strategy())
	schema := d.Schema(conn)

	cols, err := r.columns(ctx, db, schema, table)
	if err != nil {
		i.fail(d.Name(), "columns", conn, err)
		return empty
	}
	pks, err := r.primaryKeys(ctx, db, schema, table)
	if err != nil {
		i.fail(d.Name(), "primary_keys", conn, err)
		return empty
	}

	return withKeys(cols[table], pks[table])
}

func (i *Introspector) connect(ctx context.Context, conn models.Connection) (dialect.Dialect, *sqlx.DB, bool) {
	d, err := dialect.Parse(conn.Dialect)
	if err != nil {
		i.fail(conn.Dialect, "dialect", conn, err)
		return nil, nil, false
	}

	db, err := i.open(ctx, conn)
	if err != nil {
		i.fail(d.Name(), "open", conn, err)
		return nil, nil, false
	}
	return d, db, true
}

func (i *Introspector) fail(dialectName, stage string, conn models.Connection, err error) {
	metrics.IntrospectionFailuresTotal.WithLabelValues(dialectName, stage).Inc()
	i.log.Warnw("introspection failed, returning empty result",
		"connection", conn.Name,
		"dialect", dialectName,
		"stage", stage,
		"err", err,
	)
}

func withKeys(cols []models.ColumnDescriptor, pks map[string]bool) []models.ColumnDescriptor {
	if cols == nil {
		return []models.ColumnDescriptor{}
	}
	for n := range cols {
		cols[n].IsPrimaryKey = pks[cols[n].Name]
	}
	return cols
}

func nullableString(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
