package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"etl_manager/internal/ddl"
	"etl_manager/internal/dialect"
	"etl_manager/internal/metrics"
	"etl_manager/internal/models"
	"etl_manager/internal/typemap"
)

type MetadataService struct {
	store  MetadataStore
	schema SchemaReader
	open   dialect.Opener
	log    *zap.SugaredLogger
}

func NewMetadataService(store MetadataStore, schema SchemaReader, open dialect.Opener, log *zap.SugaredLogger) *MetadataService {
	if open == nil {
		open = dialect.Open
	}
	return &MetadataService{store: store, schema: schema, open: open, log: log}
}

// SourceTables introspects the selected source. Without a source connection
// the result is empty.
func (s *MetadataService) SourceTables(ctx context.Context, sel models.Selection) []models.TableDescriptor {
	if sel.Source == nil {
		s.log.Infow("no source connection selected, returning no tables")
		return []models.TableDescriptor{}
	}
	return s.schema.ListTables(ctx, *sel.Source)
}

func (s *MetadataService) SourceColumns(ctx context.Context, sel models.Selection, table string) []models.ColumnDescriptor {
	if sel.Source == nil {
		return []models.ColumnDescriptor{}
	}
	return s.schema.ListColumns(ctx, *sel.Source, table)
}

func (s *MetadataService) TargetTables(ctx context.Context) ([]models.TableDescriptor, error) {
	return s.store.ListTargets(ctx)
}

// SaveTarget stores the columns under a TARGET descriptor. The name is
// trimmed; column names must be non-empty and unique ignoring case.
func (s *MetadataService) SaveTarget(ctx context.Context, name string, columns []models.ColumnDescriptor) (*models.TableDescriptor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("target table name is required: %w", ErrInvalidInput)
	}
	if err := checkColumnNames(columns); err != nil {
		return nil, err
	}

	id, err := s.store.UpsertTarget(ctx, name, columns)
	if err != nil {
		return nil, fmt.Errorf("failed to save target %q: %w", name, err)
	}

	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("target %d: %w", id, ErrNotFound)
	}
	return t, nil
}

func checkColumnNames(columns []models.ColumnDescriptor) error {
	seen := make(map[string]struct{}, len(columns))
	for i, c := range columns {
		key := strings.ToUpper(strings.TrimSpace(c.Name))
		if key == "" {
			return fmt.Errorf("column %d has no name: %w", i, ErrInvalidInput)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate column %q: %w", c.Name, ErrInvalidInput)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// CreateTargetRequest names the source table to copy. Columns may be sent by
// the caller; when empty they are introspected from the selected source.
type CreateTargetRequest struct {
	SourceTable string                    `json:"source_table" binding:"required"`
	TargetTable string                    `json:"target_table"`
	Columns     []models.ColumnDescriptor `json:"columns"`
}

type CreateTargetResult struct {
	Table *models.TableDescriptor `json:"table"`
	DDL   string                  `json:"ddl"`
	// Applied is true when the DDL ran against the selected target.
	Applied bool `json:"applied"`
}

// CreateTargetFromSource maps the source columns to target types, stores the
// target descriptor, and when a target connection is selected creates the
// table there. The two steps are not atomic: a physical failure is logged
// and the stored descriptor is kept.
func (s *MetadataService) CreateTargetFromSource(ctx context.Context, sel models.Selection, req CreateTargetRequest) (*CreateTargetResult, error) {
	source := strings.TrimSpace(req.SourceTable)
	if source == "" {
		return nil, fmt.Errorf("source table: %w", ErrInvalidInput)
	}
	target := strings.TrimSpace(req.TargetTable)
	if target == "" {
		target = source
	}

	columns := req.Columns
	if len(columns) == 0 {
		columns = s.SourceColumns(ctx, sel, source)
	}

	mapped := make([]models.ColumnDescriptor, 0, len(columns))
	for _, c := range columns {
		mapped = append(mapped, models.ColumnDescriptor{
			Name:         c.Name,
			Type:         typemap.Map(c.Type),
			IsPrimaryKey: c.IsPrimaryKey,
			Nullable:     c.Nullable,
			Comment:      c.Comment,
		})
	}

	table, err := s.SaveTarget(ctx, target, mapped)
	if err != nil {
		return nil, err
	}

	res := &CreateTargetResult{
		Table: table,
		DDL:   ddl.GenerateCreateDDL(table.TableName, table.Columns),
	}
	if sel.Target != nil {
		res.Applied = s.applyDDL(ctx, *sel.Target, table.TableName, table.Columns)
	}

	s.log.Infow("target created from source",
		"source_table", source,
		"target_table", table.TableName,
		"columns", len(table.Columns),
		"applied", res.Applied,
	)
	return res, nil
}

// applyDDL drops and recreates the table on conn, then sets column comments
// one by one. It reports whether the table was created; comment failures
// only get logged.
func (s *MetadataService) applyDDL(ctx context.Context, conn models.Connection, table string, columns []models.ColumnDescriptor) bool {
	d, err := dialect.Parse(conn.Dialect)
	if err != nil {
		s.ddlFailed("dialect", conn, table, err)
		return false
	}

	db, err := s.open(ctx, conn)
	if err != nil {
		s.ddlFailed("open", conn, table, err)
		return false
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, ddl.GenerateDropDDL(table)); err != nil {
		s.ddlFailed("drop", conn, table, err)
		return false
	}
	if _, err := db.ExecContext(ctx, ddl.CreateTableStatement(table, columns)); err != nil {
		s.ddlFailed("create", conn, table, err)
		return false
	}

	if d.SupportsColumnComments() {
		for _, stmt := range ddl.CommentStatements(table, columns) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				s.ddlFailed("comment", conn, table, err)
			}
		}
	}
	return true
}

func (s *MetadataService) ddlFailed(stmt string, conn models.Connection, table string, err error) {
	metrics.PhysicalDDLFailuresTotal.WithLabelValues(stmt).Inc()
	s.log.Warnw("physical ddl failed",
		"statement", stmt,
		"connection", conn.Name,
		"table", table,
		"err", err,
	)
}

// TargetDDL renders the DDL for a stored target.
func (s *MetadataService) TargetDDL(ctx context.Context, name string) (string, error) {
	t, err := s.store.GetByName(ctx, name, models.OriginTarget)
	if err != nil {
		return "", err
	}
	if t == nil {
		return "", fmt.Errorf("target %q: %w", name, ErrNotFound)
	}
	return ddl.GenerateCreateDDL(t.TableName, t.Columns), nil
}

// DeleteTarget removes the stored descriptor only; the physical table is
// left alone.
func (s *MetadataService) DeleteTarget(ctx context.Context, name string) error {
	n, err := s.store.DeleteTargetsByName(ctx, name)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("target %q: %w", name, ErrNotFound)
	}
	s.log.Infow("target deleted", "table_name", name, "rows", n)
	return nil
}
