package services

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"etl_manager/internal/metrics"
	"etl_manager/internal/models"
	"etl_manager/internal/storetest"
)

func strPtr(s string) *string { return &s }

var empColumns = []models.ColumnDescriptor{
	{Name: "EMPNO", Type: "NUMBER(4)", IsPrimaryKey: true, Comment: strPtr("Employee number")},
	{Name: "ENAME", Type: "VARCHAR2(10)", Nullable: true},
	{Name: "HIREDATE", Type: "DATE", Nullable: true},
	{Name: "SAL", Type: "NUMBER(7,2)", Nullable: true},
}

var (
	oracleSource = &models.Connection{ID: 1, Name: "ora", Role: models.RoleSource, Dialect: "ORACLE"}
	pgTarget     = &models.Connection{ID: 2, Name: "pg", Role: models.RoleTarget, Dialect: "POSTGRES"}
)

func mockOpener(t *testing.T) (func(context.Context, models.Connection) (*sqlx.DB, error), sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return func(context.Context, models.Connection) (*sqlx.DB, error) {
		return sqlx.NewDb(db, "pgx"), nil
	}, mock
}

func TestCreateTargetFromSourceMetadataOnly(t *testing.T) {
	meta := storetest.NewMetadata()
	schema := &storetest.Schema{Tables: map[string][]models.ColumnDescriptor{"EMP": empColumns}}
	svc := NewMetadataService(meta, schema, nil, zap.NewNop().Sugar())

	res, err := svc.CreateTargetFromSource(context.Background(), models.Selection{Source: oracleSource}, CreateTargetRequest{SourceTable: "EMP"})
	require.NoError(t, err)

	assert.False(t, res.Applied)
	assert.Equal(t, "EMP", res.Table.TableName)
	assert.Equal(t, []models.ColumnDescriptor{
		{Name: "EMPNO", Type: "INTEGER", IsPrimaryKey: true, Comment: strPtr("Employee number")},
		{Name: "ENAME", Type: "VARCHAR", Nullable: true},
		{Name: "HIREDATE", Type: "TIMESTAMP", Nullable: true},
		{Name: "SAL", Type: "NUMERIC", Nullable: true},
	}, res.Table.Columns)
	assert.Contains(t, res.DDL, "\t\"EMPNO\" INTEGER PRIMARY KEY\n")

	// Saving again keeps one descriptor with the same id.
	again, err := svc.CreateTargetFromSource(context.Background(), models.Selection{Source: oracleSource}, CreateTargetRequest{SourceTable: "EMP"})
	require.NoError(t, err)
	assert.Equal(t, res.Table.ID, again.Table.ID)

	targets, err := svc.TargetTables(context.Background())
	require.NoError(t, err)
	assert.Len(t, targets, 1)
}

func TestCreateTargetFromSourceAppliesDDL(t *testing.T) {
	open, mock := mockOpener(t)
	svc := NewMetadataService(storetest.NewMetadata(), &storetest.Schema{}, open, zap.NewNop().Sugar())

	mock.ExpectExec(`DROP TABLE IF EXISTS "EMP_COPY";`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE \"EMP_COPY\" (\n\t\"EMPNO\" INTEGER PRIMARY KEY\n  , \"ENAME\" VARCHAR\n);").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`COMMENT ON COLUMN "EMP_COPY"."EMPNO" IS 'Employee number';`).
		WillReturnError(errors.New("permission denied"))
	mock.ExpectClose()

	failures := metrics.PhysicalDDLFailuresTotal.WithLabelValues("comment")
	before := testutil.ToFloat64(failures)

	res, err := svc.CreateTargetFromSource(context.Background(),
		models.Selection{Source: oracleSource, Target: pgTarget},
		CreateTargetRequest{SourceTable: "EMP", TargetTable: "EMP_COPY", Columns: empColumns[:2]},
	)
	require.NoError(t, err)

	assert.True(t, res.Applied)
	assert.Equal(t, before+1, testutil.ToFloat64(failures))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTargetFromSourceKeepsMetadataWhenCreateFails(t *testing.T) {
	open, mock := mockOpener(t)
	meta := storetest.NewMetadata()
	svc := NewMetadataService(meta, &storetest.Schema{}, open, zap.NewNop().Sugar())

	mock.ExpectExec(`DROP TABLE IF EXISTS "EMP";`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE \"EMP\" (\n\t\"EMPNO\" INTEGER PRIMARY KEY\n);").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectClose()

	res, err := svc.CreateTargetFromSource(context.Background(),
		models.Selection{Target: pgTarget},
		CreateTargetRequest{SourceTable: "EMP", Columns: empColumns[:1]},
	)
	require.NoError(t, err)
	assert.False(t, res.Applied)

	stored, err := meta.GetByName(context.Background(), "EMP", models.OriginTarget)
	require.NoError(t, err)
	assert.NotNil(t, stored)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTargetFromSourceOpenFailure(t *testing.T) {
	open := func(context.Context, models.Connection) (*sqlx.DB, error) {
		return nil, errors.New("dial tcp: i/o timeout")
	}
	svc := NewMetadataService(storetest.NewMetadata(), &storetest.Schema{}, open, zap.NewNop().Sugar())

	res, err := svc.CreateTargetFromSource(context.Background(),
		models.Selection{Target: pgTarget},
		CreateTargetRequest{SourceTable: "EMP", Columns: empColumns},
	)
	require.NoError(t, err)
	assert.False(t, res.Applied)
}

func TestCreateTargetFromSourceRequiresName(t *testing.T) {
	svc := NewMetadataService(storetest.NewMetadata(), &storetest.Schema{}, nil, zap.NewNop().Sugar())

	_, err := svc.CreateTargetFromSource(context.Background(), models.Selection{}, CreateTargetRequest{SourceTable: " "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSourceTablesWithoutSelection(t *testing.T) {
	schema := &storetest.Schema{Tables: map[string][]models.ColumnDescriptor{"EMP": empColumns}}
	svc := NewMetadataService(storetest.NewMetadata(), schema, nil, zap.NewNop().Sugar())

	assert.Empty(t, svc.SourceTables(context.Background(), models.Selection{}))
	assert.Zero(t, schema.Calls)

	tables := svc.SourceTables(context.Background(), models.Selection{Source: oracleSource})
	require.Len(t, tables, 1)
	assert.Equal(t, "EMP", tables[0].TableName)
}

func TestTargetDDLAndDelete(t *testing.T) {
	meta := storetest.NewMetadata()
	svc := NewMetadataService(meta, &storetest.Schema{}, nil, zap.NewNop().Sugar())
	ctx := context.Background()

	_, err := svc.TargetDDL(ctx, "EMP")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.SaveTarget(ctx, "EMP", []models.ColumnDescriptor{{Name: "EMPNO", Type: "INTEGER", IsPrimaryKey: true}})
	require.NoError(t, err)

	out, err := svc.TargetDDL(ctx, "EMP")
	require.NoError(t, err)
	assert.Equal(t, "DROP TABLE IF EXISTS \"EMP\";\n\nCREATE TABLE \"EMP\" (\n\t\"EMPNO\" INTEGER PRIMARY KEY\n);", out)

	require.NoError(t, svc.DeleteTarget(ctx, "EMP"))
	assert.ErrorIs(t, svc.DeleteTarget(ctx, "EMP"), ErrNotFound)
}

func TestSaveTargetRejectsDuplicateColumns(t *testing.T) {
	meta := storetest.NewMetadata()
	svc := NewMetadataService(meta, &storetest.Schema{}, nil, zap.NewNop().Sugar())
	ctx := context.Background()

	_, err := svc.SaveTarget(ctx, "EMP", []models.ColumnDescriptor{
		{Name: "EMPNO", Type: "INTEGER"},
		{Name: "empno", Type: "VARCHAR"},
		{Name: "EMPNO ", Type: "TEXT"},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "empno")

	_, err = svc.CreateTargetFromSource(ctx, models.Selection{}, CreateTargetRequest{
		SourceTable: "EMP",
		Columns:     []models.ColumnDescriptor{{Name: "A", Type: "DATE"}, {Name: "a", Type: "DATE"}},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, meta.Len())
}

func TestSaveTargetRequiresName(t *testing.T) {
	meta := storetest.NewMetadata()
	svc := NewMetadataService(meta, &storetest.Schema{}, nil, zap.NewNop().Sugar())

	_, err := svc.SaveTarget(context.Background(), "   ", []models.ColumnDescriptor{{Name: "ID", Type: "INTEGER"}})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, meta.Len())

	saved, err := svc.SaveTarget(context.Background(), " DIM_EMP ", []models.ColumnDescriptor{{Name: "ID", Type: "INTEGER"}})
	require.NoError(t, err)
	assert.Equal(t, "DIM_EMP", saved.TableName)
}
