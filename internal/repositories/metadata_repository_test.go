package repositories

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"etl_manager/internal/models"
)

func TestUpsertTargetIsIdempotent(t *testing.T) {
	repo := NewMetadataRepository(newPool(t), zap.NewNop().Sugar())
	ctx := context.Background()

	first := []models.ColumnDescriptor{{Name: "EMPNO", Type: "INTEGER", IsPrimaryKey: true}}
	second := []models.ColumnDescriptor{
		{Name: "EMPNO", Type: "INTEGER", IsPrimaryKey: true},
		{Name: "ENAME", Type: "VARCHAR", Nullable: true},
	}

	id1, err := repo.UpsertTarget(ctx, "EMP", first)
	require.NoError(t, err)
	id2, err := repo.UpsertTarget(ctx, "EMP", second)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	targets, err := repo.ListTargets(ctx)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, second, targets[0].Columns)
	assert.Equal(t, models.OriginTarget, targets[0].Origin)
}

func TestResolveIdentifierCreatesOneStub(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	repo := NewMetadataRepository(newPool(t), zap.New(core).Sugar())
	ctx := context.Background()

	id1, err := repo.ResolveIdentifier(ctx, "NEW_TABLE", models.OriginSource)
	require.NoError(t, err)
	id2, err := repo.ResolveIdentifier(ctx, "NEW_TABLE", models.OriginSource)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	stub, err := repo.GetByID(ctx, id1)
	require.NoError(t, err)
	require.NotNil(t, stub)
	assert.Equal(t, "NEW_TABLE", stub.TableName)
	assert.Equal(t, models.OriginSource, stub.Origin)
	assert.True(t, stub.IsStub())

	// Only the insert is logged, on the injected logger.
	stubLogs := logs.FilterMessage("created stub descriptor for unknown table reference").All()
	require.Len(t, stubLogs, 1)
	assert.Equal(t, "NEW_TABLE", stubLogs[0].ContextMap()["table_name"])
}

func TestResolveIdentifierByID(t *testing.T) {
	repo := NewMetadataRepository(newPool(t), zap.NewNop().Sugar())
	ctx := context.Background()

	id, err := repo.UpsertTarget(ctx, "DEPT", []models.ColumnDescriptor{{Name: "DEPTNO", Type: "INTEGER"}})
	require.NoError(t, err)

	got, err := repo.ResolveIdentifier(ctx, strconv.FormatInt(id, 10), models.OriginTarget)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	// A numeric value that names no descriptor falls back to name lookup.
	missing, err := repo.ResolveIdentifier(ctx, "999999", models.OriginTarget)
	require.NoError(t, err)
	assert.NotEqual(t, id, missing)
	stub, err := repo.GetByID(ctx, missing)
	require.NoError(t, err)
	assert.Equal(t, "999999", stub.TableName)
}

func TestResolveIdentifierKeepsOriginsApart(t *testing.T) {
	repo := NewMetadataRepository(newPool(t), zap.NewNop().Sugar())
	ctx := context.Background()

	target, err := repo.UpsertTarget(ctx, "EMP", nil)
	require.NoError(t, err)
	source, err := repo.ResolveIdentifier(ctx, "EMP", models.OriginSource)
	require.NoError(t, err)
	assert.NotEqual(t, target, source)

	again, err := repo.ResolveIdentifier(ctx, "EMP", models.OriginTarget)
	require.NoError(t, err)
	assert.Equal(t, target, again)
}

func TestResolveIdentifierRejectsBlank(t *testing.T) {
	repo := NewMetadataRepository(newPool(t), zap.NewNop().Sugar())

	_, err := repo.ResolveIdentifier(context.Background(), "  ", models.OriginSource)
	assert.ErrorIs(t, err, ErrEmptyReference)
}

func TestDeleteTargetsByName(t *testing.T) {
	repo := NewMetadataRepository(newPool(t), zap.NewNop().Sugar())
	ctx := context.Background()

	_, err := repo.UpsertTarget(ctx, "EMP", nil)
	require.NoError(t, err)
	_, err = repo.ResolveIdentifier(ctx, "EMP", models.OriginSource)
	require.NoError(t, err)

	n, err := repo.DeleteTargetsByName(ctx, "EMP")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DeleteTargetsByName(ctx, "EMP")
	require.NoError(t, err)
	assert.Zero(t, n)

	src, err := repo.GetByName(ctx, "EMP", models.OriginSource)
	require.NoError(t, err)
	assert.NotNil(t, src)
}
