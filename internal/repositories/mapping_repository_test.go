package repositories

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"etl_manager/internal/models"
)

func TestMappingRoundTrip(t *testing.T) {
	repo := NewMappingRepository(newPool(t), zap.NewNop().Sugar())
	ctx := context.Background()

	rules := []models.ColumnRule{
		{SourceColumn: "EMPNO", TargetColumn: "EMPNO", RuleType: models.RuleDirect},
		{SourceColumn: "COMM", TargetColumn: "COMM", RuleType: models.RuleNVL},
		{TargetColumn: "LOADED_AT", RuleType: models.RuleCustom, CustomExpression: "NOW()"},
	}

	saved, err := repo.Save(ctx, "EMP", "EMP", rules, nil)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rules, got.Rules)
	assert.NotEqual(t, got.SourceTableID, got.TargetTableID)
}

func TestMappingSaveUpdatesExisting(t *testing.T) {
	pool := newPool(t)
	repo := NewMappingRepository(pool, zap.NewNop().Sugar())
	meta := NewMetadataRepository(pool, zap.NewNop().Sugar())
	ctx := context.Background()

	first, err := repo.Save(ctx, "EMP", "EMP", []models.ColumnRule{{SourceColumn: "A", TargetColumn: "A", RuleType: models.RuleDirect}}, nil)
	require.NoError(t, err)

	deptID, err := meta.UpsertTarget(ctx, "DEPT", nil)
	require.NoError(t, err)

	updated, err := repo.Save(ctx, "EMP", strconv.FormatInt(deptID, 10), []models.ColumnRule{{SourceColumn: "B", TargetColumn: "B", RuleType: models.RuleDirect}}, &first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, updated.ID)
	assert.Equal(t, deptID, updated.TargetTableID)

	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", got.Rules[0].SourceColumn)

	// An unknown existing id falls through to an insert.
	missing := int64(424242)
	inserted, err := repo.Save(ctx, "EMP", "EMP", nil, &missing)
	require.NoError(t, err)
	assert.NotEqual(t, missing, inserted.ID)
	assert.Empty(t, inserted.Rules)
}

func TestMappingListFilters(t *testing.T) {
	repo := NewMappingRepository(newPool(t), zap.NewNop().Sugar())
	ctx := context.Background()

	_, err := repo.Save(ctx, "EMP", "EMP_TGT", nil, nil)
	require.NoError(t, err)
	_, err = repo.Save(ctx, "DEPT", "DEPT_TGT", nil, nil)
	require.NoError(t, err)
	last, err := repo.Save(ctx, "EMP_HIST", "DEPT_TGT", nil, nil)
	require.NoError(t, err)

	all, err := repo.List(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, last.ID, all[0].ID)

	emp, err := repo.List(ctx, "emp", "")
	require.NoError(t, err)
	assert.Len(t, emp, 2)

	both, err := repo.List(ctx, "emp", "dept")
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "EMP_HIST", both[0].SourceTableName)
	assert.Equal(t, "DEPT_TGT", both[0].TargetTableName)

	// LIKE wildcards in a filter are matched literally.
	literal, err := repo.List(ctx, "P_H", "")
	require.NoError(t, err)
	assert.Len(t, literal, 1)
	literal, err = repo.List(ctx, "EMP%", "")
	require.NoError(t, err)
	assert.Empty(t, literal)
}

func TestMappingFindByTables(t *testing.T) {
	repo := NewMappingRepository(newPool(t), zap.NewNop().Sugar())
	ctx := context.Background()

	_, err := repo.Save(ctx, "EMP", "EMP", nil, nil)
	require.NoError(t, err)
	newest, err := repo.Save(ctx, "EMP", "EMP", nil, nil)
	require.NoError(t, err)

	got, err := repo.FindByTables(ctx, newest.SourceTableID, newest.TargetTableID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, newest.ID, got.ID)

	none, err := repo.FindByTables(ctx, newest.TargetTableID, newest.SourceTableID)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestMappingDeleteIsReported(t *testing.T) {
	repo := NewMappingRepository(newPool(t), zap.NewNop().Sugar())
	ctx := context.Background()

	ok, err := repo.Delete(ctx, 12345)
	require.NoError(t, err)
	assert.False(t, ok)

	m, err := repo.Save(ctx, "EMP", "EMP", nil, nil)
	require.NoError(t, err)

	ok, err = repo.Delete(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeletingTargetCascadesToMappings(t *testing.T) {
	pool := newPool(t)
	repo := NewMappingRepository(pool, zap.NewNop().Sugar())
	ctx := context.Background()

	m, err := repo.Save(ctx, "EMP", "EMP", nil, nil)
	require.NoError(t, err)

	_, err = NewMetadataRepository(pool, zap.NewNop().Sugar()).DeleteTargetsByName(ctx, "EMP")
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
