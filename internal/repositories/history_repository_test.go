package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etl_manager/internal/models"
)

func TestHistoryNewestFirst(t *testing.T) {
	repo := NewHistoryRepository(newPool(t))
	ctx := context.Background()

	base := time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC)
	older := &models.GenerationHistory{DagID: "etl_EMP_to_EMP_20240131", MappingID: 1, RenderedText: "one", CreatedAt: base}
	newer := &models.GenerationHistory{DagID: "etl_EMP_to_EMP_20240131", MappingID: 1, RenderedText: "two", CreatedAt: base.Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	list, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Empty(t, list[0].RenderedText)

	got, err := repo.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "one", got.RenderedText)

	missing, err := repo.GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestHistoryListIsUncappedWithoutLimit(t *testing.T) {
	repo := NewHistoryRepository(newPool(t))
	ctx := context.Background()

	base := time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 120; i++ {
		h := &models.GenerationHistory{DagID: "etl_A_to_B_20240131", MappingID: 1, RenderedText: "x", CreatedAt: base.Add(time.Duration(i) * time.Second)}
		require.NoError(t, repo.Create(ctx, h))
	}

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 120)

	some, err := repo.List(ctx, 5)
	require.NoError(t, err)
	require.Len(t, some, 5)
	assert.Equal(t, all[0].ID, some[0].ID)
}
