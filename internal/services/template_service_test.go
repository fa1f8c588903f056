package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"etl_manager/internal/models"
	"etl_manager/internal/render"
	"etl_manager/internal/storetest"
)

func TestTemplateCreateValidatesSyntax(t *testing.T) {
	store := storetest.NewTemplates()
	svc := NewTemplateService(store, zap.NewNop().Sugar())
	ctx := context.Background()

	err := svc.Create(ctx, &models.Template{Name: "bad", DialectTag: "X", Body: "{{ dag_id|nope }}"})
	require.Error(t, err)
	assert.True(t, render.IsTemplateError(err))
	assert.Zero(t, store.Len())

	good := &models.Template{Name: "good", DialectTag: "X", Body: "{{ dag_id }}"}
	require.NoError(t, svc.Create(ctx, good))

	got, err := svc.Get(ctx, good.ID)
	require.NoError(t, err)
	assert.Equal(t, "{{ dag_id }}", got.Body)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestTemplateReplace(t *testing.T) {
	svc := NewTemplateService(storetest.NewTemplates(), zap.NewNop().Sugar())
	ctx := context.Background()

	tpl := &models.Template{Name: "a", DialectTag: "X", Body: "v1"}
	require.NoError(t, svc.Create(ctx, tpl))

	require.NoError(t, svc.Replace(ctx, tpl.ID, &models.Template{Name: "a", DialectTag: "Y", Body: "v2"}))
	got, err := svc.Get(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "Y", got.DialectTag)
	assert.Equal(t, "v2", got.Body)

	err = svc.Replace(ctx, tpl.ID, &models.Template{Name: "a", DialectTag: "Y", Body: "{% if %}"})
	assert.True(t, render.IsTemplateError(err))

	err = svc.Replace(ctx, 999, &models.Template{Name: "a", DialectTag: "Y", Body: "v3"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
