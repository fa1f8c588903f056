package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"etl_manager/internal/metrics"
	"etl_manager/internal/models"
	"etl_manager/internal/render"
)

type TemplateService struct {
	templates TemplateStore
	log       *zap.SugaredLogger
}

func NewTemplateService(templates TemplateStore, log *zap.SugaredLogger) *TemplateService {
	return &TemplateService{templates: templates, log: log}
}

// Create parses the body before storing it so that broken templates are
// rejected at save time.
func (s *TemplateService) Create(ctx context.Context, t *models.Template) error {
	if err := render.Validate(t.Body); err != nil {
		metrics.TemplateErrorsTotal.Inc()
		return err
	}
	if err := s.templates.Create(ctx, t); err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}
	s.log.Infow("template created", "id", t.ID, "name", t.Name, "type", t.DialectTag)
	return nil
}

func (s *TemplateService) Get(ctx context.Context, id int64) (*models.Template, error) {
	t, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("template %d: %w", id, ErrNotFound)
	}
	return t, nil
}

func (s *TemplateService) List(ctx context.Context) ([]models.Template, error) {
	return s.templates.List(ctx)
}

// Replace overwrites the whole template; there is no partial edit.
func (s *TemplateService) Replace(ctx context.Context, id int64, t *models.Template) error {
	if err := render.Validate(t.Body); err != nil {
		metrics.TemplateErrorsTotal.Inc()
		return err
	}

	t.ID = id
	ok, err := s.templates.Replace(ctx, t)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("template %d: %w", id, ErrNotFound)
	}
	s.log.Infow("template replaced", "id", id)
	return nil
}
