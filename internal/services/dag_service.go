package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"etl_manager/internal/metrics"
	"etl_manager/internal/models"
	"etl_manager/internal/render"
)

type DagService struct {
	mappings  MappingStore
	templates TemplateStore
	meta      MetadataStore
	history   HistoryStore
	log       *zap.SugaredLogger
	now       func() time.Time
}

func NewDagService(mappings MappingStore, templates TemplateStore, meta MetadataStore, history HistoryStore, log *zap.SugaredLogger) *DagService {
	return &DagService{
		mappings:  mappings,
		templates: templates,
		meta:      meta,
		history:   history,
		log:       log,
		now:       time.Now,
	}
}

type GenerateRequest struct {
	MappingID  int64 `json:"mapping_id" binding:"required"`
	TemplateID int64 `json:"template_id" binding:"required"`
}

// Generate renders the template against the mapping and appends the result
// to the history. Template failures come back as *render.TemplateError and
// leave the history untouched.
func (s *DagService) Generate(ctx context.Context, mappingID, templateID int64) (*models.GenerationHistory, error) {
	m, err := s.mappings.GetByID(ctx, mappingID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("mapping %d: %w", mappingID, ErrNotFound)
	}

	tpl, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, fmt.Errorf("template %d: %w", templateID, ErrNotFound)
	}

	src, err := s.meta.GetByID(ctx, m.SourceTableID)
	if err != nil {
		return nil, err
	}
	tgt, err := s.meta.GetByID(ctx, m.TargetTableID)
	if err != nil {
		return nil, err
	}
	if src == nil || tgt == nil {
		return nil, fmt.Errorf("descriptors of mapping %d: %w", mappingID, ErrNotFound)
	}

	rctx := render.BuildContext(src.TableName, tgt.TableName, m.Rules, s.now())
	out, err := render.Render(tpl.Body, rctx)
	if err != nil {
		metrics.TemplateErrorsTotal.Inc()
		s.log.Warnw("template render failed", "template_id", templateID, "mapping_id", mappingID, "err", err)
		return nil, err
	}

	h := &models.GenerationHistory{
		DagID:        rctx["dag_id"].(string),
		MappingID:    m.ID,
		RenderedText: out,
	}
	if err := s.history.Create(ctx, h); err != nil {
		return nil, fmt.Errorf("failed to save history: %w", err)
	}

	metrics.DagsGeneratedTotal.Inc()
	s.log.Infow("dag generated", "history_id", h.ID, "dag_id", h.DagID, "mapping_id", m.ID, "template_id", tpl.ID)
	return h, nil
}

// History lists generated artifacts, newest first.
func (s *DagService) History(ctx context.Context, limit int) ([]models.GenerationHistory, error) {
	return s.history.List(ctx, limit)
}

func (s *DagService) RenderedText(ctx context.Context, historyID int64) (string, error) {
	h, err := s.history.GetByID(ctx, historyID)
	if err != nil {
		return "", err
	}
	if h == nil {
		return "", fmt.Errorf("history %d: %w", historyID, ErrNotFound)
	}
	return h.RenderedText, nil
}
