package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"etl_manager/internal/models"
)

type MappingService struct {
	mappings MappingStore
	meta     MetadataStore
	schema   SchemaReader
	log      *zap.SugaredLogger
}

func NewMappingService(mappings MappingStore, meta MetadataStore, schema SchemaReader, log *zap.SugaredLogger) *MappingService {
	return &MappingService{mappings: mappings, meta: meta, schema: schema, log: log}
}

// SaveMappingRequest references tables by descriptor id or by name. Names
// that resolve to nothing create empty stub descriptors.
type SaveMappingRequest struct {
	SourceRef  string              `json:"source_table" binding:"required"`
	TargetRef  string              `json:"target_table" binding:"required"`
	Rules      []models.ColumnRule `json:"mappings"`
	ExistingID *int64              `json:"mapping_id,omitempty"`
}

// SaveMapping validates the rules, then resolves both references and writes
// the mapping in a single transaction.
func (s *MappingService) SaveMapping(ctx context.Context, req SaveMappingRequest) (*models.Mapping, error) {
	if strings.TrimSpace(req.SourceRef) == "" || strings.TrimSpace(req.TargetRef) == "" {
		return nil, fmt.Errorf("source and target table are required: %w", ErrInvalidInput)
	}
	if err := models.ValidateRules(req.Rules); err != nil {
		return nil, err
	}

	m, err := s.mappings.Save(ctx, req.SourceRef, req.TargetRef, req.Rules, req.ExistingID)
	if err != nil {
		return nil, fmt.Errorf("failed to save mapping: %w", err)
	}

	s.log.Infow("mapping saved",
		"id", m.ID,
		"source_table_id", m.SourceTableID,
		"target_table_id", m.TargetTableID,
		"rules", len(m.Rules),
		"updated", req.ExistingID != nil && *req.ExistingID == m.ID,
	)
	return m, nil
}

// DeleteMapping reports false when no mapping had the id.
func (s *MappingService) DeleteMapping(ctx context.Context, id int64) (bool, error) {
	ok, err := s.mappings.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		s.log.Infow("mapping deleted", "id", id)
	}
	return ok, nil
}

func (s *MappingService) ListMappings(ctx context.Context, sourceFilter, targetFilter string) ([]models.MappingSummary, error) {
	return s.mappings.List(ctx, sourceFilter, targetFilter)
}

func (s *MappingService) GetMapping(ctx context.Context, id int64) (*models.Mapping, error) {
	m, err := s.mappings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("mapping %d: %w", id, ErrNotFound)
	}
	return m, nil
}

func (s *MappingService) FindByTables(ctx context.Context, sourceID, targetID int64) (*models.Mapping, error) {
	m, err := s.mappings.FindByTables(ctx, sourceID, targetID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("mapping %d -> %d: %w", sourceID, targetID, ErrNotFound)
	}
	return m, nil
}

// GetMappingDetail adds descriptor names, live source columns read from the
// selected source, and the stored target columns. Live columns may no longer
// match the rules if the source table changed. Stub descriptors are flagged,
// and rule targets missing from a populated target are listed.
func (s *MappingService) GetMappingDetail(ctx context.Context, sel models.Selection, id int64) (*models.MappingDetail, error) {
	m, err := s.GetMapping(ctx, id)
	if err != nil {
		return nil, err
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
		return nil, fmt.Errorf("descriptors of mapping %d: %w", id, ErrNotFound)
	}

	detail := &models.MappingDetail{
		Mapping:         *m,
		SourceTableName: src.TableName,
		TargetTableName: tgt.TableName,
		SourceColumns:   []models.ColumnDescriptor{},
		TargetColumns:   tgt.Columns,
		SourceIsStub:    src.IsStub(),
		TargetIsStub:    tgt.IsStub(),
	}
	if !tgt.IsStub() {
		for _, rule := range m.Rules {
			if _, ok := tgt.Column(rule.TargetColumn); !ok {
				detail.MissingTargets = append(detail.MissingTargets, rule.TargetColumn)
			}
		}
	}
	if sel.Source != nil {
		detail.SourceColumns = s.schema.ListColumns(ctx, *sel.Source, src.TableName)
	}
	return detail, nil
}
