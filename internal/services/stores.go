package services

import (
	"context"

	"etl_manager/internal/models"
)

// The interfaces below are what the services need from persistence and
// introspection. The repositories and introspect packages satisfy them.

type MetadataStore interface {
	UpsertTarget(ctx context.Context, name string, columns []models.ColumnDescriptor) (int64, error)
	ResolveIdentifier(ctx context.Context, value string, origin models.Origin) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.TableDescriptor, error)
	GetByName(ctx context.Context, name string, origin models.Origin) (*models.TableDescriptor, error)
	ListTargets(ctx context.Context) ([]models.TableDescriptor, error)
	DeleteTargetsByName(ctx context.Context, name string) (int64, error)
}

type MappingStore interface {
	Save(ctx context.Context, sourceRef, targetRef string, rules []models.ColumnRule, existingID *int64) (*models.Mapping, error)
	GetByID(ctx context.Context, id int64) (*models.Mapping, error)
	FindByTables(ctx context.Context, sourceID, targetID int64) (*models.Mapping, error)
	List(ctx context.Context, sourceFilter, targetFilter string) ([]models.MappingSummary, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type TemplateStore interface {
	Create(ctx context.Context, t *models.Template) error
	GetByID(ctx context.Context, id int64) (*models.Template, error)
	List(ctx context.Context) ([]models.Template, error)
	Replace(ctx context.Context, t *models.Template) (bool, error)
}

type HistoryStore interface {
	Create(ctx context.Context, h *models.GenerationHistory) error
	List(ctx context.Context, limit int) ([]models.GenerationHistory, error)
	GetByID(ctx context.Context, id int64) (*models.GenerationHistory, error)
}

type ConnectionStore interface {
	Create(ctx context.Context, c *models.Connection) error
	GetByID(ctx context.Context, id int64) (*models.Connection, error)
	ActiveConnection(ctx context.Context, role models.Role) (*models.Connection, error)
	List(ctx context.Context) ([]models.Connection, error)
	Update(ctx context.Context, c *models.Connection) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// SchemaReader is best effort: failures come back as empty slices.
type SchemaReader interface {
	ListTables(ctx context.Context, conn models.Connection) []models.TableDescriptor
	ListColumns(ctx context.Context, conn models.Connection, table string) []models.ColumnDescriptor
}
