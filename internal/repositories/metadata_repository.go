package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"etl_manager/internal/metrics"
	"etl_manager/internal/models"
)

// ErrEmptyReference is returned when a table reference is blank.
var ErrEmptyReference = errors.New("empty table reference")

type MetadataRepository struct {
	pool *pgxpool.Pool
	log  *zap.SugaredLogger
}

func NewMetadataRepository(pool *pgxpool.Pool, log *zap.SugaredLogger) *MetadataRepository {
	return &MetadataRepository{pool: pool, log: log}
}

const descriptorColumns = `id, table_name, origin, columns, comment, updated_at`

// UpsertTarget stores the column list for a TARGET descriptor. Saving an
// existing name replaces its columns and timestamp and keeps its id.
func (r *MetadataRepository) UpsertTarget(ctx context.Context, name string, columns []models.ColumnDescriptor) (int64, error) {
	t := models.TableDescriptor{TableName: name, Origin: models.OriginTarget, Columns: columns}
	t.Prepare()
	if t.TableName == "" {
		return 0, ErrEmptyReference
	}

	query := `
		INSERT INTO table_descriptors (table_name, origin, columns, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (table_name, origin)
		DO UPDATE SET columns = EXCLUDED.columns, updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query, t.TableName, t.Origin, t.Columns, t.UpdatedAt).Scan(&id)
	return id, err
}

// ResolveIdentifier applies create-if-absent resolution: a numeric value
// naming an existing descriptor resolves to it, otherwise value is a table
// name looked up under origin, and a miss creates an empty stub.
func (r *MetadataRepository) ResolveIdentifier(ctx context.Context, value string, origin models.Origin) (int64, error) {
	var id int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		id, err = resolveIdentifier(ctx, tx, r.log, value, origin)
		return err
	})
	return id, err
}

func resolveIdentifier(ctx context.Context, q dbtx, log *zap.SugaredLogger, value string, origin models.Origin) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, ErrEmptyReference
	}

	var id int64

	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		err := q.QueryRow(ctx, `SELECT id FROM table_descriptors WHERE id = $1`, n).Scan(&id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return 0, err
		}
	}

	err := q.QueryRow(ctx,
		`SELECT id FROM table_descriptors WHERE table_name = $1 AND origin = $2`,
		value, origin,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	// The no-op update makes RETURNING yield the row a concurrent insert won.
	var inserted bool
	err = q.QueryRow(ctx, `
		INSERT INTO table_descriptors (table_name, origin, columns, updated_at)
		VALUES ($1, $2, '[]'::jsonb, $3)
		ON CONFLICT (table_name, origin) DO UPDATE SET table_name = EXCLUDED.table_name
		RETURNING id, (xmax = 0)
	`, value, origin, time.Now().UTC()).Scan(&id, &inserted)
	if err != nil {
		return 0, fmt.Errorf("create stub descriptor %q: %w", value, err)
	}

	if inserted {
		metrics.StubDescriptorsCreatedTotal.WithLabelValues(string(origin)).Inc()
		log.Warnw("created stub descriptor for unknown table reference",
			"table_name", value,
			"origin", origin,
			"id", id,
		)
	}
	return id, nil
}

func (r *MetadataRepository) GetByID(ctx context.Context, id int64) (*models.TableDescriptor, error) {
	return getDescriptor(ctx, r.pool, `SELECT `+descriptorColumns+` FROM table_descriptors WHERE id = $1`, id)
}

func (r *MetadataRepository) GetByName(ctx context.Context, name string, origin models.Origin) (*models.TableDescriptor, error) {
	return getDescriptor(ctx, r.pool,
		`SELECT `+descriptorColumns+` FROM table_descriptors WHERE table_name = $1 AND origin = $2`,
		strings.TrimSpace(name), origin)
}

func getDescriptor(ctx context.Context, q dbtx, query string, args ...any) (*models.TableDescriptor, error) {
	var t models.TableDescriptor
	err := q.QueryRow(ctx, query, args...).Scan(
		&t.ID,
		&t.TableName,
		&t.Origin,
		&t.Columns,
		&t.Comment,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// ListTargets returns TARGET descriptors, most recently saved first.
func (r *MetadataRepository) ListTargets(ctx context.Context) ([]models.TableDescriptor, error) {
	query := `
		SELECT ` + descriptorColumns + `
		FROM table_descriptors
		WHERE origin = $1
		ORDER BY updated_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, models.OriginTarget)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := []models.TableDescriptor{}
	for rows.Next() {
		var t models.TableDescriptor
		if err := rows.Scan(
			&t.ID,
			&t.TableName,
			&t.Origin,
			&t.Columns,
			&t.Comment,
			&t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	return tables, rows.Err()
}

// DeleteTargetsByName removes every TARGET descriptor with the given name and
// reports how many rows went away. Mappings pointing at them cascade.
func (r *MetadataRepository) DeleteTargetsByName(ctx context.Context, name string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM table_descriptors WHERE table_name = $1 AND origin = $2`,
		strings.TrimSpace(name), models.OriginTarget)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
