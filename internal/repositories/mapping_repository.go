package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"etl_manager/internal/models"
)

type MappingRepository struct {
	pool *pgxpool.Pool
	log  *zap.SugaredLogger
}

func NewMappingRepository(pool *pgxpool.Pool, log *zap.SugaredLogger) *MappingRepository {
	return &MappingRepository{pool: pool, log: log}
}

const mappingColumns = `id, source_table_id, target_table_id, rules, created_at`

// Save resolves both references and writes the mapping in one transaction.
// When existingID names a stored mapping it is overwritten in place;
// otherwise a new mapping is inserted.
func (r *MappingRepository) Save(ctx context.Context, sourceRef, targetRef string, rules []models.ColumnRule, existingID *int64) (*models.Mapping, error) {
	m := models.Mapping{Rules: rules, CreatedAt: time.Now().UTC()}
	m.Prepare()

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		if m.SourceTableID, err = resolveIdentifier(ctx, tx, r.log, sourceRef, models.OriginSource); err != nil {
			return err
		}
		if m.TargetTableID, err = resolveIdentifier(ctx, tx, r.log, targetRef, models.OriginTarget); err != nil {
			return err
		}

		if existingID != nil {
			err = tx.QueryRow(ctx, `
				UPDATE mappings
				SET source_table_id = $2, target_table_id = $3, rules = $4, created_at = $5
				WHERE id = $1
				RETURNING id
			`, *existingID, m.SourceTableID, m.TargetTableID, m.Rules, m.CreatedAt).Scan(&m.ID)
			if err == nil {
				return nil
			}
			if !errors.Is(err, pgx.ErrNoRows) {
				return err
			}
		}

		return tx.QueryRow(ctx, `
			INSERT INTO mappings (source_table_id, target_table_id, rules, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, m.SourceTableID, m.TargetTableID, m.Rules, m.CreatedAt).Scan(&m.ID)
	})
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func (r *MappingRepository) GetByID(ctx context.Context, id int64) (*models.Mapping, error) {
	return r.getOne(ctx, `SELECT `+mappingColumns+` FROM mappings WHERE id = $1`, id)
}

// FindByTables returns the newest mapping between the two descriptors.
func (r *MappingRepository) FindByTables(ctx context.Context, sourceID, targetID int64) (*models.Mapping, error) {
	return r.getOne(ctx, `
		SELECT `+mappingColumns+`
		FROM mappings
		WHERE source_table_id = $1 AND target_table_id = $2
		ORDER BY id DESC
		LIMIT 1
	`, sourceID, targetID)
}

func (r *MappingRepository) getOne(ctx context.Context, query string, args ...any) (*models.Mapping, error) {
	var m models.Mapping
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&m.ID,
		&m.SourceTableID,
		&m.TargetTableID,
		&m.Rules,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// List joins descriptor names and applies case-insensitive substring
// filters on each side. Blank filters match everything. Newest first.
func (r *MappingRepository) List(ctx context.Context, sourceFilter, targetFilter string) ([]models.MappingSummary, error) {
	query := `
		SELECT m.id, m.source_table_id, s.table_name, m.target_table_id, t.table_name,
			jsonb_array_length(m.rules), m.created_at
		FROM mappings m
		JOIN table_descriptors s ON s.id = m.source_table_id
		JOIN table_descriptors t ON t.id = m.target_table_id
		WHERE s.table_name ILIKE $1
			AND t.table_name ILIKE $2
		ORDER BY m.id DESC
	`

	rows, err := r.pool.Query(ctx, query, containsPattern(sourceFilter), containsPattern(targetFilter))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.MappingSummary{}
	for rows.Next() {
		var s models.MappingSummary
		if err := rows.Scan(
			&s.ID,
			&s.SourceTableID,
			&s.SourceTableName,
			&s.TargetTableID,
			&s.TargetTableName,
			&s.RuleCount,
			&s.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}

	return out, rows.Err()
}

// Delete reports whether a mapping with id existed.
func (r *MappingRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM mappings WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
