package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"etl_manager/internal/models"
)

// HistoryRepository is append-only: there is no update or delete.
type HistoryRepository struct {
	pool *pgxpool.Pool
}

func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

func (r *HistoryRepository) Create(ctx context.Context, h *models.GenerationHistory) error {
	h.Prepare()

	query := `
		INSERT INTO dag_history (dag_id, mapping_id, rendered_text, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	return r.pool.QueryRow(ctx, query, h.DagID, h.MappingID, h.RenderedText, h.CreatedAt).Scan(&h.ID)
}

// List returns history entries newest first, without their rendered text.
// A positive limit keeps only that many; otherwise every entry is returned.
func (r *HistoryRepository) List(ctx context.Context, limit int) ([]models.GenerationHistory, error) {
	query := `
		SELECT id, dag_id, mapping_id, created_at
		FROM dag_history
		ORDER BY created_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.GenerationHistory{}
	for rows.Next() {
		var h models.GenerationHistory
		if err := rows.Scan(&h.ID, &h.DagID, &h.MappingID, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}

	return out, rows.Err()
}

func (r *HistoryRepository) GetByID(ctx context.Context, id int64) (*models.GenerationHistory, error) {
	query := `
		SELECT id, dag_id, mapping_id, rendered_text, created_at
		FROM dag_history WHERE id = $1
	`

	var h models.GenerationHistory
	err := r.pool.QueryRow(ctx, query, id).Scan(&h.ID, &h.DagID, &h.MappingID, &h.RenderedText, &h.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &h, nil
}
