package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"etl_manager/internal/models"
)

type TemplateRepository struct {
	pool *pgxpool.Pool
}

func NewTemplateRepository(pool *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{pool: pool}
}

func (r *TemplateRepository) Create(ctx context.Context, t *models.Template) error {
	t.Prepare()

	query := `
		INSERT INTO templates (name, dialect_tag, body)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	return r.pool.QueryRow(ctx, query, t.Name, t.DialectTag, t.Body).Scan(&t.ID)
}

func (r *TemplateRepository) GetByID(ctx context.Context, id int64) (*models.Template, error) {
	query := `SELECT id, name, dialect_tag, body FROM templates WHERE id = $1`

	var t models.Template
	err := r.pool.QueryRow(ctx, query, id).Scan(&t.ID, &t.Name, &t.DialectTag, &t.Body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TemplateRepository) List(ctx context.Context) ([]models.Template, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, dialect_tag, body FROM templates ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Template{}
	for rows.Next() {
		var t models.Template
		if err := rows.Scan(&t.ID, &t.Name, &t.DialectTag, &t.Body); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Replace overwrites every field of the template with t.ID and reports
// whether it existed.
func (r *TemplateRepository) Replace(ctx context.Context, t *models.Template) (bool, error) {
	t.Prepare()

	tag, err := r.pool.Exec(ctx, `
		UPDATE templates
		SET name = $2, dialect_tag = $3, body = $4
		WHERE id = $1
	`, t.ID, t.Name, t.DialectTag, t.Body)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
