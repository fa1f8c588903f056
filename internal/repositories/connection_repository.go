package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"etl_manager/internal/models"
)

type ConnectionRepository struct {
	pool *pgxpool.Pool
}

func NewConnectionRepository(pool *pgxpool.Pool) *ConnectionRepository {
	return &ConnectionRepository{pool: pool}
}

const connectionColumns = `id, name, role, dialect, host, port, database_name, username, password, created_at`

func scanConnection(row pgx.Row) (*models.Connection, error) {
	var c models.Connection
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Role,
		&c.Dialect,
		&c.Host,
		&c.Port,
		&c.Database,
		&c.Username,
		&c.Password,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *ConnectionRepository) Create(ctx context.Context, c *models.Connection) error {
	c.Prepare()

	query := `
		INSERT INTO connections (name, role, dialect, host, port, database_name, username, password, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	return r.pool.QueryRow(ctx, query,
		c.Name,
		c.Role,
		c.Dialect,
		c.Host,
		c.Port,
		c.Database,
		c.Username,
		c.Password,
		c.CreatedAt,
	).Scan(&c.ID)
}

func (r *ConnectionRepository) GetByID(ctx context.Context, id int64) (*models.Connection, error) {
	return scanConnection(r.pool.QueryRow(ctx, `SELECT `+connectionColumns+` FROM connections WHERE id = $1`, id))
}

// ActiveConnection returns the connection with the given role and the
// highest id, or nil when none has that role.
func (r *ConnectionRepository) ActiveConnection(ctx context.Context, role models.Role) (*models.Connection, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM connections
		WHERE role = $1
		ORDER BY id DESC
		LIMIT 1
	`
	return scanConnection(r.pool.QueryRow(ctx, query, role))
}

func (r *ConnectionRepository) List(ctx context.Context) ([]models.Connection, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+connectionColumns+` FROM connections ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Connection{}
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Update overwrites the stored profile and reports whether it existed.
func (r *ConnectionRepository) Update(ctx context.Context, c *models.Connection) (bool, error) {
	c.Prepare()

	query := `
		UPDATE connections
		SET name = $2, role = $3, dialect = $4, host = $5, port = $6,
			database_name = $7, username = $8, password = $9
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		c.ID,
		c.Name,
		c.Role,
		c.Dialect,
		c.Host,
		c.Port,
		c.Database,
		c.Username,
		c.Password,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ConnectionRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM connections WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
