package dialect

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"etl_manager/internal/models"
)

// Opener opens a live handle for a stored connection. Callers close it.
type Opener func(ctx context.Context, c models.Connection) (*sqlx.DB, error)

// Open is the default Opener: it resolves the dialect, opens the driver and
// pings once so that a bad profile fails here rather than on the first query.
func Open(ctx context.Context, c models.Connection) (*sqlx.DB, error) {
	d, err := Parse(c.Dialect)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(d.DriverName(), d.DSN(c))
	if err != nil {
		return nil, fmt.Errorf("open %s connection %q: %w", d.Name(), c.Name, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s connection %q: %w", d.Name(), c.Name, err)
	}

	return db, nil
}
