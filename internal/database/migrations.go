package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// RunMigrations applies every statement in order. Each one is idempotent so
// the whole list runs on every start.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, log *zap.SugaredLogger) error {
	migrations := []string{
		createTableDescriptorsTable,
		createMappingsTable,
		createTemplatesTable,
		createDagHistoryTable,
		createConnectionsTable,
	}

	for i, migration := range migrations {
		log.Debugw("running migration", "step", i+1, "total", len(migrations))
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Infow("migrations complete", "count", len(migrations))
	return nil
}

const createTableDescriptorsTable = `
CREATE TABLE IF NOT EXISTS table_descriptors (
  id BIGSERIAL PRIMARY KEY,
  table_name TEXT NOT NULL,
  origin TEXT NOT NULL CHECK (origin IN ('SOURCE', 'TARGET')),
  columns JSONB NOT NULL DEFAULT '[]'::jsonb,
  comment TEXT,
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  UNIQUE (table_name, origin)
);

CREATE INDEX IF NOT EXISTS idx_table_descriptors_origin ON table_descriptors(origin);
`

// Mappings follow their descriptors; deleting a target drops the mappings
// that point at it.
const createMappingsTable = `
CREATE TABLE IF NOT EXISTS mappings (
  id BIGSERIAL PRIMARY KEY,
  source_table_id BIGINT NOT NULL REFERENCES table_descriptors(id) ON DELETE CASCADE,
  target_table_id BIGINT NOT NULL REFERENCES table_descriptors(id) ON DELETE CASCADE,
  rules JSONB NOT NULL DEFAULT '[]'::jsonb,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_mappings_tables ON mappings(source_table_id, target_table_id);
`

const createTemplatesTable = `
CREATE TABLE IF NOT EXISTS templates (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  dialect_tag TEXT NOT NULL,
  body TEXT NOT NULL
);
`

// History rows keep mapping_id without a foreign key so that deleting a
// mapping never touches generated artifacts.
const createDagHistoryTable = `
CREATE TABLE IF NOT EXISTS dag_history (
  id BIGSERIAL PRIMARY KEY,
  dag_id TEXT NOT NULL,
  mapping_id BIGINT NOT NULL,
  rendered_text TEXT NOT NULL,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_dag_history_created_at ON dag_history(created_at);
CREATE INDEX IF NOT EXISTS idx_dag_history_dag_id ON dag_history(dag_id);
`

const createConnectionsTable = `
CREATE TABLE IF NOT EXISTS connections (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'UNUSED' CHECK (role IN ('SOURCE', 'TARGET', 'UNUSED')),
  dialect TEXT NOT NULL,
  host TEXT NOT NULL,
  port INT NOT NULL,
  database_name TEXT NOT NULL,
  username TEXT NOT NULL,
  password TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_connections_role ON connections(role, id DESC);
`
