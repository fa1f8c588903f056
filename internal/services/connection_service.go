package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"etl_manager/internal/dialect"
	"etl_manager/internal/models"
)

type ConnectionService struct {
	conns ConnectionStore
	open  dialect.Opener
	log   *zap.SugaredLogger
}

func NewConnectionService(conns ConnectionStore, open dialect.Opener, log *zap.SugaredLogger) *ConnectionService {
	if open == nil {
		open = dialect.Open
	}
	return &ConnectionService{conns: conns, open: open, log: log}
}

// List returns every stored profile with passwords removed.
func (s *ConnectionService) List(ctx context.Context) ([]models.Connection, error) {
	conns, err := s.conns.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range conns {
		conns[i] = conns[i].Redacted()
	}
	return conns, nil
}

func (s *ConnectionService) Get(ctx context.Context, id int64) (*models.Connection, error) {
	c, err := s.conns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("connection %d: %w", id, ErrNotFound)
	}
	return c, nil
}

func validateConnection(c *models.Connection) error {
	if _, err := dialect.Parse(c.Dialect); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	role, err := models.ParseRole(string(c.Role))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	c.Role = role
	return nil
}

func (s *ConnectionService) Create(ctx context.Context, c *models.Connection) error {
	if err := validateConnection(c); err != nil {
		return err
	}
	if err := s.conns.Create(ctx, c); err != nil {
		return fmt.Errorf("failed to save connection: %w", err)
	}
	s.log.Infow("connection created", "id", c.ID, "name", c.Name, "role", c.Role, "type", c.Dialect)
	return nil
}

// Update overwrites the profile with id. An empty password keeps the stored one.
func (s *ConnectionService) Update(ctx context.Context, id int64, c *models.Connection) error {
	if err := validateConnection(c); err != nil {
		return err
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	c.ID = id
	c.CreatedAt = existing.CreatedAt
	if c.Password == "" {
		c.Password = existing.Password
	}

	ok, err := s.conns.Update(ctx, c)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("connection %d: %w", id, ErrNotFound)
	}
	s.log.Infow("connection updated", "id", id, "role", c.Role)
	return nil
}

func (s *ConnectionService) Delete(ctx context.Context, id int64) error {
	ok, err := s.conns.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("connection %d: %w", id, ErrNotFound)
	}
	s.log.Infow("connection deleted", "id", id)
	return nil
}

// Test opens the profile and pings it. The message is meant for display.
func (s *ConnectionService) Test(ctx context.Context, c models.Connection) (bool, string) {
	if _, err := dialect.Parse(c.Dialect); err != nil {
		return false, err.Error()
	}

	db, err := s.open(ctx, c)
	if err != nil {
		s.log.Infow("connection test failed", "name", c.Name, "err", err)
		return false, err.Error()
	}
	defer db.Close()

	return true, "Connection successful"
}

// Selection resolves the active source and target: for each role, the
// profile with the highest id. Missing roles stay nil.
func (s *ConnectionService) Selection(ctx context.Context) (models.Selection, error) {
	var sel models.Selection

	src, err := s.conns.ActiveConnection(ctx, models.RoleSource)
	if err != nil {
		return sel, fmt.Errorf("active source connection: %w", err)
	}
	tgt, err := s.conns.ActiveConnection(ctx, models.RoleTarget)
	if err != nil {
		return sel, fmt.Errorf("active target connection: %w", err)
	}

	sel.Source, sel.Target = src, tgt
	return sel, nil
}
