package models

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleSource Role = "SOURCE"
	RoleTarget Role = "TARGET"
	RoleUnused Role = "UNUSED"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleSource, RoleTarget, RoleUnused:
		return r, nil
	case "":
		return RoleUnused, nil
	}
	return "", fmt.Errorf("unknown connection role %q", s)
}

// Connection is a stored profile for a source or target database. Database is
// the service name for Oracle and the database name elsewhere.
type Connection struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" binding:"required"`
	Role      Role      `json:"role"`
	Dialect   string    `json:"type" binding:"required"`
	Host      string    `json:"host" binding:"required"`
	Port      int       `json:"port" binding:"required"`
	Database  string    `json:"schema_db" binding:"required"`
	Username  string    `json:"username" binding:"required"`
	Password  string    `json:"password,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Connection) Prepare() {
	c.Name = strings.TrimSpace(c.Name)
	c.Dialect = strings.ToUpper(strings.TrimSpace(c.Dialect))
	if c.Role == "" {
		c.Role = RoleUnused
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
}

// Redacted returns a copy safe to hand to the HTTP layer.
func (c Connection) Redacted() Connection {
	c.Password = ""
	return c
}

// Selection is the pair of connections a request works against. It is
// resolved once per request and passed explicitly to the services.
type Selection struct {
	Source *Connection
	Target *Connection
}
