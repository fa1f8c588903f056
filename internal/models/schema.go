package models

import (
	"fmt"
	"strings"
	"time"
)

// Origin tells whether a table descriptor describes the source or the target side.
type Origin string

const (
	OriginSource Origin = "SOURCE"
	OriginTarget Origin = "TARGET"
)

func ParseOrigin(s string) (Origin, error) {
	switch Origin(strings.ToUpper(strings.TrimSpace(s))) {
	case OriginSource:
		return OriginSource, nil
	case OriginTarget:
		return OriginTarget, nil
	}
	return "", fmt.Errorf("unknown origin %q", s)
}

// ColumnDescriptor is a single column as read from a catalog. Type is the raw
// type of the dialect it was read from.
type ColumnDescriptor struct {
	Name         string  `json:"name" binding:"required"`
	Type         string  `json:"type" binding:"required"`
	IsPrimaryKey bool    `json:"pk"`
	Nullable     bool    `json:"nullable"`
	Comment      *string `json:"comment,omitempty"`
}

// TableDescriptor is a dialect-agnostic view of a table. Columns keep catalog
// ordinal order; DDL and template iteration depend on it.
type TableDescriptor struct {
	ID        int64              `json:"id,omitempty"`
	TableName string             `json:"table_name"`
	Origin    Origin             `json:"origin"`
	Columns   []ColumnDescriptor `json:"columns"`
	Comment   *string            `json:"comment,omitempty"`
	UpdatedAt time.Time          `json:"updated_at,omitempty"`
}

// Prepare normalizes the descriptor before it is stored.
func (t *TableDescriptor) Prepare() {
	t.TableName = strings.TrimSpace(t.TableName)
	if t.Columns == nil {
		t.Columns = []ColumnDescriptor{}
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = time.Now().UTC()
	}
}

// Column returns the column with the given name, if present. Names match
// case-insensitively, the same way target column uniqueness is checked.
func (t *TableDescriptor) Column(name string) (ColumnDescriptor, bool) {
	name = strings.TrimSpace(name)
	for _, c := range t.Columns {
		if strings.EqualFold(strings.TrimSpace(c.Name), name) {
			return c, true
		}
	}
	return ColumnDescriptor{}, false
}

// IsStub reports whether the descriptor is a placeholder created by
// create-if-absent resolution and never populated.
func (t *TableDescriptor) IsStub() bool {
	return len(t.Columns) == 0
}
