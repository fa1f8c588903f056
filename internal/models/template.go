package models

import "strings"

// Template is a user-authored pongo2 (Jinja syntax) template. DialectTag is a
// free-form label such as ORACLE_S3_POSTGRES.
type Template struct {
	ID         int64  `json:"id"`
	Name       string `json:"name" binding:"required"`
	DialectTag string `json:"type" binding:"required"`
	Body       string `json:"content" binding:"required"`
}

func (t *Template) Prepare() {
	t.Name = strings.TrimSpace(t.Name)
	t.DialectTag = strings.TrimSpace(t.DialectTag)
}
