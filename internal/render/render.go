// Package render turns a stored mapping into pipeline code through a
// user-authored template.  Templates use Jinja syntax as implemented by
// pongo2; loops expose forloop.Counter and friends rather than loop.index.
package render

import (
	"errors"
	"fmt"
	"time"

	"github.com/flosch/pongo2/v6"

	"etl_manager/internal/models"
)

func init() {
	// Generated code is SQL or Python, never HTML.
	pongo2.SetAutoescape(false)
}

// Context is the variable set a template is rendered against.
type Context map[string]any

// TemplateError is an authoring error: the template failed to parse or to
// execute against its context.
type TemplateError struct {
	Stage string
	Err   error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s failed: %v", e.Stage, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }

// IsTemplateError reports whether err carries a *TemplateError.
func IsTemplateError(err error) bool {
	var te *TemplateError
	return errors.As(err, &te)
}

// DagID derives the artifact id, e.g. etl_EMP_to_EMP_20240131. The same pair
// on the same day always yields the same id.
func DagID(source, target string, at time.Time) string {
	return fmt.Sprintf("etl_%s_to_%s_%s", source, target, at.Format("20060102"))
}

// BuildContext exposes dag_id, source_table, target_table, mappings (one map
// per rule, keyed like the rule JSON), and created_at.
func BuildContext(source, target string, rules []models.ColumnRule, now time.Time) Context {
	mappings := make([]map[string]any, 0, len(rules))
	for _, r := range rules {
		mappings = append(mappings, map[string]any{
			"source_column": r.SourceColumn,
			"target_column": r.TargetColumn,
			"rule_type":     string(r.RuleType),
			"custom_sql":    r.CustomExpression,
		})
	}

	return Context{
		"dag_id":       DagID(source, target, now),
		"source_table": source,
		"target_table": target,
		"mappings":     mappings,
		"created_at":   now.Format(time.RFC3339),
	}
}

// Validate parses body without executing it.
func Validate(body string) error {
	_, err := parse(body)
	return err
}

// Render parses body and executes it against ctx. Malformed syntax, unknown
// filters or tags, references ctx cannot satisfy and execution failures all
// return a *TemplateError.
func Render(body string, ctx Context) (string, error) {
	tpl, err := parse(body)
	if err != nil {
		return "", err
	}
	if err := checkReferences(body, ctx); err != nil {
		return "", &TemplateError{Stage: "execute", Err: err}
	}

	out, err := tpl.Execute(pongo2.Context(ctx))
	if err != nil {
		return "", &TemplateError{Stage: "execute", Err: err}
	}
	return out, nil
}

func parse(body string) (*pongo2.Template, error) {
	tpl, err := pongo2.FromString(body)
	if err != nil {
		return nil, &TemplateError{Stage: "parse", Err: err}
	}
	return tpl, nil
}
