package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var blockRe = regexp.MustCompile(`(?s)\{\{(.*?)\}\}|\{%(.*?)%\}|\{#.*?#\}`)

// Words that may appear in an expression without naming a variable.
var exprKeywords = map[string]bool{
	"and": true, "or": true, "not": true, "in": true, "is": true, "as": true,
	"true": true, "false": true, "True": true, "False": true,
	"none": true, "None": true, "nil": true,
	"reversed": true, "sorted": true,
}

// Tags whose bodies are not expanded against the context.
var opaqueTags = map[string]string{
	"comment":  "endcomment",
	"verbatim": "endverbatim",
	"macro":    "endmacro",
}

// unknown stands for a value whose shape is only known at execution time,
// such as a loop variable over an empty list or forloop itself.
type unknown struct{}

type scope map[string]any

type refChecker struct {
	ctx    Context
	scopes []scope
}

// checkReferences walks the variable references of body and fails on the
// first one whose root is not bound, or whose attribute or index does not
// exist on a value of known shape.
func checkReferences(body string, ctx Context) error {
	c := &refChecker{ctx: ctx, scopes: []scope{{}}}

	var skipUntil string
	for _, m := range blockRe.FindAllStringSubmatchIndex(body, -1) {
		isVar, isTag := m[2] >= 0, m[4] >= 0
		if skipUntil != "" {
			if isTag && tagName(body[m[4]:m[5]]) == skipUntil {
				skipUntil = ""
			}
			continue
		}

		switch {
		case isVar:
			if err := c.expr(trimMarkers(body[m[2]:m[3]])); err != nil {
				return err
			}
		case isTag:
			content := trimMarkers(body[m[4]:m[5]])
			if end, ok := opaqueTags[tagName(content)]; ok {
				skipUntil = end
				continue
			}
			if err := c.tag(content); err != nil {
				return err
			}
		}
	}
	return nil
}

func trimMarkers(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimSuffix(s, "-")
	return strings.TrimSpace(s)
}

func tagName(content string) string {
	content = trimMarkers(content)
	if i := strings.IndexAny(content, " \t\r\n"); i >= 0 {
		return content[:i]
	}
	return content
}

func (c *refChecker) tag(content string) error {
	name := tagName(content)
	args := strings.TrimSpace(strings.TrimPrefix(content, name))

	switch name {
	case "if", "elif":
		return c.expr(args)
	case "for":
		return c.forTag(args)
	case "endfor", "endwith":
		if len(c.scopes) > 1 {
			c.scopes = c.scopes[:len(c.scopes)-1]
		}
	case "set":
		varName, value, ok := strings.Cut(args, "=")
		if !ok {
			return nil
		}
		v, err := c.value(value)
		if err != nil {
			return err
		}
		c.scopes[len(c.scopes)-1][strings.TrimSpace(varName)] = v
	case "with":
		return c.withTag(args)
	}
	return nil
}

func (c *refChecker) forTag(args string) error {
	vars, iterable, ok := strings.Cut(args, " in ")
	if !ok {
		return nil
	}
	seq, err := c.value(iterable)
	if err != nil {
		return err
	}

	s := scope{"forloop": unknown{}}
	names := strings.Split(vars, ",")
	for _, n := range names {
		s[strings.TrimSpace(n)] = unknown{}
	}
	if rows, ok := seq.([]map[string]any); ok && len(names) == 1 && len(rows) > 0 {
		s[strings.TrimSpace(names[0])] = rows[0]
	}
	c.scopes = append(c.scopes, s)
	return nil
}

// withTag accepts both "with a=expr b=expr" and "with expr as a".
func (c *refChecker) withTag(args string) error {
	s := scope{}
	if value, name, ok := strings.Cut(args, " as "); ok {
		v, err := c.value(value)
		if err != nil {
			return err
		}
		s[strings.TrimSpace(name)] = v
	} else {
		for _, field := range strings.Fields(args) {
			name, value, ok := strings.Cut(field, "=")
			if !ok {
				continue
			}
			v, err := c.value(value)
			if err != nil {
				return err
			}
			s[name] = v
		}
	}
	c.scopes = append(c.scopes, s)
	return nil
}

// value checks an expression and, when it is a bare variable path, returns
// what the path points at.
func (c *refChecker) value(expr string) (any, error) {
	expr = strings.TrimSpace(expr)
	if err := c.expr(expr); err != nil {
		return nil, err
	}
	if isPath(expr) {
		return c.resolve(expr)
	}
	return unknown{}, nil
}

// expr checks every variable path in an expression. String literals, numbers,
// keywords and filter names are skipped; filter arguments are checked.
func (c *refChecker) expr(s string) error {
	s = stripStrings(s)

	var prev byte
	for i := 0; i < len(s); {
		ch := s[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			i++
		case isDigit(ch):
			for i < len(s) && (isDigit(s[i]) || s[i] == '.') {
				i++
			}
			prev = '0'
		case isIdentStart(ch):
			j := i
			for j < len(s) && (isIdentChar(s[j]) || (s[j] == '.' && j+1 < len(s) && isIdentChar(s[j+1]))) {
				j++
			}
			path := s[i:j]
			if prev != '|' && prev != '.' && !exprKeywords[path] {
				if _, err := c.resolve(path); err != nil {
					return err
				}
			}
			prev = 'a'
			i = j
		default:
			prev = ch
			i++
		}
	}
	return nil
}

func (c *refChecker) lookup(name string) (any, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if v, ok := c.scopes[i][name]; ok {
			return v, true
		}
	}
	v, ok := c.ctx[name]
	return v, ok
}

func (c *refChecker) resolve(path string) (any, error) {
	parts := strings.Split(path, ".")
	cur, ok := c.lookup(parts[0])
	if !ok {
		return nil, fmt.Errorf("undefined variable %q", parts[0])
	}

	for i, p := range parts[1:] {
		owner := strings.Join(parts[:i+1], ".")
		switch v := cur.(type) {
		case unknown:
			return unknown{}, nil
		case map[string]any:
			next, ok := v[p]
			if !ok {
				return nil, fmt.Errorf("%s has no attribute %q", owner, p)
			}
			cur = next
		case []map[string]any:
			n, err := strconv.Atoi(p)
			if err != nil || n < 0 || n >= len(v) {
				return nil, fmt.Errorf("%s has no element %q", owner, p)
			}
			cur = v[n]
		case nil, string, bool, int, int64, float64:
			return nil, fmt.Errorf("%s has no attribute %q", owner, p)
		default:
			return unknown{}, nil
		}
	}
	return cur, nil
}

// stripStrings replaces each quoted literal with 0 so its contents are not
// read as references.
func stripStrings(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		q := s[i]
		if q != '"' && q != '\'' {
			b.WriteByte(q)
			continue
		}
		for i++; i < len(s) && s[i] != q; i++ {
			if s[i] == '\\' {
				i++
			}
		}
		b.WriteByte('0')
	}
	return b.String()
}

func isPath(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return false
		}
		for i := 0; i < len(part); i++ {
			if !isIdentChar(part[i]) {
				return false
			}
		}
	}
	return true
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentChar(ch byte) bool { return isIdentStart(ch) || isDigit(ch) }
