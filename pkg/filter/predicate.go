package filter

import (
	"fmt"
	"strings"
)

// Term is a constraint rendered against a single column.
type Term interface {
	render(column string, b *builder) string
}

// Clause pairs a column with a term, used inside Or.
type Clause struct {
	Column string
	Term   Term
}

type eqTerm struct{ value any }

type matchTerm struct{ pattern string }

type rangeTerm struct{ min, max *float64 }

type inTerm struct{ values any }

type orTerm struct{ clauses []Clause }

type allTerm struct{ terms []Term }

type rawTerm struct {
	sql  string
	args []any
}

// Eq matches rows whose column equals v.
func Eq(v any) Term { return eqTerm{value: v} }

// Match is an unanchored case-insensitive regular expression match.
func Match(pattern string) Term { return matchTerm{pattern: pattern} }

// InRange bounds a numeric column; nil bounds are open.
func InRange(min, max *float64) Term { return rangeTerm{min: min, max: max} }

// In matches rows whose column is one of values.
func In[T any](values []T) Term { return inTerm{values: values} }

// Or matches when any of the clauses does. The predicate key is ignored.
func Or(clauses ...Clause) Term { return orTerm{clauses: clauses} }

// SQL embeds a raw boolean expression. Each ? is bound to the next arg.
// The predicate key is ignored; the expression must not contain a literal ?.
func SQL(expr string, args ...any) Term { return rawTerm{sql: expr, args: args} }

type builder struct {
	offset int
	args   []any
}

func (b *builder) bind(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", b.offset+len(b.args))
}

func (t eqTerm) render(col string, b *builder) string {
	return col + " = " + b.bind(t.value)
}

func (t matchTerm) render(col string, b *builder) string {
	return col + " ~* " + b.bind(t.pattern)
}

func (t rangeTerm) render(col string, b *builder) string {
	var parts []string
	if t.min != nil {
		parts = append(parts, col+" >= "+b.bind(*t.min))
	}
	if t.max != nil {
		parts = append(parts, col+" <= "+b.bind(*t.max))
	}
	return strings.Join(parts, " AND ")
}

func (t inTerm) render(col string, b *builder) string {
	return col + " = ANY(" + b.bind(t.values) + ")"
}

func (t orTerm) render(_ string, b *builder) string {
	parts := make([]string, 0, len(t.clauses))
	for _, c := range t.clauses {
		if s := c.Term.render(c.Column, b); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

func (t allTerm) render(col string, b *builder) string {
	parts := make([]string, 0, len(t.terms))
	for _, term := range t.terms {
		if s := term.render(col, b); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " AND ")
}

func (t rawTerm) render(_ string, b *builder) string {
	var sb strings.Builder
	next := 0
	for _, r := range t.sql {
		if r == '?' && next < len(t.args) {
			sb.WriteString(b.bind(t.args[next]))
			next++
			continue
		}
		sb.WriteRune(r)
	}
	return "(" + sb.String() + ")"
}

// Predicate is an ordered set of keyed terms, all ANDed together. A key is
// normally the column the term applies to.
type Predicate struct {
	keys  []string
	terms map[string]Term
}

// Where builds a single-term predicate.
func Where(key string, t Term) Predicate {
	var p Predicate
	p.Set(key, t)
	return p
}

// Set stores t under key, replacing any earlier term with that key. The key
// keeps its original position.
func (p *Predicate) Set(key string, t Term) {
	if p.terms == nil {
		p.terms = make(map[string]Term)
	}
	if _, ok := p.terms[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.terms[key] = t
}

// Merge copies every term of o into p; o wins on key collisions.
func (p *Predicate) Merge(o Predicate) {
	for _, k := range o.keys {
		p.Set(k, o.terms[k])
	}
}

// And adds t under key. When key is already constrained both terms must hold.
func (p *Predicate) And(key string, t Term) {
	existing, ok := p.terms[key]
	if !ok {
		p.Set(key, t)
		return
	}
	if all, isAll := existing.(allTerm); isAll {
		p.terms[key] = allTerm{terms: append(append([]Term{}, all.terms...), t)}
		return
	}
	p.terms[key] = allTerm{terms: []Term{existing, t}}
}

// Get returns the term stored under key.
func (p Predicate) Get(key string) (Term, bool) {
	t, ok := p.terms[key]
	return t, ok
}

// Keys returns the keys in insertion order.
func (p Predicate) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Len returns the number of keys.
func (p Predicate) Len() int { return len(p.keys) }

// SQL renders the predicate as a boolean expression with positional
// parameters numbered after offset. An empty predicate renders as "".
func (p Predicate) SQL(offset int) (string, []any) {
	b := &builder{offset: offset}
	parts := make([]string, 0, len(p.keys))
	for _, k := range p.keys {
		if s := p.terms[k].render(k, b); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " AND "), b.args
}
