// Package filter compiles listing query parameters into a SQL predicate and
// a stable sort order.
//
// A listing declares its Config once: which columns take part in free-text
// search, an optional numeric range, an optional status bucket table and any
// number of custom parameters. Compile then applies, in this order, the base
// predicate, search, range, status and custom rules. Search, range and status
// only ever add constraints. Custom rules are shallow-merged in declaration
// order, so a later custom rule replaces an earlier one on the same key.
package filter

import (
	"math"
	"net/url"
	"regexp"
	"regexp/syntax"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind identifies the variant carried by a Rule.
type Kind int

const (
	KindSearch Kind = iota + 1
	KindRange
	KindStatus
	KindCustom
)

// CustomFunc builds a partial predicate from the raw parameter value and the
// full query.
type CustomFunc func(value string, q url.Values) Predicate

// Rule is one declarative filtering rule. Build it with Search, Range,
// Status or Custom.
type Rule struct {
	Kind Kind

	// KindSearch
	Columns []string

	// KindRange: parameters are min<Field> and max<Field>.
	Field string
	// KindRange and KindStatus
	Column string

	// KindStatus
	Buckets map[string]Bucket

	// KindCustom
	Param string
	Func  CustomFunc
}

// Search matches the search parameter against columns.
func Search(columns ...string) Rule {
	return Rule{Kind: KindSearch, Columns: columns}
}

// Range reads min<Field>/max<Field> as numeric bounds on column.
func Range(field, column string) Rule {
	return Rule{Kind: KindRange, Field: field, Column: column}
}

// Status maps the status parameter through buckets onto column.
func Status(column string, buckets map[string]Bucket) Rule {
	return Rule{Kind: KindStatus, Column: column, Buckets: buckets}
}

// Custom invokes fn when param is present in the query.
func Custom(param string, fn CustomFunc) Rule {
	return Rule{Kind: KindCustom, Param: param, Func: fn}
}

// Bucket is a named status value: an exact scalar or a numeric range.
type Bucket struct {
	exact    any
	hasExact bool
	min, max *float64
}

// Exactly matches the status column against v.
func Exactly(v any) Bucket { return Bucket{exact: v, hasExact: true} }

// Between matches min <= column <= max.
func Between(min, max float64) Bucket { return Bucket{min: &min, max: &max} }

// AtLeast matches column >= min.
func AtLeast(min float64) Bucket { return Bucket{min: &min} }

// AtMost matches column <= max.
func AtMost(max float64) Bucket { return Bucket{max: &max} }

func (b Bucket) term() Term {
	if b.hasExact {
		return Eq(b.exact)
	}
	return InRange(b.min, b.max)
}

// StatusAll disables status filtering.
const StatusAll = "all"

// Config is supplied by each listing endpoint.
type Config struct {
	Rules []Rule
	Sort  SortConfig
}

// Compile merges q into base according to cfg and resolves the sort order.
// base is not modified.
func Compile(base Predicate, q url.Values, cfg Config) (Predicate, Sort) {
	var out Predicate
	out.Merge(base)

	for _, r := range rulesOf(cfg.Rules, KindSearch) {
		applySearch(&out, r, q.Get("search"))
	}
	for _, r := range rulesOf(cfg.Rules, KindRange) {
		applyRange(&out, r, q)
	}
	for _, r := range rulesOf(cfg.Rules, KindStatus) {
		applyStatus(&out, r, q.Get("status"))
	}

	var custom Predicate
	for _, r := range rulesOf(cfg.Rules, KindCustom) {
		if r.Func == nil {
			continue
		}
		v := q.Get(r.Param)
		if v == "" {
			continue
		}
		custom.Merge(r.Func(v, q))
	}
	for _, k := range custom.keys {
		out.And(k, custom.terms[k])
	}

	order := q.Get("sortOrder")
	if order == "" {
		order = q.Get("order")
	}
	return out, cfg.Sort.resolve(q.Get("sortBy"), order)
}

func rulesOf(rules []Rule, kind Kind) []Rule {
	var out []Rule
	for _, r := range rules {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

func applySearch(p *Predicate, r Rule, raw string) {
	term := strings.TrimSpace(raw)
	if term == "" || len(r.Columns) == 0 {
		return
	}
	pattern := SearchPattern(term)

	if len(r.Columns) == 1 {
		p.And(r.Columns[0], Match(pattern))
		return
	}
	clauses := make([]Clause, 0, len(r.Columns))
	for _, c := range r.Columns {
		clauses = append(clauses, Clause{Column: c, Term: Match(pattern)})
	}
	p.And("search", Or(clauses...))
}

// SearchPattern returns term as a regular expression that Go and Postgres
// read the same way. Anything outside that shared subset, or not a valid
// expression at all, is matched literally.
func SearchPattern(term string) string {
	if !portablePattern(term) {
		return regexp.QuoteMeta(term)
	}
	return term
}

// maxRepeat is Postgres' RE_DUP_MAX.
const maxRepeat = 255

func portablePattern(term string) bool {
	for i := 0; i < len(term); i++ {
		switch term[i] {
		case '\\':
			if i+1 == len(term) {
				return false
			}
			// Only class shorthands and escaped punctuation mean the same
			// thing in Postgres.
			c := term[i+1]
			if !strings.ContainsRune(`dDsSwW`, rune(c)) && (c >= utf8.RuneSelf || isAlnum(c)) {
				return false
			}
			i++
		case '(':
			// Only (?:...) is shared; flags and named groups are not.
			if strings.HasPrefix(term[i:], "(?") && !strings.HasPrefix(term[i:], "(?:") {
				return false
			}
		}
	}
	re, err := syntax.Parse(term, syntax.Perl)
	if err != nil {
		return false
	}
	return portableTree(re)
}

func portableTree(re *syntax.Regexp) bool {
	if re.Op == syntax.OpRepeat && (re.Min > maxRepeat || re.Max > maxRepeat) {
		return false
	}
	for _, sub := range re.Sub {
		if !portableTree(sub) {
			return false
		}
	}
	return true
}

func isAlnum(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func applyRange(p *Predicate, r Rule, q url.Values) {
	name := capitalize(r.Field)
	lo := parseBound(q.Get("min" + name))
	hi := parseBound(q.Get("max" + name))
	if lo == nil && hi == nil {
		return
	}
	p.And(r.Column, InRange(lo, hi))
}

func parseBound(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func applyStatus(p *Predicate, r Rule, status string) {
	if status == "" || status == StatusAll {
		return
	}
	b, ok := r.Buckets[status]
	if !ok {
		return
	}
	p.And(r.Column, b.term())
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
