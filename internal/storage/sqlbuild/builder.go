// Package sqlbuild assembles SELECT statements from ordered predicates.
//
// Predicate expressions mark their parameters with '?'. Marks are rewritten to
// the dialect's placeholder when the statement is emitted, numbered by the
// running count of arguments already emitted, so a clause never needs to know
// which optional clauses came before it.
package sqlbuild

import (
	"fmt"
	"strconv"
	"strings"
)

type Dialect int

const (
	Postgres Dialect = iota // $1, $2, ...
	MySQL                   // ?
)

type predicate struct {
	expr string
	args []any
}

type Query struct {
	dialect Dialect
	head    string
	where   []predicate
	groupBy []string
	having  []predicate
	orderBy []string
	limit   *int
}

// Select starts a statement. head holds the SELECT list, FROM and JOINs and
// must not contain parameter marks.
func Select(d Dialect, head string) *Query {
	return &Query{dialect: d, head: strings.TrimSpace(head)}
}

func (q *Query) Where(expr string, args ...any) *Query {
	q.where = append(q.where, predicate{expr: expr, args: args})
	return q
}

func (q *Query) GroupBy(cols ...string) *Query {
	q.groupBy = append(q.groupBy, cols...)
	return q
}

func (q *Query) Having(expr string, args ...any) *Query {
	q.having = append(q.having, predicate{expr: expr, args: args})
	return q
}

func (q *Query) OrderBy(cols ...string) *Query {
	q.orderBy = append(q.orderBy, cols...)
	return q
}

func (q *Query) Limit(n int) *Query {
	q.limit = &n
	return q
}

// Build emits the SQL text and its positional arguments. It panics when a
// predicate's marks and arguments disagree.
func (q *Query) Build() (string, []any) {
	var sb strings.Builder
	args := make([]any, 0, 8)

	sb.WriteString(q.head)
	q.writePredicates(&sb, &args, "WHERE", q.where)
	if len(q.groupBy) > 0 {
		sb.WriteString("\nGROUP BY ")
		sb.WriteString(strings.Join(q.groupBy, ", "))
	}
	q.writePredicates(&sb, &args, "HAVING", q.having)
	if len(q.orderBy) > 0 {
		sb.WriteString("\nORDER BY ")
		sb.WriteString(strings.Join(q.orderBy, ", "))
	}
	if q.limit != nil {
		args = append(args, *q.limit)
		sb.WriteString("\nLIMIT ")
		sb.WriteString(q.placeholder(len(args)))
	}
	return sb.String(), args
}

func (q *Query) writePredicates(sb *strings.Builder, args *[]any, keyword string, ps []predicate) {
	for i, p := range ps {
		if i == 0 {
			sb.WriteString("\n" + keyword + " ")
		} else {
			sb.WriteString("\n  AND ")
		}
		sb.WriteString(q.bind(p, args))
	}
}

// bind rewrites the marks of one predicate, appending its args as it goes.
func (q *Query) bind(p predicate, args *[]any) string {
	parts := strings.Split(p.expr, "?")
	if len(parts)-1 != len(p.args) {
		panic(fmt.Sprintf("sqlbuild: %q has %d marks but %d args", p.expr, len(parts)-1, len(p.args)))
	}
	var sb strings.Builder
	sb.WriteString(parts[0])
	for i, a := range p.args {
		*args = append(*args, a)
		sb.WriteString(q.placeholder(len(*args)))
		sb.WriteString(parts[i+1])
	}
	return sb.String()
}

func (q *Query) placeholder(n int) string {
	if q.dialect == MySQL {
		return "?"
	}
	return "$" + strconv.Itoa(n)
}
